package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActiveCards filters out deactivated cards.
type ActiveCards struct{}

func (s ActiveCards) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("active = ?", true)
}

// CardsByNode filters by a single skill node.
type CardsByNode struct {
	NodeID uuid.UUID
}

func (s CardsByNode) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("node_id = ?", s.NodeID)
}

// CardsByNodes filters by a set of skill nodes (subtree scope resolved upstream).
type CardsByNodes struct {
	NodeIDs []uuid.UUID
}

func (s CardsByNodes) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("node_id IN ?", s.NodeIDs)
}

// DueBefore keeps cards whose next review is at or before the cutoff.
type DueBefore struct {
	Cutoff time.Time
}

func (s DueBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("srs_due <= ?", s.Cutoff)
}

// OrderByDue sorts by review due time, earliest first. Ties break on id so
// the ordering stays stable across identical timestamps.
type OrderByDue struct{}

func (s OrderByDue) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("srs_due ASC").Order("id ASC")
}
