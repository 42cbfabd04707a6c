package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NodesByGoal filters skill nodes by owning goal.
type NodesByGoal struct {
	GoalID uuid.UUID
}

func (s NodesByGoal) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("goal_id = ?", s.GoalID)
}

// EnabledNodes filters out disabled nodes.
type EnabledNodes struct{}

func (s EnabledNodes) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("enabled = ?", true)
}

// UnderPath keeps the node at path and all its descendants. Paths are
// zero-padded dotted segments, so a prefix match is a subtree match.
type UnderPath struct {
	Path string
}

func (s UnderPath) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("path = ? OR path LIKE ?", s.Path, s.Path+".%")
}

// OrderByPath sorts lexicographically by materialized path, which equals
// depth-first pre-order over the tree.
type OrderByPath struct{}

func (s OrderByPath) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("path ASC")
}
