package specification

import (
	"gorm.io/gorm"
)

// SessionsByStatus filters sessions by lifecycle status.
type SessionsByStatus struct {
	Status string
}

func (s SessionsByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
