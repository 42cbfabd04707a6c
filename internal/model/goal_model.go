package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Goal is the root of a skill-node tree.
type Goal struct {
	Id                uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId            uuid.UUID      `gorm:"type:uuid;not null;index"`
	Title             string         `gorm:"type:varchar(255);not null"`
	MasteryPercentage float64        `gorm:"not null;default:0"`
	CreatedAt         time.Time      `gorm:"autoCreateTime"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime"`
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

func (Goal) TableName() string {
	return "goals"
}
