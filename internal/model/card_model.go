package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Card is a question/answer pair with its scheduling state inline.
// The srs_* columns are the single authoritative copy of the scheduling
// state; Version guards them against lost updates from replayed ratings.
type Card struct {
	Id       uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId   uuid.UUID      `gorm:"type:uuid;not null;index"`
	NodeId   uuid.UUID      `gorm:"type:uuid;not null;index"`
	Question string         `gorm:"type:text;not null"`
	Answer   string         `gorm:"type:text;not null"`
	CardType string         `gorm:"type:varchar(20);not null;default:'flashcard'"`
	Metadata datatypes.JSON `gorm:"type:jsonb"`
	Active   bool           `gorm:"not null;default:true"`

	SrsState      string     `gorm:"type:varchar(20);not null;default:'new'"`
	SrsDue        time.Time  `gorm:"not null;index"`
	SrsStability  float64    `gorm:"not null;default:0"`
	SrsDifficulty float64    `gorm:"not null;default:0"`
	SrsReps       int        `gorm:"not null;default:0"`
	SrsLapses     int        `gorm:"not null;default:0"`
	SrsLastReview *time.Time
	Version       int64 `gorm:"not null;default:0"`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Card) TableName() string {
	return "cards"
}
