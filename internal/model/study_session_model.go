package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// StudySession is the persisted session record. CardIds is the ordered
// manifest fixed at creation (deck sync may append/remove), Responses is
// the append-only rating history, Summary is written once at completion
// and replayed on idempotent repeat completes. Version guards progress
// writes against lost updates when a rating and a deck sync race.
type StudySession struct {
	Id     uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId uuid.UUID  `gorm:"type:uuid;not null;index:idx_sessions_user_status,priority:1"`
	GoalId *uuid.UUID `gorm:"type:uuid;index"`
	DeckId *uuid.UUID `gorm:"type:uuid;index"`
	NodeId *uuid.UUID `gorm:"type:uuid"`

	Mode     string `gorm:"type:varchar(20);not null"`
	IsGuided bool   `gorm:"not null;default:false"`
	Status   string `gorm:"type:varchar(20);not null;default:'active';index:idx_sessions_user_status,priority:2"`

	CardIds      datatypes.JSONSlice[uuid.UUID] `gorm:"type:jsonb;not null"`
	CurrentIndex int                            `gorm:"not null;default:0"`
	Responses    datatypes.JSON                 `gorm:"type:jsonb"`

	TimedSettings   datatypes.JSON `gorm:"type:jsonb"`
	TimeRemainingMs *int64
	Score           int `gorm:"not null;default:0"`

	Summary datatypes.JSON `gorm:"type:jsonb"`
	Version int64          `gorm:"not null;default:0"`

	StartedAt      time.Time `gorm:"not null"`
	LastActivityAt time.Time `gorm:"not null"`
	ExpiresAt      time.Time `gorm:"not null;index"`
}

func (StudySession) TableName() string {
	return "study_sessions"
}
