package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// BackgroundJob is a polled async work item (distractor generation).
type BackgroundJob struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	JobType     string         `gorm:"type:varchar(50);not null;index"`
	Status      string         `gorm:"type:varchar(20);not null;default:'pending';index"`
	Payload     datatypes.JSON `gorm:"type:jsonb"`
	Result      datatypes.JSON `gorm:"type:jsonb"`
	UserId      uuid.UUID      `gorm:"type:uuid;not null;index"`
	Priority    int            `gorm:"not null;default:0"`
	Attempts    int            `gorm:"not null;default:0"`
	MaxAttempts int            `gorm:"not null;default:3"`
	LastError   string         `gorm:"type:text"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
}

func (BackgroundJob) TableName() string {
	return "background_jobs"
}
