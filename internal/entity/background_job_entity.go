package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	JobTypeGenerateDistractors = "generate_distractors"

	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

type BackgroundJob struct {
	Id          uuid.UUID
	JobType     string
	Status      string
	Payload     map[string]interface{}
	Result      map[string]interface{}
	UserId      uuid.UUID
	Priority    int
	Attempts    int
	MaxAttempts int
	LastError   string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// Terminal reports whether the job can no longer change state.
func (j *BackgroundJob) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
