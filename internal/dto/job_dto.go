package dto

import (
	"time"

	"github.com/google/uuid"
)

type JobStatusResponse struct {
	Id        uuid.UUID              `json:"id"`
	JobType   string                 `json:"job_type"`
	Status    string                 `json:"status"`
	Result    map[string]interface{} `json:"result,omitempty"`
	LastError string                 `json:"last_error,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
