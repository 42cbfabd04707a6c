package entity

import (
	"time"

	"github.com/google/uuid"
)

type Goal struct {
	Id                uuid.UUID
	UserId            uuid.UUID
	Title             string
	MasteryPercentage float64
	CreatedAt         time.Time
	UpdatedAt         *time.Time
}
