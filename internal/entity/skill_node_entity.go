package entity

import (
	"time"

	"github.com/google/uuid"
)

type SkillNode struct {
	Id                uuid.UUID
	GoalId            uuid.UUID
	ParentId          *uuid.UUID
	Title             string
	Depth             int
	Path              string
	Enabled           bool
	CardCount         int
	MasteryPercentage float64
	CreatedAt         time.Time
	UpdatedAt         *time.Time
}

// NodeProgress pairs a node with its query-time completion counts.
type NodeProgress struct {
	Node            *SkillNode
	CompletedInNode int
	TotalInNode     int
}
