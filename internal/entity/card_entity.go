package entity

import (
	"time"

	"github.com/google/uuid"

	"spaced-learning-be/pkg/srs"
)

// Native card presentation types as stored on the card row.
const (
	CardTypeFlashcard      = "flashcard"
	CardTypeMultipleChoice = "multiple_choice"
)

type Card struct {
	Id       uuid.UUID
	UserId   uuid.UUID
	NodeId   uuid.UUID
	Question string
	Answer   string
	CardType string
	// LegacyDistractors carries distractors embedded in the card metadata
	// by older imports. The distractor table takes precedence.
	LegacyDistractors []string
	Active            bool

	Scheduling srs.SchedulingState
	Version    int64

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// IsDue reports whether the card's next review is at or before now.
func (c *Card) IsDue(now time.Time) bool {
	return !c.Scheduling.Due.After(now)
}

// Mastered reports whether the card has reached the long-term review tier.
func (c *Card) Mastered() bool {
	return c.Scheduling.State >= srs.StateReview
}
