package entity

import (
	"time"

	"github.com/google/uuid"

	"spaced-learning-be/pkg/srs"
)

// Session modes.
const (
	ModeFlashcard      = "flashcard"
	ModeMultipleChoice = "multiple_choice"
	ModeTimed          = "timed"
	ModeMixed          = "mixed"
	ModeNode           = "node"
	ModeAll            = "all"
)

// Session lifecycle. Terminal states never transition again.
const (
	SessionActive    = "active"
	SessionCompleted = "completed"
	SessionAbandoned = "abandoned"
)

// ValidMode reports whether mode is one of the supported session modes.
func ValidMode(mode string) bool {
	switch mode {
	case ModeFlashcard, ModeMultipleChoice, ModeTimed, ModeMixed, ModeNode, ModeAll:
		return true
	}
	return false
}

// NeedsDistractors reports whether cards assigned multiple-choice under this
// mode must have their distractors provisioned at selection time.
func NeedsDistractors(mode string) bool {
	switch mode {
	case ModeMultipleChoice, ModeMixed, ModeTimed:
		return true
	}
	return false
}

// CardResponse is one entry of the append-only rating history.
type CardResponse struct {
	CardId         uuid.UUID  `json:"card_id"`
	Rating         srs.Rating `json:"rating"`
	ResponseTimeMs int64      `json:"response_time_ms"`
	RatedAt        time.Time  `json:"rated_at"`
}

// TimedSettings configures a timed session.
type TimedSettings struct {
	DurationSeconds int `json:"duration_seconds"`
	PointsPerCard   int `json:"points_per_card"`
}

// NodeMasteryDelta records a touched node's mastery before and after the
// completion-time recalculation.
type NodeMasteryDelta struct {
	NodeId        uuid.UUID `json:"node_id"`
	NodeTitle     string    `json:"node_title"`
	MasteryBefore float64   `json:"mastery_before"`
	MasteryAfter  float64   `json:"mastery_after"`
}

// SessionSummary is computed once on the active→completed transition and
// replayed verbatim for retried complete calls.
type SessionSummary struct {
	CardsStudied   int                `json:"cards_studied"`
	AverageRating  float64            `json:"average_rating"`
	TotalTimeSecs  int                `json:"total_time_secs"`
	RetentionRate  float64            `json:"retention_rate"`
	TimedScore     *int               `json:"timed_score,omitempty"`
	MasteryChanges []NodeMasteryDelta `json:"mastery_changes,omitempty"`
}

type StudySession struct {
	Id     uuid.UUID
	UserId uuid.UUID
	GoalId *uuid.UUID
	DeckId *uuid.UUID
	NodeId *uuid.UUID

	Mode     string
	IsGuided bool
	Status   string

	CardIds      []uuid.UUID
	CurrentIndex int
	Responses    []CardResponse

	TimedSettings   *TimedSettings
	TimeRemainingMs *int64
	Score           int

	Summary *SessionSummary
	Version int64

	StartedAt      time.Time
	LastActivityAt time.Time
	ExpiresAt      time.Time
}

// Expired reports whether the session's absolute TTL has passed.
func (s *StudySession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// HasCard reports whether the card id is part of the manifest.
func (s *StudySession) HasCard(cardId uuid.UUID) bool {
	for _, id := range s.CardIds {
		if id == cardId {
			return true
		}
	}
	return false
}

// Rated reports whether the card has already been rated this session.
func (s *StudySession) Rated(cardId uuid.UUID) bool {
	for _, r := range s.Responses {
		if r.CardId == cardId {
			return true
		}
	}
	return false
}

// ProgressPercentage is the share of the manifest already rated.
func (s *StudySession) ProgressPercentage() float64 {
	if len(s.CardIds) == 0 {
		return 0
	}
	return float64(len(s.Responses)) / float64(len(s.CardIds)) * 100
}
