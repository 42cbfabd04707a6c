package dto

import (
	"time"

	"github.com/google/uuid"
)

// --- Session Lifecycle ---

type TimedSettingsDTO struct {
	DurationSeconds int `json:"duration_seconds" validate:"omitempty,min=30,max=3600"`
	PointsPerCard   int `json:"points_per_card" validate:"omitempty,min=1"`
}

type StartSessionRequest struct {
	Mode     string     `json:"mode" validate:"required,oneof=flashcard multiple_choice timed mixed node all"`
	GoalId   *uuid.UUID `json:"goal_id,omitempty"`
	DeckId   *uuid.UUID `json:"deck_id,omitempty"`
	NodeId   *uuid.UUID `json:"node_id,omitempty"`
	Guided   bool       `json:"guided"`
	MaxCards int        `json:"max_cards" validate:"omitempty,min=1,max=100"`

	TimedSettings *TimedSettingsDTO `json:"timed_settings,omitempty"`
}

type StudyCardResponse struct {
	CardId    uuid.UUID `json:"card_id"`
	NodeId    uuid.UUID `json:"node_id"`
	NodeTitle string    `json:"node_title,omitempty"`
	Question  string    `json:"question"`

	// Kind is flashcard, multiple_choice, or pending_choice. Choices is
	// populated only for multiple_choice; PendingJobId only for pending_choice.
	Kind         string     `json:"kind"`
	Answer       string     `json:"answer"`
	Choices      []string   `json:"choices,omitempty"`
	PendingJobId *uuid.UUID `json:"pending_job_id,omitempty"`

	State string    `json:"state"`
	Due   time.Time `json:"due"`
}

type SessionResponse struct {
	SessionId    uuid.UUID  `json:"session_id"`
	Mode         string     `json:"mode"`
	IsGuided     bool       `json:"is_guided"`
	Status       string     `json:"status"`
	GoalId       *uuid.UUID `json:"goal_id,omitempty"`
	DeckId       *uuid.UUID `json:"deck_id,omitempty"`
	NodeId       *uuid.UUID `json:"node_id,omitempty"`
	NodeTitle    string     `json:"node_title,omitempty"`
	CurrentIndex int        `json:"current_index"`
	TotalCards   int        `json:"total_cards"`
	Progress     float64    `json:"progress"`

	Cards []StudyCardResponse `json:"cards"`

	TimedSettings   *TimedSettingsDTO `json:"timed_settings,omitempty"`
	TimeRemainingMs *int64            `json:"time_remaining_ms,omitempty"`
	Score           int               `json:"score"`

	StartedAt time.Time `json:"started_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// StartSessionResult carries either a created session or, for guided starts,
// one of the two no-session outcomes.
type StartSessionResult struct {
	Session         *SessionResponse `json:"session,omitempty"`
	TreeComplete    bool             `json:"tree_complete"`
	AwaitingContent bool             `json:"awaiting_content"`
}

// --- Rating ---

type RateCardRequest struct {
	CardId         uuid.UUID `json:"card_id" validate:"required"`
	Rating         int       `json:"rating" validate:"required,min=1,max=4"`
	ResponseTimeMs int64     `json:"response_time_ms" validate:"omitempty,min=0"`
}

type RateCardResponse struct {
	CardId          uuid.UUID `json:"card_id"`
	State           string    `json:"state"`
	Due             time.Time `json:"due"`
	CurrentIndex    int       `json:"current_index"`
	Progress        float64   `json:"progress"`
	Score           int       `json:"score"`
	TimeRemainingMs *int64    `json:"time_remaining_ms,omitempty"`
	Finished        bool      `json:"finished"`
}

// --- Completion ---

// RatedCardDTO echoes one rating from the client's local log. The stored
// response history stays authoritative; echoes only widen the set of nodes
// considered for mastery recalculation.
type RatedCardDTO struct {
	CardId uuid.UUID `json:"card_id" validate:"required"`
	Rating int       `json:"rating" validate:"required,min=1,max=4"`
}

type CompleteSessionRequest struct {
	DurationSeconds int            `json:"duration_seconds" validate:"omitempty,min=0"`
	Ratings         []RatedCardDTO `json:"ratings,omitempty" validate:"omitempty,dive"`
	TimedScore      *int           `json:"timed_score,omitempty"`
}

type NodeMasteryChangeResponse struct {
	NodeId        uuid.UUID `json:"node_id"`
	NodeTitle     string    `json:"node_title"`
	MasteryBefore float64   `json:"mastery_before"`
	MasteryAfter  float64   `json:"mastery_after"`
}

type SessionSummaryResponse struct {
	SessionId      uuid.UUID                   `json:"session_id"`
	CardsStudied   int                         `json:"cards_studied"`
	AverageRating  float64                     `json:"average_rating"`
	TotalTimeSecs  int                         `json:"total_time_secs"`
	RetentionRate  float64                     `json:"retention_rate"`
	TimedScore     *int                        `json:"timed_score,omitempty"`
	MasteryChanges []NodeMasteryChangeResponse `json:"mastery_changes,omitempty"`
}
