package events

import (
	"time"

	"github.com/google/uuid"
)

// Event codes for the study domain.
const (
	TypeSessionCompleted = "SESSION_COMPLETED"
	TypeDistractorsReady = "DISTRACTORS_READY"
)

// NewSessionCompleted is emitted when a study session reaches the completed
// state. Consumers (notification worker, analytics) treat it as informational.
func NewSessionCompleted(userID, sessionID uuid.UUID, cardsStudied int, retentionRate float64) Event {
	return BaseEvent{
		Type: TypeSessionCompleted,
		Data: map[string]interface{}{
			"user_id":        userID.String(),
			"session_id":     sessionID.String(),
			"cards_studied":  cardsStudied,
			"retention_rate": retentionRate,
		},
		OccurredAt: time.Now(),
	}
}

// NewDistractorsReady is emitted when a background generation job has
// persisted all three distractors for a card.
func NewDistractorsReady(userID, cardID, jobID uuid.UUID) Event {
	return BaseEvent{
		Type: TypeDistractorsReady,
		Data: map[string]interface{}{
			"user_id": userID.String(),
			"card_id": cardID.String(),
			"job_id":  jobID.String(),
		},
		OccurredAt: time.Now(),
	}
}
