package dto

import "github.com/google/uuid"

// GenerateDistractorsMessage is the queue payload that kicks off distractor
// generation for a card.
type GenerateDistractorsMessage struct {
	JobId  uuid.UUID `json:"job_id"`
	CardId uuid.UUID `json:"card_id"`
	UserId uuid.UUID `json:"user_id"`
}
