package contract

import (
	"context"

	"spaced-learning-be/internal/entity"

	"github.com/google/uuid"
)

type DistractorRepository interface {
	FindByCard(ctx context.Context, cardId uuid.UUID) ([]*entity.Distractor, error)
	FindByCards(ctx context.Context, cardIds []uuid.UUID) (map[uuid.UUID][]*entity.Distractor, error)

	// ReplaceForCard swaps the card's distractor set atomically with respect
	// to readers keyed on (card_id, position).
	ReplaceForCard(ctx context.Context, cardId uuid.UUID, distractors []*entity.Distractor) error
}
