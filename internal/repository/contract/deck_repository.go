package contract

import (
	"context"

	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DeckRepository interface {
	Create(ctx context.Context, deck *entity.Deck) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Deck, error)

	// ListCardIds returns the deck's current membership ordered by when each
	// card was added.
	ListCardIds(ctx context.Context, deckId uuid.UUID) ([]uuid.UUID, error)
	AddCard(ctx context.Context, deckId, cardId uuid.UUID) error
	RemoveCard(ctx context.Context, deckId, cardId uuid.UUID) error
}
