package contract

import (
	"context"

	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CardRepository interface {
	Create(ctx context.Context, card *entity.Card) error
	Update(ctx context.Context, card *entity.Card) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Card, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Card, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// UpdateScheduling writes the card's scheduling columns conditionally on
	// the version the caller read. It reports false when another writer got
	// there first and the update was skipped.
	UpdateScheduling(ctx context.Context, card *entity.Card) (bool, error)
}
