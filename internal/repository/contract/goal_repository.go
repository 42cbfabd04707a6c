package contract

import (
	"context"

	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/repository/specification"

	"github.com/google/uuid"
)

type GoalRepository interface {
	Create(ctx context.Context, goal *entity.Goal) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Goal, error)
	UpdateMastery(ctx context.Context, id uuid.UUID, mastery float64) error
}
