package contract

import (
	"context"

	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SkillNodeRepository interface {
	Create(ctx context.Context, node *entity.SkillNode) error
	Update(ctx context.Context, node *entity.SkillNode) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SkillNode, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SkillNode, error)
	UpdateMastery(ctx context.Context, id uuid.UUID, mastery float64) error
}
