package contract

import (
	"context"

	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/repository/specification"
)

type BackgroundJobRepository interface {
	Create(ctx context.Context, job *entity.BackgroundJob) error
	Update(ctx context.Context, job *entity.BackgroundJob) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.BackgroundJob, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.BackgroundJob, error)
}
