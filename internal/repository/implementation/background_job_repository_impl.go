package implementation

import (
	"context"
	"errors"

	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/mapper"
	"spaced-learning-be/internal/model"
	"spaced-learning-be/internal/repository/contract"
	"spaced-learning-be/internal/repository/specification"

	"gorm.io/gorm"
)

type BackgroundJobRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.JobMapper
}

func NewBackgroundJobRepository(db *gorm.DB) contract.BackgroundJobRepository {
	return &BackgroundJobRepositoryImpl{
		db:     db,
		mapper: mapper.NewJobMapper(),
	}
}

func (r *BackgroundJobRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *BackgroundJobRepositoryImpl) Create(ctx context.Context, job *entity.BackgroundJob) error {
	m := r.mapper.ToModel(job)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*job = *r.mapper.ToEntity(m)
	return nil
}

func (r *BackgroundJobRepositoryImpl) Update(ctx context.Context, job *entity.BackgroundJob) error {
	m := r.mapper.ToModel(job)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*job = *r.mapper.ToEntity(m)
	return nil
}

func (r *BackgroundJobRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.BackgroundJob, error) {
	var m model.BackgroundJob
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *BackgroundJobRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.BackgroundJob, error) {
	var models []*model.BackgroundJob
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
