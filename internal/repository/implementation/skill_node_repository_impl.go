package implementation

import (
	"context"
	"errors"

	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/mapper"
	"spaced-learning-be/internal/model"
	"spaced-learning-be/internal/repository/contract"
	"spaced-learning-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SkillNodeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SkillNodeMapper
}

func NewSkillNodeRepository(db *gorm.DB) contract.SkillNodeRepository {
	return &SkillNodeRepositoryImpl{
		db:     db,
		mapper: mapper.NewSkillNodeMapper(),
	}
}

func (r *SkillNodeRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SkillNodeRepositoryImpl) Create(ctx context.Context, node *entity.SkillNode) error {
	m := r.mapper.ToModel(node)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*node = *r.mapper.ToEntity(m)
	return nil
}

func (r *SkillNodeRepositoryImpl) Update(ctx context.Context, node *entity.SkillNode) error {
	m := r.mapper.ToModel(node)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*node = *r.mapper.ToEntity(m)
	return nil
}

func (r *SkillNodeRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SkillNode, error) {
	var m model.SkillNode
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SkillNodeRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SkillNode, error) {
	var models []*model.SkillNode
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *SkillNodeRepositoryImpl) UpdateMastery(ctx context.Context, id uuid.UUID, mastery float64) error {
	return r.db.WithContext(ctx).Model(&model.SkillNode{}).
		Where("id = ?", id).
		Update("mastery_percentage", mastery).Error
}
