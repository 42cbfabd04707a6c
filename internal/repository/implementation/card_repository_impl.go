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

type CardRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CardMapper
}

func NewCardRepository(db *gorm.DB) contract.CardRepository {
	return &CardRepositoryImpl{
		db:     db,
		mapper: mapper.NewCardMapper(),
	}
}

func (r *CardRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CardRepositoryImpl) Create(ctx context.Context, card *entity.Card) error {
	m := r.mapper.ToModel(card)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*card = *r.mapper.ToEntity(m)
	return nil
}

func (r *CardRepositoryImpl) Update(ctx context.Context, card *entity.Card) error {
	m := r.mapper.ToModel(card)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*card = *r.mapper.ToEntity(m)
	return nil
}

func (r *CardRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Card{}, id).Error
}

func (r *CardRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Card, error) {
	var m model.Card
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CardRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Card, error) {
	var models []*model.Card
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *CardRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Card{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CardRepositoryImpl) UpdateScheduling(ctx context.Context, card *entity.Card) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Card{}).
		Where("id = ? AND version = ?", card.Id, card.Version).
		Updates(map[string]interface{}{
			"srs_state":       card.Scheduling.State.String(),
			"srs_due":         card.Scheduling.Due,
			"srs_stability":   card.Scheduling.Stability,
			"srs_difficulty":  card.Scheduling.Difficulty,
			"srs_reps":        card.Scheduling.Reps,
			"srs_lapses":      card.Scheduling.Lapses,
			"srs_last_review": card.Scheduling.LastReview,
			"version":         gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	card.Version++
	return true, nil
}
