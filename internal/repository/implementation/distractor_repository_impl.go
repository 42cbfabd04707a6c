package implementation

import (
	"context"

	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/mapper"
	"spaced-learning-be/internal/model"
	"spaced-learning-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DistractorRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DistractorMapper
}

func NewDistractorRepository(db *gorm.DB) contract.DistractorRepository {
	return &DistractorRepositoryImpl{
		db:     db,
		mapper: mapper.NewDistractorMapper(),
	}
}

func (r *DistractorRepositoryImpl) FindByCard(ctx context.Context, cardId uuid.UUID) ([]*entity.Distractor, error) {
	var models []*model.Distractor
	err := r.db.WithContext(ctx).
		Where("card_id = ?", cardId).
		Order("position ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *DistractorRepositoryImpl) FindByCards(ctx context.Context, cardIds []uuid.UUID) (map[uuid.UUID][]*entity.Distractor, error) {
	if len(cardIds) == 0 {
		return map[uuid.UUID][]*entity.Distractor{}, nil
	}

	var models []*model.Distractor
	err := r.db.WithContext(ctx).
		Where("card_id IN ?", cardIds).
		Order("card_id, position ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID][]*entity.Distractor, len(cardIds))
	for _, m := range models {
		out[m.CardId] = append(out[m.CardId], r.mapper.ToEntity(m))
	}
	return out, nil
}

func (r *DistractorRepositoryImpl) ReplaceForCard(ctx context.Context, cardId uuid.UUID, distractors []*entity.Distractor) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("card_id = ?", cardId).Delete(&model.Distractor{}).Error; err != nil {
			return err
		}
		if len(distractors) == 0 {
			return nil
		}
		models := make([]*model.Distractor, 0, len(distractors))
		for _, d := range distractors {
			models = append(models, r.mapper.ToModel(d))
		}
		return tx.Create(models).Error
	})
}
