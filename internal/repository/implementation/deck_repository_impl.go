package implementation

import (
	"context"
	"errors"
	"time"

	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/mapper"
	"spaced-learning-be/internal/model"
	"spaced-learning-be/internal/repository/contract"
	"spaced-learning-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DeckRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DeckMapper
}

func NewDeckRepository(db *gorm.DB) contract.DeckRepository {
	return &DeckRepositoryImpl{
		db:     db,
		mapper: mapper.NewDeckMapper(),
	}
}

func (r *DeckRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DeckRepositoryImpl) Create(ctx context.Context, deck *entity.Deck) error {
	m := &model.Deck{
		Id:        deck.Id,
		UserId:    deck.UserId,
		Name:      deck.Name,
		CreatedAt: deck.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*deck = *r.mapper.ToEntity(m)
	return nil
}

func (r *DeckRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Deck, error) {
	var m model.Deck
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DeckRepositoryImpl) ListCardIds(ctx context.Context, deckId uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.DeckCard{}).
		Where("deck_id = ?", deckId).
		Order("added_at ASC").
		Pluck("card_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *DeckRepositoryImpl) AddCard(ctx context.Context, deckId, cardId uuid.UUID) error {
	m := &model.DeckCard{DeckId: deckId, CardId: cardId, AddedAt: time.Now()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(m).Error
}

func (r *DeckRepositoryImpl) RemoveCard(ctx context.Context, deckId, cardId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("deck_id = ? AND card_id = ?", deckId, cardId).
		Delete(&model.DeckCard{}).Error
}
