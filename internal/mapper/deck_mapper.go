package mapper

import (
	"time"

	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/model"
)

type DeckMapper struct{}

func NewDeckMapper() *DeckMapper {
	return &DeckMapper{}
}

func (m *DeckMapper) ToEntity(d *model.Deck) *entity.Deck {
	if d == nil {
		return nil
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	return &entity.Deck{
		Id:        d.Id,
		UserId:    d.UserId,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *DeckMapper) MembershipToEntities(models []*model.DeckCard) []*entity.DeckCard {
	out := make([]*entity.DeckCard, 0, len(models))
	for _, mod := range models {
		out = append(out, &entity.DeckCard{
			DeckId:  mod.DeckId,
			CardId:  mod.CardId,
			AddedAt: mod.AddedAt,
		})
	}
	return out
}
