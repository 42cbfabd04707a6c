package mapper

import (
	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/model"
)

type DistractorMapper struct{}

func NewDistractorMapper() *DistractorMapper {
	return &DistractorMapper{}
}

func (m *DistractorMapper) ToEntity(d *model.Distractor) *entity.Distractor {
	if d == nil {
		return nil
	}
	return &entity.Distractor{
		Id:        d.Id,
		CardId:    d.CardId,
		Content:   d.Content,
		Position:  d.Position,
		CreatedAt: d.CreatedAt,
	}
}

func (m *DistractorMapper) ToModel(d *entity.Distractor) *model.Distractor {
	if d == nil {
		return nil
	}
	return &model.Distractor{
		Id:        d.Id,
		CardId:    d.CardId,
		Content:   d.Content,
		Position:  d.Position,
		CreatedAt: d.CreatedAt,
	}
}

func (m *DistractorMapper) ToEntities(models []*model.Distractor) []*entity.Distractor {
	out := make([]*entity.Distractor, 0, len(models))
	for _, mod := range models {
		out = append(out, m.ToEntity(mod))
	}
	return out
}
