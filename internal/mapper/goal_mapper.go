package mapper

import (
	"time"

	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/model"
)

type GoalMapper struct{}

func NewGoalMapper() *GoalMapper {
	return &GoalMapper{}
}

func (m *GoalMapper) ToEntity(g *model.Goal) *entity.Goal {
	if g == nil {
		return nil
	}

	var updatedAt *time.Time
	if !g.UpdatedAt.IsZero() {
		t := g.UpdatedAt
		updatedAt = &t
	}

	return &entity.Goal{
		Id:                g.Id,
		UserId:            g.UserId,
		Title:             g.Title,
		MasteryPercentage: g.MasteryPercentage,
		CreatedAt:         g.CreatedAt,
		UpdatedAt:         updatedAt,
	}
}

func (m *GoalMapper) ToModel(g *entity.Goal) *model.Goal {
	if g == nil {
		return nil
	}

	out := &model.Goal{
		Id:                g.Id,
		UserId:            g.UserId,
		Title:             g.Title,
		MasteryPercentage: g.MasteryPercentage,
		CreatedAt:         g.CreatedAt,
	}
	if g.UpdatedAt != nil {
		out.UpdatedAt = *g.UpdatedAt
	}
	return out
}
