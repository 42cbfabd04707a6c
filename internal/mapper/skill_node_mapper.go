package mapper

import (
	"time"

	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/model"
)

type SkillNodeMapper struct{}

func NewSkillNodeMapper() *SkillNodeMapper {
	return &SkillNodeMapper{}
}

func (m *SkillNodeMapper) ToEntity(n *model.SkillNode) *entity.SkillNode {
	if n == nil {
		return nil
	}

	var updatedAt *time.Time
	if !n.UpdatedAt.IsZero() {
		t := n.UpdatedAt
		updatedAt = &t
	}

	return &entity.SkillNode{
		Id:                n.Id,
		GoalId:            n.GoalId,
		ParentId:          n.ParentId,
		Title:             n.Title,
		Depth:             n.Depth,
		Path:              n.Path,
		Enabled:           n.Enabled,
		CardCount:         n.CardCount,
		MasteryPercentage: n.MasteryPercentage,
		CreatedAt:         n.CreatedAt,
		UpdatedAt:         updatedAt,
	}
}

func (m *SkillNodeMapper) ToModel(n *entity.SkillNode) *model.SkillNode {
	if n == nil {
		return nil
	}

	out := &model.SkillNode{
		Id:                n.Id,
		GoalId:            n.GoalId,
		ParentId:          n.ParentId,
		Title:             n.Title,
		Depth:             n.Depth,
		Path:              n.Path,
		Enabled:           n.Enabled,
		CardCount:         n.CardCount,
		MasteryPercentage: n.MasteryPercentage,
		CreatedAt:         n.CreatedAt,
	}
	if n.UpdatedAt != nil {
		out.UpdatedAt = *n.UpdatedAt
	}
	return out
}

func (m *SkillNodeMapper) ToEntities(models []*model.SkillNode) []*entity.SkillNode {
	out := make([]*entity.SkillNode, 0, len(models))
	for _, mod := range models {
		out = append(out, m.ToEntity(mod))
	}
	return out
}
