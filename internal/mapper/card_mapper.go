package mapper

import (
	"encoding/json"
	"time"

	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/model"
	"spaced-learning-be/pkg/srs"

	"gorm.io/datatypes"
)

type CardMapper struct{}

func NewCardMapper() *CardMapper {
	return &CardMapper{}
}

// cardMetadata is the jsonb shape older imports wrote onto the card row.
type cardMetadata struct {
	Distractors []string `json:"distractors,omitempty"`
}

func (m *CardMapper) ToEntity(c *model.Card) *entity.Card {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	var meta cardMetadata
	if len(c.Metadata) > 0 {
		// Ignore malformed metadata; the distractor table is authoritative anyway.
		_ = json.Unmarshal(c.Metadata, &meta)
	}

	return &entity.Card{
		Id:                c.Id,
		UserId:            c.UserId,
		NodeId:            c.NodeId,
		Question:          c.Question,
		Answer:            c.Answer,
		CardType:          c.CardType,
		LegacyDistractors: meta.Distractors,
		Active:            c.Active,
		Scheduling: srs.SchedulingState{
			State:      srs.ParseState(c.SrsState),
			Due:        c.SrsDue,
			Stability:  c.SrsStability,
			Difficulty: c.SrsDifficulty,
			Reps:       c.SrsReps,
			Lapses:     c.SrsLapses,
			LastReview: c.SrsLastReview,
		},
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *CardMapper) ToModel(c *entity.Card) *model.Card {
	if c == nil {
		return nil
	}

	var meta datatypes.JSON
	if len(c.LegacyDistractors) > 0 {
		raw, _ := json.Marshal(cardMetadata{Distractors: c.LegacyDistractors})
		meta = datatypes.JSON(raw)
	}

	out := &model.Card{
		Id:            c.Id,
		UserId:        c.UserId,
		NodeId:        c.NodeId,
		Question:      c.Question,
		Answer:        c.Answer,
		CardType:      c.CardType,
		Metadata:      meta,
		Active:        c.Active,
		SrsState:      c.Scheduling.State.String(),
		SrsDue:        c.Scheduling.Due,
		SrsStability:  c.Scheduling.Stability,
		SrsDifficulty: c.Scheduling.Difficulty,
		SrsReps:       c.Scheduling.Reps,
		SrsLapses:     c.Scheduling.Lapses,
		SrsLastReview: c.Scheduling.LastReview,
		Version:       c.Version,
		CreatedAt:     c.CreatedAt,
	}
	if c.UpdatedAt != nil {
		out.UpdatedAt = *c.UpdatedAt
	}
	return out
}

func (m *CardMapper) ToEntities(models []*model.Card) []*entity.Card {
	out := make([]*entity.Card, 0, len(models))
	for _, mod := range models {
		out = append(out, m.ToEntity(mod))
	}
	return out
}
