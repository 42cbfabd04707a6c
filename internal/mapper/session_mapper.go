package mapper

import (
	"encoding/json"

	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/model"

	"gorm.io/datatypes"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) ToEntity(s *model.StudySession) *entity.StudySession {
	if s == nil {
		return nil
	}

	out := &entity.StudySession{
		Id:              s.Id,
		UserId:          s.UserId,
		GoalId:          s.GoalId,
		DeckId:          s.DeckId,
		NodeId:          s.NodeId,
		Mode:            s.Mode,
		IsGuided:        s.IsGuided,
		Status:          s.Status,
		CardIds:         s.CardIds,
		CurrentIndex:    s.CurrentIndex,
		TimeRemainingMs: s.TimeRemainingMs,
		Score:           s.Score,
		Version:         s.Version,
		StartedAt:       s.StartedAt,
		LastActivityAt:  s.LastActivityAt,
		ExpiresAt:       s.ExpiresAt,
	}

	if len(s.Responses) > 0 {
		_ = json.Unmarshal(s.Responses, &out.Responses)
	}
	if len(s.TimedSettings) > 0 {
		var ts entity.TimedSettings
		if err := json.Unmarshal(s.TimedSettings, &ts); err == nil {
			out.TimedSettings = &ts
		}
	}
	if len(s.Summary) > 0 {
		var sum entity.SessionSummary
		if err := json.Unmarshal(s.Summary, &sum); err == nil {
			out.Summary = &sum
		}
	}

	return out
}

func (m *SessionMapper) ToModel(s *entity.StudySession) *model.StudySession {
	if s == nil {
		return nil
	}

	out := &model.StudySession{
		Id:              s.Id,
		UserId:          s.UserId,
		GoalId:          s.GoalId,
		DeckId:          s.DeckId,
		NodeId:          s.NodeId,
		Mode:            s.Mode,
		IsGuided:        s.IsGuided,
		Status:          s.Status,
		CardIds:         datatypes.NewJSONSlice(s.CardIds),
		CurrentIndex:    s.CurrentIndex,
		TimeRemainingMs: s.TimeRemainingMs,
		Score:           s.Score,
		Version:         s.Version,
		StartedAt:       s.StartedAt,
		LastActivityAt:  s.LastActivityAt,
		ExpiresAt:       s.ExpiresAt,
	}

	if len(s.Responses) > 0 {
		raw, _ := json.Marshal(s.Responses)
		out.Responses = datatypes.JSON(raw)
	}
	if s.TimedSettings != nil {
		raw, _ := json.Marshal(s.TimedSettings)
		out.TimedSettings = datatypes.JSON(raw)
	}
	if s.Summary != nil {
		raw, _ := json.Marshal(s.Summary)
		out.Summary = datatypes.JSON(raw)
	}

	return out
}

func (m *SessionMapper) ToEntities(models []*model.StudySession) []*entity.StudySession {
	out := make([]*entity.StudySession, 0, len(models))
	for _, mod := range models {
		out = append(out, m.ToEntity(mod))
	}
	return out
}
