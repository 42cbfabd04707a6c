package mapper

import (
	"encoding/json"
	"time"

	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/model"

	"gorm.io/datatypes"
)

type JobMapper struct{}

func NewJobMapper() *JobMapper {
	return &JobMapper{}
}

func (m *JobMapper) ToEntity(j *model.BackgroundJob) *entity.BackgroundJob {
	if j == nil {
		return nil
	}

	var updatedAt *time.Time
	if !j.UpdatedAt.IsZero() {
		t := j.UpdatedAt
		updatedAt = &t
	}

	out := &entity.BackgroundJob{
		Id:          j.Id,
		JobType:     j.JobType,
		Status:      j.Status,
		UserId:      j.UserId,
		Priority:    j.Priority,
		Attempts:    j.Attempts,
		MaxAttempts: j.MaxAttempts,
		LastError:   j.LastError,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   updatedAt,
	}

	if len(j.Payload) > 0 {
		_ = json.Unmarshal(j.Payload, &out.Payload)
	}
	if len(j.Result) > 0 {
		_ = json.Unmarshal(j.Result, &out.Result)
	}

	return out
}

func (m *JobMapper) ToEntities(models []*model.BackgroundJob) []*entity.BackgroundJob {
	out := make([]*entity.BackgroundJob, 0, len(models))
	for _, mod := range models {
		out = append(out, m.ToEntity(mod))
	}
	return out
}

func (m *JobMapper) ToModel(j *entity.BackgroundJob) *model.BackgroundJob {
	if j == nil {
		return nil
	}

	out := &model.BackgroundJob{
		Id:          j.Id,
		JobType:     j.JobType,
		Status:      j.Status,
		UserId:      j.UserId,
		Priority:    j.Priority,
		Attempts:    j.Attempts,
		MaxAttempts: j.MaxAttempts,
		LastError:   j.LastError,
		CreatedAt:   j.CreatedAt,
	}
	if j.UpdatedAt != nil {
		out.UpdatedAt = *j.UpdatedAt
	}

	if j.Payload != nil {
		raw, _ := json.Marshal(j.Payload)
		out.Payload = datatypes.JSON(raw)
	}
	if j.Result != nil {
		raw, _ := json.Marshal(j.Result)
		out.Result = datatypes.JSON(raw)
	}

	return out
}
