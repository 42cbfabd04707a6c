package service

import (
	"context"
	"testing"

	"spaced-learning-be/internal/entity"
	"spaced-learning-be/internal/pkg/serverutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStatusReturnsJob(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()
	job := seedGenerationJob(store, userId, uuid.New())
	job.Status = entity.JobStatusCompleted
	job.Result = map[string]interface{}{"distractors": []interface{}{"a", "b", "c"}}

	svc := NewJobService(newMemFactory(store), nil)
	resp, err := svc.GetStatus(context.Background(), userId, job.Id)

	require.NoError(t, err)
	assert.Equal(t, job.Id, resp.Id)
	assert.Equal(t, entity.JobStatusCompleted, resp.Status)
	assert.Equal(t, job.Result, resp.Result)
}

func TestGetStatusUnknownJob(t *testing.T) {
	store := newMemStore()
	svc := NewJobService(newMemFactory(store), nil)

	_, err := svc.GetStatus(context.Background(), uuid.New(), uuid.New())

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, serverutils.CodeNotFound, appErr.Code)
}

func TestGetStatusHidesOtherUsersJobs(t *testing.T) {
	store := newMemStore()
	owner := uuid.New()
	job := seedGenerationJob(store, owner, uuid.New())

	svc := NewJobService(newMemFactory(store), nil)
	_, err := svc.GetStatus(context.Background(), uuid.New(), job.Id)

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, serverutils.CodeNotFound, appErr.Code)
}
