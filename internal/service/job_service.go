package service

import (
	"context"
	"encoding/json"
	"time"

	"spaced-learning-be/internal/dto"
	"spaced-learning-be/internal/pkg/serverutils"
	"spaced-learning-be/internal/repository/specification"
	"spaced-learning-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const jobCacheTTL = 10 * time.Minute

type IJobService interface {
	// GetStatus returns the job's current state for client polling. Terminal
	// jobs are served from Redis once cached since they never change again.
	GetStatus(ctx context.Context, userId, jobId uuid.UUID) (*dto.JobStatusResponse, error)
}

type jobService struct {
	uowFactory unitofwork.RepositoryFactory
	rdb        *redis.Client
}

func NewJobService(uowFactory unitofwork.RepositoryFactory, rdb *redis.Client) IJobService {
	return &jobService{
		uowFactory: uowFactory,
		rdb:        rdb,
	}
}

func (s *jobService) GetStatus(ctx context.Context, userId, jobId uuid.UUID) (*dto.JobStatusResponse, error) {
	// User id in the key keeps a cache hit from leaking another user's job.
	cacheKey := "job_status:" + userId.String() + ":" + jobId.String()

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp dto.JobStatusResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return &resp, nil
			}
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	job, err := uow.BackgroundJobRepository().FindOne(ctx,
		specification.ByID{ID: jobId},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, serverutils.NewNotFoundError("job not found")
	}

	resp := &dto.JobStatusResponse{
		Id:        job.Id,
		JobType:   job.JobType,
		Status:    job.Status,
		Result:    job.Result,
		LastError: job.LastError,
		CreatedAt: job.CreatedAt,
	}

	if s.rdb != nil && job.Terminal() {
		if raw, err := json.Marshal(resp); err == nil {
			s.rdb.Set(ctx, cacheKey, raw, jobCacheTTL)
		}
	}

	return resp, nil
}
