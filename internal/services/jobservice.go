package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/demandcast/forecast-backend/internal/data/repos/jobs"
	"github.com/demandcast/forecast-backend/internal/domain"
	"github.com/demandcast/forecast-backend/internal/platform/dbctx"
	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

// JobService manages async forecast backfill jobs. A cache miss on the read
// path enqueues one; the background worker drains the queue.
type JobService interface {
	Enqueue(ctx context.Context, categoryID string, granularity string, count int) (*domain.AsyncForecastJob, error)
	Get(ctx context.Context, jobID uuid.UUID) (*domain.AsyncForecastJob, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.AsyncForecastJob, error)
	// Cancel cancels a job that is still PENDING. Returns false when the
	// job already started or finished.
	Cancel(ctx context.Context, jobID uuid.UUID) (bool, error)
}

type jobService struct {
	jobRepo jobs.AsyncJobRepo
	log     *logger.Logger
}

func NewJobService(jobRepo jobs.AsyncJobRepo, baseLog *logger.Logger) JobService {
	return &jobService{
		jobRepo: jobRepo,
		log:     baseLog.With("service", "JobService"),
	}
}

func (s *jobService) Enqueue(ctx context.Context, categoryID string, granularity string, count int) (*domain.AsyncForecastJob, error) {
	params, err := json.Marshal(domain.DeltaFillParams{Granularity: granularity, Count: count})
	if err != nil {
		return nil, fmt.Errorf("encode job params: %w", err)
	}

	now := time.Now().UTC()
	job := &domain.AsyncForecastJob{
		JobID:         uuid.New(),
		CategoryID:    categoryID,
		RequestParams: datatypes.JSON(params),
		Status:        domain.JobStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.jobRepo.Create(dbctx.New(ctx), job); err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	s.log.Info("enqueued backfill job",
		"job_id", job.JobID, "category_id", categoryID,
		"granularity", granularity, "count", count)
	return job, nil
}

func (s *jobService) Get(ctx context.Context, jobID uuid.UUID) (*domain.AsyncForecastJob, error) {
	return s.jobRepo.GetByID(dbctx.New(ctx), jobID)
}

func (s *jobService) ListRecent(ctx context.Context, limit int) ([]*domain.AsyncForecastJob, error) {
	return s.jobRepo.ListRecent(dbctx.New(ctx), limit)
}

func (s *jobService) Cancel(ctx context.Context, jobID uuid.UUID) (bool, error) {
	return s.jobRepo.CancelPending(dbctx.New(ctx), jobID)
}
