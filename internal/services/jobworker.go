package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/demandcast/forecast-backend/internal/data/repos/cache"
	"github.com/demandcast/forecast-backend/internal/data/repos/jobs"
	"github.com/demandcast/forecast-backend/internal/domain"
	"github.com/demandcast/forecast-backend/internal/platform/dbctx"
	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

// JobWorker drains the async job queue: it claims the oldest PENDING job,
// computes the requested delta fill and persists the rows into the live
// cache. Multiple workers can run against the same queue; the claim query
// skips locked rows.
type JobWorker struct {
	jobRepo   jobs.AsyncJobRepo
	liveRepo  cache.LiveForecastRepo
	deltaFill DeltaFillService
	interval  time.Duration
	log       *logger.Logger
}

func NewJobWorker(
	jobRepo jobs.AsyncJobRepo,
	liveRepo cache.LiveForecastRepo,
	deltaFill DeltaFillService,
	interval time.Duration,
	baseLog *logger.Logger,
) *JobWorker {
	return &JobWorker{
		jobRepo:   jobRepo,
		liveRepo:  liveRepo,
		deltaFill: deltaFill,
		interval:  interval,
		log:       baseLog.With("service", "JobWorker"),
	}
}

// Start polls the queue until ctx is cancelled. Blocking; run in a goroutine.
func (w *JobWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("job worker started", "poll_interval", w.interval)
	for {
		select {
		case <-ctx.Done():
			w.log.Info("job worker stopped")
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// drain claims and runs jobs until the queue is empty.
func (w *JobWorker) drain(ctx context.Context) {
	for {
		job, err := w.jobRepo.ClaimNextPending(dbctx.New(ctx))
		if err != nil {
			w.log.Error("claim failed", "error", err)
			return
		}
		if job == nil {
			return
		}
		w.runJob(ctx, job)
	}
}

func (w *JobWorker) runJob(ctx context.Context, job *domain.AsyncForecastJob) {
	var params domain.DeltaFillParams
	if err := json.Unmarshal(job.RequestParams, &params); err != nil {
		w.fail(ctx, job, "bad request params: "+err.Error())
		return
	}

	rows, err := w.deltaFill.Fill(ctx, job.CategoryID, params.Count, params.Granularity)
	if err != nil {
		w.fail(ctx, job, err.Error())
		return
	}
	if err := w.liveRepo.BulkInsert(dbctx.New(ctx), rows); err != nil {
		w.fail(ctx, job, "persist delta: "+err.Error())
		return
	}

	if err := w.jobRepo.MarkStatus(dbctx.New(ctx), job.JobID, domain.JobStatusCompleted, ""); err != nil {
		w.log.Error("failed to mark job completed", "job_id", job.JobID, "error", err)
		return
	}
	w.log.Info("job completed",
		"job_id", job.JobID, "category_id", job.CategoryID, "rows", len(rows))
}

func (w *JobWorker) fail(ctx context.Context, job *domain.AsyncForecastJob, reason string) {
	w.log.Error("job failed", "job_id", job.JobID, "reason", reason)
	if err := w.jobRepo.MarkStatus(dbctx.New(ctx), job.JobID, domain.JobStatusFailed, reason); err != nil {
		w.log.Error("failed to mark job failed", "job_id", job.JobID, "error", err)
	}
}
