package services

import (
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/demandcast/forecast-backend/internal/data/repos/testutil"
	"github.com/demandcast/forecast-backend/internal/domain"
	"github.com/demandcast/forecast-backend/internal/platform/dbctx"
)

func TestJobWorker_CompletesBackfill(t *testing.T) {
	e := newEnv(t)
	ctx := ctxb()
	emptyJSON := datatypes.JSON([]byte("{}"))

	model := fitDailyModel(t, utcDay(2024, 1, 10), 30)
	latest, err := e.registrySvc.CommitVersion(ctx, "CAT_01", model,
		time.Now().UTC(), emptyJSON, emptyJSON)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	testutil.SeedLiveForecast(t, ctx, e.gdb, latest.ID, "CAT_01",
		utcDay(2024, 1, 10), domain.GranularityDaily)

	jobSvc := NewJobService(e.jobRepo, e.log)
	job, err := jobSvc.Enqueue(ctx, "CAT_01", "daily", 5)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	deltaSvc := NewDeltaFillService(e.liveRepo, e.registrySvc, e.promoSvc, e.log)
	worker := NewJobWorker(e.jobRepo, e.liveRepo, deltaSvc, time.Second, e.log)
	worker.drain(ctx)

	done, err := jobSvc.Get(ctx, job.JobID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if done.Status != domain.JobStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s (%s)", done.Status, done.ErrorMessage)
	}

	// The worker persisted the delta: frontier moved from 01-10 to 01-15.
	count, err := e.liveRepo.CountByCategory(dbctx.New(ctx), "CAT_01")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 6 {
		t.Fatalf("expected 6 live rows after backfill, got %d", count)
	}
	mark, err := e.liveRepo.MaxForecastDate(dbctx.New(ctx), "CAT_01", domain.GranularityDaily)
	if err != nil {
		t.Fatalf("max date: %v", err)
	}
	if !mark.ForecastDate.Equal(utcDay(2024, 1, 15)) {
		t.Fatalf("expected frontier 2024-01-15, got %s", mark.ForecastDate)
	}
}

func TestJobWorker_MarksFailedOnMissingModel(t *testing.T) {
	e := newEnv(t)
	ctx := ctxb()

	jobSvc := NewJobService(e.jobRepo, e.log)
	job, err := jobSvc.Enqueue(ctx, "CAT_NONE", "daily", 5)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	deltaSvc := NewDeltaFillService(e.liveRepo, e.registrySvc, e.promoSvc, e.log)
	worker := NewJobWorker(e.jobRepo, e.liveRepo, deltaSvc, time.Second, e.log)
	worker.drain(ctx)

	done, err := jobSvc.Get(ctx, job.JobID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if done.Status != domain.JobStatusFailed {
		t.Fatalf("expected FAILED, got %s", done.Status)
	}
	if done.ErrorMessage == "" {
		t.Fatalf("expected an error message on the failed job")
	}
}

func TestJobService_CancelSemantics(t *testing.T) {
	e := newEnv(t)
	ctx := ctxb()

	jobSvc := NewJobService(e.jobRepo, e.log)
	job, err := jobSvc.Enqueue(ctx, "CAT_01", "daily", 3)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	ok, err := jobSvc.Cancel(ctx, job.JobID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if !ok {
		t.Fatalf("expected pending job to cancel")
	}

	// A cancelled job stays cancelled.
	ok, err = jobSvc.Cancel(ctx, job.JobID)
	if err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if ok {
		t.Fatalf("expected second cancel to report false")
	}
}
