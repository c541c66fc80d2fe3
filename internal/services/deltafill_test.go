package services

import (
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/demandcast/forecast-backend/internal/data/repos/testutil"
	"github.com/demandcast/forecast-backend/internal/domain"
	"github.com/demandcast/forecast-backend/internal/pkg/errs"
	"github.com/demandcast/forecast-backend/internal/platform/dbctx"
)

func TestDeltaFillService_ExtendsFrontier(t *testing.T) {
	e := newEnv(t)
	ctx := ctxb()
	emptyJSON := datatypes.JSON([]byte("{}"))

	model := fitDailyModel(t, utcDay(2024, 1, 10), 30)
	latest, err := e.registrySvc.CommitVersion(ctx, "CAT_01", model,
		time.Now().UTC(), emptyJSON, emptyJSON)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	// Cached frontier ends at 2024-01-10.
	for d := 8; d <= 10; d++ {
		testutil.SeedLiveForecast(t, ctx, e.gdb, latest.ID, "CAT_01",
			utcDay(2024, 1, d), domain.GranularityDaily)
	}

	svc := NewDeltaFillService(e.liveRepo, e.registrySvc, e.promoSvc, e.log)
	rows, err := svc.Fill(ctx, "CAT_01", 5, "daily")
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	for i, row := range rows {
		want := utcDay(2024, 1, 11+i)
		if !row.ForecastDate.Equal(want) {
			t.Fatalf("row %d: expected %s, got %s", i, want, row.ForecastDate)
		}
		if row.ModelVersionID != latest.ID {
			t.Fatalf("row %d: expected version %d, got %d", i, latest.ID, row.ModelVersionID)
		}
		if row.Granularity != domain.GranularityDaily {
			t.Fatalf("row %d: expected daily granularity, got %s", i, row.Granularity)
		}
	}

	// Fill computes but never persists.
	count, err := e.liveRepo.CountByCategory(dbctx.New(ctx), "CAT_01")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected live cache unchanged at 3 rows, got %d", count)
	}
}

func TestDeltaFillService_EmptyCacheAnchorsToday(t *testing.T) {
	e := newEnv(t)
	ctx := ctxb()
	emptyJSON := datatypes.JSON([]byte("{}"))

	model := fitDailyModel(t, utcDay(2024, 1, 10), 30)
	if _, err := e.registrySvc.CommitVersion(ctx, "CAT_01", model,
		time.Now().UTC(), emptyJSON, emptyJSON); err != nil {
		t.Fatalf("commit: %v", err)
	}

	svc := NewDeltaFillService(e.liveRepo, e.registrySvc, e.promoSvc, e.log).(*deltaFillService)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC) }

	rows, err := svc.Fill(ctx, "CAT_01", 3, "daily")
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if !rows[0].ForecastDate.Equal(utcDay(2024, 3, 2)) {
		t.Fatalf("expected first fill date 2024-03-02, got %s", rows[0].ForecastDate)
	}
}

func TestDeltaFillService_Validation(t *testing.T) {
	e := newEnv(t)
	svc := NewDeltaFillService(e.liveRepo, e.registrySvc, e.promoSvc, e.log)

	if _, err := svc.Fill(ctxb(), "CAT_01", 5, "hourly"); !errs.IsValidation(err) {
		t.Fatalf("expected ValidationError for bad granularity, got %v", err)
	}
	if _, err := svc.Fill(ctxb(), "CAT_01", 0, "daily"); !errs.IsValidation(err) {
		t.Fatalf("expected ValidationError for zero count, got %v", err)
	}
}

func TestDeltaFillService_UnknownCategory(t *testing.T) {
	e := newEnv(t)
	svc := NewDeltaFillService(e.liveRepo, e.registrySvc, e.promoSvc, e.log)

	if _, err := svc.Fill(ctxb(), "CAT_NONE", 5, "daily"); !errs.IsModelNotFound(err) {
		t.Fatalf("expected ModelNotFoundError, got %v", err)
	}
}
