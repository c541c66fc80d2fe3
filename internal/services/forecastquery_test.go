package services

import (
	"testing"

	"github.com/demandcast/forecast-backend/internal/data/repos/testutil"
	"github.com/demandcast/forecast-backend/internal/domain"
	"github.com/demandcast/forecast-backend/internal/pkg/errs"
	"github.com/demandcast/forecast-backend/internal/platform/dbctx"
)

func TestForecastQueryService_CacheHit(t *testing.T) {
	e := newEnv(t)
	ctx := ctxb()

	mv := testutil.SeedModelVersion(t, ctx, e.gdb, "CAT_01", "20240101000000", true)
	for d := 1; d <= 7; d++ {
		testutil.SeedLiveForecast(t, ctx, e.gdb, mv.ID, "CAT_01",
			utcDay(2024, 1, d), domain.GranularityDaily)
	}

	svc := NewForecastQueryService(e.liveRepo, e.histRepo, nil, e.log)

	resp, hit, err := svc.GetCached(ctx, "CAT_01", 7, "daily")
	if err != nil {
		t.Fatalf("get cached: %v", err)
	}
	if !hit {
		t.Fatalf("expected a full cache hit")
	}
	if len(resp.Forecasts) != 7 {
		t.Fatalf("expected 7 points, got %d", len(resp.Forecasts))
	}
	if !resp.Forecasts[0].ForecastDate.Equal(utcDay(2024, 1, 1)) {
		t.Fatalf("expected ascending serve order, got first %s", resp.Forecasts[0].ForecastDate)
	}
}

func TestForecastQueryService_ShortCacheIsMiss(t *testing.T) {
	e := newEnv(t)
	ctx := ctxb()

	mv := testutil.SeedModelVersion(t, ctx, e.gdb, "CAT_01", "20240101000000", true)
	for d := 1; d <= 3; d++ {
		testutil.SeedLiveForecast(t, ctx, e.gdb, mv.ID, "CAT_01",
			utcDay(2024, 1, d), domain.GranularityDaily)
	}

	svc := NewForecastQueryService(e.liveRepo, e.histRepo, nil, e.log)

	resp, hit, err := svc.GetCached(ctx, "CAT_01", 10, "daily")
	if err != nil {
		t.Fatalf("get cached: %v", err)
	}
	if hit || resp != nil {
		t.Fatalf("expected a miss when cache is short, got hit=%v resp=%+v", hit, resp)
	}
}

func TestForecastQueryService_BadPeriod(t *testing.T) {
	e := newEnv(t)
	svc := NewForecastQueryService(e.liveRepo, e.histRepo, nil, e.log)

	if _, _, err := svc.GetCached(ctxb(), "CAT_01", 7, "weekly"); !errs.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestForecastQueryService_HistoryGroupsByVersion(t *testing.T) {
	e := newEnv(t)
	ctx := ctxb()

	v1 := testutil.SeedModelVersion(t, ctx, e.gdb, "CAT_01", "20240101000000", false)
	v2 := testutil.SeedModelVersion(t, ctx, e.gdb, "CAT_01", "20240201000000", true)
	for d := 1; d <= 2; d++ {
		testutil.SeedLiveForecast(t, ctx, e.gdb, v1.ID, "CAT_01",
			utcDay(2024, 1, d), domain.GranularityDaily)
	}
	testutil.SeedLiveForecast(t, ctx, e.gdb, v2.ID, "CAT_01",
		utcDay(2024, 1, 3), domain.GranularityDaily)
	if _, err := e.liveRepo.ArchiveAndClear(dbctx.New(ctx)); err != nil {
		t.Fatalf("archive: %v", err)
	}

	svc := NewForecastQueryService(e.liveRepo, e.histRepo, nil, e.log)

	history, err := svc.History(ctx, "CAT_01", utcDay(2024, 1, 1), utcDay(2024, 1, 31))
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 version groups, got %d", len(history))
	}
	if history[0].ModelVersionID != v1.ID || len(history[0].Forecasts) != 2 {
		t.Fatalf("unexpected first group: %+v", history[0])
	}
	if history[1].ModelVersionID != v2.ID || len(history[1].Forecasts) != 1 {
		t.Fatalf("unexpected second group: %+v", history[1])
	}
}
