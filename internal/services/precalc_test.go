package services

import (
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/demandcast/forecast-backend/internal/data/repos/testutil"
	"github.com/demandcast/forecast-backend/internal/domain"
	"github.com/demandcast/forecast-backend/internal/platform/dbctx"
)

func TestPrecalcService_RefreshRebuildsCache(t *testing.T) {
	e := newEnv(t)
	ctx := ctxb()
	emptyJSON := datatypes.JSON([]byte("{}"))

	model := fitDailyModel(t, utcDay(2024, 1, 10), 30)
	latest, err := e.registrySvc.CommitVersion(ctx, "CAT_01", model,
		time.Now().UTC(), emptyJSON, emptyJSON)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	// Stale rows from the previous cycle.
	testutil.SeedLiveForecast(t, ctx, e.gdb, latest.ID, "CAT_01",
		utcDay(2024, 1, 9), domain.GranularityDaily)
	testutil.SeedLiveForecast(t, ctx, e.gdb, latest.ID, "CAT_01",
		utcDay(2024, 1, 10), domain.GranularityDaily)

	svc := NewPrecalcService(e.liveRepo, e.versionRepo, e.registrySvc, e.promoSvc,
		nil, Horizons{Daily: 7, Monthly: 3, Yearly: 1}, e.log)

	result, err := svc.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if result.Status != "completed" {
		t.Fatalf("expected completed, got %s (%+v)", result.Status, result)
	}
	if result.ArchivedRows != 2 {
		t.Fatalf("expected 2 archived rows, got %d", result.ArchivedRows)
	}
	if result.InsertedRows != 11 {
		t.Fatalf("expected 7+3+1 inserted rows, got %d", result.InsertedRows)
	}

	histCount, err := e.histRepo.Count(dbctx.New(ctx))
	if err != nil {
		t.Fatalf("count historical: %v", err)
	}
	if histCount != 2 {
		t.Fatalf("expected old rows archived, got %d", histCount)
	}

	daily, err := e.liveRepo.ListForServing(dbctx.New(ctx), "CAT_01", domain.GranularityDaily, 0)
	if err != nil {
		t.Fatalf("list daily: %v", err)
	}
	if len(daily) != 7 {
		t.Fatalf("expected 7 daily rows, got %d", len(daily))
	}
	if !daily[0].ForecastDate.Equal(utcDay(2024, 1, 11)) {
		t.Fatalf("expected regeneration from 2024-01-11, got %s", daily[0].ForecastDate)
	}
	for _, row := range daily {
		if row.ModelVersionID != latest.ID {
			t.Fatalf("expected rows tagged with version %d, got %d", latest.ID, row.ModelVersionID)
		}
	}
}

func TestPrecalcService_MissingArtifactLeavesPartialCache(t *testing.T) {
	e := newEnv(t)
	ctx := ctxb()
	emptyJSON := datatypes.JSON([]byte("{}"))

	model := fitDailyModel(t, utcDay(2024, 1, 10), 30)
	okVersion, err := e.registrySvc.CommitVersion(ctx, "CAT_A", model,
		time.Date(2024, 1, 11, 8, 0, 0, 0, time.UTC), emptyJSON, emptyJSON)
	if err != nil {
		t.Fatalf("commit CAT_A: %v", err)
	}
	brokenVersion, err := e.registrySvc.CommitVersion(ctx, "CAT_B", model,
		time.Date(2024, 1, 11, 9, 0, 0, 0, time.UTC), emptyJSON, emptyJSON)
	if err != nil {
		t.Fatalf("commit CAT_B: %v", err)
	}

	// Simulate a lost blob between commit and refresh.
	if err := e.store.Delete(ctx, brokenVersion.ModelPath); err != nil {
		t.Fatalf("delete artifact: %v", err)
	}

	testutil.SeedLiveForecast(t, ctx, e.gdb, okVersion.ID, "CAT_A",
		utcDay(2024, 1, 10), domain.GranularityDaily)
	testutil.SeedLiveForecast(t, ctx, e.gdb, brokenVersion.ID, "CAT_B",
		utcDay(2024, 1, 10), domain.GranularityDaily)

	svc := NewPrecalcService(e.liveRepo, e.versionRepo, e.registrySvc, e.promoSvc,
		nil, Horizons{Daily: 5}, e.log)

	result, err := svc.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if result.Status != "completed_with_errors" {
		t.Fatalf("expected completed_with_errors, got %s", result.Status)
	}
	if len(result.Failed) != 1 || result.Failed[0].CategoryID != "CAT_B" {
		t.Fatalf("expected CAT_B failure, got %+v", result.Failed)
	}

	// The archive stage is complete even though regeneration was partial.
	histCount, err := e.histRepo.Count(dbctx.New(ctx))
	if err != nil {
		t.Fatalf("count historical: %v", err)
	}
	if histCount != 2 {
		t.Fatalf("expected both stale rows archived, got %d", histCount)
	}

	okCount, err := e.liveRepo.CountByCategory(dbctx.New(ctx), "CAT_A")
	if err != nil {
		t.Fatalf("count CAT_A: %v", err)
	}
	if okCount != 5 {
		t.Fatalf("expected 5 regenerated rows for CAT_A, got %d", okCount)
	}
	brokenCount, err := e.liveRepo.CountByCategory(dbctx.New(ctx), "CAT_B")
	if err != nil {
		t.Fatalf("count CAT_B: %v", err)
	}
	if brokenCount != 0 {
		t.Fatalf("expected no live rows for CAT_B, got %d", brokenCount)
	}
}
