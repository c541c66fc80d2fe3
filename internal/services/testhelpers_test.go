package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/demandcast/forecast-backend/internal/artifact"
	"github.com/demandcast/forecast-backend/internal/data/repos/cache"
	"github.com/demandcast/forecast-backend/internal/data/repos/catalog"
	"github.com/demandcast/forecast-backend/internal/data/repos/etl"
	"github.com/demandcast/forecast-backend/internal/data/repos/jobs"
	"github.com/demandcast/forecast-backend/internal/data/repos/registry"
	"github.com/demandcast/forecast-backend/internal/data/repos/sales"
	"github.com/demandcast/forecast-backend/internal/data/repos/testutil"
	"github.com/demandcast/forecast-backend/internal/forecast"
	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

// env bundles a fresh service graph over the shared test database. Tables
// are wiped on construction since service paths run outside a rollback tx.
type env struct {
	gdb         *gorm.DB
	log         *logger.Logger
	store       artifact.Store
	versionRepo registry.ModelVersionRepo
	perfRepo    registry.PerformanceRepo
	liveRepo    cache.LiveForecastRepo
	histRepo    cache.HistoricalForecastRepo
	promoRepo   catalog.PromotionRepo
	salesRepo   sales.HourlySalesRepo
	ledger      etl.JobStatusRepo
	jobRepo     jobs.AsyncJobRepo

	registrySvc RegistryService
	promoSvc    PromotionEventService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gdb := testutil.DB(t)
	resetAll(t, gdb)
	log := testutil.Logger(t)

	store, err := artifact.NewFSStore(t.TempDir(), log)
	if err != nil {
		t.Fatalf("fs store: %v", err)
	}

	e := &env{
		gdb:         gdb,
		log:         log,
		store:       store,
		versionRepo: registry.NewModelVersionRepo(gdb, log),
		perfRepo:    registry.NewPerformanceRepo(gdb, log),
		liveRepo:    cache.NewLiveForecastRepo(gdb, log),
		histRepo:    cache.NewHistoricalForecastRepo(gdb, log),
		promoRepo:   catalog.NewPromotionRepo(gdb, log),
		salesRepo:   sales.NewHourlySalesRepo(gdb, log),
		ledger:      etl.NewJobStatusRepo(gdb, log),
		jobRepo:     jobs.NewAsyncJobRepo(gdb, log),
	}
	e.registrySvc = NewRegistryService(gdb, e.versionRepo, e.perfRepo, store, log)
	e.promoSvc = NewPromotionEventService(e.promoRepo, log)
	return e
}

func resetAll(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	for _, table := range []string{
		"live_forecasts", "historical_forecasts", "forecast_performance",
		"model_versions", "hourly_sales_by_category", "etl_job_status",
		"async_forecast_jobs", "promotions", "products", "categories",
	} {
		if err := gdb.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("reset %s: %v", table, err)
		}
	}
}

func utcDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fitDailyModel fits the engine on days points of synthetic history ending at
// end, so FutureRange starts one day past end.
func fitDailyModel(t *testing.T, end time.Time, days int) forecast.Model {
	t.Helper()
	series := make(forecast.Series, 0, days)
	for i := days - 1; i >= 0; i-- {
		ds := end.AddDate(0, 0, -i)
		series = append(series, forecast.Point{DS: ds, Y: 100 + float64(days-i)})
	}
	model, err := forecast.NewEngine().Fit(series, nil)
	if err != nil {
		t.Fatalf("fit model: %v", err)
	}
	return model
}

func ctxb() context.Context { return context.Background() }
