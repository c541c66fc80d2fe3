package app

import (
	"gorm.io/gorm"

	"github.com/demandcast/forecast-backend/internal/data/repos/cache"
	"github.com/demandcast/forecast-backend/internal/data/repos/catalog"
	"github.com/demandcast/forecast-backend/internal/data/repos/etl"
	"github.com/demandcast/forecast-backend/internal/data/repos/jobs"
	"github.com/demandcast/forecast-backend/internal/data/repos/registry"
	"github.com/demandcast/forecast-backend/internal/data/repos/sales"
	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

type Repos struct {
	ModelVersion       registry.ModelVersionRepo
	Performance        registry.PerformanceRepo
	LiveForecast       cache.LiveForecastRepo
	HistoricalForecast cache.HistoricalForecastRepo
	Catalog            catalog.CatalogRepo
	Promotion          catalog.PromotionRepo
	HourlySales        sales.HourlySalesRepo
	ETLJobStatus       etl.JobStatusRepo
	AsyncJob           jobs.AsyncJobRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		ModelVersion:       registry.NewModelVersionRepo(db, log),
		Performance:        registry.NewPerformanceRepo(db, log),
		LiveForecast:       cache.NewLiveForecastRepo(db, log),
		HistoricalForecast: cache.NewHistoricalForecastRepo(db, log),
		Catalog:            catalog.NewCatalogRepo(db, log),
		Promotion:          catalog.NewPromotionRepo(db, log),
		HourlySales:        sales.NewHourlySalesRepo(db, log),
		ETLJobStatus:       etl.NewJobStatusRepo(db, log),
		AsyncJob:           jobs.NewAsyncJobRepo(db, log),
	}
}
