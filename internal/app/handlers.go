package app

import (
	"gorm.io/gorm"

	"github.com/demandcast/forecast-backend/internal/http/handlers"
	"github.com/demandcast/forecast-backend/internal/http/middleware"
	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

type Handlers struct {
	Forecast *handlers.ForecastHandler
	Job      *handlers.JobHandler
	MLOps    *handlers.MLOpsHandler
	ETL      *handlers.ETLHandler
	Catalog  *handlers.CatalogHandler
	Health   *handlers.HealthHandler
}

func wireHandlers(gdb *gorm.DB, cfg Config, log *logger.Logger, repos Repos, svcs Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Forecast: handlers.NewForecastHandler(svcs.ForecastQuery, svcs.Jobs),
		Job:      handlers.NewJobHandler(svcs.Jobs),
		MLOps:    handlers.NewMLOpsHandler(svcs.Pipeline, svcs.Precalc, svcs.Registry, log),
		ETL:      handlers.NewETLHandler(svcs.ETL, cfg.SalesDropDir, log),
		Catalog:  handlers.NewCatalogHandler(repos.Catalog, repos.Promotion),
		Health:   handlers.NewHealthHandler(gdb),
	}
}

func wireMiddleware(cfg Config, log *logger.Logger) *middleware.AuthMiddleware {
	return middleware.NewAuthMiddleware(cfg.JWTSecret, log)
}
