package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/demandcast/forecast-backend/internal/http/handlers"
	"github.com/demandcast/forecast-backend/internal/http/middleware"
)

type RouterConfig struct {
	ForecastHandler *handlers.ForecastHandler
	JobHandler      *handlers.JobHandler
	MLOpsHandler    *handlers.MLOpsHandler
	ETLHandler      *handlers.ETLHandler
	CatalogHandler  *handlers.CatalogHandler
	HealthHandler   *handlers.HealthHandler
	AuthMiddleware  *middleware.AuthMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", cfg.HealthHandler.Healthcheck)

	api := router.Group("/api/v1")
	{
		// Serving path
		api.GET("/forecasts/:category_id", cfg.ForecastHandler.GetForecast)
		api.GET("/forecasts/:category_id/history", cfg.ForecastHandler.GetHistory)

		// Job queue
		api.GET("/jobs", cfg.JobHandler.ListJobs)
		api.GET("/jobs/:job_id", cfg.JobHandler.GetJob)
		api.POST("/jobs/:job_id/cancel", cfg.JobHandler.CancelJob)

		// Catalog
		api.GET("/catalog/categories", cfg.CatalogHandler.ListCategories)
		api.GET("/catalog/products", cfg.CatalogHandler.ListProducts)
		api.GET("/catalog/promotions", cfg.CatalogHandler.ListPromotions)

		// Registry observability
		api.GET("/mlops/observability/versions/:category_id", cfg.MLOpsHandler.ListVersions)
		api.GET("/mlops/observability/performance/:version_id", cfg.MLOpsHandler.GetPerformance)

		// Operational triggers require the shared admin token.
		protected := api.Group("/")
		protected.Use(cfg.AuthMiddleware.RequireAdmin())
		protected.POST("/mlops/training/run", cfg.MLOpsHandler.RunTraining)
		protected.POST("/mlops/precalculation/run", cfg.MLOpsHandler.RunPrecalculation)
		protected.POST("/etl/run", cfg.ETLHandler.RunIngestion)
		protected.GET("/etl/jobs", cfg.ETLHandler.ListJobs)
	}

	return router
}
