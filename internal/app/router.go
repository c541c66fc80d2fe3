package app

import (
	"github.com/gin-gonic/gin"

	"github.com/demandcast/forecast-backend/internal/http/middleware"
	"github.com/demandcast/forecast-backend/internal/server"
)

func wireRouter(h Handlers, auth *middleware.AuthMiddleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		ForecastHandler: h.Forecast,
		JobHandler:      h.Job,
		MLOpsHandler:    h.MLOps,
		ETLHandler:      h.ETL,
		CatalogHandler:  h.Catalog,
		HealthHandler:   h.Health,
		AuthMiddleware:  auth,
	})
}
