package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/demandcast/forecast-backend/internal/http/response"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// GET /healthcheck
func (h *HealthHandler) Healthcheck(c *gin.Context) {
	status := "ok"
	dbStatus := "ok"
	if sqlDB, err := h.db.DB(); err != nil {
		status, dbStatus = "degraded", "unreachable"
	} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		status, dbStatus = "degraded", "unreachable"
	}
	response.RespondOK(c, gin.H{"status": status, "database": dbStatus})
}
