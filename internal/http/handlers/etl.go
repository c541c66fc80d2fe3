package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/demandcast/forecast-backend/internal/http/response"
	"github.com/demandcast/forecast-backend/internal/platform/logger"
	"github.com/demandcast/forecast-backend/internal/services"
)

type ETLHandler struct {
	etl     services.ETLService
	dropDir string
	log     *logger.Logger
}

func NewETLHandler(etl services.ETLService, dropDir string, log *logger.Logger) *ETLHandler {
	return &ETLHandler{
		etl:     etl,
		dropDir: dropDir,
		log:     log.With("handler", "ETLHandler"),
	}
}

// POST /api/v1/etl/run
func (h *ETLHandler) RunIngestion(c *gin.Context) {
	go func() {
		result, err := h.etl.RunBatch(context.Background(), h.dropDir)
		if err != nil {
			h.log.Error("ingestion batch failed", "error", err)
			return
		}
		h.log.Info("ingestion batch finished",
			"processed", len(result.Processed),
			"skipped", len(result.SkippedAsDone),
			"failed", len(result.Failed))
	}()
	response.RespondAccepted(c, gin.H{"message": "ingestion started", "directory": h.dropDir})
}

// GET /api/v1/etl/jobs?limit=50
func (h *ETLHandler) ListJobs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	jobs, err := h.etl.ListLedger(c.Request.Context(), limit)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"jobs": jobs})
}
