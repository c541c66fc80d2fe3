package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/demandcast/forecast-backend/internal/http/response"
	"github.com/demandcast/forecast-backend/internal/platform/logger"
	"github.com/demandcast/forecast-backend/internal/services"
)

// MLOpsHandler exposes the operational surface: triggering pipeline runs and
// inspecting the model registry. Long-running work is detached from the
// request; callers get a 202 and watch the logs or registry for progress.
type MLOpsHandler struct {
	pipeline services.PipelineService
	precalc  services.PrecalcService
	registry services.RegistryService
	log      *logger.Logger
}

func NewMLOpsHandler(
	pipeline services.PipelineService,
	precalc services.PrecalcService,
	registrySvc services.RegistryService,
	log *logger.Logger,
) *MLOpsHandler {
	return &MLOpsHandler{
		pipeline: pipeline,
		precalc:  precalc,
		registry: registrySvc,
		log:      log.With("handler", "MLOpsHandler"),
	}
}

// POST /api/v1/mlops/training/run
func (h *MLOpsHandler) RunTraining(c *gin.Context) {
	go func() {
		result, err := h.pipeline.Run(context.Background())
		if err != nil {
			h.log.Error("pipeline run failed", "error", err)
			return
		}
		h.log.Info("pipeline run finished", "status", result.Status)
	}()
	response.RespondAccepted(c, gin.H{"message": "training pipeline started"})
}

// POST /api/v1/mlops/precalculation/run
func (h *MLOpsHandler) RunPrecalculation(c *gin.Context) {
	go func() {
		result, err := h.precalc.Refresh(context.Background())
		if err != nil {
			h.log.Error("refresh failed", "error", err)
			return
		}
		h.log.Info("refresh finished", "status", result.Status)
	}()
	response.RespondAccepted(c, gin.H{"message": "cache refresh started"})
}

// GET /api/v1/mlops/observability/versions/:category_id
func (h *MLOpsHandler) ListVersions(c *gin.Context) {
	categoryID := c.Param("category_id")
	versions, err := h.registry.ListVersions(c.Request.Context(), categoryID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if len(versions) == 0 {
		response.RespondError(c, http.StatusNotFound, "model_not_found",
			fmt.Errorf("no model versions for category %q", categoryID))
		return
	}
	response.RespondOK(c, gin.H{"category_id": categoryID, "versions": versions})
}

// GET /api/v1/mlops/observability/performance/:version_id
func (h *MLOpsHandler) GetPerformance(c *gin.Context) {
	versionID, err := strconv.ParseInt(c.Param("version_id"), 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_version_id", err)
		return
	}
	rows, err := h.registry.PerformanceForVersion(c.Request.Context(), versionID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"model_version_id": versionID, "performance": rows})
}
