package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/demandcast/forecast-backend/internal/http/response"
	"github.com/demandcast/forecast-backend/internal/pkg/errs"
	"github.com/demandcast/forecast-backend/internal/services"
)

type ForecastHandler struct {
	query services.ForecastQueryService
	jobs  services.JobService
}

func NewForecastHandler(query services.ForecastQueryService, jobs services.JobService) *ForecastHandler {
	return &ForecastHandler{query: query, jobs: jobs}
}

// GET /api/v1/forecasts/:category_id?forecast_horizon=7&period=daily
//
// A full cache hit returns 200 with the forecast. A miss enqueues a backfill
// job and returns 202 with its id; clients poll the jobs endpoint.
func (h *ForecastHandler) GetForecast(c *gin.Context) {
	categoryID := c.Param("category_id")
	period := c.DefaultQuery("period", "daily")

	horizon, err := strconv.Atoi(c.DefaultQuery("forecast_horizon", "7"))
	if err != nil || horizon <= 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_request",
			&errs.ValidationError{Field: "forecast_horizon", Reason: "must be a positive integer"})
		return
	}

	resp, hit, err := h.query.GetCached(c.Request.Context(), categoryID, horizon, period)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if hit {
		response.RespondOK(c, resp)
		return
	}

	job, err := h.jobs.Enqueue(c.Request.Context(), categoryID, period, horizon)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondAccepted(c, gin.H{
		"message": "forecast is being generated",
		"job_id":  job.JobID,
		"status":  job.Status,
	})
}

// GET /api/v1/forecasts/:category_id/history?start_date=2024-01-01&end_date=2024-03-31
func (h *ForecastHandler) GetHistory(c *gin.Context) {
	categoryID := c.Param("category_id")

	start, err := parseDateQuery(c, "start_date", time.Now().UTC().AddDate(0, -3, 0))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	end, err := parseDateQuery(c, "end_date", time.Now().UTC())
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	history, err := h.query.History(c.Request.Context(), categoryID, start, end)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"category_id": categoryID,
		"history":     history,
	})
}

func parseDateQuery(c *gin.Context, name string, fallback time.Time) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return time.Time{}, &errs.ValidationError{Field: name, Reason: "must be YYYY-MM-DD"}
	}
	return t, nil
}
