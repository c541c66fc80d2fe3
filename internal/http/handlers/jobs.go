package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/demandcast/forecast-backend/internal/http/response"
	"github.com/demandcast/forecast-backend/internal/services"
)

type JobHandler struct {
	jobs services.JobService
}

func NewJobHandler(jobs services.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// GET /api/v1/jobs?limit=50
func (h *JobHandler) ListJobs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	jobs, err := h.jobs.ListRecent(c.Request.Context(), limit)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"jobs": jobs})
}

// GET /api/v1/jobs/:job_id
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}
	job, err := h.jobs.Get(c.Request.Context(), jobID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if job == nil {
		response.RespondError(c, http.StatusNotFound, "job_not_found",
			fmt.Errorf("no job with id %s", jobID))
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}

// POST /api/v1/jobs/:job_id/cancel
//
// Only PENDING jobs cancel; anything further along returns 409.
func (h *JobHandler) CancelJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}

	job, err := h.jobs.Get(c.Request.Context(), jobID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if job == nil {
		response.RespondError(c, http.StatusNotFound, "job_not_found",
			fmt.Errorf("no job with id %s", jobID))
		return
	}

	ok, err := h.jobs.Cancel(c.Request.Context(), jobID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if !ok {
		response.RespondError(c, http.StatusConflict, "job_not_cancellable",
			fmt.Errorf("job %s is %s", jobID, job.Status))
		return
	}
	response.RespondOK(c, gin.H{"job_id": jobID, "status": "CANCELLED"})
}
