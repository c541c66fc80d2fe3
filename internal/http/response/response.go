package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/demandcast/forecast-backend/internal/pkg/errs"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondAccepted(c *gin.Context, payload any) {
	c.JSON(http.StatusAccepted, payload)
}

// RespondDomainError maps the error taxonomy onto HTTP statuses: unknown
// category is a 404, bad input a 400, everything else a 500.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case errs.IsModelNotFound(err):
		RespondError(c, http.StatusNotFound, "model_not_found", err)
	case errs.IsValidation(err):
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
	case errs.IsModelLoad(err):
		RespondError(c, http.StatusInternalServerError, "model_load_failed", err)
	case errs.IsPersistence(err):
		RespondError(c, http.StatusInternalServerError, "persistence_failed", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
