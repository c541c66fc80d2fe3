package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	JobStatusPending   = "PENDING"
	JobStatusRunning   = "RUNNING"
	JobStatusCompleted = "COMPLETED"
	JobStatusFailed    = "FAILED"
	JobStatusCancelled = "CANCELLED"
)

// AsyncForecastJob is a queued cache-backfill request, created when a
// forecast read outruns the cached frontier.
type AsyncForecastJob struct {
	JobID         uuid.UUID      `gorm:"type:uuid;column:job_id;primaryKey" json:"job_id"`
	CategoryID    string         `gorm:"column:category_id;not null;index" json:"category_id"`
	RequestParams datatypes.JSON `gorm:"column:request_params" json:"request_params"`
	Status        string         `gorm:"column:status;not null;index" json:"status"`
	ErrorMessage  string         `gorm:"column:error_message" json:"error_message,omitempty"`
	CreatedAt     time.Time      `gorm:"column:created_at;not null;index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (AsyncForecastJob) TableName() string {
	return "async_forecast_jobs"
}

// DeltaFillParams is the payload stored in RequestParams.
type DeltaFillParams struct {
	Granularity string `json:"granularity"`
	Count       int    `json:"count"`
}
