package domain

import (
	"time"

	"gorm.io/datatypes"
)

// ModelVersion is one entry in the per-category model registry. Rows are
// never deleted; at most one row per category carries IsLatest.
type ModelVersion struct {
	ID                 int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID         string         `gorm:"column:category_id;not null;index" json:"category_id"`
	Version            string         `gorm:"column:version;not null" json:"version"`
	ModelPath          string         `gorm:"column:model_path;not null" json:"model_path"`
	TrainingDateUTC    time.Time      `gorm:"column:training_date_utc;not null" json:"training_date_utc"`
	IsLatest           bool           `gorm:"column:is_latest;not null;default:false;index" json:"is_latest"`
	Metadata           datatypes.JSON `gorm:"column:metadata" json:"metadata"`
	BacktestingMetrics datatypes.JSON `gorm:"column:backtesting_metrics" json:"backtesting_metrics"`
}

func (ModelVersion) TableName() string {
	return "model_versions"
}

// ForecastPerformance is one backtest window metric row for a model version.
type ForecastPerformance struct {
	ID                    int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ModelVersionID        int64     `gorm:"column:model_version_id;not null;index" json:"model_version_id"`
	EvaluationPeriodStart time.Time `gorm:"column:evaluation_period_start;not null" json:"evaluation_period_start"`
	EvaluationPeriodEnd   time.Time `gorm:"column:evaluation_period_end;not null" json:"evaluation_period_end"`
	MetricName            string    `gorm:"column:metric_name;not null" json:"metric_name"`
	MetricValue           float64   `gorm:"column:metric_value;not null" json:"metric_value"`
}

func (ForecastPerformance) TableName() string {
	return "forecast_performance"
}
