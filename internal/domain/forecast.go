package domain

import "time"

// LiveForecast is one row of the serving cache. The table is fully replaced
// on each refresh cycle and extended in place by delta fills.
type LiveForecast struct {
	ID             int64       `gorm:"primaryKey;autoIncrement" json:"-"`
	ModelVersionID int64       `gorm:"column:model_version_id;not null;index" json:"model_version_id"`
	CategoryID     string      `gorm:"column:category_id;not null;index:idx_live_cat_gran" json:"category_id"`
	ForecastDate   time.Time   `gorm:"column:forecast_date;not null" json:"forecast_date"`
	PredictedSales float64     `gorm:"column:predicted_sales;not null" json:"predicted_sales"`
	LowerBound     float64     `gorm:"column:lower_bound;not null" json:"lower_bound"`
	UpperBound     float64     `gorm:"column:upper_bound;not null" json:"upper_bound"`
	Granularity    Granularity `gorm:"column:granularity;not null;index:idx_live_cat_gran" json:"granularity"`
}

func (LiveForecast) TableName() string {
	return "live_forecasts"
}

// HistoricalForecast is the append-only archive of previously live rows.
// Never mutated or deleted by this service.
type HistoricalForecast struct {
	ID             int64       `gorm:"primaryKey;autoIncrement" json:"-"`
	ModelVersionID int64       `gorm:"column:model_version_id;not null;index" json:"model_version_id"`
	CategoryID     string      `gorm:"column:category_id;not null;index" json:"category_id"`
	ForecastDate   time.Time   `gorm:"column:forecast_date;not null" json:"forecast_date"`
	PredictedSales float64     `gorm:"column:predicted_sales;not null" json:"predicted_sales"`
	LowerBound     float64     `gorm:"column:lower_bound;not null" json:"lower_bound"`
	UpperBound     float64     `gorm:"column:upper_bound;not null" json:"upper_bound"`
	Granularity    Granularity `gorm:"column:granularity;not null" json:"granularity"`
}

func (HistoricalForecast) TableName() string {
	return "historical_forecasts"
}
