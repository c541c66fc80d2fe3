package cache

import (
	"time"

	"gorm.io/gorm"

	"github.com/demandcast/forecast-backend/internal/domain"
	"github.com/demandcast/forecast-backend/internal/platform/dbctx"
	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

type HistoricalForecastRepo interface {
	ListByCategoryRange(dbc dbctx.Context, categoryID string, start, end time.Time) ([]*domain.HistoricalForecast, error)
	Count(dbc dbctx.Context) (int64, error)
}

type historicalForecastRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHistoricalForecastRepo(db *gorm.DB, baseLog *logger.Logger) HistoricalForecastRepo {
	return &historicalForecastRepo{
		db:  db,
		log: baseLog.With("repo", "HistoricalForecastRepo"),
	}
}

func (r *historicalForecastRepo) ListByCategoryRange(dbc dbctx.Context, categoryID string, start, end time.Time) ([]*domain.HistoricalForecast, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*domain.HistoricalForecast
	err := transaction.WithContext(dbc.Ctx).
		Where("category_id = ? AND forecast_date BETWEEN ? AND ?", categoryID, start, end).
		Order("model_version_id ASC, forecast_date ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *historicalForecastRepo) Count(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&domain.HistoricalForecast{}).
		Count(&count).Error
	return count, err
}
