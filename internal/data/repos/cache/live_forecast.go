package cache

import (
	"errors"

	"gorm.io/gorm"

	"github.com/demandcast/forecast-backend/internal/domain"
	"github.com/demandcast/forecast-backend/internal/platform/dbctx"
	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

type LiveForecastRepo interface {
	// ArchiveAndClear copies every live row into the historical table and
	// deletes the live table's contents, atomically. Returns the number of
	// rows archived.
	ArchiveAndClear(dbc dbctx.Context) (int64, error)
	BulkInsert(dbc dbctx.Context, rows []*domain.LiveForecast) error
	// MaxForecastDate returns the cache's high-water mark for a
	// (category, granularity) pair, or nil when nothing is cached.
	MaxForecastDate(dbc dbctx.Context, categoryID string, g domain.Granularity) (*domain.LiveForecast, error)
	ListForServing(dbc dbctx.Context, categoryID string, g domain.Granularity, limit int) ([]*domain.LiveForecast, error)
	CountByCategory(dbc dbctx.Context, categoryID string) (int64, error)
	Count(dbc dbctx.Context) (int64, error)
}

type liveForecastRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLiveForecastRepo(db *gorm.DB, baseLog *logger.Logger) LiveForecastRepo {
	return &liveForecastRepo{
		db:  db,
		log: baseLog.With("repo", "LiveForecastRepo"),
	}
}

const archiveSQL = `
INSERT INTO historical_forecasts
  (model_version_id, category_id, forecast_date, predicted_sales, lower_bound, upper_bound, granularity)
SELECT model_version_id, category_id, forecast_date, predicted_sales, lower_bound, upper_bound, granularity
FROM live_forecasts`

func (r *liveForecastRepo) ArchiveAndClear(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var archived int64
	err := transaction.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(archiveSQL)
		if res.Error != nil {
			return res.Error
		}
		archived = res.RowsAffected
		return tx.Exec(`DELETE FROM live_forecasts`).Error
	})
	if err != nil {
		return 0, err
	}
	return archived, nil
}

func (r *liveForecastRepo) BulkInsert(dbc dbctx.Context, rows []*domain.LiveForecast) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).CreateInBatches(&rows, 500).Error
}

func (r *liveForecastRepo) MaxForecastDate(dbc dbctx.Context, categoryID string, g domain.Granularity) (*domain.LiveForecast, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var row domain.LiveForecast
	err := transaction.WithContext(dbc.Ctx).
		Where("category_id = ? AND granularity = ?", categoryID, g).
		Order("forecast_date DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *liveForecastRepo) ListForServing(dbc dbctx.Context, categoryID string, g domain.Granularity, limit int) ([]*domain.LiveForecast, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*domain.LiveForecast
	q := transaction.WithContext(dbc.Ctx).
		Where("category_id = ? AND granularity = ?", categoryID, g).
		Order("forecast_date ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *liveForecastRepo) CountByCategory(dbc dbctx.Context, categoryID string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&domain.LiveForecast{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

func (r *liveForecastRepo) Count(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&domain.LiveForecast{}).
		Count(&count).Error
	return count, err
}
