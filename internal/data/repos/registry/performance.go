package registry

import (
	"gorm.io/gorm"

	"github.com/demandcast/forecast-backend/internal/domain"
	"github.com/demandcast/forecast-backend/internal/platform/dbctx"
	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

type PerformanceRepo interface {
	Insert(dbc dbctx.Context, rows []*domain.ForecastPerformance) error
	ListByVersion(dbc dbctx.Context, versionID int64) ([]*domain.ForecastPerformance, error)
}

type performanceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPerformanceRepo(db *gorm.DB, baseLog *logger.Logger) PerformanceRepo {
	return &performanceRepo{
		db:  db,
		log: baseLog.With("repo", "PerformanceRepo"),
	}
}

func (r *performanceRepo) Insert(dbc dbctx.Context, rows []*domain.ForecastPerformance) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).Create(&rows).Error
}

func (r *performanceRepo) ListByVersion(dbc dbctx.Context, versionID int64) ([]*domain.ForecastPerformance, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*domain.ForecastPerformance
	err := transaction.WithContext(dbc.Ctx).
		Where("model_version_id = ?", versionID).
		Order("evaluation_period_end DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
