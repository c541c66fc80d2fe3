package sales

import (
	"gorm.io/gorm"

	"github.com/demandcast/forecast-backend/internal/domain"
	"github.com/demandcast/forecast-backend/internal/platform/dbctx"
	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

// CategoryCount is the per-category sample count used by the training
// orchestrator to apply its minimum-history threshold.
type CategoryCount struct {
	CategoryID string `gorm:"column:category_id"`
	Samples    int64  `gorm:"column:samples"`
}

type HourlySalesRepo interface {
	SeriesByCategory(dbc dbctx.Context, categoryID string) ([]*domain.HourlySales, error)
	CategoryCounts(dbc dbctx.Context) ([]CategoryCount, error)
	InsertBatch(dbc dbctx.Context, rows []*domain.HourlySales) error
}

type hourlySalesRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHourlySalesRepo(db *gorm.DB, baseLog *logger.Logger) HourlySalesRepo {
	return &hourlySalesRepo{
		db:  db,
		log: baseLog.With("repo", "HourlySalesRepo"),
	}
}

func (r *hourlySalesRepo) SeriesByCategory(dbc dbctx.Context, categoryID string) ([]*domain.HourlySales, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*domain.HourlySales
	err := transaction.WithContext(dbc.Ctx).
		Where("category_id = ?", categoryID).
		Order("time ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *hourlySalesRepo) CategoryCounts(dbc dbctx.Context) ([]CategoryCount, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []CategoryCount
	err := transaction.WithContext(dbc.Ctx).
		Model(&domain.HourlySales{}).
		Select("category_id, COUNT(*) AS samples").
		Group("category_id").
		Order("category_id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *hourlySalesRepo) InsertBatch(dbc dbctx.Context, rows []*domain.HourlySales) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).CreateInBatches(&rows, 500).Error
}
