package catalog

import (
	"gorm.io/gorm"

	"github.com/demandcast/forecast-backend/internal/domain"
	"github.com/demandcast/forecast-backend/internal/platform/dbctx"
	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

type CatalogRepo interface {
	ListCategories(dbc dbctx.Context) ([]*domain.Category, error)
	ListProducts(dbc dbctx.Context, categoryID string) ([]*domain.Product, error)
}

type catalogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCatalogRepo(db *gorm.DB, baseLog *logger.Logger) CatalogRepo {
	return &catalogRepo{
		db:  db,
		log: baseLog.With("repo", "CatalogRepo"),
	}
}

func (r *catalogRepo) ListCategories(dbc dbctx.Context) ([]*domain.Category, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*domain.Category
	if err := transaction.WithContext(dbc.Ctx).Order("category_name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *catalogRepo) ListProducts(dbc dbctx.Context, categoryID string) ([]*domain.Product, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Order("product_name ASC")
	if categoryID != "" {
		q = q.Where("category_id = ?", categoryID)
	}
	var out []*domain.Product
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
