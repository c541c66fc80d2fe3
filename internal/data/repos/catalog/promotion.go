package catalog

import (
	"gorm.io/gorm"

	"github.com/demandcast/forecast-backend/internal/domain"
	"github.com/demandcast/forecast-backend/internal/platform/dbctx"
	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

type PromotionRepo interface {
	// ListForCategory returns promotions targeting the category directly or
	// any product mapped to it.
	ListForCategory(dbc dbctx.Context, categoryID string) ([]*domain.Promotion, error)
	ListAll(dbc dbctx.Context) ([]*domain.Promotion, error)
}

type promotionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPromotionRepo(db *gorm.DB, baseLog *logger.Logger) PromotionRepo {
	return &promotionRepo{
		db:  db,
		log: baseLog.With("repo", "PromotionRepo"),
	}
}

func (r *promotionRepo) ListForCategory(dbc dbctx.Context, categoryID string) ([]*domain.Promotion, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	productIDs := transaction.
		Model(&domain.Product{}).
		Select("product_id").
		Where("category_id = ?", categoryID)

	var out []*domain.Promotion
	err := transaction.WithContext(dbc.Ctx).
		Where(
			"(target_type = ? AND target_id = ?) OR (target_type = ? AND target_id IN (?))",
			domain.PromotionTargetCategory, categoryID,
			domain.PromotionTargetProduct, productIDs,
		).
		Order("start_date ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *promotionRepo) ListAll(dbc dbctx.Context) ([]*domain.Promotion, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*domain.Promotion
	if err := transaction.WithContext(dbc.Ctx).Order("start_date ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
