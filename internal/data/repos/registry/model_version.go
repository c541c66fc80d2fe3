package registry

import (
	"errors"

	"gorm.io/gorm"

	"github.com/demandcast/forecast-backend/internal/domain"
	"github.com/demandcast/forecast-backend/internal/platform/dbctx"
	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

type ModelVersionRepo interface {
	Insert(dbc dbctx.Context, version *domain.ModelVersion) error
	ClearLatest(dbc dbctx.Context, categoryID string) error
	GetLatest(dbc dbctx.Context, categoryID string) (*domain.ModelVersion, error)
	GetByID(dbc dbctx.Context, id int64) (*domain.ModelVersion, error)
	ListByCategory(dbc dbctx.Context, categoryID string) ([]*domain.ModelVersion, error)
	LatestCategories(dbc dbctx.Context) ([]string, error)
}

type modelVersionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModelVersionRepo(db *gorm.DB, baseLog *logger.Logger) ModelVersionRepo {
	return &modelVersionRepo{
		db:  db,
		log: baseLog.With("repo", "ModelVersionRepo"),
	}
}

func (r *modelVersionRepo) Insert(dbc dbctx.Context, version *domain.ModelVersion) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Create(version).Error
}

func (r *modelVersionRepo) ClearLatest(dbc dbctx.Context, categoryID string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&domain.ModelVersion{}).
		Where("category_id = ? AND is_latest = ?", categoryID, true).
		Update("is_latest", false).Error
}

func (r *modelVersionRepo) GetLatest(dbc dbctx.Context, categoryID string) (*domain.ModelVersion, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var version domain.ModelVersion
	err := transaction.WithContext(dbc.Ctx).
		Where("category_id = ? AND is_latest = ?", categoryID, true).
		First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *modelVersionRepo) GetByID(dbc dbctx.Context, id int64) (*domain.ModelVersion, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var version domain.ModelVersion
	err := transaction.WithContext(dbc.Ctx).First(&version, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *modelVersionRepo) ListByCategory(dbc dbctx.Context, categoryID string) ([]*domain.ModelVersion, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*domain.ModelVersion
	err := transaction.WithContext(dbc.Ctx).
		Where("category_id = ?", categoryID).
		Order("training_date_utc DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *modelVersionRepo) LatestCategories(dbc dbctx.Context) ([]string, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []string
	err := transaction.WithContext(dbc.Ctx).
		Model(&domain.ModelVersion{}).
		Where("is_latest = ?", true).
		Distinct().
		Order("category_id ASC").
		Pluck("category_id", &out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
