package etl

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/demandcast/forecast-backend/internal/domain"
	"github.com/demandcast/forecast-backend/internal/platform/dbctx"
	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

type JobStatusRepo interface {
	Get(dbc dbctx.Context, fileName string) (*domain.ETLJobStatus, error)
	// Upsert inserts a ledger row or overwrites the status and timestamp
	// of an existing one, keyed by file_name.
	Upsert(dbc dbctx.Context, fileName, status string) error
	ListRecent(dbc dbctx.Context, limit int) ([]*domain.ETLJobStatus, error)
}

type jobStatusRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobStatusRepo(db *gorm.DB, baseLog *logger.Logger) JobStatusRepo {
	return &jobStatusRepo{
		db:  db,
		log: baseLog.With("repo", "ETLJobStatusRepo"),
	}
}

func (r *jobStatusRepo) Get(dbc dbctx.Context, fileName string) (*domain.ETLJobStatus, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var record domain.ETLJobStatus
	err := transaction.WithContext(dbc.Ctx).
		Where("file_name = ?", fileName).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *jobStatusRepo) Upsert(dbc dbctx.Context, fileName, status string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	record := domain.ETLJobStatus{
		FileName:    fileName,
		Status:      status,
		LastUpdated: time.Now().UTC(),
	}
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "file_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "last_updated"}),
		}).
		Create(&record).Error
}

func (r *jobStatusRepo) ListRecent(dbc dbctx.Context, limit int) ([]*domain.ETLJobStatus, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*domain.ETLJobStatus
	q := transaction.WithContext(dbc.Ctx).Order("last_updated DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
