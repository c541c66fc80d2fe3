package jobs

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/demandcast/forecast-backend/internal/domain"
	"github.com/demandcast/forecast-backend/internal/platform/dbctx"
	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

type AsyncJobRepo interface {
	Create(dbc dbctx.Context, job *domain.AsyncForecastJob) error
	GetByID(dbc dbctx.Context, jobID uuid.UUID) (*domain.AsyncForecastJob, error)
	ListRecent(dbc dbctx.Context, limit int) ([]*domain.AsyncForecastJob, error)
	// ClaimNextPending marks the oldest PENDING job RUNNING and returns it,
	// or nil when the queue is empty.
	ClaimNextPending(dbc dbctx.Context) (*domain.AsyncForecastJob, error)
	MarkStatus(dbc dbctx.Context, jobID uuid.UUID, status, errorMessage string) error
	// CancelPending cancels a job only while it is still PENDING. Returns
	// false when the job was past that state.
	CancelPending(dbc dbctx.Context, jobID uuid.UUID) (bool, error)
}

type asyncJobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAsyncJobRepo(db *gorm.DB, baseLog *logger.Logger) AsyncJobRepo {
	return &asyncJobRepo{
		db:  db,
		log: baseLog.With("repo", "AsyncJobRepo"),
	}
}

func (r *asyncJobRepo) Create(dbc dbctx.Context, job *domain.AsyncForecastJob) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Create(job).Error
}

func (r *asyncJobRepo) GetByID(dbc dbctx.Context, jobID uuid.UUID) (*domain.AsyncForecastJob, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var job domain.AsyncForecastJob
	err := transaction.WithContext(dbc.Ctx).
		Where("job_id = ?", jobID).
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *asyncJobRepo) ListRecent(dbc dbctx.Context, limit int) ([]*domain.AsyncForecastJob, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*domain.AsyncForecastJob
	q := transaction.WithContext(dbc.Ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *asyncJobRepo) ClaimNextPending(dbc dbctx.Context) (*domain.AsyncForecastJob, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var claimed *domain.AsyncForecastJob
	err := transaction.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		var job domain.AsyncForecastJob
		q := tx.Where("status = ?", domain.JobStatusPending).Order("created_at ASC")
		// Row locking only exists on postgres; the sqlite test store
		// runs single-writer anyway.
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}
		qErr := q.First(&job).Error
		if errors.Is(qErr, gorm.ErrRecordNotFound) {
			return nil
		}
		if qErr != nil {
			return qErr
		}
		uErr := tx.Model(&domain.AsyncForecastJob{}).
			Where("job_id = ?", job.JobID).
			Updates(map[string]interface{}{
				"status":     domain.JobStatusRunning,
				"updated_at": time.Now().UTC(),
			}).Error
		if uErr != nil {
			return uErr
		}
		claimed = &job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *asyncJobRepo) MarkStatus(dbc dbctx.Context, jobID uuid.UUID, status, errorMessage string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&domain.AsyncForecastJob{}).
		Where("job_id = ?", jobID).
		Updates(map[string]interface{}{
			"status":        status,
			"error_message": errorMessage,
			"updated_at":    time.Now().UTC(),
		}).Error
}

func (r *asyncJobRepo) CancelPending(dbc dbctx.Context, jobID uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&domain.AsyncForecastJob{}).
		Where("job_id = ? AND status = ?", jobID, domain.JobStatusPending).
		Updates(map[string]interface{}{
			"status":     domain.JobStatusCancelled,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
