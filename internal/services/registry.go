package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/demandcast/forecast-backend/internal/artifact"
	"github.com/demandcast/forecast-backend/internal/data/repos/registry"
	"github.com/demandcast/forecast-backend/internal/domain"
	"github.com/demandcast/forecast-backend/internal/forecast"
	"github.com/demandcast/forecast-backend/internal/pkg/errs"
	"github.com/demandcast/forecast-backend/internal/platform/dbctx"
	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

// RegistryService owns the model version registry: committing newly trained
// models, resolving the latest version per category and loading artifacts.
//
// Commits are last-writer-wins: concurrent commits for the same category are
// expected to be serialized by the caller (the training pipeline runs one
// category at a time).
type RegistryService interface {
	// CommitVersion persists the fitted model's artifact, then atomically
	// retires the category's previous latest version and registers the new
	// one. On a failed registry transaction the freshly written artifact is
	// removed so no orphan blobs accumulate.
	CommitVersion(ctx context.Context, categoryID string, model forecast.Model, trainedAt time.Time, metadata, backtestMetrics datatypes.JSON) (*domain.ModelVersion, error)
	GetLatest(ctx context.Context, categoryID string) (*domain.ModelVersion, error)
	// LoadArtifact fetches and decodes the artifact behind a version row.
	LoadArtifact(ctx context.Context, version *domain.ModelVersion) (forecast.Model, error)
	ListVersions(ctx context.Context, categoryID string) ([]*domain.ModelVersion, error)
	PerformanceForVersion(ctx context.Context, versionID int64) ([]*domain.ForecastPerformance, error)
}

type registryService struct {
	db          *gorm.DB
	versionRepo registry.ModelVersionRepo
	perfRepo    registry.PerformanceRepo
	store       artifact.Store
	log         *logger.Logger
}

func NewRegistryService(
	db *gorm.DB,
	versionRepo registry.ModelVersionRepo,
	perfRepo registry.PerformanceRepo,
	store artifact.Store,
	baseLog *logger.Logger,
) RegistryService {
	return &registryService{
		db:          db,
		versionRepo: versionRepo,
		perfRepo:    perfRepo,
		store:       store,
		log:         baseLog.With("service", "RegistryService"),
	}
}

func (s *registryService) CommitVersion(
	ctx context.Context,
	categoryID string,
	model forecast.Model,
	trainedAt time.Time,
	metadata, backtestMetrics datatypes.JSON,
) (*domain.ModelVersion, error) {
	version := trainedAt.UTC().Format("20060102150405")
	key := artifact.Key(categoryID, version)

	data, err := model.Marshal()
	if err != nil {
		return nil, &errs.PersistenceError{Op: "serialize model artifact", Err: err}
	}
	if err := s.store.Put(ctx, key, data); err != nil {
		return nil, &errs.PersistenceError{Op: "write model artifact", Err: err}
	}

	row := &domain.ModelVersion{
		CategoryID:         categoryID,
		Version:            version,
		ModelPath:          key,
		TrainingDateUTC:    trainedAt.UTC(),
		IsLatest:           true,
		Metadata:           metadata,
		BacktestingMetrics: backtestMetrics,
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		if err := s.versionRepo.ClearLatest(dbc, categoryID); err != nil {
			return err
		}
		return s.versionRepo.Insert(dbc, row)
	})
	if txErr != nil {
		// The artifact is already on disk; remove it so a retry does not
		// leave unreferenced blobs behind.
		if delErr := s.store.Delete(ctx, key); delErr != nil && !errors.Is(delErr, artifact.ErrNotFound) {
			s.log.Warn("failed to remove orphan artifact", "key", key, "error", delErr)
		}
		return nil, &errs.PersistenceError{Op: "commit model version", Err: txErr}
	}

	s.log.Info("committed model version",
		"category_id", categoryID, "version", version, "id", row.ID)
	return row, nil
}

func (s *registryService) GetLatest(ctx context.Context, categoryID string) (*domain.ModelVersion, error) {
	latest, err := s.versionRepo.GetLatest(dbctx.New(ctx), categoryID)
	if err != nil {
		return nil, &errs.PersistenceError{Op: "query latest model version", Err: err}
	}
	if latest == nil {
		return nil, &errs.ModelNotFoundError{CategoryID: categoryID}
	}
	return latest, nil
}

func (s *registryService) LoadArtifact(ctx context.Context, version *domain.ModelVersion) (forecast.Model, error) {
	data, err := s.store.Get(ctx, version.ModelPath)
	if err != nil {
		return nil, &errs.ModelLoadError{Path: version.ModelPath, Reason: "missing", Err: err}
	}
	model, err := forecast.UnmarshalModel(data)
	if err != nil {
		return nil, &errs.ModelLoadError{Path: version.ModelPath, Reason: "corrupt", Err: err}
	}
	return model, nil
}

func (s *registryService) ListVersions(ctx context.Context, categoryID string) ([]*domain.ModelVersion, error) {
	return s.versionRepo.ListByCategory(dbctx.New(ctx), categoryID)
}

func (s *registryService) PerformanceForVersion(ctx context.Context, versionID int64) ([]*domain.ForecastPerformance, error) {
	return s.perfRepo.ListByVersion(dbctx.New(ctx), versionID)
}
