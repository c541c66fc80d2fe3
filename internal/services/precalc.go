package services

import (
	"context"
	"fmt"

	"github.com/demandcast/forecast-backend/internal/data/db"
	"github.com/demandcast/forecast-backend/internal/data/repos/cache"
	"github.com/demandcast/forecast-backend/internal/data/repos/registry"
	"github.com/demandcast/forecast-backend/internal/domain"
	"github.com/demandcast/forecast-backend/internal/platform/dbctx"
	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

// Horizons configures how far ahead each cadence is materialized during a
// refresh cycle.
type Horizons struct {
	Daily   int
	Monthly int
	Yearly  int
}

// DefaultHorizons matches the serving contract: 90 daily, 24 monthly and
// 5 yearly periods per category.
func DefaultHorizons() Horizons {
	return Horizons{Daily: 90, Monthly: 24, Yearly: 5}
}

// RefreshResult summarizes one cache refresh cycle.
type RefreshResult struct {
	Status        string            `json:"status"`
	ArchivedRows  int64             `json:"archived_rows"`
	InsertedRows  int64             `json:"inserted_rows"`
	CategoriesOK  int               `json:"categories_ok"`
	Failed        []CategoryOutcome `json:"failed"`
	FailureReason string            `json:"failure_reason,omitempty"`
}

// PrecalcService rebuilds the live forecast cache from the latest model of
// every category. The cycle runs in three stages: archive and clear the
// current cache in one transaction, enumerate categories holding a latest
// model, then regenerate and insert per category. A category that fails in
// stage three is logged and skipped; the cache is left partially filled
// rather than rolled back.
type PrecalcService interface {
	Refresh(ctx context.Context) (*RefreshResult, error)
}

type precalcService struct {
	liveRepo    cache.LiveForecastRepo
	versionRepo registry.ModelVersionRepo
	registry    RegistryService
	promoSvc    PromotionEventService
	bulk        *db.BulkWriter
	horizons    Horizons
	log         *logger.Logger
}

// NewPrecalcService wires the refresh cycle. bulk may be nil; inserts then go
// through GORM batching instead of COPY.
func NewPrecalcService(
	liveRepo cache.LiveForecastRepo,
	versionRepo registry.ModelVersionRepo,
	registrySvc RegistryService,
	promoSvc PromotionEventService,
	bulk *db.BulkWriter,
	horizons Horizons,
	baseLog *logger.Logger,
) PrecalcService {
	return &precalcService{
		liveRepo:    liveRepo,
		versionRepo: versionRepo,
		registry:    registrySvc,
		promoSvc:    promoSvc,
		bulk:        bulk,
		horizons:    horizons,
		log:         baseLog.With("service", "PrecalcService"),
	}
}

func (s *precalcService) Refresh(ctx context.Context) (*RefreshResult, error) {
	result := &RefreshResult{Status: "completed", Failed: []CategoryOutcome{}}

	archived, err := s.liveRepo.ArchiveAndClear(dbctx.New(ctx))
	if err != nil {
		result.Status = "failed"
		result.FailureReason = "archiving failed"
		s.log.Error("archive and clear failed, live cache untouched", "error", err)
		return result, fmt.Errorf("archiving failed: %w", err)
	}
	result.ArchivedRows = archived
	s.log.Info("archived live cache", "rows", archived)

	categories, err := s.versionRepo.LatestCategories(dbctx.New(ctx))
	if err != nil {
		result.Status = "failed"
		result.FailureReason = "category enumeration failed"
		return result, fmt.Errorf("enumerate latest categories: %w", err)
	}

	for _, categoryID := range categories {
		inserted, err := s.refreshCategory(ctx, categoryID)
		if err != nil {
			s.log.Error("refresh failed for category, skipping",
				"category_id", categoryID, "error", err)
			result.Failed = append(result.Failed, CategoryOutcome{
				CategoryID: categoryID,
				Reason:     err.Error(),
			})
			continue
		}
		result.CategoriesOK++
		result.InsertedRows += inserted
	}

	if len(result.Failed) > 0 {
		result.Status = "completed_with_errors"
	}
	s.log.Info("refresh cycle finished",
		"categories_ok", result.CategoriesOK,
		"failed", len(result.Failed),
		"inserted_rows", result.InsertedRows)
	return result, nil
}

func (s *precalcService) refreshCategory(ctx context.Context, categoryID string) (int64, error) {
	latest, err := s.registry.GetLatest(ctx, categoryID)
	if err != nil {
		return 0, err
	}
	model, err := s.registry.LoadArtifact(ctx, latest)
	if err != nil {
		return 0, err
	}
	events, err := s.promoSvc.HolidaysFor(ctx, categoryID)
	if err != nil {
		return 0, err
	}

	plan := []struct {
		g       domain.Granularity
		periods int
	}{
		{domain.GranularityDaily, s.horizons.Daily},
		{domain.GranularityMonthly, s.horizons.Monthly},
		{domain.GranularityYearly, s.horizons.Yearly},
	}

	var rows []*domain.LiveForecast
	for _, p := range plan {
		if p.periods <= 0 {
			continue
		}
		dates := model.FutureRange(p.periods, p.g)
		preds, err := model.Predict(dates, events)
		if err != nil {
			return 0, fmt.Errorf("predict %s horizon: %w", p.g, err)
		}
		for _, pred := range preds {
			rows = append(rows, &domain.LiveForecast{
				ModelVersionID: latest.ID,
				CategoryID:     categoryID,
				ForecastDate:   pred.DS,
				PredictedSales: pred.YHat,
				LowerBound:     pred.YHatLower,
				UpperBound:     pred.YHatUpper,
				Granularity:    p.g,
			})
		}
	}

	if s.bulk != nil {
		n, err := s.bulk.CopyLiveForecasts(ctx, rows)
		if err != nil {
			return 0, fmt.Errorf("bulk insert: %w", err)
		}
		return n, nil
	}
	if err := s.liveRepo.BulkInsert(dbctx.New(ctx), rows); err != nil {
		return 0, fmt.Errorf("bulk insert: %w", err)
	}
	return int64(len(rows)), nil
}
