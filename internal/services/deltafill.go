package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/demandcast/forecast-backend/internal/data/repos/cache"
	"github.com/demandcast/forecast-backend/internal/domain"
	"github.com/demandcast/forecast-backend/internal/pkg/errs"
	"github.com/demandcast/forecast-backend/internal/platform/dbctx"
	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

// DeltaFillService extends a category's cached forecast frontier. Fill
// computes the rows one step past the cache's high-water mark but does NOT
// insert them; the caller decides whether the delta is persisted.
type DeltaFillService interface {
	Fill(ctx context.Context, categoryID string, count int, granularity string) ([]*domain.LiveForecast, error)
}

type deltaFillService struct {
	liveRepo cache.LiveForecastRepo
	registry RegistryService
	promoSvc PromotionEventService
	group    singleflight.Group
	now      func() time.Time
	log      *logger.Logger
}

func NewDeltaFillService(
	liveRepo cache.LiveForecastRepo,
	registrySvc RegistryService,
	promoSvc PromotionEventService,
	baseLog *logger.Logger,
) DeltaFillService {
	return &deltaFillService{
		liveRepo: liveRepo,
		registry: registrySvc,
		promoSvc: promoSvc,
		now:      func() time.Time { return time.Now().UTC() },
		log:      baseLog.With("service", "DeltaFillService"),
	}
}

func (s *deltaFillService) Fill(ctx context.Context, categoryID string, count int, granularity string) ([]*domain.LiveForecast, error) {
	g, err := domain.ParseGranularity(granularity)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, &errs.ValidationError{Field: "count", Reason: "must be a positive integer"}
	}

	// Concurrent fills for the same (category, granularity, count) collapse
	// into one computation.
	key := fmt.Sprintf("%s|%s|%d", categoryID, g, count)
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.fill(ctx, categoryID, count, g)
	})
	if err != nil {
		return nil, err
	}
	return v.([]*domain.LiveForecast), nil
}

func (s *deltaFillService) fill(ctx context.Context, categoryID string, count int, g domain.Granularity) ([]*domain.LiveForecast, error) {
	latest, err := s.registry.GetLatest(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	model, err := s.registry.LoadArtifact(ctx, latest)
	if err != nil {
		return nil, err
	}

	// Anchor at the cached frontier, or today when nothing is cached yet.
	anchor := s.today()
	if mark, err := s.liveRepo.MaxForecastDate(dbctx.New(ctx), categoryID, g); err != nil {
		return nil, err
	} else if mark != nil {
		anchor = mark.ForecastDate
	}

	dates := g.RangeAfter(anchor, count)
	if len(dates) == 0 {
		return nil, &errs.ValidationError{Field: "count", Reason: "produced an empty date range"}
	}

	events, err := s.promoSvc.HolidaysFor(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	preds, err := model.Predict(dates, events)
	if err != nil {
		return nil, err
	}

	rows := make([]*domain.LiveForecast, 0, len(preds))
	for _, pred := range preds {
		rows = append(rows, &domain.LiveForecast{
			ModelVersionID: latest.ID,
			CategoryID:     categoryID,
			ForecastDate:   pred.DS,
			PredictedSales: pred.YHat,
			LowerBound:     pred.YHatLower,
			UpperBound:     pred.YHatUpper,
			Granularity:    g,
		})
	}
	s.log.Debug("computed delta fill",
		"category_id", categoryID, "granularity", g,
		"anchor", anchor.Format("2006-01-02"), "rows", len(rows))
	return rows, nil
}

func (s *deltaFillService) today() time.Time {
	n := s.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}
