package services

import (
	"context"
	"time"

	"github.com/demandcast/forecast-backend/internal/data/repos/catalog"
	"github.com/demandcast/forecast-backend/internal/forecast"
	"github.com/demandcast/forecast-backend/internal/platform/dbctx"
	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

// PromotionEventService builds the exogenous event frame fed to the
// forecasting engine. Promotions targeting a category directly or any of its
// products are expanded into one event per covered calendar day.
type PromotionEventService interface {
	// HolidaysFor returns the expanded event list for a category. A category
	// with no promotions yields an empty slice, never an error.
	HolidaysFor(ctx context.Context, categoryID string) ([]forecast.Event, error)
}

type promotionEventService struct {
	promoRepo catalog.PromotionRepo
	log       *logger.Logger
}

func NewPromotionEventService(promoRepo catalog.PromotionRepo, baseLog *logger.Logger) PromotionEventService {
	return &promotionEventService{
		promoRepo: promoRepo,
		log:       baseLog.With("service", "PromotionEventService"),
	}
}

func (s *promotionEventService) HolidaysFor(ctx context.Context, categoryID string) ([]forecast.Event, error) {
	promos, err := s.promoRepo.ListForCategory(dbctx.New(ctx), categoryID)
	if err != nil {
		return nil, err
	}

	events := []forecast.Event{}
	for _, p := range promos {
		start := dayFloor(p.StartDate)
		end := dayFloor(p.EndDate)
		// Inclusive range: a one-day promotion yields one event.
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			events = append(events, forecast.Event{Name: p.Name, Date: d})
		}
	}
	return events, nil
}

func dayFloor(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
