package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/demandcast/forecast-backend/internal/clients/redis"
	"github.com/demandcast/forecast-backend/internal/data/repos/cache"
	"github.com/demandcast/forecast-backend/internal/domain"
	"github.com/demandcast/forecast-backend/internal/platform/dbctx"
	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

// ForecastPoint is one served forecast value.
type ForecastPoint struct {
	ForecastDate   time.Time `json:"forecast_date"`
	PredictedSales float64   `json:"predicted_sales"`
	LowerBound     float64   `json:"lower_bound"`
	UpperBound     float64   `json:"upper_bound"`
}

// ForecastResponse is the cached-forecast payload for one category.
type ForecastResponse struct {
	CategoryID  string          `json:"category_id"`
	Granularity string          `json:"granularity"`
	Forecasts   []ForecastPoint `json:"forecasts"`
}

// VersionHistory groups archived forecasts by the model version that
// produced them.
type VersionHistory struct {
	ModelVersionID int64           `json:"model_version_id"`
	Forecasts      []ForecastPoint `json:"forecasts"`
}

// ForecastQueryService is the read path: it serves from the live cache only
// and never computes forecasts inline. A request asking past the cached
// frontier is a miss; the HTTP layer turns misses into queued backfill jobs.
type ForecastQueryService interface {
	// GetCached returns the cached forecast and true on a full hit, or
	// (nil, false) when fewer than horizon rows are cached.
	GetCached(ctx context.Context, categoryID string, horizon int, period string) (*ForecastResponse, bool, error)
	// History returns archived forecasts in [start, end] grouped by model
	// version.
	History(ctx context.Context, categoryID string, start, end time.Time) ([]VersionHistory, error)
}

type forecastQueryService struct {
	liveRepo cache.LiveForecastRepo
	histRepo cache.HistoricalForecastRepo
	edge     *redis.Cache
	log      *logger.Logger
}

// NewForecastQueryService wires the read path. edge may be nil, which
// disables the redis read-through.
func NewForecastQueryService(
	liveRepo cache.LiveForecastRepo,
	histRepo cache.HistoricalForecastRepo,
	edge *redis.Cache,
	baseLog *logger.Logger,
) ForecastQueryService {
	return &forecastQueryService{
		liveRepo: liveRepo,
		histRepo: histRepo,
		edge:     edge,
		log:      baseLog.With("service", "ForecastQueryService"),
	}
}

func (s *forecastQueryService) GetCached(ctx context.Context, categoryID string, horizon int, period string) (*ForecastResponse, bool, error) {
	g, err := domain.ParseGranularity(period)
	if err != nil {
		return nil, false, err
	}

	key := fmt.Sprintf("forecast:%s:%s:%d", categoryID, g, horizon)
	if raw, err := s.edge.Get(ctx, key); err == nil {
		var resp ForecastResponse
		if err := json.Unmarshal(raw, &resp); err == nil {
			return &resp, true, nil
		}
	} else if !errors.Is(err, redis.ErrMiss) {
		s.log.Warn("edge cache read failed", "key", key, "error", err)
	}

	rows, err := s.liveRepo.ListForServing(dbctx.New(ctx), categoryID, g, horizon)
	if err != nil {
		return nil, false, err
	}
	if len(rows) < horizon {
		return nil, false, nil
	}

	resp := &ForecastResponse{
		CategoryID:  categoryID,
		Granularity: string(g),
		Forecasts:   make([]ForecastPoint, 0, len(rows)),
	}
	for _, r := range rows {
		resp.Forecasts = append(resp.Forecasts, ForecastPoint{
			ForecastDate:   r.ForecastDate,
			PredictedSales: r.PredictedSales,
			LowerBound:     r.LowerBound,
			UpperBound:     r.UpperBound,
		})
	}

	if raw, err := json.Marshal(resp); err == nil {
		if err := s.edge.Set(ctx, key, raw); err != nil {
			s.log.Warn("edge cache write failed", "key", key, "error", err)
		}
	}
	return resp, true, nil
}

func (s *forecastQueryService) History(ctx context.Context, categoryID string, start, end time.Time) ([]VersionHistory, error) {
	rows, err := s.histRepo.ListByCategoryRange(dbctx.New(ctx), categoryID, start, end)
	if err != nil {
		return nil, err
	}

	out := []VersionHistory{}
	for _, r := range rows {
		if len(out) == 0 || out[len(out)-1].ModelVersionID != r.ModelVersionID {
			out = append(out, VersionHistory{ModelVersionID: r.ModelVersionID})
		}
		last := &out[len(out)-1]
		last.Forecasts = append(last.Forecasts, ForecastPoint{
			ForecastDate:   r.ForecastDate,
			PredictedSales: r.PredictedSales,
			LowerBound:     r.LowerBound,
			UpperBound:     r.UpperBound,
		})
	}
	return out, nil
}
