package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"gorm.io/datatypes"

	"github.com/demandcast/forecast-backend/internal/data/repos/registry"
	"github.com/demandcast/forecast-backend/internal/data/repos/sales"
	"github.com/demandcast/forecast-backend/internal/domain"
	"github.com/demandcast/forecast-backend/internal/forecast"
	"github.com/demandcast/forecast-backend/internal/platform/dbctx"
	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

// CategoryOutcome records why a category was skipped or failed during a
// training run.
type CategoryOutcome struct {
	CategoryID string `json:"category_id"`
	Reason     string `json:"reason"`
}

// TrainingResult is the aggregate outcome of one full training run.
type TrainingResult struct {
	Status              string            `json:"status"`
	Reason              string            `json:"reason,omitempty"`
	ProcessedCategories int               `json:"processed_categories"`
	Skipped             []CategoryOutcome `json:"skipped"`
	Failed              []CategoryOutcome `json:"failed"`
}

// TrainingService retrains one model per category with enough history and
// commits each through the registry. Categories are isolated: one failing
// category never aborts the run.
type TrainingService interface {
	TrainAndSaveModels(ctx context.Context) (*TrainingResult, error)
}

type trainingService struct {
	salesRepo  sales.HourlySalesRepo
	perfRepo   registry.PerformanceRepo
	registry   RegistryService
	promoSvc   PromotionEventService
	forecaster forecast.Forecaster
	minSamples int
	log        *logger.Logger
}

func NewTrainingService(
	salesRepo sales.HourlySalesRepo,
	perfRepo registry.PerformanceRepo,
	registrySvc RegistryService,
	promoSvc PromotionEventService,
	forecaster forecast.Forecaster,
	minSamples int,
	baseLog *logger.Logger,
) TrainingService {
	return &trainingService{
		salesRepo:  salesRepo,
		perfRepo:   perfRepo,
		registry:   registrySvc,
		promoSvc:   promoSvc,
		forecaster: forecaster,
		minSamples: minSamples,
		log:        baseLog.With("service", "TrainingService"),
	}
}

func (s *trainingService) TrainAndSaveModels(ctx context.Context) (*TrainingResult, error) {
	counts, err := s.salesRepo.CategoryCounts(dbctx.New(ctx))
	if err != nil {
		return nil, fmt.Errorf("enumerate categories: %w", err)
	}
	if len(counts) == 0 {
		s.log.Warn("no sales history in database, aborting training run")
		return &TrainingResult{
			Status:  "failed",
			Reason:  "no sales data in database",
			Skipped: []CategoryOutcome{},
			Failed:  []CategoryOutcome{},
		}, nil
	}

	result := &TrainingResult{
		Status:  "completed",
		Skipped: []CategoryOutcome{},
		Failed:  []CategoryOutcome{},
	}

	for _, c := range counts {
		if c.Samples < int64(s.minSamples) {
			s.log.Info("skipping category with insufficient history",
				"category_id", c.CategoryID, "samples", c.Samples, "min", s.minSamples)
			result.Skipped = append(result.Skipped, CategoryOutcome{
				CategoryID: c.CategoryID,
				Reason:     fmt.Sprintf("insufficient data: %d samples, need %d", c.Samples, s.minSamples),
			})
			continue
		}

		if err := s.trainCategory(ctx, c.CategoryID); err != nil {
			s.log.Error("training failed for category",
				"category_id", c.CategoryID, "error", err)
			result.Failed = append(result.Failed, CategoryOutcome{
				CategoryID: c.CategoryID,
				Reason:     err.Error(),
			})
			continue
		}
		result.ProcessedCategories++
	}

	if len(result.Failed) > 0 && result.ProcessedCategories == 0 {
		result.Status = "failed"
	} else if len(result.Failed) > 0 {
		result.Status = "completed_with_errors"
	}

	s.log.Info("training run finished",
		"processed", result.ProcessedCategories,
		"skipped", len(result.Skipped),
		"failed", len(result.Failed))
	return result, nil
}

func (s *trainingService) trainCategory(ctx context.Context, categoryID string) error {
	rows, err := s.salesRepo.SeriesByCategory(dbctx.New(ctx), categoryID)
	if err != nil {
		return fmt.Errorf("load sales history: %w", err)
	}
	series := dailySeries(rows)
	if len(series) < 2 {
		return fmt.Errorf("series collapses to %d daily points", len(series))
	}

	events, err := s.promoSvc.HolidaysFor(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("build promotion events: %w", err)
	}

	model, err := s.forecaster.Fit(series, events)
	if err != nil {
		return fmt.Errorf("fit model: %w", err)
	}

	windows, summary := s.backtest(series, events)

	metricsJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode backtest metrics: %w", err)
	}
	metaJSON, err := json.Marshal(map[string]interface{}{
		"training_rows": len(rows),
		"daily_points":  len(series),
		"event_count":   len(events),
		"series_start":  forecast.DateKey(series[0].DS),
		"series_end":    forecast.DateKey(series[len(series)-1].DS),
	})
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	committed, err := s.registry.CommitVersion(
		ctx, categoryID, model, time.Now().UTC(),
		datatypes.JSON(metaJSON), datatypes.JSON(metricsJSON),
	)
	if err != nil {
		return err
	}

	if len(windows) > 0 {
		perfRows := make([]*domain.ForecastPerformance, 0, len(windows)*3)
		for _, w := range windows {
			perfRows = append(perfRows,
				&domain.ForecastPerformance{ModelVersionID: committed.ID, EvaluationPeriodStart: w.Start, EvaluationPeriodEnd: w.End, MetricName: "mae", MetricValue: w.MAE},
				&domain.ForecastPerformance{ModelVersionID: committed.ID, EvaluationPeriodStart: w.Start, EvaluationPeriodEnd: w.End, MetricName: "rmse", MetricValue: w.RMSE},
				&domain.ForecastPerformance{ModelVersionID: committed.ID, EvaluationPeriodStart: w.Start, EvaluationPeriodEnd: w.End, MetricName: "mape", MetricValue: w.MAPE},
			)
		}
		if err := s.perfRepo.Insert(dbctx.New(ctx), perfRows); err != nil {
			return fmt.Errorf("persist backtest windows: %w", err)
		}
	}
	return nil
}

type backtestWindow struct {
	Start time.Time
	End   time.Time
	MAE   float64
	RMSE  float64
	MAPE  float64
}

// backtest runs a rolling-origin evaluation: refit on each expanding prefix
// and score the following horizon. Series too short for the initial window
// yield no windows and an empty summary.
func (s *trainingService) backtest(series forecast.Series, events []forecast.Event) ([]backtestWindow, map[string]float64) {
	spanDays := len(series)
	horizon := spanDays / 10
	if horizon < 30 {
		horizon = 30
	}
	initial := 3 * horizon
	period := horizon / 2

	if spanDays < initial+horizon {
		return nil, map[string]float64{}
	}

	var windows []backtestWindow
	for cutoff := initial; cutoff+horizon <= spanDays; cutoff += period {
		train := series[:cutoff]
		holdout := series[cutoff : cutoff+horizon]

		model, err := s.forecaster.Fit(train, events)
		if err != nil {
			continue
		}
		dates := make([]time.Time, len(holdout))
		actuals := make([]float64, len(holdout))
		for i, p := range holdout {
			dates[i] = p.DS
			actuals[i] = p.Y
		}
		preds, err := model.Predict(dates, events)
		if err != nil {
			continue
		}

		var absSum, sqSum, pctSum float64
		var pctN int
		for i, p := range preds {
			diff := p.YHat - actuals[i]
			absSum += math.Abs(diff)
			sqSum += diff * diff
			if actuals[i] != 0 {
				pctSum += math.Abs(diff / actuals[i])
				pctN++
			}
		}
		n := float64(len(preds))
		w := backtestWindow{
			Start: holdout[0].DS,
			End:   holdout[len(holdout)-1].DS,
			MAE:   absSum / n,
			RMSE:  math.Sqrt(sqSum / n),
		}
		if pctN > 0 {
			w.MAPE = pctSum / float64(pctN) * 100
		}
		windows = append(windows, w)
	}

	if len(windows) == 0 {
		return nil, map[string]float64{}
	}
	summary := map[string]float64{}
	for _, w := range windows {
		summary["mae"] += w.MAE
		summary["rmse"] += w.RMSE
		summary["mape"] += w.MAPE
	}
	n := float64(len(windows))
	summary["mae"] /= n
	summary["rmse"] /= n
	summary["mape"] /= n
	summary["windows"] = n
	return windows, summary
}

// dailySeries collapses hourly sales rows into one point per UTC calendar day.
func dailySeries(rows []*domain.HourlySales) forecast.Series {
	if len(rows) == 0 {
		return nil
	}
	totals := map[string]float64{}
	order := []string{}
	for _, r := range rows {
		key := forecast.DateKey(r.Time)
		if _, seen := totals[key]; !seen {
			order = append(order, key)
		}
		totals[key] += r.TotalSales
	}
	series := make(forecast.Series, 0, len(order))
	for _, key := range order {
		ds, _ := time.ParseInLocation("2006-01-02", key, time.UTC)
		series = append(series, forecast.Point{DS: ds, Y: totals[key]})
	}
	return series
}
