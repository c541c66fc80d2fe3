package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/demandcast/forecast-backend/internal/domain"
	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

// BulkWriter streams forecast rows into the live cache with the COPY
// protocol. It bypasses GORM on purpose: refresh cycles insert tens of
// thousands of rows per category set.
type BulkWriter struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewBulkWriter(ctx context.Context, dsn string, baseLog *logger.Logger) (*BulkWriter, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	return &BulkWriter{pool: pool, log: baseLog.With("service", "BulkWriter")}, nil
}

func (w *BulkWriter) Close() {
	if w != nil && w.pool != nil {
		w.pool.Close()
	}
}

// CopyLiveForecasts bulk-inserts rows into live_forecasts.
func (w *BulkWriter) CopyLiveForecasts(ctx context.Context, rows []*domain.LiveForecast) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	columns := []string{
		"model_version_id", "category_id", "forecast_date",
		"predicted_sales", "lower_bound", "upper_bound", "granularity",
	}
	n, err := w.pool.CopyFrom(
		ctx,
		pgx.Identifier{"live_forecasts"},
		columns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{
				r.ModelVersionID, r.CategoryID, r.ForecastDate,
				r.PredictedSales, r.LowerBound, r.UpperBound, string(r.Granularity),
			}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy live forecasts: %w", err)
	}
	return n, nil
}
