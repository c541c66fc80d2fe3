package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/demandcast/forecast-backend/internal/domain"
)

func SeedCategory(tb testing.TB, ctx context.Context, tx *gorm.DB, id, name string) *domain.Category {
	tb.Helper()
	c := &domain.Category{ID: id, Name: name}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	return c
}

func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, id, categoryID string) *domain.Product {
	tb.Helper()
	p := &domain.Product{
		ID:         id,
		Name:       "product " + id,
		CategoryID: categoryID,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}

func SeedPromotion(tb testing.TB, ctx context.Context, tx *gorm.DB, id, name, targetType, targetID string, start, end time.Time) *domain.Promotion {
	tb.Helper()
	p := &domain.Promotion{
		ID:                 id,
		Name:               name,
		StartDate:          start,
		EndDate:            end,
		DiscountPercentage: 10,
		TargetType:         targetType,
		TargetID:           targetID,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed promotion: %v", err)
	}
	return p
}

func SeedHourlySales(tb testing.TB, ctx context.Context, tx *gorm.DB, categoryID string, at time.Time, sales float64) *domain.HourlySales {
	tb.Helper()
	h := &domain.HourlySales{
		Time:          at,
		CategoryID:    categoryID,
		TotalSales:    sales,
		TotalQuantity: 1,
	}
	if err := tx.WithContext(ctx).Create(h).Error; err != nil {
		tb.Fatalf("seed hourly sales: %v", err)
	}
	return h
}

func SeedModelVersion(tb testing.TB, ctx context.Context, tx *gorm.DB, categoryID, version string, isLatest bool) *domain.ModelVersion {
	tb.Helper()
	mv := &domain.ModelVersion{
		CategoryID:         categoryID,
		Version:            version,
		ModelPath:          categoryID + "/" + version + "/model.json",
		TrainingDateUTC:    time.Now().UTC(),
		IsLatest:           isLatest,
		Metadata:           datatypes.JSON([]byte("{}")),
		BacktestingMetrics: datatypes.JSON([]byte("{}")),
	}
	if err := tx.WithContext(ctx).Create(mv).Error; err != nil {
		tb.Fatalf("seed model version: %v", err)
	}
	return mv
}

func SeedLiveForecast(tb testing.TB, ctx context.Context, tx *gorm.DB, versionID int64, categoryID string, date time.Time, g domain.Granularity) *domain.LiveForecast {
	tb.Helper()
	lf := &domain.LiveForecast{
		ModelVersionID: versionID,
		CategoryID:     categoryID,
		ForecastDate:   date,
		PredictedSales: 100,
		LowerBound:     80,
		UpperBound:     120,
		Granularity:    g,
	}
	if err := tx.WithContext(ctx).Create(lf).Error; err != nil {
		tb.Fatalf("seed live forecast: %v", err)
	}
	return lf
}

func SeedAsyncJob(tb testing.TB, ctx context.Context, tx *gorm.DB, categoryID, status string, createdAt time.Time) *domain.AsyncForecastJob {
	tb.Helper()
	j := &domain.AsyncForecastJob{
		JobID:         uuid.New(),
		CategoryID:    categoryID,
		RequestParams: datatypes.JSON([]byte(`{"granularity":"daily","count":5}`)),
		Status:        status,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	if err := tx.WithContext(ctx).Create(j).Error; err != nil {
		tb.Fatalf("seed async job: %v", err)
	}
	return j
}
