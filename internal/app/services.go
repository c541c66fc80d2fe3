package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/demandcast/forecast-backend/internal/artifact"
	"github.com/demandcast/forecast-backend/internal/clients/redis"
	"github.com/demandcast/forecast-backend/internal/data/db"
	"github.com/demandcast/forecast-backend/internal/forecast"
	"github.com/demandcast/forecast-backend/internal/platform/logger"
	"github.com/demandcast/forecast-backend/internal/services"
)

type Services struct {
	Registry       services.RegistryService
	PromotionEvent services.PromotionEventService
	Training       services.TrainingService
	Precalc        services.PrecalcService
	DeltaFill      services.DeltaFillService
	ETL            services.ETLService
	ForecastQuery  services.ForecastQueryService
	Pipeline       services.PipelineService
	Jobs           services.JobService
	JobWorker      *services.JobWorker

	EdgeCache  *redis.Cache
	BulkWriter *db.BulkWriter
}

func wireServices(gdb *gorm.DB, log *logger.Logger, cfg Config, repos Repos) (Services, error) {
	log.Info("Wiring services...")

	store, err := wireArtifactStore(cfg, log)
	if err != nil {
		return Services{}, err
	}

	// Optional infrastructure: a missing redis or pgx pool degrades the
	// service, it does not prevent startup.
	var edge *redis.Cache
	if cfg.RedisAddr != "" {
		edge, err = redis.NewCache(cfg.RedisAddr, cfg.RedisTTL(), log)
		if err != nil {
			log.Warn("redis unavailable, serving without edge cache", "error", err)
			edge = nil
		}
	}
	bulk, err := db.NewBulkWriter(context.Background(), cfg.PostgresDSN, log)
	if err != nil {
		log.Warn("pgx pool unavailable, falling back to batched inserts", "error", err)
		bulk = nil
	}

	registrySvc := services.NewRegistryService(gdb, repos.ModelVersion, repos.Performance, store, log)
	promoSvc := services.NewPromotionEventService(repos.Promotion, log)
	trainingSvc := services.NewTrainingService(
		repos.HourlySales, repos.Performance, registrySvc, promoSvc,
		forecast.NewEngine(), cfg.MinTrainingSamples, log,
	)
	precalcSvc := services.NewPrecalcService(
		repos.LiveForecast, repos.ModelVersion, registrySvc, promoSvc, bulk,
		services.Horizons{
			Daily:   cfg.DailyHorizon,
			Monthly: cfg.MonthlyHorizon,
			Yearly:  cfg.YearlyHorizon,
		}, log,
	)
	deltaFillSvc := services.NewDeltaFillService(repos.LiveForecast, registrySvc, promoSvc, log)
	etlSvc := services.NewETLService(gdb, repos.ETLJobStatus, repos.HourlySales, log)
	querySvc := services.NewForecastQueryService(repos.LiveForecast, repos.HistoricalForecast, edge, log)
	pipelineSvc := services.NewPipelineService(trainingSvc, precalcSvc, log)
	jobSvc := services.NewJobService(repos.AsyncJob, log)
	worker := services.NewJobWorker(repos.AsyncJob, repos.LiveForecast, deltaFillSvc, cfg.JobPollInterval(), log)

	return Services{
		Registry:       registrySvc,
		PromotionEvent: promoSvc,
		Training:       trainingSvc,
		Precalc:        precalcSvc,
		DeltaFill:      deltaFillSvc,
		ETL:            etlSvc,
		ForecastQuery:  querySvc,
		Pipeline:       pipelineSvc,
		Jobs:           jobSvc,
		JobWorker:      worker,
		EdgeCache:      edge,
		BulkWriter:     bulk,
	}, nil
}

func wireArtifactStore(cfg Config, log *logger.Logger) (artifact.Store, error) {
	switch cfg.ArtifactBackend {
	case "", "fs":
		return artifact.NewFSStore(cfg.RegistryPath, log)
	case "gcs":
		return artifact.NewGCSStore(context.Background(), cfg.GCSBucket, "model_registry", cfg.GCSCredentials, log)
	default:
		return nil, fmt.Errorf("unknown artifact backend %q", cfg.ArtifactBackend)
	}
}
