package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/demandcast/forecast-backend/internal/platform/envutil"
	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

// Config holds the full runtime configuration. Resolution order: built-in
// defaults, then the YAML file named by CONFIG_FILE (if any), then
// environment variables.
type Config struct {
	Port        string `yaml:"port"`
	LogMode     string `yaml:"log_mode"`
	PostgresDSN string `yaml:"postgres_dsn"`
	JWTSecret   string `yaml:"jwt_secret"`

	// fs or gcs
	ArtifactBackend string `yaml:"artifact_backend"`
	RegistryPath    string `yaml:"registry_path"`
	GCSBucket       string `yaml:"gcs_bucket"`
	GCSCredentials  string `yaml:"gcs_credentials_file"`

	RedisAddr       string `yaml:"redis_addr"`
	RedisTTLSeconds int    `yaml:"redis_ttl_seconds"`

	DailyHorizon   int `yaml:"daily_horizon"`
	MonthlyHorizon int `yaml:"monthly_horizon"`
	YearlyHorizon  int `yaml:"yearly_horizon"`

	MinTrainingSamples int    `yaml:"min_training_samples"`
	JobPollSeconds     int    `yaml:"job_poll_seconds"`
	SalesDropDir       string `yaml:"sales_drop_dir"`
}

func (c Config) RedisTTL() time.Duration {
	return time.Duration(c.RedisTTLSeconds) * time.Second
}

func (c Config) JobPollInterval() time.Duration {
	return time.Duration(c.JobPollSeconds) * time.Second
}

func defaultConfig() Config {
	return Config{
		Port:               "8080",
		LogMode:            "development",
		PostgresDSN:        "host=localhost user=postgres password=postgres dbname=forecasts port=5432 sslmode=disable",
		JWTSecret:          "defaultsecret",
		ArtifactBackend:    "fs",
		RegistryPath:       "./model_registry",
		RedisTTLSeconds:    300,
		DailyHorizon:       90,
		MonthlyHorizon:     24,
		YearlyHorizon:      5,
		MinTrainingSamples: 100,
		JobPollSeconds:     10,
		SalesDropDir:       "./data/drop",
	}
}

func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %q: %w", path, err)
		}
		log.Info("loaded config file", "path", path)
	}

	cfg.Port = envutil.GetEnv("PORT", cfg.Port, log)
	cfg.LogMode = envutil.GetEnv("LOG_MODE", cfg.LogMode, log)
	cfg.PostgresDSN = envutil.GetEnv("POSTGRES_DSN", cfg.PostgresDSN, log)
	cfg.JWTSecret = envutil.GetEnv("JWT_SECRET_KEY", cfg.JWTSecret, log)
	cfg.ArtifactBackend = envutil.GetEnv("ARTIFACT_BACKEND", cfg.ArtifactBackend, log)
	cfg.RegistryPath = envutil.GetEnv("REGISTRY_PATH", cfg.RegistryPath, log)
	cfg.GCSBucket = envutil.GetEnv("GCS_BUCKET", cfg.GCSBucket, log)
	cfg.GCSCredentials = envutil.GetEnv("GCS_CREDENTIALS_FILE", cfg.GCSCredentials, log)
	cfg.RedisAddr = envutil.GetEnv("REDIS_ADDR", cfg.RedisAddr, log)
	cfg.RedisTTLSeconds = int(envutil.GetEnvAsDuration("REDIS_TTL", cfg.RedisTTL(), log).Seconds())
	cfg.DailyHorizon = envutil.GetEnvAsInt("DAILY_HORIZON", cfg.DailyHorizon, log)
	cfg.MonthlyHorizon = envutil.GetEnvAsInt("MONTHLY_HORIZON", cfg.MonthlyHorizon, log)
	cfg.YearlyHorizon = envutil.GetEnvAsInt("YEARLY_HORIZON", cfg.YearlyHorizon, log)
	cfg.MinTrainingSamples = envutil.GetEnvAsInt("MIN_TRAINING_SAMPLES", cfg.MinTrainingSamples, log)
	cfg.JobPollSeconds = int(envutil.GetEnvAsDuration("JOB_POLL_INTERVAL", cfg.JobPollInterval(), log).Seconds())
	cfg.SalesDropDir = envutil.GetEnv("SALES_DROP_DIR", cfg.SalesDropDir, log)

	if cfg.ArtifactBackend == "gcs" && cfg.GCSBucket == "" {
		return cfg, fmt.Errorf("artifact_backend is gcs but no gcs_bucket configured")
	}
	return cfg, nil
}
