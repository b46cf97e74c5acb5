package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DebugModeEnv is the environment variable for debug mode.
	DebugModeEnv = "DEBUG_MODE"

	// DBHostEnv is the environment variable for database host.
	DBHostEnv = "DB_HOST"

	// DBPortEnv is the environment variable for database port.
	DBPortEnv = "DB_PORT"

	// DBUserEnv is the environment variable for database user.
	DBUserEnv = "DB_USER"

	// DBPassEnv is the environment variable for database password.
	DBPassEnv = "DB_PASS"

	// DBNameEnv is the environment variable for database name.
	DBNameEnv = "DB_NAME"

	// MigrationsPathEnv is the environment variable for the migrations source URL.
	MigrationsPathEnv = "MIGRATIONS_PATH"

	// HTTPServerPortEnv is the environment variable for HTTP server port.
	HTTPServerPortEnv = "HTTP_SERVER_PORT"

	// MetricsServerPortEnv is the environment variable for metrics server port.
	MetricsServerPortEnv = "METRICS_SERVER_PORT"

	// CORSAllowedOriginsEnv is a comma separated list of origins allowed by CORS.
	CORSAllowedOriginsEnv = "CORS_ALLOWED_ORIGINS"

	// EnvFilePath is the environment variable for .env file path (only for local/test environment).
	EnvFilePath = "ENV_PATH"

	// DefaultEnvFilePath is the default path to the .env file.
	DefaultEnvFilePath = ".env"

	// AWSRegionEnv is the environment variable for AWS region.
	AWSRegionEnv = "AWS_REGION"

	// AWSEndpointEnv is the environment variable for AWS endpoint.
	AWSEndpointEnv = "AWS_ENDPOINT"

	// SQSQueueURLEnv is the environment variable for SQS queue URL.
	SQSQueueURLEnv = "SQS_QUEUE_URL"

	// OutboxIntervalEnv is the environment variable for the outbox polling interval.
	OutboxIntervalEnv = "OUTBOX_INTERVAL"

	// ScraperURLEnv is the environment variable for the scraper service base URL.
	ScraperURLEnv = "SCRAPER_URL"

	// ScraperTimeoutEnv is the environment variable for the scrape timeout.
	ScraperTimeoutEnv = "SCRAPER_TIMEOUT"

	// PredictorURLEnv is the environment variable for the predictor service base URL.
	PredictorURLEnv = "PREDICTOR_URL"

	// PredictorTimeoutEnv is the environment variable for the prediction timeout.
	PredictorTimeoutEnv = "PREDICTOR_TIMEOUT"

	// RedisURLEnv is the environment variable for the scrape cache Redis URL.
	RedisURLEnv = "REDIS_URL"

	// ScrapeCacheTTLEnv is the environment variable for the scrape cache TTL.
	ScrapeCacheTTLEnv = "SCRAPE_CACHE_TTL"

	// DefaultCurrencyEnv is the environment variable for the currency used when a scrape has none.
	DefaultCurrencyEnv = "DEFAULT_CURRENCY"
)

const (
	defaultMigrationsPath   = "file://migrations"
	defaultOutboxInterval   = 2 * time.Second
	defaultScraperTimeout   = 30 * time.Second
	defaultPredictorTimeout = 10 * time.Second
	defaultScrapeCacheTTL   = time.Hour
	defaultCurrency         = "INR"
	defaultCORSOrigins      = "http://localhost:3000,http://localhost:3001"
)

var (
	// ErrMissingConfig is returned when required configuration values are missing.
	ErrMissingConfig = errors.New("missing config data")
)

// Config represents the application configuration.
type Config struct {
	DebugMode          bool
	Database           DB
	HTTPServer         Server
	MetricsServer      Server
	CORSAllowedOrigins []string
	AWS                AWSConfig
	Scraper            Upstream
	Predictor          Upstream
	Redis              RedisConfig
	DefaultCurrency    string
}

// AWSConfig represents AWS-specific configuration settings.
// An empty SQSQueueURL disables event publishing.
type AWSConfig struct {
	Region         string
	Endpoint       string
	SQSQueueURL    string
	OutboxInterval time.Duration
}

// DB represents database configuration settings.
type DB struct {
	Host           string
	User           string
	Password       string
	Name           string
	Port           string
	MigrationsPath string
}

// Server represents server configuration settings.
type Server struct {
	Port string
}

// Upstream is an HTTP collaborator reached with a bounded timeout.
type Upstream struct {
	URL     string
	Timeout time.Duration
}

// RedisConfig configures the scrape cache. An empty URL disables caching.
type RedisConfig struct {
	URL string
	TTL time.Duration
}

func allNonEmpty(keyValues map[string]string) error {
	for key, value := range keyValues {
		if value == "" {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("error", "value is empty"))
			return fmt.Errorf("%w for key: %s", ErrMissingConfig, key)
		}
	}
	return nil
}

func allNumbers(keyValues map[string]string) error {
	for key, value := range keyValues {
		_, err := strconv.Atoi(value)
		if err != nil {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("value", value), slog.String("error", err.Error()))
			return fmt.Errorf("invalid number for key %s: %w", key, err)
		}
	}
	return nil
}

func allPositive(keyValues map[string]time.Duration) error {
	for key, value := range keyValues {
		if value <= 0 {
			slog.Error("configuration validation failed", slog.String("key", key), slog.Duration("value", value))
			return fmt.Errorf("duration for key %s must be positive", key)
		}
	}
	return nil
}

func (c *Config) validate() error {
	if err := allNonEmpty(map[string]string{
		DBHostEnv: c.Database.Host,
		DBUserEnv: c.Database.User,
		DBNameEnv: c.Database.Name,
	}); err != nil {
		return fmt.Errorf("database configuration incomplete: %w", err)
	}

	if err := allNonEmpty(map[string]string{
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("server port configuration incomplete: %w", err)
	}

	if err := allNumbers(map[string]string{
		DBPortEnv:            c.Database.Port,
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("invalid port number: %w", err)
	}

	if err := allNonEmpty(map[string]string{
		ScraperURLEnv: c.Scraper.URL,
	}); err != nil {
		return fmt.Errorf("scraper configuration incomplete: %w", err)
	}

	if err := allPositive(map[string]time.Duration{
		ScraperTimeoutEnv:   c.Scraper.Timeout,
		PredictorTimeoutEnv: c.Predictor.Timeout,
		ScrapeCacheTTLEnv:   c.Redis.TTL,
		OutboxIntervalEnv:   c.AWS.OutboxInterval,
	}); err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}

	return nil
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if val, err := strconv.ParseBool(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsDuration(name string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return defaultValue
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration, using default", slog.String("key", name), slog.String("value", raw), slog.Duration("default", defaultValue))
		return defaultValue
	}
	return val
}

func getEnvOrDefault(name, defaultValue string) string {
	if val := os.Getenv(name); val != "" {
		return val
	}
	return defaultValue
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// ApplyEnvFile loads environment variables from the specified .env files.
func ApplyEnvFile(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables and validates it.
func LoadFromEnv() (*Config, error) {
	envPath := getEnvOrDefault(EnvFilePath, DefaultEnvFilePath)
	err := ApplyEnvFile(envPath)
	if err != nil {
		// just log the error, maybe all envs are set in another way
		slog.Info("failed to load from .env", slog.Any("err", err))
	}

	conf := &Config{
		DebugMode: getEnvAsBool(DebugModeEnv, false),
		Database: DB{
			Host:           os.Getenv(DBHostEnv),
			User:           os.Getenv(DBUserEnv),
			Password:       os.Getenv(DBPassEnv),
			Name:           os.Getenv(DBNameEnv),
			Port:           os.Getenv(DBPortEnv),
			MigrationsPath: getEnvOrDefault(MigrationsPathEnv, defaultMigrationsPath),
		},
		HTTPServer: Server{
			Port: os.Getenv(HTTPServerPortEnv),
		},
		MetricsServer: Server{
			Port: os.Getenv(MetricsServerPortEnv),
		},
		CORSAllowedOrigins: splitList(getEnvOrDefault(CORSAllowedOriginsEnv, defaultCORSOrigins)),
		AWS: AWSConfig{
			Region:         os.Getenv(AWSRegionEnv),
			Endpoint:       os.Getenv(AWSEndpointEnv),
			SQSQueueURL:    os.Getenv(SQSQueueURLEnv),
			OutboxInterval: getEnvAsDuration(OutboxIntervalEnv, defaultOutboxInterval),
		},
		Scraper: Upstream{
			URL:     os.Getenv(ScraperURLEnv),
			Timeout: getEnvAsDuration(ScraperTimeoutEnv, defaultScraperTimeout),
		},
		Predictor: Upstream{
			URL:     os.Getenv(PredictorURLEnv),
			Timeout: getEnvAsDuration(PredictorTimeoutEnv, defaultPredictorTimeout),
		},
		Redis: RedisConfig{
			URL: os.Getenv(RedisURLEnv),
			TTL: getEnvAsDuration(ScrapeCacheTTLEnv, defaultScrapeCacheTTL),
		},
		DefaultCurrency: getEnvOrDefault(DefaultCurrencyEnv, defaultCurrency),
	}

	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}
