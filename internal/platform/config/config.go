package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultProgramID      = "MetaMarket111111111111111111111111111111111"
	DefaultTokenProgramID = "TokenLedger11111111111111111111111111111111"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string   `yaml:"service_name"`
	HTTPPort     string   `yaml:"http_port"`
	PostgresDSN  string   `yaml:"postgres_dsn"`
	KafkaBrokers []string `yaml:"kafka_brokers"`

	PostgresMaxOpenConns    int           `yaml:"postgres_max_open_conns"`
	PostgresConnMaxLifetime time.Duration `yaml:"postgres_conn_max_lifetime"`

	// StorageBackend selects "memory" or "postgres" account and ledger storage.
	StorageBackend string `yaml:"storage_backend"`

	ProgramID      string `yaml:"program_id"`
	TokenProgramID string `yaml:"token_program_id"`

	RentLamportsPerByteYear     uint64 `yaml:"rent_lamports_per_byte_year"`
	RentExemptionThresholdYears uint64 `yaml:"rent_exemption_threshold_years"`

	SubmitRatePerSecond float64       `yaml:"submit_rate_per_second"`
	SubmitBurst         int           `yaml:"submit_burst"`
	IdempotencyTTL      time.Duration `yaml:"idempotency_ttl"`
	OutboxPollInterval  time.Duration `yaml:"outbox_poll_interval"`
	OutboxBatchSize     int           `yaml:"outbox_batch_size"`

	// TrustedProxies lists the peers (IPs or CIDRs) whose X-Forwarded-For
	// header is honored when keying the submit rate limiter.
	TrustedProxies []string `yaml:"trusted_proxies"`

	EnableSwagger bool `yaml:"enable_swagger"`
}

func defaults() Config {
	return Config{
		ServiceName:    "metamarket",
		HTTPPort:       "8080",
		KafkaBrokers:   []string{"localhost:9092"},
		StorageBackend: "memory",

		PostgresMaxOpenConns:    20,
		PostgresConnMaxLifetime: 30 * time.Minute,

		ProgramID:      DefaultProgramID,
		TokenProgramID: DefaultTokenProgramID,

		RentLamportsPerByteYear:     3480,
		RentExemptionThresholdYears: 2,

		SubmitRatePerSecond: 50,
		SubmitBurst:         100,
		IdempotencyTTL:      7 * 24 * time.Hour,
		OutboxPollInterval:  2 * time.Second,
		OutboxBatchSize:     100,

		EnableSwagger: true,
	}
}

// Load resolves configuration in order: defaults, the YAML file named by
// CONFIG_FILE, then environment variables. A .env file in the working
// directory (or ENV_FILE) is loaded into the environment first without
// overriding variables that are already set.
func Load() (Config, error) {
	envFile := strings.TrimSpace(os.Getenv("ENV_FILE"))
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	cfg := defaults()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.ServiceName = envString("SERVICE_NAME", cfg.ServiceName)
	cfg.HTTPPort = envString("HTTP_PORT", cfg.HTTPPort)
	cfg.PostgresDSN = envString("POSTGRES_DSN", cfg.PostgresDSN)
	cfg.StorageBackend = strings.ToLower(envString("STORAGE_BACKEND", cfg.StorageBackend))
	cfg.ProgramID = envString("PROGRAM_ID", cfg.ProgramID)
	cfg.TokenProgramID = envString("TOKEN_PROGRAM_ID", cfg.TokenProgramID)

	cfg.KafkaBrokers = envList("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.TrustedProxies = envList("TRUSTED_PROXIES", cfg.TrustedProxies)

	var err error
	if cfg.RentLamportsPerByteYear, err = envUint("RENT_LAMPORTS_PER_BYTE_YEAR", cfg.RentLamportsPerByteYear); err != nil {
		return Config{}, err
	}
	if cfg.RentExemptionThresholdYears, err = envUint("RENT_EXEMPTION_THRESHOLD_YEARS", cfg.RentExemptionThresholdYears); err != nil {
		return Config{}, err
	}
	if cfg.SubmitRatePerSecond, err = envFloat("SUBMIT_RATE_PER_SECOND", cfg.SubmitRatePerSecond); err != nil {
		return Config{}, err
	}
	if cfg.SubmitBurst, err = envInt("SUBMIT_BURST", cfg.SubmitBurst); err != nil {
		return Config{}, err
	}
	if cfg.PostgresMaxOpenConns, err = envInt("POSTGRES_MAX_OPEN_CONNS", cfg.PostgresMaxOpenConns); err != nil {
		return Config{}, err
	}
	if cfg.PostgresConnMaxLifetime, err = envDuration("POSTGRES_CONN_MAX_LIFETIME", cfg.PostgresConnMaxLifetime); err != nil {
		return Config{}, err
	}
	if cfg.OutboxBatchSize, err = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = envDuration("IDEMPOTENCY_TTL", cfg.IdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.OutboxPollInterval, err = envDuration("OUTBOX_POLL_INTERVAL", cfg.OutboxPollInterval); err != nil {
		return Config{}, err
	}
	cfg.EnableSwagger = envBool("ENABLE_SWAGGER", cfg.EnableSwagger)

	switch cfg.StorageBackend {
	case "memory", "postgres":
	default:
		return Config{}, fmt.Errorf("STORAGE_BACKEND must be memory or postgres, got %q", cfg.StorageBackend)
	}
	return cfg, nil
}

func envString(name string, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value
	}
	return fallback
}

func envList(name string, fallback []string) []string {
	var values []string
	for _, value := range strings.Split(os.Getenv(name), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			values = append(values, value)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}

func envUint(name string, fallback uint64) (uint64, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return value, nil
}

func envInt(name string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return value, nil
}

func envFloat(name string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return value, nil
}

func envDuration(name string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return value, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
