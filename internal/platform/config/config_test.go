package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	for _, name := range []string{
		"CONFIG_FILE", "SERVICE_NAME", "HTTP_PORT", "POSTGRES_DSN", "KAFKA_BROKERS", "STORAGE_BACKEND",
		"PROGRAM_ID", "TOKEN_PROGRAM_ID", "RENT_LAMPORTS_PER_BYTE_YEAR", "RENT_EXEMPTION_THRESHOLD_YEARS",
		"SUBMIT_RATE_PER_SECOND", "SUBMIT_BURST", "IDEMPOTENCY_TTL", "OUTBOX_POLL_INTERVAL",
		"OUTBOX_BATCH_SIZE", "ENABLE_SWAGGER", "POSTGRES_MAX_OPEN_CONNS", "POSTGRES_CONN_MAX_LIFETIME",
		"TRUSTED_PROXIES",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.StorageBackend)
	assert.Equal(t, DefaultProgramID, cfg.ProgramID)
	assert.Equal(t, uint64(3480), cfg.RentLamportsPerByteYear)
	assert.Equal(t, 7*24*time.Hour, cfg.IdempotencyTTL)
	assert.True(t, cfg.EnableSwagger)
	assert.Equal(t, 20, cfg.PostgresMaxOpenConns)
	assert.Equal(t, 30*time.Minute, cfg.PostgresConnMaxLifetime)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestLoadLayersFileThenEnvironment(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()

	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("http_port: \"9000\"\nsubmit_burst: 7\nkafka_brokers:\n  - broker-a:9092\n"), 0o600))
	envPath := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("SUBMIT_BURST=11\n"), 0o600))

	t.Setenv("CONFIG_FILE", configPath)
	t.Setenv("ENV_FILE", envPath)
	t.Setenv("OUTBOX_POLL_INTERVAL", "250ms")
	t.Setenv("KAFKA_BROKERS", "b1:9092, b2:9092")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.10")
	os.Unsetenv("SUBMIT_BURST")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, 11, cfg.SubmitBurst)
	assert.Equal(t, 250*time.Millisecond, cfg.OutboxPollInterval)
	assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.10"}, cfg.TrustedProxies)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	isolateEnv(t)
	t.Setenv("STORAGE_BACKEND", "redis")
	_, err := Load()
	require.Error(t, err)

	isolateEnv(t)
	t.Setenv("RENT_LAMPORTS_PER_BYTE_YEAR", "-1")
	_, err = Load()
	require.Error(t, err)
}
