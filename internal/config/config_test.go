package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var managedKeys = []string{
	"MONGO_URI", "DATABASE_URL", "PORT", "HTTP_ADDRESS", "MONGO_DATABASE", "LOG_LEVEL",
	"KAFKA_BROKERS", "EVENTS_TOPIC", "PUBLISH_TIMEOUT", "STORE_TIMEOUT", "SHUTDOWN_TIMEOUT",
}

// clearEnv unsets every key Load reads and restores the previous values on cleanup.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range managedKeys {
		prev, ok := os.LookupEnv(key)
		require.NoError(t, os.Unsetenv(key))
		t.Cleanup(func() {
			if ok {
				_ = os.Setenv(key, prev)
			} else {
				_ = os.Unsetenv(key)
			}
		})
	}
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	clearEnv(t)

	_, err := Load(noEnvFile(t))
	require.ErrorIs(t, err, ErrMissingDatabaseURL)
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)
	require.Equal(t, "mongodb://localhost:27017", cfg.DatabaseURL)
	require.Equal(t, ":3000", cfg.HTTPAddress)
	require.Equal(t, "exercise_tracker", cfg.MongoDatabase)
	require.Equal(t, "info", cfg.LogLevel)
	require.Empty(t, cfg.KafkaBrokers)
	require.Equal(t, 2*time.Second, cfg.PublishTimeout)
	require.Equal(t, 10*time.Second, cfg.StoreTimeout)
	require.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/tracker")
	t.Setenv("PORT", "8080")
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv("STORE_TIMEOUT", "3s")
	t.Setenv("PUBLISH_TIMEOUT", "250ms")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)
	require.Equal(t, "postgres://localhost/tracker", cfg.DatabaseURL)
	require.Equal(t, ":8080", cfg.HTTPAddress)
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 3*time.Second, cfg.StoreTimeout)
	require.Equal(t, 250*time.Millisecond, cfg.PublishTimeout)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadHTTPAddressWinsOverPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGO_URI", "memory://")
	t.Setenv("PORT", "8080")
	t.Setenv("HTTP_ADDRESS", "127.0.0.1:9000")

	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9000", cfg.HTTPAddress)
}

func TestLoadReadsEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "4000")

	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte("MONGO_URI=mongodb://from-file:27017\nPORT=5000\n"), 0o600))

	cfg, err := Load(file)
	require.NoError(t, err)
	require.Equal(t, "mongodb://from-file:27017", cfg.DatabaseURL)
	require.Equal(t, ":4000", cfg.HTTPAddress, "process environment wins over the env file")
}
