// Package config centralises configuration parsing for the exercise tracker.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingDatabaseURL is returned when neither MONGO_URI nor DATABASE_URL is set.
var ErrMissingDatabaseURL = errors.New("MONGO_URI (or DATABASE_URL) must be set")

// Config captures runtime configuration values for the exercise tracker.
type Config struct {
	HTTPAddress     string
	DatabaseURL     string
	MongoDatabase   string
	LogLevel        string
	KafkaBrokers    []string // Empty disables event publishing.
	EventsTopic     string
	PublishTimeout  time.Duration // Bound on one event publish.
	StoreTimeout    time.Duration // Bound on connecting to the store at startup.
	ShutdownTimeout time.Duration
}

// Load reads an optional .env file and the process environment into Config.
// Variables already present in the environment take precedence over envFiles.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "3000")
	v.SetDefault("MONGO_DATABASE", "exercise_tracker")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("EVENTS_TOPIC", "exercise_tracker_events")
	v.SetDefault("PUBLISH_TIMEOUT", 2*time.Second)
	v.SetDefault("STORE_TIMEOUT", 10*time.Second)
	v.SetDefault("SHUTDOWN_TIMEOUT", 15*time.Second)

	cfg := Config{
		HTTPAddress:     v.GetString("HTTP_ADDRESS"),
		DatabaseURL:     strings.TrimSpace(v.GetString("MONGO_URI")),
		MongoDatabase:   v.GetString("MONGO_DATABASE"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		KafkaBrokers:    splitAndTrim(v.GetString("KAFKA_BROKERS")),
		EventsTopic:     v.GetString("EVENTS_TOPIC"),
		PublishTimeout:  v.GetDuration("PUBLISH_TIMEOUT"),
		StoreTimeout:    v.GetDuration("STORE_TIMEOUT"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
	}
	if cfg.HTTPAddress == "" {
		cfg.HTTPAddress = ":" + v.GetString("PORT")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = strings.TrimSpace(v.GetString("DATABASE_URL"))
	}
	if cfg.DatabaseURL == "" {
		return Config{}, ErrMissingDatabaseURL
	}
	return cfg, nil
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
