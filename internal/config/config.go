// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - All functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"time"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Store selects the item store backend: memory or mongo.
	Store string `koanf:"store"`

	// MongoURI is the connection string used when Store is "mongo".
	MongoURI string `koanf:"mongo_uri"`

	// MongoDatabase and MongoCollection locate the items collection.
	MongoDatabase   string `koanf:"mongo_database"`
	MongoCollection string `koanf:"mongo_collection"`

	// MongoConnectTimeoutMS bounds the initial connect and ping.
	MongoConnectTimeoutMS int `koanf:"mongo_connect_timeout_ms"`

	// Metrics shapes the Prometheus metrics served on /metrics.
	MetricsEnabled   bool   `koanf:"metrics_enabled"`
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`
	MetricsPrefix    string `koanf:"metrics_prefix"`

	// MetricsRefreshMS is the gauge updater period.
	MetricsRefreshMS int `koanf:"metrics_refresh_ms"`

	// MetricsBucketsMS overrides the latency histogram buckets. Empty keeps
	// the built-in buckets.
	MetricsBucketsMS []float64 `koanf:"metrics_buckets_ms"`

	// MetricsLabels are constant labels added to every series (YAML only).
	MetricsLabels map[string]string `koanf:"metrics_labels"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":8080",
		Store:                 StoreMemory,
		MongoURI:              "mongodb://localhost:27017",
		MongoDatabase:         "shopping-list",
		MongoCollection:       "items",
		MongoConnectTimeoutMS: 10_000,
		MetricsEnabled:        true,
		MetricsNamespace:      "shoplist",
		MetricsSubsystem:      "api",
		MetricsRefreshMS:      10_000,
	}
}

// MongoConnectTimeout returns MongoConnectTimeoutMS as a duration.
func (c *Config) MongoConnectTimeout() time.Duration {
	return time.Duration(c.MongoConnectTimeoutMS) * time.Millisecond
}

// MetricsRefresh returns MetricsRefreshMS as a duration.
func (c *Config) MetricsRefresh() time.Duration {
	return time.Duration(c.MetricsRefreshMS) * time.Millisecond
}
