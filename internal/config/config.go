// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers an optional .env file, an optional YAML file and CLASSMATES_* env vars on top.
// - Validation failures wrap ErrInvalidConfig; loading failures wrap ErrLoadConfig.
package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/okian/classmates/pkg/metrics"
)

// Config contains process configuration shared by the web app and the CLI.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address of the web app, e.g. ":8080".
	Addr string `koanf:"addr"`

	// BackendURL is the origin of the roster backend, e.g. "http://localhost:5001".
	BackendURL string `koanf:"backend_url"`

	// APIBasePath is the path prefix of the backend endpoints.
	APIBasePath string `koanf:"api_base_path"`

	// RequestTimeoutMS bounds a single backend call. Zero keeps the transport default.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// SeedWorkers sets the concurrency of `classmates seed`.
	SeedWorkers int `koanf:"seed_workers"`

	// MetricsEnabled toggles recording into the collectors scraped from /healthz.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsNamespace and MetricsSubsystem make up the metric name prefix,
	// e.g. classmates_roster_client_requests_total.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsPrefix is prepended to each metric's base name when set.
	MetricsPrefix string `koanf:"metrics_prefix"`

	// MetricsRefreshMS is how often the system gauges are refreshed.
	MetricsRefreshMS int `koanf:"metrics_refresh_ms"`

	// MetricsBucketsMS overrides the latency histogram buckets.
	MetricsBucketsMS []float64 `koanf:"metrics_buckets_ms"`

	// MetricsLabels are constant labels attached to every metric.
	MetricsLabels map[string]string `koanf:"metrics_labels"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":8080",
		BackendURL:       "http://localhost:5001",
		APIBasePath:      "/api",
		RequestTimeoutMS: 0,
		SeedWorkers:      8,
		MetricsEnabled:   true,
		MetricsNamespace: "classmates",
		MetricsSubsystem: "roster",
		MetricsRefreshMS: 10000,
	}
}

// MetricsOptions translates the metrics_* keys into manager options.
func (c *Config) MetricsOptions() []metrics.Option {
	return []metrics.Option{
		metrics.WithMetricsEnabled(c.MetricsEnabled),
		metrics.WithNamespace(c.MetricsNamespace),
		metrics.WithSubsystem(c.MetricsSubsystem),
		metrics.WithMetricPrefix(c.MetricsPrefix),
		metrics.WithRefreshInterval(time.Duration(c.MetricsRefreshMS) * time.Millisecond),
		metrics.WithHistogramBuckets(c.MetricsBucketsMS),
		metrics.WithCustomLabels(c.MetricsLabels),
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// Validate checks the fields every binary relies on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: backend_url must be an absolute URL, got %q", ErrInvalidConfig, c.BackendURL)
	}
	if c.APIBasePath != "" && !strings.HasPrefix(c.APIBasePath, "/") {
		return fmt.Errorf("%w: api_base_path must start with /", ErrInvalidConfig)
	}
	if c.RequestTimeoutMS < 0 {
		return fmt.Errorf("%w: request_timeout_ms must not be negative", ErrInvalidConfig)
	}
	if c.SeedWorkers <= 0 {
		return fmt.Errorf("%w: seed_workers must be positive", ErrInvalidConfig)
	}
	if c.MetricsRefreshMS <= 0 {
		return fmt.Errorf("%w: metrics_refresh_ms must be positive", ErrInvalidConfig)
	}
	if !sort.Float64sAreSorted(c.MetricsBucketsMS) {
		return fmt.Errorf("%w: metrics_buckets_ms must be ascending", ErrInvalidConfig)
	}
	return nil
}
