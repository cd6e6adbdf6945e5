// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package gavel

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/gavel/clock"
	"github.com/blinklabs-io/gavel/governance"
	"github.com/blinklabs-io/gavel/scheduler"
)

type Config struct {
	promRegistry         prometheus.Registerer
	logger               *slog.Logger
	clock                clock.Clock
	dataDir              string
	blobPlugin           string
	metadataPlugin       string
	eraSchedule          string
	finalizeSchedule     string
	params               governance.Params
	idempotencyCacheSize int
	tracing              bool
	tracingStdout        bool
	shutdownTimeout      time.Duration
	// API listen address (empty = disabled)
	apiListenAddress string
}

func (s *Server) configValidate() error {
	if err := s.config.params.Validate(); err != nil {
		return err
	}
	if s.config.finalizeSchedule == "" {
		return errors.New("finalize schedule must not be empty")
	}
	if s.config.idempotencyCacheSize < 0 {
		return fmt.Errorf(
			"invalid idempotency cache size: %d",
			s.config.idempotencyCacheSize,
		)
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify the server config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new gavel config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:           slog.New(slog.NewJSONHandler(io.Discard, nil)),
		params:           governance.DefaultParams(),
		eraSchedule:      scheduler.DefaultEraSchedule,
		finalizeSchedule: scheduler.DefaultFinalizeSchedule,
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithBlobPlugin specifies the blob storage plugin to use.
func WithBlobPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.blobPlugin = plugin
	}
}

// WithMetadataPlugin specifies the metadata storage plugin to use.
func WithMetadataPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.metadataPlugin = plugin
	}
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithClock overrides the time source used for governance windows
func WithClock(clk clock.Clock) ConfigOptionFunc {
	return func(c *Config) {
		c.clock = clk
	}
}

// WithGovernanceParams specifies the quorum fractions, windows and era quotas
func WithGovernanceParams(params governance.Params) ConfigOptionFunc {
	return func(c *Config) {
		c.params = params
	}
}

// WithAPIListenAddress specifies the HTTP command API listen address. An empty value disables the API
func WithAPIListenAddress(addr string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiListenAddress = addr
	}
}

// WithIdempotencyCacheSize specifies how many idempotency records are cached in memory
func WithIdempotencyCacheSize(size int) ConfigOptionFunc {
	return func(c *Config) {
		c.idempotencyCacheSize = size
	}
}

// WithEraSchedule specifies the cron expression for automatic era advancement. An empty value disables it
func WithEraSchedule(schedule string) ConfigOptionFunc {
	return func(c *Config) {
		c.eraSchedule = schedule
	}
}

// WithFinalizeSchedule specifies the cron expression for the finalization sweep
func WithFinalizeSchedule(schedule string) ConfigOptionFunc {
	return func(c *Config) {
		c.finalizeSchedule = schedule
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies how long graceful shutdown may take
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
