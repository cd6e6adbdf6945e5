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

package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/blinklabs-io/gavel"
	"github.com/blinklabs-io/gavel/internal/config"
)

// Run starts the governance server and the metrics listener and blocks
// until SIGINT/SIGTERM or a component fails
func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")

	shutdownTimeout, err := cfg.ShutdownTimeoutDuration()
	if err != nil {
		return err
	}

	g, err := gavel.New(
		gavel.NewConfig(
			gavel.WithLogger(logger),
			gavel.WithDatabasePath(cfg.DatabasePath),
			gavel.WithBlobPlugin(cfg.BlobPlugin),
			gavel.WithMetadataPlugin(cfg.MetadataPlugin),
			gavel.WithGovernanceParams(cfg.Governance),
			gavel.WithAPIListenAddress(cfg.ApiListenAddress()),
			gavel.WithIdempotencyCacheSize(cfg.IdempotencyCacheSize),
			gavel.WithEraSchedule(cfg.EraSchedule),
			gavel.WithFinalizeSchedule(cfg.FinalizeSchedule),
			gavel.WithTracing(cfg.Tracing.Enabled),
			gavel.WithTracingStdout(cfg.Tracing.Stdout),
			gavel.WithShutdownTimeout(shutdownTimeout),
			// Enable metrics with default prometheus registry
			gavel.WithPrometheusRegistry(prometheus.DefaultRegisterer),
		),
	)
	if err != nil {
		return err
	}

	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	eg, egCtx := errgroup.WithContext(signalCtx)

	// Metrics listener
	var metricsServer *http.Server
	if cfg.MetricsPort > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsAddr := fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.MetricsPort)
		logger.Info(
			"serving prometheus metrics on "+metricsAddr,
			"component", "node",
		)
		metricsServer = &http.Server{
			Addr:              metricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 60 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		}
		eg.Go(func() error {
			if err := metricsServer.ListenAndServe(); err != nil &&
				!errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics listener: %w", err)
			}
			return nil
		})
	}

	// Governance server
	eg.Go(func() error {
		return g.Run(egCtx)
	})

	// Shut everything down once the signal arrives or any component fails
	eg.Go(func() error {
		<-egCtx.Done()
		logger.Info(
			"initiating graceful shutdown",
			"component", "node",
		)
		//nolint:contextcheck
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			shutdownTimeout,
		)
		defer cancel()
		var err error
		if metricsServer != nil {
			//nolint:contextcheck
			if shutdownErr := metricsServer.Shutdown(shutdownCtx); shutdownErr != nil {
				err = errors.Join(err, fmt.Errorf("metrics server shutdown: %w", shutdownErr))
			}
		}
		if stopErr := g.Stop(); stopErr != nil {
			err = errors.Join(err, stopErr)
		}
		return err
	})

	if err := eg.Wait(); err != nil {
		logger.Error("shutdown errors occurred", "error", err, "component", "node")
		return err
	}
	logger.Info("shutdown complete", "component", "node")
	return nil
}
