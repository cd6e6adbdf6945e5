// Copyright 2026 Blink Labs Software
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

// Package api exposes the governance engine as a JSON command surface.
// Callers sit behind an authenticating proxy that sets the actor headers.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/blinklabs-io/gavel/database"
)

const (
	DefaultListenAddress        = ":8080"
	DefaultIdempotencyCacheSize = 4096
)

type Config struct {
	PromRegistry         prometheus.Registerer
	ListenAddress        string
	IdempotencyCacheSize int
}

// API is the HTTP command server
type API struct {
	config      Config
	logger      *slog.Logger
	engine      Engine
	idempotency *idempotencyStore
	metrics     apiMetrics
	httpServer  *http.Server
	mu          sync.Mutex
}

// New creates an API server. The database holds the idempotency records.
func New(
	cfg Config,
	engine Engine,
	db *database.Database,
	logger *slog.Logger,
) (*API, error) {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "api")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	if cfg.IdempotencyCacheSize <= 0 {
		cfg.IdempotencyCacheSize = DefaultIdempotencyCacheSize
	}
	idempotency, err := newIdempotencyStore(db, cfg.IdempotencyCacheSize)
	if err != nil {
		return nil, err
	}
	a := &API{
		config:      cfg,
		logger:      logger,
		engine:      engine,
		idempotency: idempotency,
	}
	a.metrics.init(cfg.PromRegistry)
	return a, nil
}

// Handler returns the routed handler without starting a listener
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", a.handleHealth)

	// Proposals
	a.command(mux, "POST /api/v1/proposals", a.handleCreateProposal)
	a.command(mux, "POST /api/v1/proposals/{id}/submit", a.handleSubmitProposal)
	a.query(mux, "GET /api/v1/proposals", a.handleListProposals)
	a.query(mux, "GET /api/v1/proposals/{id}", a.handleGetProposal)
	a.query(mux, "GET /api/v1/proposals/{id}/pool", a.handlePoolStatus)
	a.query(mux, "GET /api/v1/proposals/{id}/chamber", a.handleChamberStatus)

	// Votes
	a.command(mux, "POST /api/v1/pool/vote", a.handlePoolVote)
	a.command(mux, "POST /api/v1/chamber/vote", a.handleChamberVote)
	a.command(mux, "POST /api/v1/veto/vote", a.handleVetoVote)
	a.query(mux, "GET /api/v1/veto/council", a.handleVetoCouncil)

	// Delegation
	a.command(mux, "POST /api/v1/delegation/set", a.handleSetDelegation)
	a.command(mux, "POST /api/v1/delegation/clear", a.handleClearDelegation)
	a.query(mux, "GET /api/v1/delegation/{chamberId}", a.handleDelegations)
	a.query(mux, "GET /api/v1/delegation/{chamberId}/weights", a.handleDelegationWeights)
	a.query(mux, "GET /api/v1/delegation/{chamberId}/log", a.handleDelegationLog)

	// Clock
	a.admin(mux, "POST /api/v1/clock/advance-era", a.handleAdvanceEra)
	a.admin(mux, "POST /api/v1/clock/rollup-era", a.handleRollupEra)
	a.query(mux, "GET /api/v1/clock", a.handleClock)

	// Chambers, merit and activity
	a.admin(mux, "POST /api/v1/chambers", a.handleCreateChamber)
	a.admin(mux, "POST /api/v1/chambers/{id}/dissolve", a.handleDissolveChamber)
	a.query(mux, "GET /api/v1/chambers", a.handleChambers)
	a.admin(mux, "POST /api/v1/activity", a.handleRecordActivity)
	a.admin(mux, "POST /api/v1/merit", a.handleAwardMerit)
	a.query(mux, "GET /api/v1/merit", a.handleMeritTotals)

	mux.HandleFunc("/", a.handleNotFound)
	return mux
}

// Start binds the listener and serves in the background until Stop is
// called or ctx is cancelled
func (a *API) Start(
	ctx context.Context,
) error {
	a.mu.Lock()
	if a.httpServer != nil {
		a.mu.Unlock()
		return errors.New("server already started")
	}
	server := &http.Server{
		Addr:              a.config.ListenAddress,
		Handler:           h2c.NewHandler(a.Handler(), &http2.Server{}),
		ReadHeaderTimeout: 60 * time.Second,
	}
	a.httpServer = server
	a.mu.Unlock()

	if err := a.startServer(server); err != nil {
		a.mu.Lock()
		a.httpServer = nil
		a.mu.Unlock()
		return err
	}

	a.logger.Info(
		"API listener started on " + a.config.ListenAddress,
	)

	// Monitor context for cancellation
	go func() {
		<-ctx.Done()
		//nolint:contextcheck
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			30*time.Second,
		)
		defer cancel()
		//nolint:contextcheck
		if err := a.Stop(shutdownCtx); err != nil {
			a.logger.Error(
				"failed to shutdown API server on context cancellation",
				"error", err,
			)
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server
func (a *API) Stop(
	ctx context.Context,
) error {
	a.mu.Lock()
	srv := a.httpServer
	a.httpServer = nil
	a.mu.Unlock()

	if srv != nil {
		a.logger.Debug("shutting down API server")
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown API server: %w", err)
		}
	}
	return nil
}

// startServer binds the listening socket first so port conflicts are
// reported immediately, then serves in a background goroutine
func (a *API) startServer(
	server *http.Server,
) error {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen for API server: %w", err)
	}
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(
				"API server error",
				"error", err,
			)
		}
	}()
	return nil
}
