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

package gavel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/gavel/api"
	"github.com/blinklabs-io/gavel/database"
	"github.com/blinklabs-io/gavel/event"
	"github.com/blinklabs-io/gavel/governance"
	"github.com/blinklabs-io/gavel/scheduler"
)

// auditedEvents are logged as they are published
var auditedEvents = []event.EventType{
	event.StageTransitionEventType,
	event.ProposalPassedEventType,
	event.ProposalVetoedEventType,
	event.ProposalFinalizedEventType,
	event.DelegationChangedEventType,
	event.EraAdvancedEventType,
	event.EraRolledUpEventType,
	event.MeritAwardedEventType,
	event.ChamberChangedEventType,
}

// Server runs the governance engine with its storage, HTTP command API
// and schedulers
type Server struct {
	eventBus      *event.EventBus
	db            *database.Database
	engine        *governance.Engine
	api           *api.API
	scheduler     *scheduler.Scheduler
	shutdownFuncs []func(context.Context) error
	config        Config
	done          chan struct{}
	shutdownOnce  sync.Once
	ready         chan struct{}
}

func New(cfg Config) (*Server, error) {
	eventBus := event.NewEventBus(cfg.promRegistry, cfg.logger)
	s := &Server{
		config:   cfg,
		eventBus: eventBus,
		done:     make(chan struct{}),
		ready:    make(chan struct{}),
	}
	if err := s.configValidate(); err != nil {
		eventBus.Stop()
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return s, nil
}

// Engine returns the governance engine. It is nil until Run has opened
// the database.
func (s *Server) Engine() *governance.Engine {
	return s.engine
}

// Ready is closed once every component has started
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Run starts all components and blocks until Stop is called or ctx is
// cancelled
func (s *Server) Run(ctx context.Context) error {
	// Configure tracing
	if s.config.tracing {
		if err := s.setupTracing(ctx); err != nil {
			return err
		}
	}
	// Load database
	db, err := database.New(&database.Config{
		DataDir:        s.config.dataDir,
		Logger:         s.config.logger,
		PromRegistry:   s.config.promRegistry,
		BlobPlugin:     s.config.blobPlugin,
		MetadataPlugin: s.config.metadataPlugin,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db
	// Load governance engine
	engine, err := governance.NewEngine(governance.EngineConfig{
		Database:     s.db,
		EventBus:     s.eventBus,
		Clock:        s.config.clock,
		Logger:       s.config.logger,
		PromRegistry: s.config.promRegistry,
		Params:       s.config.params,
	})
	if err != nil {
		return fmt.Errorf("failed to load governance engine: %w", err)
	}
	s.engine = engine
	s.subscribeAudit()
	// Configure schedulers
	sched, err := scheduler.New(scheduler.Config{
		Engine:           s.engine,
		Logger:           s.config.logger,
		EraSchedule:      s.config.eraSchedule,
		FinalizeSchedule: s.config.finalizeSchedule,
	})
	if err != nil {
		return fmt.Errorf("failed to configure scheduler: %w", err)
	}
	s.scheduler = sched
	s.scheduler.Start()
	// Configure HTTP command API
	if s.config.apiListenAddress != "" {
		srv, err := api.New(
			api.Config{
				PromRegistry:         s.config.promRegistry,
				ListenAddress:        s.config.apiListenAddress,
				IdempotencyCacheSize: s.config.idempotencyCacheSize,
			},
			s.engine,
			s.db,
			s.config.logger,
		)
		if err != nil {
			return fmt.Errorf("failed to configure API: %w", err)
		}
		s.api = srv
		if err := s.api.Start(ctx); err != nil {
			return err
		}
	}
	close(s.ready)

	// Wait for shutdown signal
	select {
	case <-s.done:
	case <-ctx.Done():
	}
	return nil
}

func (s *Server) subscribeAudit() {
	logger := s.config.logger.With("component", "audit")
	for _, eventType := range auditedEvents {
		s.eventBus.SubscribeFunc(eventType, func(evt event.Event) {
			logger.Info(
				string(evt.Type),
				"timestamp", evt.Timestamp,
				"data", evt.Data,
			)
		})
	}
}

func (s *Server) Stop() error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.shutdown()
	})
	return err
}

func (s *Server) shutdown() error {
	// Create shutdown context with timeout (default 30s if not configured)
	shutdownTimeout := 30 * time.Second
	if s.config.shutdownTimeout > 0 {
		shutdownTimeout = s.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	s.config.logger.Debug("starting graceful shutdown")

	// Phase 1: Stop accepting new work
	s.config.logger.Debug("shutdown phase 1: stopping new work")

	if s.api != nil {
		if stopErr := s.api.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("api shutdown: %w", stopErr))
		}
	}

	// Phase 2: Wait for running jobs
	s.config.logger.Debug("shutdown phase 2: draining scheduled jobs")

	if s.scheduler != nil {
		s.scheduler.Stop()
	}

	// Phase 3: Close database
	s.config.logger.Debug("shutdown phase 3: closing database")

	if s.eventBus != nil {
		s.eventBus.Stop()
	}

	if s.db != nil {
		if closeErr := s.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}

	// Phase 4: Cleanup resources
	s.config.logger.Debug("shutdown phase 4: cleanup resources")

	// Call registered shutdown functions
	for _, fn := range s.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	s.shutdownFuncs = nil

	s.config.logger.Debug("graceful shutdown complete")
	close(s.done)
	return err
}
