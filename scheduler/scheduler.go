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

// Package scheduler drives the time-based governance jobs: advancing the
// era on a cron schedule and sweeping passed proposals whose veto window
// has elapsed.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron"

	"github.com/blinklabs-io/gavel/governance"
)

const (
	DefaultEraSchedule      = "@every 168h"
	DefaultFinalizeSchedule = "@every 1m"

	jobTimeout = 30 * time.Second
)

// Engine is the subset of the governance engine the scheduler drives
type Engine interface {
	CurrentEra(context.Context) (*governance.EraStatus, error)
	AdvanceEra(context.Context, *uint64) (*governance.AdvanceEraResult, error)
	FinalizeDue(context.Context) ([]string, error)
}

type Config struct {
	Engine           Engine
	Logger           *slog.Logger
	EraSchedule      string
	FinalizeSchedule string
}

type Scheduler struct {
	config  Config
	logger  *slog.Logger
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	jobWg   sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// New validates both schedules and returns a stopped scheduler. An empty
// era schedule disables automatic era advancement.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Engine == nil {
		return nil, errors.New("engine is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.FinalizeSchedule == "" {
		cfg.FinalizeSchedule = DefaultFinalizeSchedule
	}
	s := &Scheduler{
		config: cfg,
		logger: cfg.Logger.With("component", "scheduler"),
		cron:   cron.NewWithLocation(time.UTC),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	if cfg.EraSchedule != "" {
		if err := s.cron.AddFunc(cfg.EraSchedule, s.job(s.RunEraAdvance)); err != nil {
			return nil, fmt.Errorf("invalid era schedule %q: %w", cfg.EraSchedule, err)
		}
	}
	if err := s.cron.AddFunc(cfg.FinalizeSchedule, s.job(s.RunFinalizeSweep)); err != nil {
		return nil, fmt.Errorf(
			"invalid finalize schedule %q: %w",
			cfg.FinalizeSchedule,
			err,
		)
	}
	return s, nil
}

// job wraps fn so Stop can wait for in-flight runs
func (s *Scheduler) job(fn func(context.Context) error) func() {
	return func() {
		s.mu.Lock()
		if !s.running {
			s.mu.Unlock()
			return
		}
		s.jobWg.Add(1)
		s.mu.Unlock()
		defer s.jobWg.Done()
		ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
		defer cancel()
		if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("scheduled job failed", "error", err)
		}
	}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()
	s.logger.Info(
		"scheduler started",
		"era_schedule", s.config.EraSchedule,
		"finalize_schedule", s.config.FinalizeSchedule,
	)
}

// Stop halts the schedule and waits for running jobs to return
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.running {
		s.cron.Stop()
		s.running = false
	}
	s.mu.Unlock()
	s.cancel()
	s.jobWg.Wait()
}

// RunEraAdvance advances out of the era that is current when the job starts,
// so overlapping runs move the clock at most once
func (s *Scheduler) RunEraAdvance(ctx context.Context) error {
	status, err := s.config.Engine.CurrentEra(ctx)
	if err != nil {
		return fmt.Errorf("read current era: %w", err)
	}
	from := status.Era
	result, err := s.config.Engine.AdvanceEra(ctx, &from)
	if err != nil {
		return fmt.Errorf("advance era %d: %w", from, err)
	}
	if result.Advanced {
		s.logger.Info(
			"era advanced by schedule",
			"era", result.Era,
			"active_governors", result.ActiveGovernors,
		)
	}
	return nil
}

func (s *Scheduler) RunFinalizeSweep(ctx context.Context) error {
	finalized, err := s.config.Engine.FinalizeDue(ctx)
	if err != nil {
		return fmt.Errorf("finalize sweep: %w", err)
	}
	for _, id := range finalized {
		s.logger.Info("proposal finalized by sweep", "proposal_id", id)
	}
	return nil
}
