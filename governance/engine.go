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

// Package governance implements the proposal lifecycle engine: pool and
// chamber votes with quorum evaluation, delegation, the veto council, merit
// awards and era rollups. Every command runs in a single database
// transaction and publishes its events after commit.
package governance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/blinklabs-io/gavel/clock"
	"github.com/blinklabs-io/gavel/database"
	"github.com/blinklabs-io/gavel/database/models"
	"github.com/blinklabs-io/gavel/event"
)

const tracerName = "github.com/blinklabs-io/gavel/governance"

type EngineConfig struct {
	Database     *database.Database
	EventBus     *event.EventBus
	Clock        clock.Clock
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	Params       Params
}

type Engine struct {
	config  EngineConfig
	db      *database.Database
	clock   clock.Clock
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics engineMetrics
	params  Params
}

// NewEngine validates the config and prepares the store: the clock row, the
// genesis era snapshot and the general chamber are created when missing
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Database == nil {
		return nil, errors.New("database is required")
	}
	if err := cfg.Params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid governance params: %w", err)
	}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.SystemClock{}
	}
	e := &Engine{
		config: cfg,
		db:     cfg.Database,
		clock:  cfg.Clock,
		logger: cfg.Logger.With("component", "governance"),
		tracer: otel.Tracer(tracerName),
		params: cfg.Params,
	}
	e.metrics.init(cfg.PromRegistry)
	for _, warning := range cfg.Params.Warnings() {
		e.logger.Warn(warning)
	}
	if err := e.bootstrap(); err != nil {
		return nil, fmt.Errorf("bootstrap governance state: %w", err)
	}
	return e, nil
}

func (e *Engine) Params() Params {
	return e.params
}

func (e *Engine) bootstrap() error {
	now := e.clock.Now()
	var currentEra uint64
	err := e.db.Transaction(true).Do(func(txn *database.Txn) error {
		state, err := e.db.GetClockState(txn)
		if err != nil {
			return err
		}
		if state == nil {
			if _, err := e.db.SetClockEra(0, 0, now, txn); err != nil {
				return err
			}
			if _, err := e.db.AddEraSnapshot(&models.EraSnapshot{
				Era:             0,
				ActiveGovernors: e.params.GenesisActiveGovernors,
				CreatedAt:       now,
			}, txn); err != nil {
				return err
			}
			e.logger.Info(
				"initialized governance clock",
				"active_governors", e.params.GenesisActiveGovernors,
			)
		} else {
			currentEra = state.CurrentEra
		}
		added, err := e.db.AddChamber(&models.Chamber{
			ID:         models.GeneralChamberID,
			Title:      "General",
			Multiplier: e.params.DefaultChamberMultiplier,
			CreatedAt:  now,
		}, txn)
		if err != nil {
			return err
		}
		if added {
			e.logger.Debug("created general chamber")
		}
		return nil
	})
	if err != nil {
		return err
	}
	e.metrics.eraCurrent.Set(float64(currentEra))
	return nil
}

// commandCtx is the state shared by the steps of a single command
type commandCtx struct {
	ctx    context.Context
	txn    *database.Txn
	now    time.Time
	events []event.Event
	hooks  []func()
}

func (c *commandCtx) emit(eventType event.EventType, data any) {
	c.events = append(c.events, event.NewEventAt(eventType, data, c.now))
}

// onCommit registers fn to run once the command's writes are committed
func (c *commandCtx) onCommit(fn func()) {
	c.hooks = append(c.hooks, fn)
}

// command runs fn in a read-write transaction inside a tracing span. Events
// recorded by fn are published only once the transaction commits.
func (e *Engine) command(
	ctx context.Context,
	name string,
	attrs []attribute.KeyValue,
	fn func(*commandCtx) error,
) error {
	ctx, span := e.tracer.Start(
		ctx,
		"governance."+name,
		trace.WithAttributes(attrs...),
	)
	defer span.End()
	c := &commandCtx{
		ctx: ctx,
		now: e.clock.Now(),
	}
	var deferred error
	err := e.db.Transaction(true).Do(func(txn *database.Txn) error {
		c.txn = txn
		err := fn(c)
		var committed *committedError
		if errors.As(err, &committed) {
			deferred = committed.err
			return nil
		}
		return err
	})
	if err == nil {
		for _, hook := range c.hooks {
			hook()
		}
		e.publish(c.events)
		err = deferred
	}
	if err != nil {
		e.recordError(span, name, err)
	}
	return err
}

// read runs fn in a read-only transaction inside a tracing span
func (e *Engine) read(
	ctx context.Context,
	name string,
	attrs []attribute.KeyValue,
	fn func(*commandCtx) error,
) error {
	ctx, span := e.tracer.Start(
		ctx,
		"governance."+name,
		trace.WithAttributes(attrs...),
	)
	defer span.End()
	txn := e.db.Transaction(false)
	defer txn.Release()
	c := &commandCtx{
		ctx: ctx,
		txn: txn,
		now: e.clock.Now(),
	}
	if err := fn(c); err != nil {
		e.recordError(span, name, err)
		return err
	}
	return nil
}

func (e *Engine) recordError(span trace.Span, name string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	kind := KindOf(err)
	e.metrics.commandErrors.WithLabelValues(name, kind.String()).Inc()
	if kind == 0 {
		e.logger.Error(
			"governance command failed",
			"command", name,
			"error", err,
		)
		return
	}
	e.logger.Debug(
		"governance command rejected",
		"command", name,
		"error", err,
	)
}

func (e *Engine) publish(events []event.Event) {
	if e.config.EventBus == nil {
		return
	}
	for _, evt := range events {
		e.config.EventBus.PublishAsync(evt.Type, evt)
	}
}

// loadProposal maps a missing proposal onto the domain error
func (e *Engine) loadProposal(
	c *commandCtx,
	id string,
) (*models.Proposal, error) {
	proposal, err := e.db.GetProposal(id, c.txn)
	if err != nil {
		if errors.Is(err, models.ErrProposalNotFound) {
			return nil, newError(ErrProposalNotFound, "proposal %s not found", id)
		}
		return nil, err
	}
	return proposal, nil
}

// loadChamber maps a missing chamber onto the domain error. Dissolved
// chambers are returned as well.
func (e *Engine) loadChamber(
	c *commandCtx,
	id string,
) (*models.Chamber, error) {
	chamber, err := e.db.GetChamber(id, c.txn)
	if err != nil {
		if errors.Is(err, models.ErrChamberNotFound) {
			return nil, newError(ErrChamberNotFound, "chamber %s not found", id)
		}
		return nil, err
	}
	return chamber, nil
}

func (e *Engine) loadActiveChamber(
	c *commandCtx,
	id string,
) (*models.Chamber, error) {
	chamber, err := e.loadChamber(c, id)
	if err != nil {
		return nil, err
	}
	if !chamber.Active() {
		return nil, newError(ErrChamberDissolved, "chamber %s is dissolved", id)
	}
	return chamber, nil
}

// windowClosed reports whether a stage window measured from updatedAt has
// elapsed. A zero window never closes.
func windowClosed(now, updatedAt time.Time, window time.Duration) bool {
	if window <= 0 {
		return false
	}
	return now.After(updatedAt.Add(window))
}
