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

// Package memory provides a metadata store kept entirely in process memory.
// It is intended for tests and ephemeral runs.
package memory

import (
	"errors"
	"io"
	"log/slog"
	"maps"
	"sync"

	"github.com/blinklabs-io/gavel/database/models"
	"github.com/blinklabs-io/gavel/database/plugin"
	"github.com/blinklabs-io/gavel/database/types"
)

type voteKey struct {
	proposalID string
	voter      string
}

type delegationKey struct {
	chamberID string
	delegator string
}

type denominatorKey struct {
	proposalID string
	stage      string
}

type eraAddressKey struct {
	era     uint64
	address string
}

type state struct {
	clock         *models.ClockState
	proposals     map[string]models.Proposal
	poolVotes     map[voteKey]models.PoolVote
	chamberVotes  map[voteKey]models.ChamberVote
	vetoVotes     map[voteKey]models.VetoVote
	delegations   map[delegationKey]models.Delegation
	denominators  map[denominatorKey]models.StageDenominator
	eraSnapshots  map[uint64]models.EraSnapshot
	eraActivities map[eraAddressKey]models.EraUserActivity
	eraRollups    map[uint64]models.EraRollup
	eraStatuses   map[eraAddressKey]models.EraUserStatus
	chambers      map[string]models.Chamber
	meritAwards   map[string]models.MeritAward
	nextID        uint
}

func newState() *state {
	return &state{
		proposals:     make(map[string]models.Proposal),
		poolVotes:     make(map[voteKey]models.PoolVote),
		chamberVotes:  make(map[voteKey]models.ChamberVote),
		vetoVotes:     make(map[voteKey]models.VetoVote),
		delegations:   make(map[delegationKey]models.Delegation),
		denominators:  make(map[denominatorKey]models.StageDenominator),
		eraSnapshots:  make(map[uint64]models.EraSnapshot),
		eraActivities: make(map[eraAddressKey]models.EraUserActivity),
		eraRollups:    make(map[uint64]models.EraRollup),
		eraStatuses:   make(map[eraAddressKey]models.EraUserStatus),
		chambers:      make(map[string]models.Chamber),
		meritAwards:   make(map[string]models.MeritAward),
	}
}

// clone copies the maps. Rows are stored by value and replaced rather than
// modified, so a shallow copy of each map is enough.
func (s *state) clone() *state {
	ret := &state{
		proposals:     maps.Clone(s.proposals),
		poolVotes:     maps.Clone(s.poolVotes),
		chamberVotes:  maps.Clone(s.chamberVotes),
		vetoVotes:     maps.Clone(s.vetoVotes),
		delegations:   maps.Clone(s.delegations),
		denominators:  maps.Clone(s.denominators),
		eraSnapshots:  maps.Clone(s.eraSnapshots),
		eraActivities: maps.Clone(s.eraActivities),
		eraRollups:    maps.Clone(s.eraRollups),
		eraStatuses:   maps.Clone(s.eraStatuses),
		chambers:      maps.Clone(s.chambers),
		meritAwards:   maps.Clone(s.meritAwards),
		nextID:        s.nextID,
	}
	if s.clock != nil {
		tmpClock := *s.clock
		ret.clock = &tmpClock
	}
	return ret
}

func (s *state) newID() uint {
	s.nextID++
	return s.nextID
}

// MetadataStoreMemory serializes transactions with a single lock. A
// transaction holds the lock from creation until commit or rollback.
type MetadataStoreMemory struct {
	logger *slog.Logger
	data   *state
	mutex  sync.Mutex
	closed bool
}

type MemoryOptionFunc func(*MetadataStoreMemory)

func WithLogger(logger *slog.Logger) MemoryOptionFunc {
	return func(m *MetadataStoreMemory) {
		m.logger = logger
	}
}

func New(opts ...MemoryOptionFunc) *MetadataStoreMemory {
	m := &MetadataStoreMemory{
		data: newState(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	m.logger = m.logger.With("component", "database")
	return m
}

func init() {
	plugin.Register(
		plugin.PluginEntry{
			Type:        plugin.PluginTypeMetadata,
			Name:        "memory",
			Description: "In-memory store for tests and ephemeral runs",
			NewFromOptionsFunc: func() plugin.Plugin {
				return New()
			},
		},
	)
}

func (m *MetadataStoreMemory) Start() error {
	return nil
}

func (m *MetadataStoreMemory) Stop() error {
	return m.Close()
}

func (m *MetadataStoreMemory) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.closed = true
	return nil
}

func (m *MetadataStoreMemory) Transaction(readWrite bool) types.Txn {
	m.mutex.Lock()
	return &memoryTxn{
		store:     m,
		readWrite: readWrite,
	}
}

var (
	errStoreClosed    = errors.New("metadata store is closed")
	errTxnFinished    = errors.New("transaction already finished")
	errTxnOtherStore  = errors.New("transaction from different store")
	errUnknownActType = errors.New("unknown activity column")
)

type memoryTxn struct {
	store     *MetadataStoreMemory
	backup    *state
	finished  bool
	readWrite bool
}

func (t *memoryTxn) Commit() error {
	if t.finished {
		return nil
	}
	t.finished = true
	t.backup = nil
	t.store.mutex.Unlock()
	return nil
}

func (t *memoryTxn) Rollback() error {
	if t.finished {
		return nil
	}
	t.finished = true
	if t.backup != nil {
		t.store.data = t.backup
		t.backup = nil
	}
	t.store.mutex.Unlock()
	return nil
}

// view runs fn against the store state, inside txn when given
func (m *MetadataStoreMemory) view(
	txn types.Txn,
	fn func(*state) error,
) error {
	if txn == nil {
		m.mutex.Lock()
		defer m.mutex.Unlock()
		if m.closed {
			return errStoreClosed
		}
		return fn(m.data)
	}
	t, err := m.resolveTxn(txn)
	if err != nil {
		return err
	}
	return fn(t.store.data)
}

// update runs fn against a writable state. Changes made within a transaction
// are undone if the transaction is rolled back. Without a transaction the
// changes are kept only if fn succeeds.
func (m *MetadataStoreMemory) update(
	txn types.Txn,
	fn func(*state) error,
) error {
	if txn == nil {
		m.mutex.Lock()
		defer m.mutex.Unlock()
		if m.closed {
			return errStoreClosed
		}
		work := m.data.clone()
		if err := fn(work); err != nil {
			return err
		}
		m.data = work
		return nil
	}
	t, err := m.resolveTxn(txn)
	if err != nil {
		return err
	}
	if !t.readWrite {
		return types.ErrReadOnlyTxn
	}
	if t.backup == nil {
		t.backup = m.data.clone()
	}
	return fn(m.data)
}

func (m *MetadataStoreMemory) resolveTxn(txn types.Txn) (*memoryTxn, error) {
	t, ok := txn.(*memoryTxn)
	if !ok {
		return nil, types.ErrTxnWrongType
	}
	if t.store != m {
		return nil, errTxnOtherStore
	}
	if t.finished {
		return nil, errTxnFinished
	}
	if m.closed {
		return nil, errStoreClosed
	}
	return t, nil
}
