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
package badger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/gavel/database/types"
)

// Store keeps the delegation audit log and idempotency records in badger.
// Without a data dir nothing is persisted.
type Store struct {
	promRegistry   prometheus.Registerer
	db             *badger.DB
	logger         *slog.Logger
	gcStop         chan struct{}
	dataDir        string
	gcWg           sync.WaitGroup
	gcInterval     time.Duration
	blockCacheSize uint64
	indexCacheSize uint64
	gcEnabled      bool
}

// New opens the store. GC only runs for on-disk stores.
func New(opts ...Option) (*Store, error) {
	s := &Store{
		gcEnabled:      true,
		gcInterval:     DefaultGcInterval,
		blockCacheSize: DefaultBlockCacheSize,
		indexCacheSize: DefaultIndexCacheSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	s.logger = s.logger.With("component", "database", "store", "blob")

	badgerOpts, err := s.badgerOptions()
	if err != nil {
		return nil, err
	}
	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	s.db = db
	if s.promRegistry != nil {
		s.registerBlobMetrics()
	}
	if s.gcEnabled && s.dataDir != "" {
		s.gcStop = make(chan struct{})
		s.gcWg.Add(1)
		go s.runGc()
	}
	return s, nil
}

func (s *Store) badgerOptions() (badger.Options, error) {
	if s.dataDir == "" {
		return badger.DefaultOptions("").
			WithLogger(NewBadgerLogger(s.logger)).
			WithLoggingLevel(badger.WARNING).
			WithInMemory(true), nil
	}
	blobDir := filepath.Join(s.dataDir, "blob")
	if err := os.MkdirAll(blobDir, 0o755); err != nil {
		return badger.Options{}, fmt.Errorf("create blob dir: %w", err)
	}
	return badger.DefaultOptions(blobDir).
		WithLogger(NewBadgerLogger(s.logger)).
		WithLoggingLevel(badger.WARNING).
		WithBlockCacheSize(int64(s.blockCacheSize)). //nolint:gosec
		WithIndexCacheSize(int64(s.indexCacheSize)). //nolint:gosec
		WithValueLogFileSize(DefaultValueLogFileSize).
		WithMemTableSize(DefaultMemTableSize).
		WithValueThreshold(DefaultValueThreshold).
		WithCompression(options.Snappy), nil
}

// runGc rewrites value log files until badger reports nothing left to
// reclaim, once per interval
func (s *Store) runGc() {
	defer s.gcWg.Done()
	ticker := time.NewTicker(s.gcInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.gcStop:
			return
		case <-ticker.C:
		}
		for {
			err := s.db.RunValueLogGC(0.5)
			if err == nil {
				continue
			}
			if !errors.Is(err, badger.ErrNoRewrite) {
				s.logger.Warn("value log GC failed", "error", err)
			}
			break
		}
	}
}

// Start implements plugin.Plugin. The store is already open.
func (s *Store) Start() error {
	return nil
}

// Stop implements plugin.Plugin
func (s *Store) Stop() error {
	return s.Close()
}

func (s *Store) Close() error {
	if s.gcStop != nil {
		close(s.gcStop)
		s.gcWg.Wait()
		s.gcStop = nil
	}
	return s.db.Close()
}

// NewTransaction starts a transaction. Read-only transactions are discarded
// on commit.
func (s *Store) NewTransaction(update bool) types.Txn {
	return &txn{
		store:  s,
		tx:     s.db.NewTransaction(update),
		update: update,
	}
}

func (s *Store) Get(t types.Txn, key []byte) ([]byte, error) {
	tx, err := s.txnFor(t, false)
	if err != nil {
		return nil, err
	}
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, types.ErrBlobKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (s *Store) Set(t types.Txn, key, val []byte) error {
	tx, err := s.txnFor(t, true)
	if err != nil {
		return err
	}
	return tx.Set(key, val)
}

func (s *Store) Delete(t types.Txn, key []byte) error {
	tx, err := s.txnFor(t, true)
	if err != nil {
		return err
	}
	return tx.Delete(key)
}

// Scan calls fn for every key with the prefix in ascending key order. The
// slices passed to fn are copies.
func (s *Store) Scan(
	t types.Txn,
	prefix []byte,
	fn func(key, val []byte) error,
) error {
	tx, err := s.txnFor(t, false)
	if err != nil {
		return err
	}
	iter := tx.NewIterator(badger.IteratorOptions{
		PrefetchValues: true,
		PrefetchSize:   100,
		Prefix:         prefix,
	})
	defer iter.Close()
	for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
		item := iter.Item()
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := fn(item.KeyCopy(nil), val); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) txnFor(t types.Txn, write bool) (*badger.Txn, error) {
	if t == nil {
		return nil, types.ErrNilTxn
	}
	bt, ok := t.(*txn)
	if !ok || bt.store != s {
		return nil, types.ErrTxnWrongType
	}
	if bt.done {
		return nil, types.ErrTxnFinished
	}
	if write && !bt.update {
		return nil, types.ErrReadOnlyTxn
	}
	return bt.tx, nil
}

type txn struct {
	store  *Store
	tx     *badger.Txn
	update bool
	done   bool
}

func (t *txn) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	if !t.update {
		t.tx.Discard()
		return nil
	}
	return t.tx.Commit()
}

func (t *txn) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.tx.Discard()
	return nil
}
