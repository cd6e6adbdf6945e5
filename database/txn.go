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
package database

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/blinklabs-io/gavel/database/types"
)

// Txn spans the metadata and blob stores. The metadata side commits first,
// so a rejected mutation never leaves blob records behind. Blob writes are
// journaled and replayed once if the blob commit fails afterwards.
type Txn struct {
	db         *Database
	blob       types.Txn
	metadata   types.Txn
	blobWrites []blobWrite
	mu         sync.Mutex
	done       bool
	readWrite  bool
}

type blobWrite struct {
	key []byte
	val []byte
}

func newTxn(db *Database, readWrite, withBlob, withMetadata bool) *Txn {
	t := &Txn{db: db, readWrite: readWrite}
	if withBlob && db.blob != nil {
		t.blob = db.blob.NewTransaction(readWrite)
	}
	if withMetadata && db.metadata != nil {
		t.metadata = db.metadata.Transaction(readWrite)
	}
	return t
}

// Metadata returns the metadata store handle. A nil Txn yields nil.
func (t *Txn) Metadata() types.Txn {
	if t == nil {
		return nil
	}
	return t.metadata
}

// Blob returns the blob store handle. A nil Txn yields nil.
func (t *Txn) Blob() types.Txn {
	if t == nil {
		return nil
	}
	return t.blob
}

// Do runs fn and commits, or rolls back if fn fails
func (t *Txn) Do(fn func(*Txn) error) error {
	if err := fn(t); err != nil {
		if rbErr := t.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := t.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (t *Txn) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	if !t.readWrite {
		return t.finish()
	}
	if t.blob == nil && t.metadata == nil {
		t.done = true
		return types.ErrNoStoreAvailable
	}
	if t.metadata != nil {
		if err := t.metadata.Commit(); err != nil {
			if t.blob != nil {
				_ = t.blob.Rollback()
			}
			t.done = true
			return fmt.Errorf("metadata commit: %w", err)
		}
	}
	t.done = true
	if t.blob == nil {
		return nil
	}
	err := t.blob.Commit()
	if err == nil {
		return nil
	}
	if t.metadata == nil {
		return fmt.Errorf("blob commit: %w", err)
	}
	t.db.logger.Warn(
		"blob commit failed after metadata commit, replaying blob writes",
		"error", err,
		"writes", len(t.blobWrites),
	)
	if replayErr := t.replayBlobWrites(); replayErr != nil {
		t.db.logger.Error(
			"blob writes lost after metadata commit",
			"error", replayErr,
			"writes", len(t.blobWrites),
		)
		return fmt.Errorf(
			"%w: %w",
			types.ErrPartialCommit,
			errors.Join(err, replayErr),
		)
	}
	return nil
}

// replayBlobWrites applies the journaled blob writes in a fresh transaction
func (t *Txn) replayBlobWrites() error {
	txn := t.db.blob.NewTransaction(true)
	for _, w := range t.blobWrites {
		if err := t.db.blob.Set(txn, w.key, w.val); err != nil {
			_ = txn.Rollback()
			return err
		}
	}
	return txn.Commit()
}

func (t *Txn) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finish()
}

// finish discards both sides; callers hold mu
func (t *Txn) finish() error {
	if t.done {
		return nil
	}
	t.done = true
	var err error
	if t.blob != nil {
		if rbErr := t.blob.Rollback(); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("blob rollback: %w", rbErr))
		}
	}
	if t.metadata != nil {
		if rbErr := t.metadata.Rollback(); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("metadata rollback: %w", rbErr))
		}
	}
	return err
}

// blobSet writes to the blob side of txn and journals the write for replay
func (d *Database) blobSet(txn *Txn, key, val []byte) error {
	if err := d.blob.Set(txn.Blob(), key, val); err != nil {
		return err
	}
	txn.blobWrites = append(txn.blobWrites, blobWrite{
		key: bytes.Clone(key),
		val: bytes.Clone(val),
	})
	return nil
}

// Release rolls back and logs any failure, for use in defer
func (t *Txn) Release() {
	if err := t.Rollback(); err != nil {
		t.db.logger.Debug(
			"transaction release failed",
			"error", err,
			"read_write", t.readWrite,
		)
	}
}
