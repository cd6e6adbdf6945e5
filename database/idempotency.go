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

package database

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blinklabs-io/gavel/database/models"
	"github.com/blinklabs-io/gavel/database/types"
)

// GetIdempotencyRecord returns nil when no response was recorded for the
// actor and key
func (d *Database) GetIdempotencyRecord(
	actor string,
	key string,
	txn *Txn,
) (*models.IdempotencyRecord, error) {
	if txn == nil {
		txn = d.BlobTxn(false)
		defer txn.Release()
	}
	val, err := d.blob.Get(txn.Blob(), types.IdempotencyKey(actor, key))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get idempotency record: %w", err)
	}
	ret := &models.IdempotencyRecord{}
	if err := json.Unmarshal(val, ret); err != nil {
		return nil, fmt.Errorf("failed to decode idempotency record: %w", err)
	}
	return ret, nil
}

func (d *Database) SetIdempotencyRecord(
	record *models.IdempotencyRecord,
	txn *Txn,
) error {
	owned := false
	if txn == nil {
		txn = d.BlobTxn(true)
		owned = true
		defer func() {
			if owned {
				txn.Rollback() //nolint:errcheck
			}
		}()
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode idempotency record: %w", err)
	}
	key := types.IdempotencyKey(record.Actor, record.Key)
	if err := d.blobSet(txn, key, data); err != nil {
		return fmt.Errorf("failed to store idempotency record: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}
