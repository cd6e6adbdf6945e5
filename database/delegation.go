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
	"fmt"

	"github.com/google/uuid"

	"github.com/blinklabs-io/gavel/database/models"
	"github.com/blinklabs-io/gavel/database/types"
)

func (d *Database) SetDelegation(delegation *models.Delegation, txn *Txn) error {
	if err := d.metadata.SetDelegation(delegation, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to set delegation: %w", err)
	}
	return nil
}

func (d *Database) GetDelegations(
	chamberID string,
	txn *Txn,
) ([]models.Delegation, error) {
	ret, err := d.metadata.GetDelegations(chamberID, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get delegations: %w", err)
	}
	return ret, nil
}

func (d *Database) DeleteDelegation(
	chamberID string,
	delegator string,
	txn *Txn,
) (bool, error) {
	existed, err := d.metadata.DeleteDelegation(
		chamberID,
		delegator,
		txn.Metadata(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to clear delegation: %w", err)
	}
	return existed, nil
}

// AppendDelegationEvent adds an entry to the delegation audit log. An ID is
// generated when the event has none.
func (d *Database) AppendDelegationEvent(
	event *models.DelegationEvent,
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
	if event.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate delegation event id: %w", err)
		}
		event.ID = id.String()
	}
	idBytes := []byte(event.ID)
	if parsed, err := uuid.Parse(event.ID); err == nil {
		idBytes = parsed[:]
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode delegation event: %w", err)
	}
	key := types.DelegationLogKey(
		event.ChamberID,
		event.Timestamp.UnixNano(),
		idBytes,
	)
	if err := d.blobSet(txn, key, data); err != nil {
		return fmt.Errorf("failed to append delegation event: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}

// GetDelegationEvents returns the audit log of one chamber in the order the
// events happened
func (d *Database) GetDelegationEvents(
	chamberID string,
	txn *Txn,
) ([]models.DelegationEvent, error) {
	return d.scanDelegationEvents(types.DelegationLogPrefix(chamberID), txn)
}

func (d *Database) scanDelegationEvents(
	prefix []byte,
	txn *Txn,
) ([]models.DelegationEvent, error) {
	if txn == nil {
		txn = d.BlobTxn(false)
		defer txn.Release()
	}
	ret := []models.DelegationEvent{}
	err := d.blob.Scan(
		txn.Blob(),
		prefix,
		func(_, val []byte) error {
			var event models.DelegationEvent
			if err := json.Unmarshal(val, &event); err != nil {
				return fmt.Errorf("failed to decode delegation event: %w", err)
			}
			ret = append(ret, event)
			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan delegation events: %w", err)
	}
	return ret, nil
}
