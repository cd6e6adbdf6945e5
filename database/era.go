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
	"fmt"
	"time"

	"github.com/blinklabs-io/gavel/database/models"
)

// GetStageDenominator returns nil when no denominator was captured
func (d *Database) GetStageDenominator(
	proposalID string,
	stage string,
	txn *Txn,
) (*models.StageDenominator, error) {
	ret, err := d.metadata.GetStageDenominator(
		proposalID,
		stage,
		txn.Metadata(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stage denominator: %w", err)
	}
	return ret, nil
}

// CaptureStageDenominator stores the denominator unless one already exists
// for the proposal and stage, and returns the stored row either way
func (d *Database) CaptureStageDenominator(
	denominator *models.StageDenominator,
	txn *Txn,
) (*models.StageDenominator, error) {
	ret, err := d.metadata.AddStageDenominator(denominator, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to capture stage denominator: %w", err)
	}
	return ret, nil
}

// GetClockState returns nil before the clock is initialized
func (d *Database) GetClockState(txn *Txn) (*models.ClockState, error) {
	ret, err := d.metadata.GetClockState(txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get clock state: %w", err)
	}
	return ret, nil
}

func (d *Database) SetClockEra(
	from uint64,
	to uint64,
	startedAt time.Time,
	txn *Txn,
) (bool, error) {
	moved, err := d.metadata.SetClockEra(from, to, startedAt, txn.Metadata())
	if err != nil {
		return false, fmt.Errorf("failed to set era: %w", err)
	}
	return moved, nil
}

func (d *Database) GetEraSnapshot(
	era uint64,
	txn *Txn,
) (*models.EraSnapshot, error) {
	ret, err := d.metadata.GetEraSnapshot(era, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get era snapshot: %w", err)
	}
	return ret, nil
}

func (d *Database) AddEraSnapshot(
	snapshot *models.EraSnapshot,
	txn *Txn,
) (*models.EraSnapshot, error) {
	ret, err := d.metadata.AddEraSnapshot(snapshot, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to add era snapshot: %w", err)
	}
	return ret, nil
}

func (d *Database) MarkEraActivity(
	era uint64,
	address string,
	column string,
	txn *Txn,
) (bool, error) {
	first, err := d.metadata.MarkEraActivity(
		era,
		address,
		column,
		txn.Metadata(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to record era activity: %w", err)
	}
	return first, nil
}

func (d *Database) GetEraActivity(
	era uint64,
	address string,
	txn *Txn,
) (*models.EraUserActivity, error) {
	ret, err := d.metadata.GetEraActivity(era, address, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get era activity: %w", err)
	}
	return ret, nil
}

func (d *Database) GetEraActivities(
	era uint64,
	txn *Txn,
) ([]models.EraUserActivity, error) {
	ret, err := d.metadata.GetEraActivities(era, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get era activities: %w", err)
	}
	return ret, nil
}

func (d *Database) GetEraRollup(
	era uint64,
	txn *Txn,
) (*models.EraRollup, error) {
	ret, err := d.metadata.GetEraRollup(era, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get era rollup: %w", err)
	}
	return ret, nil
}

func (d *Database) AddEraRollup(
	rollup *models.EraRollup,
	statuses []models.EraUserStatus,
	txn *Txn,
) (bool, error) {
	written, err := d.metadata.AddEraRollup(rollup, statuses, txn.Metadata())
	if err != nil {
		return false, fmt.Errorf("failed to add era rollup: %w", err)
	}
	return written, nil
}

func (d *Database) GetEraUserStatuses(
	era uint64,
	txn *Txn,
) ([]models.EraUserStatus, error) {
	ret, err := d.metadata.GetEraUserStatuses(era, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get era user statuses: %w", err)
	}
	return ret, nil
}
