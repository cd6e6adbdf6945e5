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

// GetChamber returns models.ErrChamberNotFound when the chamber does not
// exist
func (d *Database) GetChamber(id string, txn *Txn) (*models.Chamber, error) {
	chamber, err := d.metadata.GetChamber(id, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get chamber: %w", err)
	}
	if chamber == nil {
		return nil, models.ErrChamberNotFound
	}
	return chamber, nil
}

func (d *Database) GetChambers(txn *Txn) ([]models.Chamber, error) {
	ret, err := d.metadata.GetChambers(txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get chambers: %w", err)
	}
	return ret, nil
}

func (d *Database) AddChamber(chamber *models.Chamber, txn *Txn) (bool, error) {
	added, err := d.metadata.AddChamber(chamber, txn.Metadata())
	if err != nil {
		return false, fmt.Errorf("failed to add chamber: %w", err)
	}
	return added, nil
}

func (d *Database) SetChamberDissolved(
	id string,
	dissolvedAt time.Time,
	txn *Txn,
) error {
	if err := d.metadata.SetChamberDissolved(id, dissolvedAt, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to dissolve chamber: %w", err)
	}
	return nil
}

func (d *Database) AddMeritAward(
	award *models.MeritAward,
	txn *Txn,
) (bool, error) {
	added, err := d.metadata.AddMeritAward(award, txn.Metadata())
	if err != nil {
		return false, fmt.Errorf("failed to add merit award: %w", err)
	}
	return added, nil
}

// GetMeritAward returns nil when the proposal has no award
func (d *Database) GetMeritAward(
	proposalID string,
	txn *Txn,
) (*models.MeritAward, error) {
	ret, err := d.metadata.GetMeritAward(proposalID, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get merit award: %w", err)
	}
	return ret, nil
}

func (d *Database) GetMeritTotals(txn *Txn) ([]models.MeritTotal, error) {
	ret, err := d.metadata.GetMeritTotals(txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get merit totals: %w", err)
	}
	return ret, nil
}
