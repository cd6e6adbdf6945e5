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

// GetProposal returns models.ErrProposalNotFound when the proposal does not
// exist
func (d *Database) GetProposal(
	id string,
	txn *Txn,
) (*models.Proposal, error) {
	proposal, err := d.metadata.GetProposal(id, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	if proposal == nil {
		return nil, models.ErrProposalNotFound
	}
	return proposal, nil
}

// GetProposals returns all proposals in the given stage, or every proposal
// when stage is empty
func (d *Database) GetProposals(
	stage string,
	txn *Txn,
) ([]models.Proposal, error) {
	ret, err := d.metadata.GetProposals(stage, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get proposals: %w", err)
	}
	return ret, nil
}

func (d *Database) CreateProposal(proposal *models.Proposal, txn *Txn) error {
	if err := d.metadata.CreateProposal(proposal, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to create proposal: %w", err)
	}
	return nil
}

// SetProposalStage is a compare-and-swap on the proposal stage. It reports
// false when the proposal was not in the from stage.
func (d *Database) SetProposalStage(
	id string,
	from string,
	to string,
	updatedAt time.Time,
	txn *Txn,
) (bool, error) {
	moved, err := d.metadata.SetProposalStage(
		id,
		from,
		to,
		updatedAt,
		txn.Metadata(),
	)
	if err != nil {
		return false, fmt.Errorf(
			"failed to move proposal %s from %s to %s: %w",
			id,
			from,
			to,
			err,
		)
	}
	return moved, nil
}

func (d *Database) SetProposalPassed(
	id string,
	pass models.PassState,
	txn *Txn,
) (bool, error) {
	written, err := d.metadata.SetProposalPassed(id, pass, txn.Metadata())
	if err != nil {
		return false, fmt.Errorf("failed to record proposal pass: %w", err)
	}
	return written, nil
}

func (d *Database) ClearProposalPassed(
	id string,
	updatedAt time.Time,
	txn *Txn,
) error {
	if err := d.metadata.ClearProposalPassed(id, updatedAt, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to clear proposal pass: %w", err)
	}
	return nil
}

func (d *Database) SetProposalVetoCount(
	id string,
	count uint32,
	txn *Txn,
) error {
	if err := d.metadata.SetProposalVetoCount(id, count, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to set veto count: %w", err)
	}
	return nil
}
