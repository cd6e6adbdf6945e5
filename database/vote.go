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

	"github.com/blinklabs-io/gavel/database/models"
)

func (d *Database) SetPoolVote(vote *models.PoolVote, txn *Txn) error {
	if err := d.metadata.SetPoolVote(vote, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to record pool vote: %w", err)
	}
	return nil
}

func (d *Database) GetPoolVotes(
	proposalID string,
	txn *Txn,
) ([]models.PoolVote, error) {
	ret, err := d.metadata.GetPoolVotes(proposalID, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get pool votes: %w", err)
	}
	return ret, nil
}

func (d *Database) SetChamberVote(vote *models.ChamberVote, txn *Txn) error {
	if err := d.metadata.SetChamberVote(vote, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to record chamber vote: %w", err)
	}
	return nil
}

func (d *Database) GetChamberVotes(
	proposalID string,
	txn *Txn,
) ([]models.ChamberVote, error) {
	ret, err := d.metadata.GetChamberVotes(proposalID, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get chamber votes: %w", err)
	}
	return ret, nil
}

func (d *Database) DeleteChamberVotes(proposalID string, txn *Txn) error {
	if err := d.metadata.DeleteChamberVotes(proposalID, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to delete chamber votes: %w", err)
	}
	return nil
}

func (d *Database) SetVetoVote(vote *models.VetoVote, txn *Txn) error {
	if err := d.metadata.SetVetoVote(vote, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to record veto vote: %w", err)
	}
	return nil
}

func (d *Database) GetVetoVotes(
	proposalID string,
	txn *Txn,
) ([]models.VetoVote, error) {
	ret, err := d.metadata.GetVetoVotes(proposalID, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get veto votes: %w", err)
	}
	return ret, nil
}

func (d *Database) DeleteVetoVotes(proposalID string, txn *Txn) error {
	if err := d.metadata.DeleteVetoVotes(proposalID, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to delete veto votes: %w", err)
	}
	return nil
}
