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

package sqlite

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/blinklabs-io/gavel/database/models"
	"github.com/blinklabs-io/gavel/database/types"
	"github.com/blinklabs-io/gavel/governance/lifecycle"
)

// GetProposal returns nil when the proposal does not exist
func (d *MetadataStoreSqlite) GetProposal(
	id string,
	txn types.Txn,
) (*models.Proposal, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.Proposal{}
	result := db.Where("id = ?", id).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

func (d *MetadataStoreSqlite) GetProposals(
	stage string,
	txn types.Txn,
) ([]models.Proposal, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Proposal
	query := db.Order("id")
	if stage != "" {
		query = query.Where("stage = ?", stage)
	}
	if result := query.Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (d *MetadataStoreSqlite) CreateProposal(
	proposal *models.Proposal,
	txn types.Txn,
) error {
	db, err := d.resolveWriteDB(txn)
	if err != nil {
		return err
	}
	return db.Create(proposal).Error
}

func (d *MetadataStoreSqlite) SetProposalStage(
	id string,
	from string,
	to string,
	updatedAt time.Time,
	txn types.Txn,
) (bool, error) {
	db, err := d.resolveWriteDB(txn)
	if err != nil {
		return false, err
	}
	result := db.Model(&models.Proposal{}).
		Where("id = ? AND stage = ?", id, from).
		Updates(map[string]any{
			"stage":      to,
			"updated_at": updatedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (d *MetadataStoreSqlite) SetProposalPassed(
	id string,
	pass models.PassState,
	txn types.Txn,
) (bool, error) {
	db, err := d.resolveWriteDB(txn)
	if err != nil {
		return false, err
	}
	threshold := pass.VetoThreshold
	result := db.Model(&models.Proposal{}).
		Where(
			"id = ? AND stage = ? AND vote_passed_at IS NULL",
			id,
			lifecycle.StageVote.String(),
		).
		Updates(map[string]any{
			"vote_passed_at":    pass.VotePassedAt,
			"vote_finalizes_at": pass.VoteFinalizesAt,
			"veto_council":      types.StringList(pass.VetoCouncil),
			"veto_threshold":    &threshold,
			"veto_count":        0,
			"updated_at":        pass.VotePassedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (d *MetadataStoreSqlite) ClearProposalPassed(
	id string,
	updatedAt time.Time,
	txn types.Txn,
) error {
	db, err := d.resolveWriteDB(txn)
	if err != nil {
		return err
	}
	return db.Model(&models.Proposal{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"vote_passed_at":    nil,
			"vote_finalizes_at": nil,
			"veto_council":      nil,
			"veto_threshold":    nil,
			"veto_count":        0,
			"updated_at":        updatedAt,
		}).Error
}

func (d *MetadataStoreSqlite) SetProposalVetoCount(
	id string,
	count uint32,
	txn types.Txn,
) error {
	db, err := d.resolveWriteDB(txn)
	if err != nil {
		return err
	}
	return db.Model(&models.Proposal{}).
		Where("id = ?", id).
		Update("veto_count", count).Error
}
