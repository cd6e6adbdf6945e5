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
	"gorm.io/gorm/clause"

	"github.com/blinklabs-io/gavel/database/models"
	"github.com/blinklabs-io/gavel/database/types"
)

var voteConflictColumns = []clause.Column{
	{Name: "proposal_id"},
	{Name: "voter_address"},
}

// SetPoolVote inserts or replaces the voter's pool vote, keeping the original
// creation time
func (d *MetadataStoreSqlite) SetPoolVote(
	vote *models.PoolVote,
	txn types.Txn,
) error {
	db, err := d.resolveWriteDB(txn)
	if err != nil {
		return err
	}
	return db.Clauses(clause.OnConflict{
		Columns:   voteConflictColumns,
		DoUpdates: clause.AssignmentColumns([]string{"direction", "updated_at"}),
	}).Create(vote).Error
}

func (d *MetadataStoreSqlite) GetPoolVotes(
	proposalID string,
	txn types.Txn,
) ([]models.PoolVote, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.PoolVote
	result := db.Where("proposal_id = ?", proposalID).
		Order("voter_address").
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (d *MetadataStoreSqlite) SetChamberVote(
	vote *models.ChamberVote,
	txn types.Txn,
) error {
	db, err := d.resolveWriteDB(txn)
	if err != nil {
		return err
	}
	return db.Clauses(clause.OnConflict{
		Columns: voteConflictColumns,
		DoUpdates: clause.AssignmentColumns(
			[]string{"choice", "score", "updated_at"},
		),
	}).Create(vote).Error
}

func (d *MetadataStoreSqlite) GetChamberVotes(
	proposalID string,
	txn types.Txn,
) ([]models.ChamberVote, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.ChamberVote
	result := db.Where("proposal_id = ?", proposalID).
		Order("voter_address").
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (d *MetadataStoreSqlite) DeleteChamberVotes(
	proposalID string,
	txn types.Txn,
) error {
	db, err := d.resolveWriteDB(txn)
	if err != nil {
		return err
	}
	return db.Where("proposal_id = ?", proposalID).
		Delete(&models.ChamberVote{}).Error
}

func (d *MetadataStoreSqlite) SetVetoVote(
	vote *models.VetoVote,
	txn types.Txn,
) error {
	db, err := d.resolveWriteDB(txn)
	if err != nil {
		return err
	}
	return db.Clauses(clause.OnConflict{
		Columns:   voteConflictColumns,
		DoUpdates: clause.AssignmentColumns([]string{"choice", "updated_at"}),
	}).Create(vote).Error
}

func (d *MetadataStoreSqlite) GetVetoVotes(
	proposalID string,
	txn types.Txn,
) ([]models.VetoVote, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.VetoVote
	result := db.Where("proposal_id = ?", proposalID).
		Order("voter_address").
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (d *MetadataStoreSqlite) DeleteVetoVotes(
	proposalID string,
	txn types.Txn,
) error {
	db, err := d.resolveWriteDB(txn)
	if err != nil {
		return err
	}
	return db.Where("proposal_id = ?", proposalID).
		Delete(&models.VetoVote{}).Error
}
