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

func (d *MetadataStoreSqlite) SetDelegation(
	delegation *models.Delegation,
	txn types.Txn,
) error {
	db, err := d.resolveWriteDB(txn)
	if err != nil {
		return err
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "chamber_id"},
			{Name: "delegator_address"},
		},
		DoUpdates: clause.AssignmentColumns(
			[]string{"delegatee_address", "updated_at"},
		),
	}).Create(delegation).Error
}

func (d *MetadataStoreSqlite) GetDelegations(
	chamberID string,
	txn types.Txn,
) ([]models.Delegation, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Delegation
	result := db.Where("chamber_id = ?", chamberID).
		Order("delegator_address").
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (d *MetadataStoreSqlite) DeleteDelegation(
	chamberID string,
	delegator string,
	txn types.Txn,
) (bool, error) {
	db, err := d.resolveWriteDB(txn)
	if err != nil {
		return false, err
	}
	result := db.Where(
		"chamber_id = ? AND delegator_address = ?",
		chamberID,
		delegator,
	).Delete(&models.Delegation{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
