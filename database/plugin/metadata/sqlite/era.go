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
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blinklabs-io/gavel/database/models"
	"github.com/blinklabs-io/gavel/database/types"
)

const clockStateID = 1

func validActivityColumn(column string) bool {
	switch column {
	case models.ActivityColumnPoolVotes,
		models.ActivityColumnChamberVotes,
		models.ActivityColumnCourtActions,
		models.ActivityColumnFormationActions:
		return true
	}
	return false
}

func (d *MetadataStoreSqlite) GetClockState(
	txn types.Txn,
) (*models.ClockState, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.ClockState{}
	result := db.Where("id = ?", clockStateID).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// SetClockEra creates the clock row on first use, which only succeeds when
// from is 0
func (d *MetadataStoreSqlite) SetClockEra(
	from uint64,
	to uint64,
	startedAt time.Time,
	txn types.Txn,
) (bool, error) {
	db, err := d.resolveWriteDB(txn)
	if err != nil {
		return false, err
	}
	state, err := d.GetClockState(txn)
	if err != nil {
		return false, err
	}
	if state == nil {
		if from != 0 {
			return false, nil
		}
		result := db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.ClockState{
				ID:           clockStateID,
				CurrentEra:   to,
				EraStartedAt: startedAt,
				UpdatedAt:    startedAt,
			})
		if result.Error != nil {
			return false, result.Error
		}
		return result.RowsAffected == 1, nil
	}
	result := db.Model(&models.ClockState{}).
		Where("id = ? AND current_era = ?", clockStateID, from).
		Updates(map[string]any{
			"current_era":    to,
			"era_started_at": startedAt,
			"updated_at":     startedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (d *MetadataStoreSqlite) GetEraSnapshot(
	era uint64,
	txn types.Txn,
) (*models.EraSnapshot, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.EraSnapshot{}
	result := db.Where("era = ?", era).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

func (d *MetadataStoreSqlite) AddEraSnapshot(
	snapshot *models.EraSnapshot,
	txn types.Txn,
) (*models.EraSnapshot, error) {
	db, err := d.resolveWriteDB(txn)
	if err != nil {
		return nil, err
	}
	row := *snapshot
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	return d.GetEraSnapshot(snapshot.Era, txn)
}

func (d *MetadataStoreSqlite) MarkEraActivity(
	era uint64,
	address string,
	column string,
	txn types.Txn,
) (bool, error) {
	if !validActivityColumn(column) {
		return false, fmt.Errorf("unknown activity column: %s", column)
	}
	db, err := d.resolveWriteDB(txn)
	if err != nil {
		return false, err
	}
	existing, err := d.GetEraActivity(era, address, txn)
	if err != nil {
		return false, err
	}
	if existing == nil {
		row := &models.EraUserActivity{
			Era:     era,
			Address: address,
		}
		if err := db.Create(row).Error; err != nil {
			return false, err
		}
	}
	result := db.Model(&models.EraUserActivity{}).
		Where(
			fmt.Sprintf("era = ? AND address = ? AND %s = 0", column),
			era,
			address,
		).
		Update(column, 1)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (d *MetadataStoreSqlite) GetEraActivity(
	era uint64,
	address string,
	txn types.Txn,
) (*models.EraUserActivity, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.EraUserActivity{}
	result := db.Where("era = ? AND address = ?", era, address).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

func (d *MetadataStoreSqlite) GetEraActivities(
	era uint64,
	txn types.Txn,
) ([]models.EraUserActivity, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.EraUserActivity
	result := db.Where("era = ?", era).Order("address").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (d *MetadataStoreSqlite) GetEraRollup(
	era uint64,
	txn types.Txn,
) (*models.EraRollup, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.EraRollup{}
	result := db.Where("era = ?", era).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

func (d *MetadataStoreSqlite) AddEraRollup(
	rollup *models.EraRollup,
	statuses []models.EraUserStatus,
	txn types.Txn,
) (bool, error) {
	db, err := d.resolveWriteDB(txn)
	if err != nil {
		return false, err
	}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(rollup)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	if len(statuses) > 0 {
		if err := db.CreateInBatches(statuses, 500).Error; err != nil {
			return false, err
		}
	}
	return true, nil
}

func (d *MetadataStoreSqlite) GetEraUserStatuses(
	era uint64,
	txn types.Txn,
) ([]models.EraUserStatus, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.EraUserStatus
	result := db.Where("era = ?", era).Order("address").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}
