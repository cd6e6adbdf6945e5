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
	"gorm.io/gorm/clause"

	"github.com/blinklabs-io/gavel/database/models"
	"github.com/blinklabs-io/gavel/database/types"
)

func (d *MetadataStoreSqlite) GetChamber(
	id string,
	txn types.Txn,
) (*models.Chamber, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.Chamber{}
	result := db.Where("id = ?", id).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

func (d *MetadataStoreSqlite) GetChambers(
	txn types.Txn,
) ([]models.Chamber, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Chamber
	if result := db.Order("id").Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (d *MetadataStoreSqlite) AddChamber(
	chamber *models.Chamber,
	txn types.Txn,
) (bool, error) {
	db, err := d.resolveWriteDB(txn)
	if err != nil {
		return false, err
	}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(chamber)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (d *MetadataStoreSqlite) SetChamberDissolved(
	id string,
	dissolvedAt time.Time,
	txn types.Txn,
) error {
	db, err := d.resolveWriteDB(txn)
	if err != nil {
		return err
	}
	return db.Model(&models.Chamber{}).
		Where("id = ? AND dissolved_at IS NULL", id).
		Update("dissolved_at", dissolvedAt).Error
}

func (d *MetadataStoreSqlite) AddMeritAward(
	award *models.MeritAward,
	txn types.Txn,
) (bool, error) {
	db, err := d.resolveWriteDB(txn)
	if err != nil {
		return false, err
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "proposal_id"}},
		DoNothing: true,
	}).Create(award)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (d *MetadataStoreSqlite) GetMeritAward(
	proposalID string,
	txn types.Txn,
) (*models.MeritAward, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.MeritAward{}
	result := db.Where("proposal_id = ?", proposalID).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

func (d *MetadataStoreSqlite) GetMeritTotals(
	txn types.Txn,
) ([]models.MeritTotal, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.MeritTotal
	result := db.Model(&models.MeritAward{}).
		Select("chamber_id, address, SUM(lcm) AS lcm, SUM(mcm) AS mcm").
		Group("chamber_id, address").
		Order("chamber_id, address").
		Scan(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}
