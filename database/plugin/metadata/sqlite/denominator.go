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

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blinklabs-io/gavel/database/models"
	"github.com/blinklabs-io/gavel/database/types"
)

func (d *MetadataStoreSqlite) GetStageDenominator(
	proposalID string,
	stage string,
	txn types.Txn,
) (*models.StageDenominator, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.StageDenominator{}
	result := db.Where("proposal_id = ? AND stage = ?", proposalID, stage).
		First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

func (d *MetadataStoreSqlite) AddStageDenominator(
	denominator *models.StageDenominator,
	txn types.Txn,
) (*models.StageDenominator, error) {
	db, err := d.resolveWriteDB(txn)
	if err != nil {
		return nil, err
	}
	row := *denominator
	row.ID = 0
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	return d.GetStageDenominator(
		denominator.ProposalID,
		denominator.Stage,
		txn,
	)
}
