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
	"github.com/blinklabs-io/gavel/database/models"
	"github.com/blinklabs-io/gavel/database/types"
)

// GetSnapshot reads every table in a stable order
func (d *MetadataStoreSqlite) GetSnapshot(
	txn types.Txn,
) (*models.Snapshot, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.Snapshot{}
	clock, err := d.GetClockState(txn)
	if err != nil {
		return nil, err
	}
	ret.Clock = clock
	queries := []struct {
		dest  any
		order string
	}{
		{&ret.Proposals, "id"},
		{&ret.PoolVotes, "proposal_id, voter_address"},
		{&ret.ChamberVotes, "proposal_id, voter_address"},
		{&ret.VetoVotes, "proposal_id, voter_address"},
		{&ret.Delegations, "chamber_id, delegator_address"},
		{&ret.StageDenominators, "proposal_id, stage"},
		{&ret.EraSnapshots, "era"},
		{&ret.EraUserActivities, "era, address"},
		{&ret.EraRollups, "era"},
		{&ret.EraUserStatuses, "era, address"},
		{&ret.Chambers, "id"},
		{&ret.MeritAwards, "proposal_id"},
	}
	for _, q := range queries {
		if result := db.Order(q.order).Find(q.dest); result.Error != nil {
			return nil, result.Error
		}
	}
	return ret, nil
}
