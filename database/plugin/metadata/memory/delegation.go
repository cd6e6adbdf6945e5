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

package memory

import (
	"slices"
	"strings"

	"github.com/blinklabs-io/gavel/database/models"
	"github.com/blinklabs-io/gavel/database/types"
)

func (m *MetadataStoreMemory) SetDelegation(
	delegation *models.Delegation,
	txn types.Txn,
) error {
	return m.update(txn, func(s *state) error {
		key := delegationKey{delegation.ChamberID, delegation.DelegatorAddress}
		row := *delegation
		if existing, ok := s.delegations[key]; ok {
			row.ID = existing.ID
		} else {
			row.ID = s.newID()
		}
		s.delegations[key] = row
		return nil
	})
}

func (m *MetadataStoreMemory) GetDelegations(
	chamberID string,
	txn types.Txn,
) ([]models.Delegation, error) {
	var ret []models.Delegation
	err := m.view(txn, func(s *state) error {
		for key, delegation := range s.delegations {
			if key.chamberID == chamberID {
				ret = append(ret, delegation)
			}
		}
		return nil
	})
	slices.SortFunc(ret, func(a, b models.Delegation) int {
		return strings.Compare(a.DelegatorAddress, b.DelegatorAddress)
	})
	return ret, err
}

func (m *MetadataStoreMemory) DeleteDelegation(
	chamberID string,
	delegator string,
	txn types.Txn,
) (bool, error) {
	var existed bool
	err := m.update(txn, func(s *state) error {
		key := delegationKey{chamberID, delegator}
		if _, ok := s.delegations[key]; ok {
			delete(s.delegations, key)
			existed = true
		}
		return nil
	})
	return existed, err
}
