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
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/blinklabs-io/gavel/database/models"
	"github.com/blinklabs-io/gavel/database/types"
)

func (m *MetadataStoreMemory) GetStageDenominator(
	proposalID string,
	stage string,
	txn types.Txn,
) (*models.StageDenominator, error) {
	var ret *models.StageDenominator
	err := m.view(txn, func(s *state) error {
		if row, ok := s.denominators[denominatorKey{proposalID, stage}]; ok {
			ret = &row
		}
		return nil
	})
	return ret, err
}

func (m *MetadataStoreMemory) AddStageDenominator(
	denominator *models.StageDenominator,
	txn types.Txn,
) (*models.StageDenominator, error) {
	var ret models.StageDenominator
	err := m.update(txn, func(s *state) error {
		key := denominatorKey{denominator.ProposalID, denominator.Stage}
		if existing, ok := s.denominators[key]; ok {
			ret = existing
			return nil
		}
		ret = *denominator
		ret.ID = s.newID()
		s.denominators[key] = ret
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

func (m *MetadataStoreMemory) GetClockState(
	txn types.Txn,
) (*models.ClockState, error) {
	var ret *models.ClockState
	err := m.view(txn, func(s *state) error {
		if s.clock != nil {
			tmpClock := *s.clock
			ret = &tmpClock
		}
		return nil
	})
	return ret, err
}

func (m *MetadataStoreMemory) SetClockEra(
	from uint64,
	to uint64,
	startedAt time.Time,
	txn types.Txn,
) (bool, error) {
	var moved bool
	err := m.update(txn, func(s *state) error {
		if s.clock == nil {
			if from != 0 {
				return nil
			}
			s.clock = &models.ClockState{ID: 1}
		} else if s.clock.CurrentEra != from {
			return nil
		}
		s.clock = &models.ClockState{
			ID:           s.clock.ID,
			CurrentEra:   to,
			EraStartedAt: startedAt,
			UpdatedAt:    startedAt,
		}
		moved = true
		return nil
	})
	return moved, err
}

func (m *MetadataStoreMemory) GetEraSnapshot(
	era uint64,
	txn types.Txn,
) (*models.EraSnapshot, error) {
	var ret *models.EraSnapshot
	err := m.view(txn, func(s *state) error {
		if row, ok := s.eraSnapshots[era]; ok {
			ret = &row
		}
		return nil
	})
	return ret, err
}

func (m *MetadataStoreMemory) AddEraSnapshot(
	snapshot *models.EraSnapshot,
	txn types.Txn,
) (*models.EraSnapshot, error) {
	var ret models.EraSnapshot
	err := m.update(txn, func(s *state) error {
		if existing, ok := s.eraSnapshots[snapshot.Era]; ok {
			ret = existing
			return nil
		}
		ret = *snapshot
		s.eraSnapshots[snapshot.Era] = ret
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

func (m *MetadataStoreMemory) MarkEraActivity(
	era uint64,
	address string,
	column string,
	txn types.Txn,
) (bool, error) {
	var first bool
	err := m.update(txn, func(s *state) error {
		key := eraAddressKey{era, address}
		row, ok := s.eraActivities[key]
		if !ok {
			row = models.EraUserActivity{
				ID:      s.newID(),
				Era:     era,
				Address: address,
			}
		}
		var counter *uint32
		switch column {
		case models.ActivityColumnPoolVotes:
			counter = &row.PoolVotes
		case models.ActivityColumnChamberVotes:
			counter = &row.ChamberVotes
		case models.ActivityColumnCourtActions:
			counter = &row.CourtActions
		case models.ActivityColumnFormationActions:
			counter = &row.FormationActions
		default:
			return fmt.Errorf("%w: %s", errUnknownActType, column)
		}
		if *counter > 0 {
			return nil
		}
		*counter = 1
		s.eraActivities[key] = row
		first = true
		return nil
	})
	return first, err
}

func (m *MetadataStoreMemory) GetEraActivity(
	era uint64,
	address string,
	txn types.Txn,
) (*models.EraUserActivity, error) {
	var ret *models.EraUserActivity
	err := m.view(txn, func(s *state) error {
		if row, ok := s.eraActivities[eraAddressKey{era, address}]; ok {
			ret = &row
		}
		return nil
	})
	return ret, err
}

func (m *MetadataStoreMemory) GetEraActivities(
	era uint64,
	txn types.Txn,
) ([]models.EraUserActivity, error) {
	var ret []models.EraUserActivity
	err := m.view(txn, func(s *state) error {
		for key, row := range s.eraActivities {
			if key.era == era {
				ret = append(ret, row)
			}
		}
		return nil
	})
	slices.SortFunc(ret, func(a, b models.EraUserActivity) int {
		return strings.Compare(a.Address, b.Address)
	})
	return ret, err
}

func (m *MetadataStoreMemory) GetEraRollup(
	era uint64,
	txn types.Txn,
) (*models.EraRollup, error) {
	var ret *models.EraRollup
	err := m.view(txn, func(s *state) error {
		if row, ok := s.eraRollups[era]; ok {
			ret = &row
		}
		return nil
	})
	return ret, err
}

func (m *MetadataStoreMemory) AddEraRollup(
	rollup *models.EraRollup,
	statuses []models.EraUserStatus,
	txn types.Txn,
) (bool, error) {
	var written bool
	err := m.update(txn, func(s *state) error {
		if _, ok := s.eraRollups[rollup.Era]; ok {
			return nil
		}
		s.eraRollups[rollup.Era] = *rollup
		for _, status := range statuses {
			status.ID = s.newID()
			s.eraStatuses[eraAddressKey{status.Era, status.Address}] = status
		}
		written = true
		return nil
	})
	return written, err
}

func (m *MetadataStoreMemory) GetEraUserStatuses(
	era uint64,
	txn types.Txn,
) ([]models.EraUserStatus, error) {
	var ret []models.EraUserStatus
	err := m.view(txn, func(s *state) error {
		for key, row := range s.eraStatuses {
			if key.era == era {
				ret = append(ret, row)
			}
		}
		return nil
	})
	slices.SortFunc(ret, func(a, b models.EraUserStatus) int {
		return strings.Compare(a.Address, b.Address)
	})
	return ret, err
}
