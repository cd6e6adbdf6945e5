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
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/blinklabs-io/gavel/database/models"
	"github.com/blinklabs-io/gavel/database/types"
)

func (m *MetadataStoreMemory) GetChamber(
	id string,
	txn types.Txn,
) (*models.Chamber, error) {
	var ret *models.Chamber
	err := m.view(txn, func(s *state) error {
		if row, ok := s.chambers[id]; ok {
			ret = &row
		}
		return nil
	})
	return ret, err
}

func (m *MetadataStoreMemory) GetChambers(
	txn types.Txn,
) ([]models.Chamber, error) {
	var ret []models.Chamber
	err := m.view(txn, func(s *state) error {
		for _, row := range s.chambers {
			ret = append(ret, row)
		}
		return nil
	})
	slices.SortFunc(ret, func(a, b models.Chamber) int {
		return strings.Compare(a.ID, b.ID)
	})
	return ret, err
}

func (m *MetadataStoreMemory) AddChamber(
	chamber *models.Chamber,
	txn types.Txn,
) (bool, error) {
	var added bool
	err := m.update(txn, func(s *state) error {
		if _, ok := s.chambers[chamber.ID]; ok {
			return nil
		}
		s.chambers[chamber.ID] = *chamber
		added = true
		return nil
	})
	return added, err
}

func (m *MetadataStoreMemory) SetChamberDissolved(
	id string,
	dissolvedAt time.Time,
	txn types.Txn,
) error {
	return m.update(txn, func(s *state) error {
		row, ok := s.chambers[id]
		if !ok || row.DissolvedAt != nil {
			return nil
		}
		row.DissolvedAt = &dissolvedAt
		s.chambers[id] = row
		return nil
	})
}

func (m *MetadataStoreMemory) AddMeritAward(
	award *models.MeritAward,
	txn types.Txn,
) (bool, error) {
	var added bool
	err := m.update(txn, func(s *state) error {
		if _, ok := s.meritAwards[award.ProposalID]; ok {
			return nil
		}
		row := *award
		row.ID = s.newID()
		s.meritAwards[award.ProposalID] = row
		added = true
		return nil
	})
	return added, err
}

func (m *MetadataStoreMemory) GetMeritAward(
	proposalID string,
	txn types.Txn,
) (*models.MeritAward, error) {
	var ret *models.MeritAward
	err := m.view(txn, func(s *state) error {
		if row, ok := s.meritAwards[proposalID]; ok {
			ret = &row
		}
		return nil
	})
	return ret, err
}

func (m *MetadataStoreMemory) GetMeritTotals(
	txn types.Txn,
) ([]models.MeritTotal, error) {
	type totalKey struct {
		chamberID string
		address   string
	}
	totals := make(map[totalKey]models.MeritTotal)
	err := m.view(txn, func(s *state) error {
		for _, award := range s.meritAwards {
			key := totalKey{award.ChamberID, award.Address}
			total := totals[key]
			total.ChamberID = award.ChamberID
			total.Address = award.Address
			total.LCM += award.LCM
			total.MCM += award.MCM
			totals[key] = total
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	ret := make([]models.MeritTotal, 0, len(totals))
	for _, total := range totals {
		ret = append(ret, total)
	}
	slices.SortFunc(ret, func(a, b models.MeritTotal) int {
		return cmp.Or(
			strings.Compare(a.ChamberID, b.ChamberID),
			strings.Compare(a.Address, b.Address),
		)
	})
	return ret, nil
}
