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

func (m *MetadataStoreMemory) SetPoolVote(
	vote *models.PoolVote,
	txn types.Txn,
) error {
	return m.update(txn, func(s *state) error {
		key := voteKey{vote.ProposalID, vote.VoterAddress}
		if existing, ok := s.poolVotes[key]; ok {
			existing.Direction = vote.Direction
			existing.UpdatedAt = vote.UpdatedAt
			s.poolVotes[key] = existing
			return nil
		}
		row := *vote
		row.ID = s.newID()
		s.poolVotes[key] = row
		return nil
	})
}

func (m *MetadataStoreMemory) GetPoolVotes(
	proposalID string,
	txn types.Txn,
) ([]models.PoolVote, error) {
	var ret []models.PoolVote
	err := m.view(txn, func(s *state) error {
		for key, vote := range s.poolVotes {
			if key.proposalID == proposalID {
				ret = append(ret, vote)
			}
		}
		return nil
	})
	slices.SortFunc(ret, func(a, b models.PoolVote) int {
		return strings.Compare(a.VoterAddress, b.VoterAddress)
	})
	return ret, err
}

func (m *MetadataStoreMemory) SetChamberVote(
	vote *models.ChamberVote,
	txn types.Txn,
) error {
	return m.update(txn, func(s *state) error {
		key := voteKey{vote.ProposalID, vote.VoterAddress}
		var score *uint8
		if vote.Score != nil {
			tmpScore := *vote.Score
			score = &tmpScore
		}
		if existing, ok := s.chamberVotes[key]; ok {
			existing.Choice = vote.Choice
			existing.Score = score
			existing.UpdatedAt = vote.UpdatedAt
			s.chamberVotes[key] = existing
			return nil
		}
		row := *vote
		row.Score = score
		row.ID = s.newID()
		s.chamberVotes[key] = row
		return nil
	})
}

func (m *MetadataStoreMemory) GetChamberVotes(
	proposalID string,
	txn types.Txn,
) ([]models.ChamberVote, error) {
	var ret []models.ChamberVote
	err := m.view(txn, func(s *state) error {
		for key, vote := range s.chamberVotes {
			if key.proposalID == proposalID {
				ret = append(ret, vote)
			}
		}
		return nil
	})
	slices.SortFunc(ret, func(a, b models.ChamberVote) int {
		return strings.Compare(a.VoterAddress, b.VoterAddress)
	})
	return ret, err
}

func (m *MetadataStoreMemory) DeleteChamberVotes(
	proposalID string,
	txn types.Txn,
) error {
	return m.update(txn, func(s *state) error {
		for key := range s.chamberVotes {
			if key.proposalID == proposalID {
				delete(s.chamberVotes, key)
			}
		}
		return nil
	})
}

func (m *MetadataStoreMemory) SetVetoVote(
	vote *models.VetoVote,
	txn types.Txn,
) error {
	return m.update(txn, func(s *state) error {
		key := voteKey{vote.ProposalID, vote.VoterAddress}
		if existing, ok := s.vetoVotes[key]; ok {
			existing.Choice = vote.Choice
			existing.UpdatedAt = vote.UpdatedAt
			s.vetoVotes[key] = existing
			return nil
		}
		row := *vote
		row.ID = s.newID()
		s.vetoVotes[key] = row
		return nil
	})
}

func (m *MetadataStoreMemory) GetVetoVotes(
	proposalID string,
	txn types.Txn,
) ([]models.VetoVote, error) {
	var ret []models.VetoVote
	err := m.view(txn, func(s *state) error {
		for key, vote := range s.vetoVotes {
			if key.proposalID == proposalID {
				ret = append(ret, vote)
			}
		}
		return nil
	})
	slices.SortFunc(ret, func(a, b models.VetoVote) int {
		return strings.Compare(a.VoterAddress, b.VoterAddress)
	})
	return ret, err
}

func (m *MetadataStoreMemory) DeleteVetoVotes(
	proposalID string,
	txn types.Txn,
) error {
	return m.update(txn, func(s *state) error {
		for key := range s.vetoVotes {
			if key.proposalID == proposalID {
				delete(s.vetoVotes, key)
			}
		}
		return nil
	})
}
