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
	"github.com/blinklabs-io/gavel/governance/lifecycle"
)

func (m *MetadataStoreMemory) GetProposal(
	id string,
	txn types.Txn,
) (*models.Proposal, error) {
	var ret *models.Proposal
	err := m.view(txn, func(s *state) error {
		if p, ok := s.proposals[id]; ok {
			ret = &p
		}
		return nil
	})
	return ret, err
}

func (m *MetadataStoreMemory) GetProposals(
	stage string,
	txn types.Txn,
) ([]models.Proposal, error) {
	var ret []models.Proposal
	err := m.view(txn, func(s *state) error {
		for _, p := range s.proposals {
			if stage != "" && p.Stage != stage {
				continue
			}
			ret = append(ret, p)
		}
		return nil
	})
	slices.SortFunc(ret, func(a, b models.Proposal) int {
		return strings.Compare(a.ID, b.ID)
	})
	return ret, err
}

func (m *MetadataStoreMemory) CreateProposal(
	proposal *models.Proposal,
	txn types.Txn,
) error {
	return m.update(txn, func(s *state) error {
		if _, ok := s.proposals[proposal.ID]; ok {
			return fmt.Errorf("proposal %s already exists", proposal.ID)
		}
		s.proposals[proposal.ID] = *proposal
		return nil
	})
}

func (m *MetadataStoreMemory) SetProposalStage(
	id string,
	from string,
	to string,
	updatedAt time.Time,
	txn types.Txn,
) (bool, error) {
	var moved bool
	err := m.update(txn, func(s *state) error {
		p, ok := s.proposals[id]
		if !ok || p.Stage != from {
			return nil
		}
		p.Stage = to
		p.UpdatedAt = updatedAt
		s.proposals[id] = p
		moved = true
		return nil
	})
	return moved, err
}

func (m *MetadataStoreMemory) SetProposalPassed(
	id string,
	pass models.PassState,
	txn types.Txn,
) (bool, error) {
	var written bool
	err := m.update(txn, func(s *state) error {
		p, ok := s.proposals[id]
		if !ok ||
			p.Stage != lifecycle.StageVote.String() ||
			p.VotePassedAt != nil {
			return nil
		}
		passedAt := pass.VotePassedAt
		finalizesAt := pass.VoteFinalizesAt
		threshold := pass.VetoThreshold
		p.VotePassedAt = &passedAt
		p.VoteFinalizesAt = &finalizesAt
		p.VetoThreshold = &threshold
		p.VetoCouncil = types.StringList(slices.Clone(pass.VetoCouncil))
		p.VetoCount = 0
		p.UpdatedAt = passedAt
		s.proposals[id] = p
		written = true
		return nil
	})
	return written, err
}

func (m *MetadataStoreMemory) ClearProposalPassed(
	id string,
	updatedAt time.Time,
	txn types.Txn,
) error {
	return m.update(txn, func(s *state) error {
		p, ok := s.proposals[id]
		if !ok {
			return nil
		}
		p.VotePassedAt = nil
		p.VoteFinalizesAt = nil
		p.VetoThreshold = nil
		p.VetoCouncil = nil
		p.VetoCount = 0
		p.UpdatedAt = updatedAt
		s.proposals[id] = p
		return nil
	})
}

func (m *MetadataStoreMemory) SetProposalVetoCount(
	id string,
	count uint32,
	txn types.Txn,
) error {
	return m.update(txn, func(s *state) error {
		p, ok := s.proposals[id]
		if !ok {
			return nil
		}
		p.VetoCount = count
		s.proposals[id] = p
		return nil
	})
}
