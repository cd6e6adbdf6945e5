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
	"maps"
	"slices"
	"strings"

	"github.com/blinklabs-io/gavel/database/models"
	"github.com/blinklabs-io/gavel/database/types"
)

func sortedValues[K comparable, V any](
	src map[K]V,
	cmpFunc func(a, b V) int,
) []V {
	ret := make([]V, 0, len(src))
	ret = slices.AppendSeq(ret, maps.Values(src))
	slices.SortFunc(ret, cmpFunc)
	return ret
}

func compareKeys(aFirst, aSecond, bFirst, bSecond string) int {
	return cmp.Or(
		strings.Compare(aFirst, bFirst),
		strings.Compare(aSecond, bSecond),
	)
}

// GetSnapshot returns every table sorted the same way as the SQL store
func (m *MetadataStoreMemory) GetSnapshot(
	txn types.Txn,
) (*models.Snapshot, error) {
	ret := &models.Snapshot{}
	err := m.view(txn, func(s *state) error {
		if s.clock != nil {
			tmpClock := *s.clock
			ret.Clock = &tmpClock
		}
		ret.Proposals = sortedValues(
			s.proposals,
			func(a, b models.Proposal) int {
				return strings.Compare(a.ID, b.ID)
			},
		)
		ret.PoolVotes = sortedValues(
			s.poolVotes,
			func(a, b models.PoolVote) int {
				return compareKeys(
					a.ProposalID,
					a.VoterAddress,
					b.ProposalID,
					b.VoterAddress,
				)
			},
		)
		ret.ChamberVotes = sortedValues(
			s.chamberVotes,
			func(a, b models.ChamberVote) int {
				return compareKeys(
					a.ProposalID,
					a.VoterAddress,
					b.ProposalID,
					b.VoterAddress,
				)
			},
		)
		ret.VetoVotes = sortedValues(
			s.vetoVotes,
			func(a, b models.VetoVote) int {
				return compareKeys(
					a.ProposalID,
					a.VoterAddress,
					b.ProposalID,
					b.VoterAddress,
				)
			},
		)
		ret.Delegations = sortedValues(
			s.delegations,
			func(a, b models.Delegation) int {
				return compareKeys(
					a.ChamberID,
					a.DelegatorAddress,
					b.ChamberID,
					b.DelegatorAddress,
				)
			},
		)
		ret.StageDenominators = sortedValues(
			s.denominators,
			func(a, b models.StageDenominator) int {
				return compareKeys(
					a.ProposalID,
					a.Stage,
					b.ProposalID,
					b.Stage,
				)
			},
		)
		ret.EraSnapshots = sortedValues(
			s.eraSnapshots,
			func(a, b models.EraSnapshot) int {
				return cmp.Compare(a.Era, b.Era)
			},
		)
		ret.EraUserActivities = sortedValues(
			s.eraActivities,
			func(a, b models.EraUserActivity) int {
				return cmp.Or(
					cmp.Compare(a.Era, b.Era),
					strings.Compare(a.Address, b.Address),
				)
			},
		)
		ret.EraRollups = sortedValues(
			s.eraRollups,
			func(a, b models.EraRollup) int {
				return cmp.Compare(a.Era, b.Era)
			},
		)
		ret.EraUserStatuses = sortedValues(
			s.eraStatuses,
			func(a, b models.EraUserStatus) int {
				return cmp.Or(
					cmp.Compare(a.Era, b.Era),
					strings.Compare(a.Address, b.Address),
				)
			},
		)
		ret.Chambers = sortedValues(
			s.chambers,
			func(a, b models.Chamber) int {
				return strings.Compare(a.ID, b.ID)
			},
		)
		ret.MeritAwards = sortedValues(
			s.meritAwards,
			func(a, b models.MeritAward) int {
				return strings.Compare(a.ProposalID, b.ProposalID)
			},
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}
