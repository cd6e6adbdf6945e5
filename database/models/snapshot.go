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

package models

// Snapshot is a full copy of the metadata tables used for export
type Snapshot struct {
	Clock             *ClockState        `json:"clock,omitempty"`
	Proposals         []Proposal         `json:"proposals"`
	PoolVotes         []PoolVote         `json:"poolVotes"`
	ChamberVotes      []ChamberVote      `json:"chamberVotes"`
	VetoVotes         []VetoVote         `json:"vetoVotes"`
	Delegations       []Delegation       `json:"delegations"`
	StageDenominators []StageDenominator `json:"stageDenominators"`
	EraSnapshots      []EraSnapshot      `json:"eraSnapshots"`
	EraUserActivities []EraUserActivity  `json:"eraUserActivities"`
	EraRollups        []EraRollup        `json:"eraRollups"`
	EraUserStatuses   []EraUserStatus    `json:"eraUserStatuses"`
	Chambers          []Chamber          `json:"chambers"`
	MeritAwards       []MeritAward       `json:"meritAwards"`
}
