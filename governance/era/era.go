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

// Package era evaluates per-address activity against era quotas.
package era

import (
	"fmt"
	"sort"
)

type Category uint8

const (
	CategoryPoolVote Category = iota
	CategoryChamberVote
	CategoryCourtAction
	CategoryFormationAction
)

var categoryNames = []string{
	"pool_vote",
	"chamber_vote",
	"court_action",
	"formation_action",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

func ParseCategory(name string) (Category, error) {
	for idx, categoryName := range categoryNames {
		if categoryName == name {
			return Category(idx), nil
		}
	}
	return 0, fmt.Errorf("unknown activity category %q", name)
}

// Quotas are the required counts per category. Zero means the category
// imposes no requirement.
type Quotas struct {
	PoolVotes        uint64 `yaml:"poolVotes"        json:"poolVotes"`
	ChamberVotes     uint64 `yaml:"chamberVotes"     json:"chamberVotes"`
	CourtActions     uint64 `yaml:"courtActions"     json:"courtActions"`
	FormationActions uint64 `yaml:"formationActions" json:"formationActions"`
}

func (q Quotas) RequiredTotal() uint64 {
	return q.PoolVotes + q.ChamberVotes + q.CourtActions + q.FormationActions
}

// Activity holds the first-occurrence counters for one address in one era
type Activity struct {
	Address          string
	PoolVotes        uint64
	ChamberVotes     uint64
	CourtActions     uint64
	FormationActions uint64
}

type Status struct {
	Address         string `json:"address"`
	CompletedTotal  uint64 `json:"completedTotal"`
	RequiredTotal   uint64 `json:"requiredTotal"`
	IsActiveNextEra bool   `json:"isActiveNextEra"`
}

// Evaluate caps each category at its quota so surplus activity in one
// category cannot stand in for another
func Evaluate(activity Activity, quotas Quotas) Status {
	completed := min(activity.PoolVotes, quotas.PoolVotes) +
		min(activity.ChamberVotes, quotas.ChamberVotes) +
		min(activity.CourtActions, quotas.CourtActions) +
		min(activity.FormationActions, quotas.FormationActions)
	required := quotas.RequiredTotal()
	return Status{
		Address:         activity.Address,
		CompletedTotal:  completed,
		RequiredTotal:   required,
		IsActiveNextEra: completed >= required,
	}
}

// Rollup evaluates every address and returns the statuses sorted by address
// along with the number of addresses active next era
func Rollup(activities []Activity, quotas Quotas) ([]Status, uint64) {
	statuses := make([]Status, 0, len(activities))
	var active uint64
	for _, activity := range activities {
		status := Evaluate(activity, quotas)
		if status.IsActiveNextEra {
			active++
		}
		statuses = append(statuses, status)
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Address < statuses[j].Address
	})
	return statuses, active
}
