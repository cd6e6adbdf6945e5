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

// Package veto selects the veto council from chamber merit history.
package veto

import (
	"slices"
	"sort"

	"github.com/blinklabs-io/gavel/governance/quorum"
)

// MeritTotal is the cumulative LCM awarded to an address within one chamber
type MeritTotal struct {
	ChamberID string `json:"chamberId"`
	Address   string `json:"address"`
	LCM       uint64 `json:"lcm"`
}

type Seat struct {
	ChamberID string `json:"chamberId"`
	Address   string `json:"address"`
	LCM       uint64 `json:"lcm"`
}

type Council struct {
	Seats     []Seat   `json:"seats"`
	Members   []string `json:"members"`
	Threshold uint32   `json:"threshold"`
}

func (c Council) Contains(address string) bool {
	return slices.Contains(c.Members, address)
}

// SelectCouncil picks the top LCM holder of each active chamber. Ties go to
// the lexicographically smallest address. Chambers without awards have no
// seat, and an address holding several seats is a single member.
func SelectCouncil(
	activeChambers []string,
	totals []MeritTotal,
	passingFraction float64,
) Council {
	chambers := slices.Clone(activeChambers)
	sort.Strings(chambers)
	best := make(map[string]MeritTotal, len(chambers))
	for _, total := range totals {
		if total.LCM == 0 {
			continue
		}
		cur, ok := best[total.ChamberID]
		if !ok ||
			total.LCM > cur.LCM ||
			(total.LCM == cur.LCM && total.Address < cur.Address) {
			best[total.ChamberID] = total
		}
	}
	ret := Council{
		Seats:   []Seat{},
		Members: []string{},
	}
	seen := make(map[string]struct{})
	for _, chamberID := range chambers {
		holder, ok := best[chamberID]
		if !ok {
			continue
		}
		ret.Seats = append(ret.Seats, Seat(holder))
		if _, dup := seen[holder.Address]; dup {
			continue
		}
		seen[holder.Address] = struct{}{}
		ret.Members = append(ret.Members, holder.Address)
	}
	ret.Threshold = quorum.VetoThreshold(len(ret.Members), passingFraction)
	return ret
}
