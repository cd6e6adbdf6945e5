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

package veto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blinklabs-io/gavel/governance/veto"
)

func TestSelectCouncil(t *testing.T) {
	totals := []veto.MeritTotal{
		{ChamberID: "general", Address: "alice", LCM: 8},
		{ChamberID: "general", Address: "bob", LCM: 12},
		{ChamberID: "infra", Address: "carol", LCM: 5},
		{ChamberID: "infra", Address: "dave", LCM: 4},
		// Dissolved chamber is ignored
		{ChamberID: "old", Address: "erin", LCM: 100},
	}
	council := veto.SelectCouncil([]string{"infra", "general"}, totals, 0.66)
	assert.Equal(t, []string{"bob", "carol"}, council.Members)
	assert.Equal(t, uint32(2), council.Threshold)
	assert.Len(t, council.Seats, 2)
	assert.Equal(t, "general", council.Seats[0].ChamberID)
	assert.True(t, council.Contains("carol"))
	assert.False(t, council.Contains("erin"))
}

func TestSelectCouncilTieBreak(t *testing.T) {
	totals := []veto.MeritTotal{
		{ChamberID: "general", Address: "zed", LCM: 7},
		{ChamberID: "general", Address: "amy", LCM: 7},
		{ChamberID: "general", Address: "mia", LCM: 7},
	}
	// Result must not depend on input order
	for range 5 {
		council := veto.SelectCouncil([]string{"general"}, totals, 0.66)
		assert.Equal(t, []string{"amy"}, council.Members)
		totals = append(totals[1:], totals[0])
	}
}

func TestSelectCouncilDedupesMembers(t *testing.T) {
	totals := []veto.MeritTotal{
		{ChamberID: "a", Address: "alice", LCM: 3},
		{ChamberID: "b", Address: "alice", LCM: 9},
	}
	council := veto.SelectCouncil([]string{"a", "b"}, totals, 0.66)
	assert.Equal(t, []string{"alice"}, council.Members)
	assert.Len(t, council.Seats, 2)
	assert.Equal(t, uint32(1), council.Threshold)
}

func TestSelectCouncilEmpty(t *testing.T) {
	council := veto.SelectCouncil([]string{"general"}, nil, 0.66)
	assert.Empty(t, council.Members)
	assert.Zero(t, council.Threshold)
}
