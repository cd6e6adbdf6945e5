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

package quorum_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blinklabs-io/gavel/governance/quorum"
)

func TestUpvoteFloor(t *testing.T) {
	testDefs := []struct {
		active   uint64
		fraction float64
		expected uint64
	}{
		{100, 0.10, 10},
		{101, 0.10, 11},
		{5, 0.10, 1},
		{0, 0.10, 1},
		{150, 0, 1},
	}
	for _, testDef := range testDefs {
		assert.Equal(
			t,
			testDef.expected,
			quorum.UpvoteFloor(testDef.active, testDef.fraction),
			"active=%d fraction=%f", testDef.active, testDef.fraction,
		)
	}
}

func TestEvaluatePoolAdvances(t *testing.T) {
	params := quorum.NewPoolParams(100, 0.22, 0.10)
	outcome := quorum.EvaluatePool(params, quorum.PoolCounts{Upvotes: 34})
	assert.Equal(t, uint64(34), outcome.Engaged)
	assert.InDelta(t, 0.34, outcome.EngagedFraction, 1e-9)
	assert.Equal(t, uint64(10), outcome.UpvoteFloor)
	assert.True(t, outcome.AttentionMet)
	assert.True(t, outcome.UpvoteFloorMet)
	assert.True(t, outcome.ShouldAdvance)
}

func TestEvaluatePoolNeedsUpvoteFloor(t *testing.T) {
	params := quorum.NewPoolParams(100, 0.22, 0.10)
	outcome := quorum.EvaluatePool(params, quorum.PoolCounts{Upvotes: 9, Downvotes: 30})
	assert.True(t, outcome.AttentionMet)
	assert.False(t, outcome.UpvoteFloorMet)
	assert.False(t, outcome.ShouldAdvance)
}

func TestEvaluatePoolNeedsAttention(t *testing.T) {
	params := quorum.NewPoolParams(100, 0.35, 0.10)
	outcome := quorum.EvaluatePool(params, quorum.PoolCounts{Upvotes: 34})
	assert.False(t, outcome.AttentionMet)
	assert.False(t, outcome.ShouldAdvance)
}

func TestEvaluatePoolZeroGovernors(t *testing.T) {
	params := quorum.NewPoolParams(0, 0, 0.10)
	outcome := quorum.EvaluatePool(params, quorum.PoolCounts{Upvotes: 50})
	assert.Zero(t, outcome.EngagedFraction)
	assert.False(t, outcome.ShouldAdvance)
}

func TestEvaluateChamber(t *testing.T) {
	params := quorum.ChamberParams{
		QuorumFraction:  0.333,
		PassingFraction: 0.68,
		ActiveGovernors: 150,
	}
	outcome := quorum.EvaluateChamber(params, quorum.ChamberCounts{Yes: 34, No: 16})
	assert.Equal(t, uint64(50), outcome.Engaged)
	assert.True(t, outcome.QuorumMet)
	assert.InDelta(t, 0.68, outcome.YesFraction, 1e-9)
	assert.True(t, outcome.PassMet)
}

func TestEvaluateChamberStrictPassing(t *testing.T) {
	params := quorum.ChamberParams{
		QuorumFraction:  0.333,
		PassingFraction: 0.6667,
		ActiveGovernors: 150,
	}
	outcome := quorum.EvaluateChamber(params, quorum.ChamberCounts{Yes: 33, No: 17})
	assert.True(t, outcome.QuorumMet)
	assert.False(t, outcome.PassMet)
}

func TestEvaluateChamberAbstainCountsTowardQuorum(t *testing.T) {
	params := quorum.ChamberParams{
		QuorumFraction:  0.5,
		PassingFraction: 0.5,
		ActiveGovernors: 10,
	}
	outcome := quorum.EvaluateChamber(params, quorum.ChamberCounts{Yes: 2, Abstain: 3})
	assert.True(t, outcome.QuorumMet)
	assert.InDelta(t, 0.4, outcome.YesFraction, 1e-9)
	assert.False(t, outcome.PassMet)
}

func TestEvaluateChamberEmpty(t *testing.T) {
	outcome := quorum.EvaluateChamber(
		quorum.ChamberParams{ActiveGovernors: 0},
		quorum.ChamberCounts{},
	)
	assert.Zero(t, outcome.YesFraction)
	assert.False(t, outcome.QuorumMet)
	assert.False(t, outcome.PassMet)
}

func TestEvaluateChamberZeroGovernorsWithVotes(t *testing.T) {
	outcome := quorum.EvaluateChamber(
		quorum.ChamberParams{QuorumFraction: 0, PassingFraction: 0.5},
		quorum.ChamberCounts{Yes: 3},
	)
	assert.Equal(t, uint64(3), outcome.Engaged)
	assert.InDelta(t, 1.0, outcome.YesFraction, 1e-9)
	assert.Zero(t, outcome.EngagedFraction)
	assert.False(t, outcome.QuorumMet)
	assert.False(t, outcome.PassMet)
}

func TestVetoThreshold(t *testing.T) {
	assert.Equal(t, uint32(0), quorum.VetoThreshold(0, 0.66))
	assert.Equal(t, uint32(1), quorum.VetoThreshold(1, 0.66))
	assert.Equal(t, uint32(2), quorum.VetoThreshold(2, 0.66))
	assert.Equal(t, uint32(2), quorum.VetoThreshold(3, 0.5))
	assert.Equal(t, uint32(7), quorum.VetoThreshold(10, 0.66))
}
