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

package governance_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/gavel/database/models"
	"github.com/blinklabs-io/gavel/governance"
)

func chamberParams(active uint64, quorum, passing float64) func(*governance.Params) {
	return func(p *governance.Params) {
		p.GenesisActiveGovernors = active
		p.ChamberQuorumFraction = quorum
		p.ChamberPassingFraction = passing
	}
}

func TestChamberPass(t *testing.T) {
	forEachStore(t, func(t *testing.T, plugin string) {
		env := newTestEnv(t, plugin, chamberParams(150, 0.333, 0.68))
		env.toVoteStage(t, "p1", "")
		var status *governance.ChamberStatus
		for i := range 16 {
			status = env.chamberVote(t, fmt.Sprintf("no-%02d", i), "p1", models.ChamberChoiceNo)
		}
		for i := range 33 {
			status = env.chamberVote(t, fmt.Sprintf("yes-%02d", i), "p1", models.ChamberChoiceYes)
			assert.False(t, status.Outcome.PassMet)
		}
		status = env.chamberVote(t, "yes-33", "p1", models.ChamberChoiceYes)
		assert.Equal(t, uint64(34), status.Counts.Yes)
		assert.Equal(t, uint64(16), status.Counts.No)
		assert.Equal(t, uint64(50), status.Outcome.Engaged)
		assert.InDelta(t, 0.68, status.Outcome.YesFraction, 1e-9)
		assert.True(t, status.Outcome.QuorumMet)
		assert.True(t, status.Outcome.PassMet)
		require.NotNil(t, status.VotePassedAt)

		proposal := env.proposal(t, "p1")
		require.True(t, proposal.Passed())
		assert.True(t, baseTime.Equal(*proposal.VotePassedAt))
		assert.True(t, baseTime.Add(env.params.VetoWindow).Equal(*proposal.VoteFinalizesAt))
		// No merit history yet, so the council is empty
		assert.Empty(t, proposal.VetoCouncil)
		require.NotNil(t, proposal.VetoThreshold)
		assert.Zero(t, *proposal.VetoThreshold)

		_, err := env.engine.ChamberVote(
			context.Background(),
			"no-00",
			governance.ChamberVoteRequest{ProposalID: "p1", Choice: models.ChamberChoiceYes},
		)
		require.ErrorIs(t, err, governance.ErrVotePaused)
		assert.Equal(t, governance.KindStateInvariant, governance.KindOf(err))
	})
}

func TestChamberNoPassBelowFraction(t *testing.T) {
	forEachStore(t, func(t *testing.T, plugin string) {
		env := newTestEnv(t, plugin, chamberParams(150, 0.333, 0.6667))
		env.toVoteStage(t, "p1", "")
		var status *governance.ChamberStatus
		for i := range 17 {
			status = env.chamberVote(t, fmt.Sprintf("no-%02d", i), "p1", models.ChamberChoiceNo)
		}
		for i := range 33 {
			status = env.chamberVote(t, fmt.Sprintf("yes-%02d", i), "p1", models.ChamberChoiceYes)
		}
		assert.True(t, status.Outcome.QuorumMet)
		assert.InDelta(t, 0.66, status.Outcome.YesFraction, 1e-9)
		assert.False(t, status.Outcome.PassMet)
		assert.False(t, env.proposal(t, "p1").Passed())
	})
}

func TestChamberVoteOverwrite(t *testing.T) {
	forEachStore(t, func(t *testing.T, plugin string) {
		env := newTestEnv(t, plugin, chamberParams(100, 0.9, 0.9))
		env.toVoteStage(t, "p1", "")
		env.chamberVote(t, "alice", "p1", models.ChamberChoiceYes)
		status := env.chamberVote(t, "alice", "p1", models.ChamberChoiceYes)
		assert.Zero(t, status.Counts.No)
		assert.Equal(t, uint64(1), status.Counts.Yes)
		status = env.chamberVote(t, "alice", "p1", models.ChamberChoiceAbstain)
		assert.Zero(t, status.Counts.Yes)
		assert.Equal(t, uint64(1), status.Counts.Abstain)
		assert.Equal(t, uint64(1), status.Outcome.Engaged)
	})
}

func TestChamberDelegatedWeight(t *testing.T) {
	forEachStore(t, func(t *testing.T, plugin string) {
		env := newTestEnv(t, plugin, chamberParams(10, 0.9, 0.9))
		ctx := context.Background()
		for _, delegator := range []string{"d1", "d2"} {
			_, err := env.engine.SetDelegation(ctx, delegator, governance.SetDelegationRequest{
				ChamberID:        models.GeneralChamberID,
				DelegateeAddress: "alice",
			})
			require.NoError(t, err)
		}
		// Weight does not flow transitively from d3 through d2
		_, err := env.engine.SetDelegation(ctx, "d3", governance.SetDelegationRequest{
			ChamberID:        models.GeneralChamberID,
			DelegateeAddress: "d2",
		})
		require.NoError(t, err)
		env.toVoteStage(t, "p1", "")

		status := env.chamberVote(t, "alice", "p1", models.ChamberChoiceYes)
		assert.Equal(t, uint64(3), status.Counts.Yes)

		// A delegator voting directly takes its unit back
		status = env.chamberVote(t, "d1", "p1", models.ChamberChoiceNo)
		assert.Equal(t, uint64(2), status.Counts.Yes)
		assert.Equal(t, uint64(1), status.Counts.No)

		// d2 now votes and carries d3
		status = env.chamberVote(t, "d2", "p1", models.ChamberChoiceNo)
		assert.Equal(t, uint64(1), status.Counts.Yes)
		assert.Equal(t, uint64(3), status.Counts.No)
	})
}

func TestChamberVoteValidation(t *testing.T) {
	env := newTestEnv(t, "memory", chamberParams(100, 0.9, 0.9))
	env.toVoteStage(t, "p1", "")
	ctx := context.Background()
	for _, score := range []uint8{0, 11} {
		_, err := env.engine.ChamberVote(ctx, "alice", governance.ChamberVoteRequest{
			ProposalID: "p1",
			Choice:     models.ChamberChoiceYes,
			Score:      &score,
		})
		require.ErrorIs(t, err, governance.ErrInvalidArgument)
	}
	_, err := env.engine.ChamberVote(ctx, "alice", governance.ChamberVoteRequest{
		ProposalID: "p1",
		Choice:     "maybe",
	})
	require.ErrorIs(t, err, governance.ErrInvalidArgument)
	status, err := env.engine.ChamberStatus(ctx, "p1")
	require.NoError(t, err)
	assert.Zero(t, status.Outcome.Engaged)

	env.createPooled(t, "p2", "")
	_, err = env.engine.ChamberVote(ctx, "alice", governance.ChamberVoteRequest{
		ProposalID: "p2",
		Choice:     models.ChamberChoiceYes,
	})
	require.ErrorIs(t, err, governance.ErrStageConflict)
}

func TestChamberVoteWindowCloses(t *testing.T) {
	forEachStore(t, func(t *testing.T, plugin string) {
		env := newTestEnv(t, plugin, chamberParams(100, 0.9, 0.9))
		env.toVoteStage(t, "p1", "")
		env.clock.Advance(env.params.VoteWindow + time.Second)
		_, err := env.engine.ChamberVote(
			context.Background(),
			"alice",
			governance.ChamberVoteRequest{ProposalID: "p1", Choice: models.ChamberChoiceYes},
		)
		require.ErrorIs(t, err, governance.ErrVoteWindowClosed)
	})
}

func TestStageDenominatorStability(t *testing.T) {
	forEachStore(t, func(t *testing.T, plugin string) {
		env := newTestEnv(t, plugin, func(p *governance.Params) {
			p.GenesisActiveGovernors = 150
			p.EraQuotas.PoolVotes = 1
			p.EraQuotas.ChamberVotes = 1
		})
		ctx := context.Background()
		env.toVoteStage(t, "p1", "")
		// Only "solo" meets both quotas this era
		_, err := env.engine.RecordActivity(ctx, "solo", categoryPool)
		require.NoError(t, err)
		_, err = env.engine.RecordActivity(ctx, "solo", categoryChamber)
		require.NoError(t, err)

		result, err := env.engine.AdvanceEra(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), result.Era)
		assert.Equal(t, uint64(1), result.ActiveGovernors)

		status, err := env.engine.ChamberStatus(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, uint64(150), status.ActiveGovernors)

		// A proposal entering the pool now captures the new baseline
		env.createPooled(t, "p2", "")
		pool, err := env.engine.PoolStatus(ctx, "p2")
		require.NoError(t, err)
		assert.Equal(t, uint64(1), pool.ActiveGovernors)
	})
}

func TestDissolvedChamberRejectsVotes(t *testing.T) {
	env := newTestEnv(t, "memory", chamberParams(100, 0.9, 0.9))
	ctx := context.Background()
	_, err := env.engine.CreateChamber(ctx, governance.CreateChamberRequest{ID: "infra"})
	require.NoError(t, err)
	env.toVoteStage(t, "p1", "infra")
	_, err = env.engine.DissolveChamber(ctx, "infra")
	require.NoError(t, err)
	_, err = env.engine.ChamberVote(ctx, "alice", governance.ChamberVoteRequest{
		ProposalID: "p1",
		Choice:     models.ChamberChoiceYes,
	})
	require.ErrorIs(t, err, governance.ErrChamberDissolved)
}
