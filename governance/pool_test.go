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

func poolVote(
	t *testing.T,
	env *testEnv,
	voter, id, direction string,
) *governance.PoolStatus {
	t.Helper()
	status, err := env.engine.PoolVote(
		context.Background(),
		voter,
		governance.PoolVoteRequest{ProposalID: id, Direction: direction},
	)
	require.NoError(t, err)
	return status
}

func TestPoolQuorumAdvances(t *testing.T) {
	forEachStore(t, func(t *testing.T, plugin string) {
		env := newTestEnv(t, plugin, func(p *governance.Params) {
			p.GenesisActiveGovernors = 100
			p.PoolAttentionQuorum = 0.34
			p.PoolUpvoteFraction = 0.10
		})
		env.createPooled(t, "p1", "")
		var status *governance.PoolStatus
		for i := range 33 {
			status = poolVote(t, env, fmt.Sprintf("v%02d", i), "p1", models.PoolDirectionUp)
			assert.Equal(t, "pool", status.Stage)
		}
		assert.Equal(t, uint64(10), status.Outcome.UpvoteFloor)
		assert.True(t, status.Outcome.UpvoteFloorMet)
		assert.False(t, status.Outcome.AttentionMet)

		status = poolVote(t, env, "v33", "p1", models.PoolDirectionUp)
		assert.Equal(t, "vote", status.Stage)
		assert.Equal(t, uint64(34), status.Counts.Upvotes)
		assert.Equal(t, uint64(34), status.Outcome.Engaged)
		assert.InDelta(t, 0.34, status.Outcome.EngagedFraction, 1e-9)
		assert.True(t, status.Outcome.ShouldAdvance)

		_, err := env.engine.PoolVote(
			context.Background(),
			"late",
			governance.PoolVoteRequest{ProposalID: "p1", Direction: models.PoolDirectionUp},
		)
		require.ErrorIs(t, err, governance.ErrStageConflict)
		assert.Equal(t, governance.KindConflict, governance.KindOf(err))

		// The vote stage froze the same baseline
		chamber, err := env.engine.ChamberStatus(context.Background(), "p1")
		require.NoError(t, err)
		assert.Equal(t, uint64(100), chamber.ActiveGovernors)
	})
}

func TestPoolQuorumNeedsUpvoteFloor(t *testing.T) {
	env := newTestEnv(t, "memory", func(p *governance.Params) {
		p.GenesisActiveGovernors = 100
		p.PoolAttentionQuorum = 0.22
		p.PoolUpvoteFraction = 0.10
	})
	env.createPooled(t, "p1", "")
	for i := range 30 {
		poolVote(t, env, fmt.Sprintf("d%02d", i), "p1", models.PoolDirectionDown)
	}
	var status *governance.PoolStatus
	for i := range 9 {
		status = poolVote(t, env, fmt.Sprintf("u%02d", i), "p1", models.PoolDirectionUp)
	}
	assert.True(t, status.Outcome.AttentionMet)
	assert.False(t, status.Outcome.UpvoteFloorMet)
	assert.Equal(t, "pool", status.Stage)
	status = poolVote(t, env, "u09", "p1", models.PoolDirectionUp)
	assert.Equal(t, "vote", status.Stage)
}

func TestPoolVoteIdempotent(t *testing.T) {
	forEachStore(t, func(t *testing.T, plugin string) {
		env := newTestEnv(t, plugin, func(p *governance.Params) {
			p.PoolAttentionQuorum = 0.5
		})
		env.createPooled(t, "p1", "")
		poolVote(t, env, "alice", "p1", models.PoolDirectionUp)
		status := poolVote(t, env, "alice", "p1", models.PoolDirectionUp)
		assert.Equal(t, uint64(1), status.Counts.Upvotes)
		assert.Zero(t, status.Counts.Downvotes)

		status = poolVote(t, env, "alice", "p1", models.PoolDirectionDown)
		assert.Zero(t, status.Counts.Upvotes)
		assert.Equal(t, uint64(1), status.Counts.Downvotes)

		// Repeat votes only count the first occurrence as era activity
		activity, err := env.engine.EraActivity(context.Background(), 0, "alice")
		require.NoError(t, err)
		assert.Equal(t, uint32(1), activity.PoolVotes)
	})
}

func TestPoolVoteValidation(t *testing.T) {
	env := newTestEnv(t, "memory", nil)
	ctx := context.Background()
	_, err := env.engine.PoolVote(ctx, "alice", governance.PoolVoteRequest{
		ProposalID: "p1",
		Direction:  "sideways",
	})
	require.ErrorIs(t, err, governance.ErrInvalidArgument)
	assert.Equal(t, governance.KindValidation, governance.KindOf(err))

	_, err = env.engine.PoolVote(ctx, "alice", governance.PoolVoteRequest{
		ProposalID: "p1",
		Direction:  models.PoolDirectionUp,
	})
	require.ErrorIs(t, err, governance.ErrProposalNotFound)

	_, err = env.engine.CreateProposal(ctx, "alice", governance.CreateProposalRequest{ID: "p1"})
	require.NoError(t, err)
	_, err = env.engine.PoolVote(ctx, "bob", governance.PoolVoteRequest{
		ProposalID: "p1",
		Direction:  models.PoolDirectionUp,
	})
	require.ErrorIs(t, err, governance.ErrStageConflict)
}

func TestPoolWindowCloses(t *testing.T) {
	forEachStore(t, func(t *testing.T, plugin string) {
		env := newTestEnv(t, plugin, func(p *governance.Params) {
			p.PoolAttentionQuorum = 0.5
		})
		env.createPooled(t, "p1", "")
		env.clock.Advance(env.params.PoolWindow)
		// The deadline itself is still open
		poolVote(t, env, "alice", "p1", models.PoolDirectionUp)
		env.clock.Advance(time.Second)
		_, err := env.engine.PoolVote(
			context.Background(),
			"bob",
			governance.PoolVoteRequest{ProposalID: "p1", Direction: models.PoolDirectionUp},
		)
		require.ErrorIs(t, err, governance.ErrPoolWindowClosed)
		status, err := env.engine.PoolStatus(context.Background(), "p1")
		require.NoError(t, err)
		assert.Equal(t, uint64(1), status.Counts.Upvotes)
	})
}
