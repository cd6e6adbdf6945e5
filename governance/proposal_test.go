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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/gavel/governance"
	"github.com/blinklabs-io/gavel/governance/lifecycle"
)

func TestCreateProposal(t *testing.T) {
	forEachStore(t, func(t *testing.T, plugin string) {
		env := newTestEnv(t, plugin, nil)
		ctx := context.Background()
		proposal, err := env.engine.CreateProposal(ctx, "alice", governance.CreateProposalRequest{
			ID:    "p1",
			Title: "Fund the thing",
		})
		require.NoError(t, err)
		assert.Equal(t, "draft", proposal.Stage)
		assert.Equal(t, "general", proposal.ChamberID)
		assert.Equal(t, "alice", proposal.AuthorAddress)
		assert.False(t, proposal.Passed())

		_, err = env.engine.CreateProposal(ctx, "bob", governance.CreateProposalRequest{ID: "p1"})
		require.ErrorIs(t, err, governance.ErrProposalExists)
		assert.Equal(t, governance.KindConflict, governance.KindOf(err))

		_, err = env.engine.CreateProposal(ctx, "bob", governance.CreateProposalRequest{ID: "bad id!"})
		require.ErrorIs(t, err, governance.ErrInvalidArgument)

		_, err = env.engine.CreateProposal(ctx, "bob", governance.CreateProposalRequest{
			ID:        "p2",
			ChamberID: "nowhere",
		})
		require.ErrorIs(t, err, governance.ErrChamberNotFound)
		assert.True(t, governance.IsNotFound(err))

		proposals, err := env.engine.ListProposals(ctx, "")
		require.NoError(t, err)
		require.Len(t, proposals, 1)
	})
}

func TestSubmitProposal(t *testing.T) {
	forEachStore(t, func(t *testing.T, plugin string) {
		env := newTestEnv(t, plugin, nil)
		ctx := context.Background()
		_, err := env.engine.CreateProposal(ctx, "alice", governance.CreateProposalRequest{ID: "p1"})
		require.NoError(t, err)

		_, err = env.engine.SubmitProposal(ctx, "mallory", "p1")
		require.ErrorIs(t, err, governance.ErrForbidden)
		assert.Equal(t, governance.KindForbidden, governance.KindOf(err))

		env.clock.Advance(time.Minute)
		proposal, err := env.engine.SubmitProposal(ctx, "alice", "p1")
		require.NoError(t, err)
		assert.Equal(t, "pool", proposal.Stage)
		assert.True(t, baseTime.Add(time.Minute).Equal(proposal.UpdatedAt))

		_, err = env.engine.SubmitProposal(ctx, "alice", "p1")
		require.ErrorIs(t, err, governance.ErrIllegalTransition)

		// Entering the pool froze the current baseline
		status, err := env.engine.PoolStatus(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, uint64(100), status.ActiveGovernors)

		_, err = env.engine.SubmitProposal(ctx, "alice", "missing")
		require.ErrorIs(t, err, governance.ErrProposalNotFound)
	})
}

func TestTransitionStage(t *testing.T) {
	forEachStore(t, func(t *testing.T, plugin string) {
		env := newTestEnv(t, plugin, nil)
		ctx := context.Background()
		_, err := env.engine.CreateProposal(ctx, "alice", governance.CreateProposalRequest{ID: "p1"})
		require.NoError(t, err)

		_, err = env.engine.TransitionStage(ctx, "p1", lifecycle.StageDraft, lifecycle.StageBuild)
		require.ErrorIs(t, err, governance.ErrIllegalTransition)

		_, err = env.engine.TransitionStage(ctx, "p1", lifecycle.StagePool, lifecycle.StageVote)
		require.ErrorIs(t, err, governance.ErrStageConflict)

		moved, err := env.engine.TransitionStage(ctx, "p1", lifecycle.StageDraft, lifecycle.StagePool)
		require.NoError(t, err)
		assert.True(t, moved)

		moved, err = env.engine.TransitionStage(ctx, "p1", lifecycle.StageDraft, lifecycle.StagePool)
		require.NoError(t, err)
		assert.False(t, moved)

		// Build is only reachable after a pass has gone through its veto window
		_, err = env.engine.TransitionStage(ctx, "p1", lifecycle.StagePool, lifecycle.StageVote)
		require.NoError(t, err)
		_, err = env.engine.TransitionStage(ctx, "p1", lifecycle.StageVote, lifecycle.StageBuild)
		require.ErrorIs(t, err, governance.ErrIllegalTransition)
	})
}

func TestTransitionStageConcurrent(t *testing.T) {
	forEachStore(t, func(t *testing.T, plugin string) {
		env := newTestEnv(t, plugin, nil)
		ctx := context.Background()
		_, err := env.engine.CreateProposal(ctx, "alice", governance.CreateProposalRequest{ID: "p1"})
		require.NoError(t, err)

		const workers = 8
		var wg sync.WaitGroup
		results := make([]bool, workers)
		errs := make([]error, workers)
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], errs[i] = env.engine.TransitionStage(
					ctx,
					"p1",
					lifecycle.StageDraft,
					lifecycle.StagePool,
				)
			}()
		}
		wg.Wait()
		movedCount := 0
		for i := range workers {
			require.NoError(t, errs[i])
			if results[i] {
				movedCount++
			}
		}
		assert.Equal(t, 1, movedCount)
		assert.Equal(t, "pool", env.proposal(t, "p1").Stage)
	})
}

func TestListProposalsByStage(t *testing.T) {
	env := newTestEnv(t, "memory", nil)
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		_, err := env.engine.CreateProposal(ctx, "alice", governance.CreateProposalRequest{ID: id})
		require.NoError(t, err)
	}
	_, err := env.engine.SubmitProposal(ctx, "alice", "b")
	require.NoError(t, err)

	drafts, err := env.engine.ListProposals(ctx, "draft")
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, "a", drafts[0].ID)
	assert.Equal(t, "c", drafts[1].ID)

	_, err = env.engine.ListProposals(ctx, "limbo")
	require.ErrorIs(t, err, governance.ErrInvalidArgument)
}
