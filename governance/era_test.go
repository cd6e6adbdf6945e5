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
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/gavel/governance"
	"github.com/blinklabs-io/gavel/governance/era"
)

const (
	categoryPool    = era.CategoryPoolVote
	categoryChamber = era.CategoryChamberVote
	categoryCourt   = era.CategoryCourtAction
)

func TestRollupEraDeterministic(t *testing.T) {
	forEachStore(t, func(t *testing.T, plugin string) {
		env := newTestEnv(t, plugin, func(p *governance.Params) {
			p.EraQuotas = era.Quotas{PoolVotes: 1}
		})
		ctx := context.Background()
		first, err := env.engine.RecordActivity(ctx, "alice", categoryPool)
		require.NoError(t, err)
		assert.True(t, first)
		first, err = env.engine.RecordActivity(ctx, "alice", categoryPool)
		require.NoError(t, err)
		assert.False(t, first)
		_, err = env.engine.RecordActivity(ctx, "bob", categoryCourt)
		require.NoError(t, err)

		result, err := env.engine.RollupEra(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), result.Rollup.ActiveGovernorsNextEra)
		assert.Equal(t, uint64(1), result.Rollup.RequiredTotal)
		require.Len(t, result.Statuses, 2)
		assert.Equal(t, "alice", result.Statuses[0].Address)
		assert.True(t, result.Statuses[0].IsActiveNextEra)
		assert.Equal(t, uint64(1), result.Statuses[0].CompletedTotal)
		assert.Equal(t, "bob", result.Statuses[1].Address)
		assert.False(t, result.Statuses[1].IsActiveNextEra)

		// Later activity and a later clock do not change a stored rollup
		_, err = env.engine.RecordActivity(ctx, "carol", categoryPool)
		require.NoError(t, err)
		env.clock.Advance(time.Hour)
		eraZero := uint64(0)
		again, err := env.engine.RollupEra(ctx, &eraZero)
		require.NoError(t, err)
		firstJSON, err := json.Marshal(result)
		require.NoError(t, err)
		againJSON, err := json.Marshal(again)
		require.NoError(t, err)
		assert.Equal(t, string(firstJSON), string(againJSON))
	})
}

func TestRollupEraRejectsFutureEra(t *testing.T) {
	env := newTestEnv(t, "memory", nil)
	future := uint64(3)
	_, err := env.engine.RollupEra(context.Background(), &future)
	require.ErrorIs(t, err, governance.ErrInvalidArgument)
}

func TestRollupEraNoQuotas(t *testing.T) {
	env := newTestEnv(t, "memory", func(p *governance.Params) {
		p.EraQuotas = era.Quotas{}
	})
	ctx := context.Background()
	_, err := env.engine.RecordActivity(ctx, "alice", categoryCourt)
	require.NoError(t, err)
	result, err := env.engine.RollupEra(ctx, nil)
	require.NoError(t, err)
	require.Len(t, result.Statuses, 1)
	assert.True(t, result.Statuses[0].IsActiveNextEra)
	assert.Zero(t, result.Rollup.RequiredTotal)
}

func TestAdvanceEra(t *testing.T) {
	forEachStore(t, func(t *testing.T, plugin string) {
		env := newTestEnv(t, plugin, func(p *governance.Params) {
			p.GenesisActiveGovernors = 40
			p.EraQuotas = era.Quotas{PoolVotes: 1}
		})
		ctx := context.Background()
		_, err := env.engine.RecordActivity(ctx, "alice", categoryPool)
		require.NoError(t, err)
		_, err = env.engine.RecordActivity(ctx, "bob", categoryPool)
		require.NoError(t, err)

		env.clock.Advance(time.Hour)
		from := uint64(0)
		result, err := env.engine.AdvanceEra(ctx, &from)
		require.NoError(t, err)
		assert.True(t, result.Advanced)
		assert.Equal(t, uint64(0), result.PreviousEra)
		assert.Equal(t, uint64(1), result.Era)
		assert.Equal(t, uint64(2), result.ActiveGovernors)
		require.NotNil(t, result.Rollup)
		assert.Len(t, result.Rollup.Statuses, 2)

		status, err := env.engine.CurrentEra(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), status.Era)
		assert.Equal(t, uint64(2), status.ActiveGovernors)
		assert.True(t, baseTime.Add(time.Hour).Equal(status.StartedAt))

		// Replaying the same advance does not move the clock again
		replay, err := env.engine.AdvanceEra(ctx, &from)
		require.NoError(t, err)
		assert.False(t, replay.Advanced)
		assert.Equal(t, uint64(1), replay.Era)
		assert.Equal(t, uint64(2), replay.ActiveGovernors)
		status, err = env.engine.CurrentEra(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), status.Era)

		ahead := uint64(4)
		_, err = env.engine.AdvanceEra(ctx, &ahead)
		require.ErrorIs(t, err, governance.ErrInvalidArgument)

		// Activity is now tracked against era 1
		_, err = env.engine.RecordActivity(ctx, "carol", categoryPool)
		require.NoError(t, err)
		activity, err := env.engine.EraActivity(ctx, 1, "carol")
		require.NoError(t, err)
		assert.Equal(t, uint32(1), activity.PoolVotes)
		activity, err = env.engine.EraActivity(ctx, 0, "carol")
		require.NoError(t, err)
		assert.Zero(t, activity.PoolVotes)
	})
}

func TestAdvanceEraWithoutActivityDropsBaseline(t *testing.T) {
	forEachStore(t, func(t *testing.T, plugin string) {
		env := newTestEnv(t, plugin, func(p *governance.Params) {
			p.GenesisActiveGovernors = 40
		})
		ctx := context.Background()
		result, err := env.engine.AdvanceEra(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), result.Era)
		// The snapshot matches the stored rollup for the same boundary
		assert.Zero(t, result.Rollup.Rollup.ActiveGovernorsNextEra)
		assert.Zero(t, result.ActiveGovernors)
		status, err := env.engine.CurrentEra(ctx)
		require.NoError(t, err)
		assert.Zero(t, status.ActiveGovernors)
		result, err = env.engine.AdvanceEra(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), result.Era)
		assert.Zero(t, result.ActiveGovernors)
	})
}

func TestRecordActivityValidation(t *testing.T) {
	env := newTestEnv(t, "memory", nil)
	_, err := env.engine.RecordActivity(context.Background(), "", categoryPool)
	require.ErrorIs(t, err, governance.ErrInvalidArgument)
	_, err = env.engine.RecordActivity(context.Background(), "alice", era.Category(42))
	require.ErrorIs(t, err, governance.ErrInvalidArgument)
}
