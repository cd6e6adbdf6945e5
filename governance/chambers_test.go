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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/gavel/database/models"
	"github.com/blinklabs-io/gavel/governance"
)

func TestChamberRegistry(t *testing.T) {
	forEachStore(t, func(t *testing.T, plugin string) {
		env := newTestEnv(t, plugin, nil)
		ctx := context.Background()
		chamber, err := env.engine.CreateChamber(ctx, governance.CreateChamberRequest{
			ID:    "infra",
			Title: "Infrastructure",
		})
		require.NoError(t, err)
		assert.InDelta(t, env.params.DefaultChamberMultiplier, chamber.Multiplier, 1e-9)

		_, err = env.engine.CreateChamber(ctx, governance.CreateChamberRequest{ID: "infra"})
		require.ErrorIs(t, err, governance.ErrChamberExists)
		_, err = env.engine.CreateChamber(ctx, governance.CreateChamberRequest{
			ID:         "neg",
			Multiplier: -1,
		})
		require.ErrorIs(t, err, governance.ErrInvalidArgument)

		_, err = env.engine.DissolveChamber(ctx, models.GeneralChamberID)
		require.ErrorIs(t, err, governance.ErrChamberProtected)
		_, err = env.engine.DissolveChamber(ctx, "nowhere")
		require.ErrorIs(t, err, governance.ErrChamberNotFound)

		dissolved, err := env.engine.DissolveChamber(ctx, "infra")
		require.NoError(t, err)
		require.NotNil(t, dissolved.DissolvedAt)
		// Dissolving twice keeps the first timestamp
		again, err := env.engine.DissolveChamber(ctx, "infra")
		require.NoError(t, err)
		assert.True(t, dissolved.DissolvedAt.Equal(*again.DissolvedAt))

		chambers, err := env.engine.Chambers(ctx)
		require.NoError(t, err)
		require.Len(t, chambers, 2)

		_, err = env.engine.CreateProposal(ctx, "alice", governance.CreateProposalRequest{
			ID:        "p1",
			ChamberID: "infra",
		})
		require.ErrorIs(t, err, governance.ErrChamberDissolved)
	})
}

func TestAwardMerit(t *testing.T) {
	forEachStore(t, func(t *testing.T, plugin string) {
		env := newTestEnv(t, plugin, nil)
		ctx := context.Background()
		_, err := env.engine.CreateChamber(ctx, governance.CreateChamberRequest{
			ID:         "infra",
			Multiplier: 1.5,
		})
		require.NoError(t, err)
		award, err := env.engine.AwardMerit(ctx, governance.AwardMeritRequest{
			ProposalID: "hist-1",
			ChamberID:  "infra",
			Address:    "alice",
			LCM:        5,
		})
		require.NoError(t, err)
		// round(5 * 1.5)
		assert.Equal(t, uint64(8), award.MCM)

		_, err = env.engine.AwardMerit(ctx, governance.AwardMeritRequest{
			ProposalID: "hist-1",
			ChamberID:  "infra",
			Address:    "bob",
			LCM:        1,
		})
		require.ErrorIs(t, err, governance.ErrMeritExists)

		_, err = env.engine.AwardMerit(ctx, governance.AwardMeritRequest{
			ProposalID: "hist-2",
			ChamberID:  "infra",
			Address:    "alice",
			LCM:        2,
		})
		require.NoError(t, err)
		totals, err := env.engine.MeritTotals(ctx)
		require.NoError(t, err)
		require.Len(t, totals, 1)
		assert.Equal(t, uint64(7), totals[0].LCM)
		assert.Equal(t, uint64(11), totals[0].MCM)
	})
}

func TestVetoCouncilIgnoresDissolvedChambers(t *testing.T) {
	env := newTestEnv(t, "memory", nil)
	ctx := context.Background()
	_, err := env.engine.CreateChamber(ctx, governance.CreateChamberRequest{ID: "old"})
	require.NoError(t, err)
	for _, award := range []governance.AwardMeritRequest{
		{ProposalID: "h1", ChamberID: "old", Address: "erin", LCM: 50},
		{ProposalID: "h2", ChamberID: "general", Address: "gus", LCM: 2},
	} {
		_, err := env.engine.AwardMerit(ctx, award)
		require.NoError(t, err)
	}
	council, err := env.engine.ComputeVetoCouncil(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"gus", "erin"}, council.Members)

	_, err = env.engine.DissolveChamber(ctx, "old")
	require.NoError(t, err)
	council, err = env.engine.ComputeVetoCouncil(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"gus"}, council.Members)
	assert.Equal(t, uint32(1), council.Threshold)
}
