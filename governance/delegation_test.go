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

func setDelegation(env *testEnv, delegator, delegatee string) error {
	_, err := env.engine.SetDelegation(
		context.Background(),
		delegator,
		governance.SetDelegationRequest{
			ChamberID:        models.GeneralChamberID,
			DelegateeAddress: delegatee,
		},
	)
	return err
}

func edges(t *testing.T, env *testEnv) map[string]string {
	t.Helper()
	delegations, err := env.engine.Delegations(context.Background(), models.GeneralChamberID)
	require.NoError(t, err)
	ret := make(map[string]string, len(delegations))
	for _, d := range delegations {
		ret[d.DelegatorAddress] = d.DelegateeAddress
	}
	return ret
}

func TestDelegationCycle(t *testing.T) {
	forEachStore(t, func(t *testing.T, plugin string) {
		env := newTestEnv(t, plugin, nil)
		require.NoError(t, setDelegation(env, "A", "B"))
		err := setDelegation(env, "B", "A")
		require.ErrorIs(t, err, governance.ErrDelegationCycle)
		assert.Equal(t, governance.KindStateInvariant, governance.KindOf(err))

		require.NoError(t, setDelegation(env, "B", "C"))
		require.ErrorIs(t, setDelegation(env, "C", "A"), governance.ErrDelegationCycle)
		assert.Equal(t, map[string]string{"A": "B", "B": "C"}, edges(t, env))

		// Rejections leave no trace in the audit log
		log, err := env.engine.DelegationLog(context.Background(), models.GeneralChamberID)
		require.NoError(t, err)
		require.Len(t, log, 2)
		assert.Equal(t, "A", log[0].DelegatorAddress)
		assert.Equal(t, "B", log[1].DelegatorAddress)
	})
}

func TestDelegationSelf(t *testing.T) {
	env := newTestEnv(t, "memory", nil)
	err := setDelegation(env, "A", "A")
	require.ErrorIs(t, err, governance.ErrDelegationSelf)
	assert.Equal(t, governance.KindValidation, governance.KindOf(err))
	assert.Empty(t, edges(t, env))
}

func TestDelegationReplaceAndClear(t *testing.T) {
	forEachStore(t, func(t *testing.T, plugin string) {
		env := newTestEnv(t, plugin, nil)
		ctx := context.Background()
		require.NoError(t, setDelegation(env, "A", "B"))
		// Setting the same edge again is not logged twice
		require.NoError(t, setDelegation(env, "A", "B"))
		require.NoError(t, setDelegation(env, "A", "C"))
		assert.Equal(t, map[string]string{"A": "C"}, edges(t, env))

		existed, err := env.engine.ClearDelegation(ctx, "A", models.GeneralChamberID)
		require.NoError(t, err)
		assert.True(t, existed)
		existed, err = env.engine.ClearDelegation(ctx, "A", models.GeneralChamberID)
		require.NoError(t, err)
		assert.False(t, existed)
		assert.Empty(t, edges(t, env))

		log, err := env.engine.DelegationLog(ctx, models.GeneralChamberID)
		require.NoError(t, err)
		require.Len(t, log, 3)
		assert.Equal(t, models.DelegationActionSet, log[0].Action)
		assert.Equal(t, "B", log[0].DelegateeAddress)
		assert.Equal(t, "C", log[1].DelegateeAddress)
		assert.Equal(t, models.DelegationActionClear, log[2].Action)
		assert.Empty(t, log[2].DelegateeAddress)
	})
}

func TestDelegationWeights(t *testing.T) {
	env := newTestEnv(t, "memory", nil)
	for _, delegator := range []string{"a", "b", "c"} {
		require.NoError(t, setDelegation(env, delegator, "z"))
	}
	require.NoError(t, setDelegation(env, "d", "y"))
	weights, err := env.engine.DelegationWeights(
		context.Background(),
		models.GeneralChamberID,
		[]string{"b"},
	)
	require.NoError(t, err)
	assert.Equal(t, map[string]uint64{"z": 2, "y": 1}, weights)
}

func TestDelegationPerChamber(t *testing.T) {
	env := newTestEnv(t, "memory", nil)
	ctx := context.Background()
	_, err := env.engine.CreateChamber(ctx, governance.CreateChamberRequest{ID: "infra"})
	require.NoError(t, err)
	require.NoError(t, setDelegation(env, "A", "B"))
	// The same reverse edge is fine in another chamber
	_, err = env.engine.SetDelegation(ctx, "B", governance.SetDelegationRequest{
		ChamberID:        "infra",
		DelegateeAddress: "A",
	})
	require.NoError(t, err)

	_, err = env.engine.SetDelegation(ctx, "B", governance.SetDelegationRequest{
		ChamberID:        "missing",
		DelegateeAddress: "A",
	})
	require.ErrorIs(t, err, governance.ErrChamberNotFound)

	_, err = env.engine.DissolveChamber(ctx, "infra")
	require.NoError(t, err)
	_, err = env.engine.SetDelegation(ctx, "C", governance.SetDelegationRequest{
		ChamberID:        "infra",
		DelegateeAddress: "A",
	})
	require.ErrorIs(t, err, governance.ErrChamberDissolved)
}
