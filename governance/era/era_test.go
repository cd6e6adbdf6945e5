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

package era_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/gavel/governance/era"
)

func TestEvaluateSingleCategory(t *testing.T) {
	status := era.Evaluate(
		era.Activity{Address: "alice", PoolVotes: 1},
		era.Quotas{PoolVotes: 1},
	)
	assert.Equal(t, uint64(1), status.CompletedTotal)
	assert.Equal(t, uint64(1), status.RequiredTotal)
	assert.True(t, status.IsActiveNextEra)
}

func TestEvaluateSurplusDoesNotSubstitute(t *testing.T) {
	status := era.Evaluate(
		era.Activity{Address: "bob", PoolVotes: 1, CourtActions: 1},
		era.Quotas{PoolVotes: 1, ChamberVotes: 1},
	)
	assert.Equal(t, uint64(1), status.CompletedTotal)
	assert.Equal(t, uint64(2), status.RequiredTotal)
	assert.False(t, status.IsActiveNextEra)
}

func TestEvaluateNoQuotas(t *testing.T) {
	status := era.Evaluate(era.Activity{Address: "carol"}, era.Quotas{})
	assert.True(t, status.IsActiveNextEra)
}

func TestRollup(t *testing.T) {
	quotas := era.Quotas{PoolVotes: 1, ChamberVotes: 1}
	statuses, active := era.Rollup([]era.Activity{
		{Address: "zed", PoolVotes: 1, ChamberVotes: 1},
		{Address: "amy", PoolVotes: 1},
		{Address: "kim", PoolVotes: 1, ChamberVotes: 1},
	}, quotas)
	require.Len(t, statuses, 3)
	assert.Equal(t, "amy", statuses[0].Address)
	assert.Equal(t, "kim", statuses[1].Address)
	assert.Equal(t, "zed", statuses[2].Address)
	assert.Equal(t, uint64(2), active)
}

func TestRollupEmpty(t *testing.T) {
	statuses, active := era.Rollup(nil, era.Quotas{PoolVotes: 1})
	assert.Empty(t, statuses)
	assert.Zero(t, active)
}

func TestParseCategory(t *testing.T) {
	for _, name := range []string{"pool_vote", "chamber_vote", "court_action", "formation_action"} {
		category, err := era.ParseCategory(name)
		require.NoError(t, err)
		assert.Equal(t, name, category.String())
	}
	_, err := era.ParseCategory("bribe")
	assert.Error(t, err)
}
