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

package governance

import (
	"errors"
	"fmt"
	"time"

	"github.com/blinklabs-io/gavel/governance/era"
)

// Params are the governance constants shared by every command
type Params struct {
	EraQuotas                era.Quotas    `yaml:"eraQuotas"`
	PoolAttentionQuorum      float64       `yaml:"poolAttentionQuorum"      envconfig:"GAVEL_POOL_ATTENTION_QUORUM"`
	PoolUpvoteFraction       float64       `yaml:"poolUpvoteFraction"       envconfig:"GAVEL_POOL_UPVOTE_FRACTION"`
	ChamberQuorumFraction    float64       `yaml:"chamberQuorumFraction"    envconfig:"GAVEL_CHAMBER_QUORUM_FRACTION"`
	ChamberPassingFraction   float64       `yaml:"chamberPassingFraction"   envconfig:"GAVEL_CHAMBER_PASSING_FRACTION"`
	VetoPassingFraction      float64       `yaml:"vetoPassingFraction"      envconfig:"GAVEL_VETO_PASSING_FRACTION"`
	DefaultChamberMultiplier float64       `yaml:"defaultChamberMultiplier" envconfig:"GAVEL_DEFAULT_CHAMBER_MULTIPLIER"`
	VetoWindow               time.Duration `yaml:"vetoWindow"               envconfig:"GAVEL_VETO_WINDOW"`
	PoolWindow               time.Duration `yaml:"poolWindow"               envconfig:"GAVEL_POOL_WINDOW"`
	VoteWindow               time.Duration `yaml:"voteWindow"               envconfig:"GAVEL_VOTE_WINDOW"`
	GenesisActiveGovernors   uint64        `yaml:"genesisActiveGovernors"   envconfig:"GAVEL_GENESIS_ACTIVE_GOVERNORS"`
}

// DefaultParams returns the standard governance constants. A zero pool or
// vote window means the window never closes.
func DefaultParams() Params {
	return Params{
		PoolAttentionQuorum:      0.22,
		PoolUpvoteFraction:       0.10,
		ChamberQuorumFraction:    0.33,
		ChamberPassingFraction:   0.6667,
		VetoPassingFraction:      0.66,
		DefaultChamberMultiplier: 1,
		VetoWindow:               7 * 24 * time.Hour,
		PoolWindow:               14 * 24 * time.Hour,
		VoteWindow:               7 * 24 * time.Hour,
		EraQuotas: era.Quotas{
			PoolVotes:    1,
			ChamberVotes: 1,
		},
	}
}

// Warnings lists settings that are valid but leave the engine unable to make
// progress
func (p Params) Warnings() []string {
	var ret []string
	if p.GenesisActiveGovernors == 0 {
		ret = append(
			ret,
			"genesisActiveGovernors is 0: era 0 proposals capture a zero "+
				"denominator and cannot leave the pool before the first era rollup",
		)
	}
	return ret
}

func (p Params) Validate() error {
	fractions := []struct {
		name  string
		value float64
	}{
		{"poolAttentionQuorum", p.PoolAttentionQuorum},
		{"poolUpvoteFraction", p.PoolUpvoteFraction},
		{"chamberQuorumFraction", p.ChamberQuorumFraction},
		{"chamberPassingFraction", p.ChamberPassingFraction},
		{"vetoPassingFraction", p.VetoPassingFraction},
	}
	var errs []error
	for _, f := range fractions {
		if f.value < 0 || f.value > 1 {
			errs = append(
				errs,
				fmt.Errorf("%s must be between 0 and 1, got %v", f.name, f.value),
			)
		}
	}
	if p.DefaultChamberMultiplier <= 0 {
		errs = append(errs, errors.New("defaultChamberMultiplier must be positive"))
	}
	if p.VetoWindow < 0 || p.PoolWindow < 0 || p.VoteWindow < 0 {
		errs = append(errs, errors.New("windows must not be negative"))
	}
	return errors.Join(errs...)
}
