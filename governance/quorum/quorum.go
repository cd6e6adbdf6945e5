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

// Package quorum holds the pure pool and chamber quorum evaluators.
package quorum

import "math"

// PoolParams are the pool thresholds for one proposal, fixed from the era
// baseline captured when the proposal entered the pool
type PoolParams struct {
	AttentionQuorumFraction float64
	ActiveGovernors         uint64
	UpvoteFloor             uint64
}

// PoolCounts are the raw upvote and downvote tallies of a pooled proposal
type PoolCounts struct {
	Upvotes   uint64 `json:"upvotes"`
	Downvotes uint64 `json:"downvotes"`
}

// PoolOutcome reports each pool check and whether the proposal advances
type PoolOutcome struct {
	Engaged         uint64  `json:"engaged"`
	EngagedFraction float64 `json:"engagedFraction"`
	UpvoteFloor     uint64  `json:"upvoteFloor"`
	AttentionMet    bool    `json:"attentionMet"`
	UpvoteFloorMet  bool    `json:"upvoteFloorMet"`
	ShouldAdvance   bool    `json:"shouldAdvance"`
}

// UpvoteFloor returns max(1, ceil(activeGovernors * upvoteFraction))
func UpvoteFloor(activeGovernors uint64, upvoteFraction float64) uint64 {
	floor := math.Ceil(float64(activeGovernors) * upvoteFraction)
	if floor < 1 {
		return 1
	}
	return uint64(floor)
}

// NewPoolParams derives the upvote floor from the active governor baseline
func NewPoolParams(
	activeGovernors uint64,
	attentionQuorumFraction float64,
	upvoteFraction float64,
) PoolParams {
	return PoolParams{
		AttentionQuorumFraction: attentionQuorumFraction,
		ActiveGovernors:         activeGovernors,
		UpvoteFloor:             UpvoteFloor(activeGovernors, upvoteFraction),
	}
}

// EvaluatePool decides whether a proposal in the attention pool should move
// to the chamber vote. Zero active governors never advances.
func EvaluatePool(params PoolParams, counts PoolCounts) PoolOutcome {
	ret := PoolOutcome{
		Engaged:     counts.Upvotes + counts.Downvotes,
		UpvoteFloor: params.UpvoteFloor,
	}
	if params.ActiveGovernors > 0 {
		ret.EngagedFraction = float64(ret.Engaged) / float64(params.ActiveGovernors)
		ret.AttentionMet = ret.EngagedFraction >= params.AttentionQuorumFraction
	}
	ret.UpvoteFloorMet = counts.Upvotes >= params.UpvoteFloor
	ret.ShouldAdvance = ret.AttentionMet && ret.UpvoteFloorMet
	return ret
}

// ChamberParams are the chamber vote thresholds. ActiveGovernors is the
// baseline captured when the proposal entered the chamber.
type ChamberParams struct {
	QuorumFraction  float64
	PassingFraction float64
	ActiveGovernors uint64
}

// ChamberCounts are effective counts including delegated weight
type ChamberCounts struct {
	Yes     uint64 `json:"yes"`
	No      uint64 `json:"no"`
	Abstain uint64 `json:"abstain"`
}

// ChamberOutcome reports the chamber quorum and passing checks. Abstentions
// count toward quorum and toward the YesFraction denominator.
type ChamberOutcome struct {
	Engaged         uint64  `json:"engaged"`
	EngagedFraction float64 `json:"engagedFraction"`
	YesFraction     float64 `json:"yesFraction"`
	QuorumMet       bool    `json:"quorumMet"`
	PassMet         bool    `json:"passMet"`
}

// EvaluateChamber decides whether a chamber vote reached quorum and passed.
// Zero active governors never meets quorum.
func EvaluateChamber(params ChamberParams, counts ChamberCounts) ChamberOutcome {
	ret := ChamberOutcome{
		Engaged: counts.Yes + counts.No + counts.Abstain,
	}
	if params.ActiveGovernors > 0 {
		ret.EngagedFraction = float64(ret.Engaged) / float64(params.ActiveGovernors)
		ret.QuorumMet = ret.EngagedFraction >= params.QuorumFraction
	}
	if ret.Engaged > 0 {
		ret.YesFraction = float64(counts.Yes) / float64(ret.Engaged)
	}
	ret.PassMet = ret.QuorumMet && ret.YesFraction >= params.PassingFraction
	return ret
}

// VetoThreshold returns floor(councilSize * passingFraction) + 1, or 0 for an
// empty council
func VetoThreshold(councilSize int, passingFraction float64) uint32 {
	if councilSize <= 0 {
		return 0
	}
	return uint32(math.Floor(float64(councilSize)*passingFraction)) + 1
}
