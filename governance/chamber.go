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
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/blinklabs-io/gavel/database/models"
	"github.com/blinklabs-io/gavel/event"
	"github.com/blinklabs-io/gavel/governance/delegation"
	"github.com/blinklabs-io/gavel/governance/era"
	"github.com/blinklabs-io/gavel/governance/lifecycle"
	"github.com/blinklabs-io/gavel/governance/quorum"
)

const (
	minScore = 1
	maxScore = 10
)

type ChamberVoteRequest struct {
	ProposalID string `json:"proposalId"`
	Choice     string `json:"choice"`
	Score      *uint8 `json:"score,omitempty"`
}

type ChamberStatus struct {
	VotePassedAt    *time.Time            `json:"votePassedAt"`
	VoteFinalizesAt *time.Time            `json:"voteFinalizesAt"`
	ProposalID      string                `json:"proposalId"`
	Stage           string                `json:"stage"`
	Counts          quorum.ChamberCounts  `json:"counts"`
	ActiveGovernors uint64                `json:"activeGovernors"`
	Outcome         quorum.ChamberOutcome `json:"outcome"`
}

// ChamberVote records the actor's choice on a proposal in the vote stage.
// Each direct voter carries one unit plus one per direct delegator who has
// not voted on the proposal. The first time the tally meets the passing
// threshold the veto window opens.
func (e *Engine) ChamberVote(
	ctx context.Context,
	actor string,
	req ChamberVoteRequest,
) (*ChamberStatus, error) {
	var ret *ChamberStatus
	err := e.command(
		ctx,
		"chamber.vote",
		[]attribute.KeyValue{
			attribute.String("proposal.id", req.ProposalID),
			attribute.String("choice", req.Choice),
		},
		func(c *commandCtx) error {
			if err := validateIdentifier("voter address", actor); err != nil {
				return err
			}
			switch req.Choice {
			case models.ChamberChoiceYes,
				models.ChamberChoiceNo,
				models.ChamberChoiceAbstain:
			default:
				return newError(
					ErrInvalidArgument,
					"choice must be yes, no or abstain",
				)
			}
			if req.Score != nil && (*req.Score < minScore || *req.Score > maxScore) {
				return newError(
					ErrInvalidArgument,
					"score must be between %d and %d",
					minScore,
					maxScore,
				)
			}
			proposal, err := e.loadProposal(c, req.ProposalID)
			if err != nil {
				return err
			}
			if finalizeDue(proposal, c.now) {
				if _, err := e.finalize(c, proposal); err != nil {
					return err
				}
				return commitThen(newError(
					ErrStageConflict,
					"proposal %s finalized",
					proposal.ID,
				))
			}
			if proposal.Stage != lifecycle.StageVote.String() {
				return newError(
					ErrStageConflict,
					"proposal %s is in stage %s",
					proposal.ID,
					proposal.Stage,
				)
			}
			if proposal.Passed() {
				return newError(
					ErrVotePaused,
					"proposal %s is in its veto window until %s",
					proposal.ID,
					proposal.VoteFinalizesAt,
				)
			}
			if windowClosed(c.now, proposal.UpdatedAt, e.params.VoteWindow) {
				return newError(
					ErrVoteWindowClosed,
					"vote window for proposal %s closed at %s",
					proposal.ID,
					proposal.UpdatedAt.Add(e.params.VoteWindow),
				)
			}
			if _, err := e.loadActiveChamber(c, proposal.ChamberID); err != nil {
				return err
			}
			if err := e.db.SetChamberVote(
				&models.ChamberVote{
					ProposalID:   proposal.ID,
					VoterAddress: actor,
					Choice:       req.Choice,
					Score:        req.Score,
					CreatedAt:    c.now,
					UpdatedAt:    c.now,
				},
				c.txn,
			); err != nil {
				return err
			}
			if _, err := e.markActivity(c, actor, era.CategoryChamberVote); err != nil {
				return err
			}
			c.emit(
				event.VoteRecordedEventType,
				event.VoteRecordedEvent{
					ProposalID: proposal.ID,
					Kind:       "chamber",
					Voter:      actor,
					Choice:     req.Choice,
				},
			)
			c.onCommit(func() {
				e.metrics.votesTotal.WithLabelValues("chamber").Inc()
			})
			status, err := e.chamberStatus(c, proposal)
			if err != nil {
				return err
			}
			if status.Outcome.PassMet {
				if err := e.pass(c, proposal); err != nil {
					return err
				}
				status.VotePassedAt = proposal.VotePassedAt
				status.VoteFinalizesAt = proposal.VoteFinalizesAt
			}
			ret = status
			return nil
		},
	)
	return ret, err
}

// chamberTally returns the effective counts including delegated weight
func (e *Engine) chamberTally(
	c *commandCtx,
	proposal *models.Proposal,
) (quorum.ChamberCounts, error) {
	var counts quorum.ChamberCounts
	votes, err := e.db.GetChamberVotes(proposal.ID, c.txn)
	if err != nil {
		return counts, err
	}
	graph, err := e.delegationGraph(c, proposal.ChamberID)
	if err != nil {
		return counts, err
	}
	directVoters := make(map[string]struct{}, len(votes))
	for _, vote := range votes {
		directVoters[vote.VoterAddress] = struct{}{}
	}
	weights := graph.Weights(directVoters)
	for _, vote := range votes {
		weight := 1 + weights[vote.VoterAddress]
		switch vote.Choice {
		case models.ChamberChoiceYes:
			counts.Yes += weight
		case models.ChamberChoiceNo:
			counts.No += weight
		case models.ChamberChoiceAbstain:
			counts.Abstain += weight
		}
	}
	return counts, nil
}

func (e *Engine) chamberStatus(
	c *commandCtx,
	proposal *models.Proposal,
) (*ChamberStatus, error) {
	counts, err := e.chamberTally(c, proposal)
	if err != nil {
		return nil, err
	}
	activeGovernors, err := e.denominator(c, proposal.ID, lifecycle.StageVote)
	if err != nil {
		return nil, err
	}
	params := quorum.ChamberParams{
		QuorumFraction:  e.params.ChamberQuorumFraction,
		PassingFraction: e.params.ChamberPassingFraction,
		ActiveGovernors: activeGovernors,
	}
	return &ChamberStatus{
		ProposalID:      proposal.ID,
		Stage:           proposal.Stage,
		Counts:          counts,
		ActiveGovernors: activeGovernors,
		Outcome:         quorum.EvaluateChamber(params, counts),
		VotePassedAt:    proposal.VotePassedAt,
		VoteFinalizesAt: proposal.VoteFinalizesAt,
	}, nil
}

// pass opens the veto window with a fresh council snapshot. The pass state
// is only written while the proposal has none.
func (e *Engine) pass(c *commandCtx, proposal *models.Proposal) error {
	council, err := e.vetoCouncil(c)
	if err != nil {
		return err
	}
	state := models.PassState{
		VotePassedAt:    c.now,
		VoteFinalizesAt: c.now.Add(e.params.VetoWindow),
		VetoCouncil:     council.Members,
		VetoThreshold:   council.Threshold,
	}
	written, err := e.db.SetProposalPassed(proposal.ID, state, c.txn)
	if err != nil {
		return err
	}
	if !written {
		return nil
	}
	proposal.VotePassedAt = &state.VotePassedAt
	proposal.VoteFinalizesAt = &state.VoteFinalizesAt
	proposal.VetoCouncil = state.VetoCouncil
	proposal.VetoThreshold = &state.VetoThreshold
	proposal.VetoCount = 0
	proposal.UpdatedAt = state.VotePassedAt
	e.logger.Info(
		"proposal passed chamber vote",
		"proposal_id", proposal.ID,
		"finalizes_at", state.VoteFinalizesAt,
		"veto_council", len(state.VetoCouncil),
		"veto_threshold", state.VetoThreshold,
	)
	c.emit(
		event.ProposalPassedEventType,
		event.ProposalPassedEvent{
			ProposalID:      proposal.ID,
			ChamberID:       proposal.ChamberID,
			VoteFinalizesAt: state.VoteFinalizesAt,
			VetoCouncil:     state.VetoCouncil,
			VetoThreshold:   state.VetoThreshold,
		},
	)
	c.onCommit(e.metrics.proposalsPassed.Inc)
	return nil
}

// delegationGraph loads the chamber's delegation edges
func (e *Engine) delegationGraph(
	c *commandCtx,
	chamberID string,
) (delegation.Graph, error) {
	delegations, err := e.db.GetDelegations(chamberID, c.txn)
	if err != nil {
		return nil, err
	}
	graph := make(delegation.Graph, len(delegations))
	for _, d := range delegations {
		graph[d.DelegatorAddress] = d.DelegateeAddress
	}
	return graph, nil
}

// ChamberStatus returns the current weighted tally and quorum outcome
func (e *Engine) ChamberStatus(
	ctx context.Context,
	proposalID string,
) (*ChamberStatus, error) {
	var ret *ChamberStatus
	err := e.read(
		ctx,
		"chamber.status",
		[]attribute.KeyValue{attribute.String("proposal.id", proposalID)},
		func(c *commandCtx) error {
			proposal, err := e.loadProposal(c, proposalID)
			if err != nil {
				return err
			}
			ret, err = e.chamberStatus(c, proposal)
			return err
		},
	)
	return ret, err
}
