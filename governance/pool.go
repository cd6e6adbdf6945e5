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

	"go.opentelemetry.io/otel/attribute"

	"github.com/blinklabs-io/gavel/database/models"
	"github.com/blinklabs-io/gavel/event"
	"github.com/blinklabs-io/gavel/governance/era"
	"github.com/blinklabs-io/gavel/governance/lifecycle"
	"github.com/blinklabs-io/gavel/governance/quorum"
)

type PoolVoteRequest struct {
	ProposalID string `json:"proposalId"`
	Direction  string `json:"direction"`
}

type PoolStatus struct {
	ProposalID      string             `json:"proposalId"`
	Stage           string             `json:"stage"`
	Counts          quorum.PoolCounts  `json:"counts"`
	ActiveGovernors uint64             `json:"activeGovernors"`
	Outcome         quorum.PoolOutcome `json:"outcome"`
}

// PoolVote records the actor's up or down vote on a proposal in the
// attention pool. A repeat vote replaces the earlier one. The proposal moves
// to the chamber vote as soon as the pool quorum is met.
func (e *Engine) PoolVote(
	ctx context.Context,
	actor string,
	req PoolVoteRequest,
) (*PoolStatus, error) {
	var ret *PoolStatus
	err := e.command(
		ctx,
		"pool.vote",
		[]attribute.KeyValue{
			attribute.String("proposal.id", req.ProposalID),
			attribute.String("direction", req.Direction),
		},
		func(c *commandCtx) error {
			if err := validateIdentifier("voter address", actor); err != nil {
				return err
			}
			switch req.Direction {
			case models.PoolDirectionUp, models.PoolDirectionDown:
			default:
				return newError(
					ErrInvalidArgument,
					"direction must be %s or %s",
					models.PoolDirectionUp,
					models.PoolDirectionDown,
				)
			}
			proposal, err := e.loadProposal(c, req.ProposalID)
			if err != nil {
				return err
			}
			if proposal.Stage != lifecycle.StagePool.String() {
				return newError(
					ErrStageConflict,
					"proposal %s is in stage %s",
					proposal.ID,
					proposal.Stage,
				)
			}
			if windowClosed(c.now, proposal.UpdatedAt, e.params.PoolWindow) {
				return newError(
					ErrPoolWindowClosed,
					"pool window for proposal %s closed at %s",
					proposal.ID,
					proposal.UpdatedAt.Add(e.params.PoolWindow),
				)
			}
			if err := e.db.SetPoolVote(
				&models.PoolVote{
					ProposalID:   proposal.ID,
					VoterAddress: actor,
					Direction:    req.Direction,
					CreatedAt:    c.now,
					UpdatedAt:    c.now,
				},
				c.txn,
			); err != nil {
				return err
			}
			if _, err := e.markActivity(c, actor, era.CategoryPoolVote); err != nil {
				return err
			}
			c.emit(
				event.VoteRecordedEventType,
				event.VoteRecordedEvent{
					ProposalID: proposal.ID,
					Kind:       "pool",
					Voter:      actor,
					Choice:     req.Direction,
				},
			)
			c.onCommit(func() {
				e.metrics.votesTotal.WithLabelValues("pool").Inc()
			})
			status, err := e.poolStatus(c, proposal)
			if err != nil {
				return err
			}
			if status.Outcome.ShouldAdvance {
				if _, err := e.transition(c, proposal, lifecycle.StageVote); err != nil {
					return err
				}
				status.Stage = proposal.Stage
			}
			ret = status
			return nil
		},
	)
	return ret, err
}

func (e *Engine) poolStatus(
	c *commandCtx,
	proposal *models.Proposal,
) (*PoolStatus, error) {
	votes, err := e.db.GetPoolVotes(proposal.ID, c.txn)
	if err != nil {
		return nil, err
	}
	var counts quorum.PoolCounts
	for _, vote := range votes {
		switch vote.Direction {
		case models.PoolDirectionUp:
			counts.Upvotes++
		case models.PoolDirectionDown:
			counts.Downvotes++
		}
	}
	activeGovernors, err := e.denominator(c, proposal.ID, lifecycle.StagePool)
	if err != nil {
		return nil, err
	}
	params := quorum.NewPoolParams(
		activeGovernors,
		e.params.PoolAttentionQuorum,
		e.params.PoolUpvoteFraction,
	)
	return &PoolStatus{
		ProposalID:      proposal.ID,
		Stage:           proposal.Stage,
		Counts:          counts,
		ActiveGovernors: activeGovernors,
		Outcome:         quorum.EvaluatePool(params, counts),
	}, nil
}

// PoolStatus returns the current pool tally and quorum outcome
func (e *Engine) PoolStatus(
	ctx context.Context,
	proposalID string,
) (*PoolStatus, error) {
	var ret *PoolStatus
	err := e.read(
		ctx,
		"pool.status",
		[]attribute.KeyValue{attribute.String("proposal.id", proposalID)},
		func(c *commandCtx) error {
			proposal, err := e.loadProposal(c, proposalID)
			if err != nil {
				return err
			}
			ret, err = e.poolStatus(c, proposal)
			return err
		},
	)
	return ret, err
}
