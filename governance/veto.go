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
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/blinklabs-io/gavel/database/models"
	"github.com/blinklabs-io/gavel/event"
	"github.com/blinklabs-io/gavel/governance/lifecycle"
	"github.com/blinklabs-io/gavel/governance/veto"
)

type VetoVoteRequest struct {
	ProposalID string `json:"proposalId"`
	Choice     string `json:"choice"`
}

type VetoResult struct {
	ProposalID string `json:"proposalId"`
	VetoCount  uint32 `json:"vetoCount"`
	Threshold  uint32 `json:"threshold"`
	// Vetoed is true when this vote rolled the pass back
	Vetoed bool `json:"vetoed"`
}

// VetoVote records a council member's veto or keep choice on a passed
// proposal. Reaching the threshold clears the pass state and the chamber
// votes so the vote stage reopens.
func (e *Engine) VetoVote(
	ctx context.Context,
	actor string,
	req VetoVoteRequest,
) (*VetoResult, error) {
	var ret *VetoResult
	err := e.command(
		ctx,
		"veto.vote",
		[]attribute.KeyValue{
			attribute.String("proposal.id", req.ProposalID),
			attribute.String("choice", req.Choice),
		},
		func(c *commandCtx) error {
			if err := validateIdentifier("voter address", actor); err != nil {
				return err
			}
			switch req.Choice {
			case models.VetoChoiceVeto, models.VetoChoiceKeep:
			default:
				return newError(ErrInvalidArgument, "choice must be veto or keep")
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
					ErrVetoWindowClosed,
					"veto window for proposal %s closed at %s",
					proposal.ID,
					proposal.VoteFinalizesAt,
				))
			}
			if proposal.Stage == lifecycle.StageBuild.String() {
				return newError(
					ErrVetoWindowClosed,
					"proposal %s is already finalized",
					proposal.ID,
				)
			}
			if proposal.Stage != lifecycle.StageVote.String() || !proposal.Passed() {
				return newError(
					ErrVetoNotOpen,
					"proposal %s has no open veto window",
					proposal.ID,
				)
			}
			if !slices.Contains(proposal.VetoCouncil, actor) {
				return newError(
					ErrNotVetoMember,
					"%s is not on the veto council for proposal %s",
					actor,
					proposal.ID,
				)
			}
			if err := e.db.SetVetoVote(
				&models.VetoVote{
					ProposalID:   proposal.ID,
					VoterAddress: actor,
					Choice:       req.Choice,
					CreatedAt:    c.now,
					UpdatedAt:    c.now,
				},
				c.txn,
			); err != nil {
				return err
			}
			c.emit(
				event.VoteRecordedEventType,
				event.VoteRecordedEvent{
					ProposalID: proposal.ID,
					Kind:       "veto",
					Voter:      actor,
					Choice:     req.Choice,
				},
			)
			c.onCommit(func() {
				e.metrics.votesTotal.WithLabelValues("veto").Inc()
			})
			votes, err := e.db.GetVetoVotes(proposal.ID, c.txn)
			if err != nil {
				return err
			}
			var count uint32
			for _, vote := range votes {
				if vote.Choice == models.VetoChoiceVeto {
					count++
				}
			}
			threshold := *proposal.VetoThreshold
			ret = &VetoResult{
				ProposalID: proposal.ID,
				VetoCount:  count,
				Threshold:  threshold,
			}
			if threshold == 0 || count < threshold {
				return e.db.SetProposalVetoCount(proposal.ID, count, c.txn)
			}
			if err := e.rollbackPass(c, proposal, count); err != nil {
				return err
			}
			ret.VetoCount = 0
			ret.Vetoed = true
			return nil
		},
	)
	return ret, err
}

// rollbackPass clears the pass state and the votes cast against it. The
// updated timestamp always moves strictly forward so the vote window
// restarts after the previous one.
func (e *Engine) rollbackPass(
	c *commandCtx,
	proposal *models.Proposal,
	vetoCount uint32,
) error {
	updatedAt := c.now
	if !updatedAt.After(proposal.UpdatedAt) {
		updatedAt = proposal.UpdatedAt.Add(time.Nanosecond)
	}
	if err := e.db.ClearProposalPassed(proposal.ID, updatedAt, c.txn); err != nil {
		return err
	}
	if err := e.db.DeleteChamberVotes(proposal.ID, c.txn); err != nil {
		return err
	}
	if err := e.db.DeleteVetoVotes(proposal.ID, c.txn); err != nil {
		return err
	}
	proposal.VotePassedAt = nil
	proposal.VoteFinalizesAt = nil
	proposal.VetoCouncil = nil
	proposal.VetoThreshold = nil
	proposal.VetoCount = 0
	proposal.UpdatedAt = updatedAt
	e.logger.Info(
		"proposal vetoed",
		"proposal_id", proposal.ID,
		"veto_count", vetoCount,
	)
	c.emit(
		event.ProposalVetoedEventType,
		event.ProposalVetoedEvent{
			ProposalID: proposal.ID,
			VetoCount:  vetoCount,
		},
	)
	c.onCommit(e.metrics.proposalsVetoed.Inc)
	return nil
}

// vetoCouncil selects the council from the merit history of active chambers
func (e *Engine) vetoCouncil(c *commandCtx) (veto.Council, error) {
	chambers, err := e.db.GetChambers(c.txn)
	if err != nil {
		return veto.Council{}, err
	}
	active := make([]string, 0, len(chambers))
	for _, chamber := range chambers {
		if chamber.Active() {
			active = append(active, chamber.ID)
		}
	}
	totals, err := e.db.GetMeritTotals(c.txn)
	if err != nil {
		return veto.Council{}, err
	}
	merit := make([]veto.MeritTotal, 0, len(totals))
	for _, total := range totals {
		merit = append(merit, veto.MeritTotal{
			ChamberID: total.ChamberID,
			Address:   total.Address,
			LCM:       total.LCM,
		})
	}
	return veto.SelectCouncil(active, merit, e.params.VetoPassingFraction), nil
}

// ComputeVetoCouncil previews the council a proposal passing now would get
func (e *Engine) ComputeVetoCouncil(ctx context.Context) (*veto.Council, error) {
	var ret veto.Council
	err := e.read(
		ctx,
		"veto.council",
		nil,
		func(c *commandCtx) error {
			var err error
			ret, err = e.vetoCouncil(c)
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	return &ret, nil
}
