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
	"math"
	"time"


	"github.com/blinklabs-io/gavel/database/models"
	"github.com/blinklabs-io/gavel/event"
	"github.com/blinklabs-io/gavel/governance/lifecycle"
)

// finalizeDue reports whether a passed proposal's veto window has elapsed
func finalizeDue(proposal *models.Proposal, now time.Time) bool {
	return proposal.Stage == lifecycle.StageVote.String() &&
		proposal.Passed() &&
		!now.Before(*proposal.VoteFinalizesAt)
}

// finalize moves a passed proposal to build and awards its author merit
func (e *Engine) finalize(
	c *commandCtx,
	proposal *models.Proposal,
) (bool, error) {
	if _, err := e.transition(c, proposal, lifecycle.StageBuild); err != nil {
		return false, err
	}
	award, err := e.awardAuthor(c, proposal)
	if err != nil {
		return false, err
	}
	e.logger.Info(
		"proposal finalized",
		"proposal_id", proposal.ID,
		"lcm", award.LCM,
		"mcm", award.MCM,
	)
	c.emit(
		event.ProposalFinalizedEventType,
		event.ProposalFinalizedEvent{
			ProposalID: proposal.ID,
			ChamberID:  proposal.ChamberID,
		},
	)
	c.onCommit(e.metrics.proposalsFinalized.Inc)
	return true, nil
}

// awardAuthor grants the rounded mean chamber-vote score as LCM, scaled by
// the chamber multiplier for MCM
func (e *Engine) awardAuthor(
	c *commandCtx,
	proposal *models.Proposal,
) (*models.MeritAward, error) {
	votes, err := e.db.GetChamberVotes(proposal.ID, c.txn)
	if err != nil {
		return nil, err
	}
	var sum, scored uint64
	for _, vote := range votes {
		if vote.Score == nil {
			continue
		}
		sum += uint64(*vote.Score)
		scored++
	}
	var lcm uint64
	if scored > 0 {
		lcm = uint64(math.Round(float64(sum) / float64(scored)))
	}
	chamber, err := e.loadChamber(c, proposal.ChamberID)
	if err != nil {
		return nil, err
	}
	award := &models.MeritAward{
		ProposalID: proposal.ID,
		ChamberID:  proposal.ChamberID,
		Address:    proposal.AuthorAddress,
		LCM:        lcm,
		MCM:        multiplied(lcm, chamber.Multiplier),
		AwardedAt:  c.now,
	}
	added, err := e.db.AddMeritAward(award, c.txn)
	if err != nil {
		return nil, err
	}
	if added {
		e.emitMerit(c, award)
	}
	return award, nil
}

func (e *Engine) emitMerit(c *commandCtx, award *models.MeritAward) {
	c.emit(
		event.MeritAwardedEventType,
		event.MeritAwardedEvent{
			ProposalID: award.ProposalID,
			ChamberID:  award.ChamberID,
			Address:    award.Address,
			LCM:        award.LCM,
			MCM:        award.MCM,
		},
	)
}

func multiplied(lcm uint64, multiplier float64) uint64 {
	return uint64(math.Round(float64(lcm) * multiplier))
}

// FinalizeDue moves every passed proposal whose veto window has elapsed to
// build and returns the ids it finalized
func (e *Engine) FinalizeDue(ctx context.Context) ([]string, error) {
	ret := []string{}
	err := e.command(
		ctx,
		"proposal.finalize_due",
		nil,
		func(c *commandCtx) error {
			ret = ret[:0]
			proposals, err := e.db.GetProposals(lifecycle.StageVote.String(), c.txn)
			if err != nil {
				return err
			}
			for i := range proposals {
				proposal := &proposals[i]
				if !finalizeDue(proposal, c.now) {
					continue
				}
				if _, err := e.finalize(c, proposal); err != nil {
					return err
				}
				ret = append(ret, proposal.ID)
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	if len(ret) > 0 {
		e.logger.Debug("finalization sweep", "finalized", len(ret))
	}
	return ret, nil
}
