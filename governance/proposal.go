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
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"github.com/blinklabs-io/gavel/database/models"
	"github.com/blinklabs-io/gavel/event"
	"github.com/blinklabs-io/gavel/governance/lifecycle"
)

type CreateProposalRequest struct {
	ID        string `json:"id"`
	ChamberID string `json:"chamberId"`
	Title     string `json:"title"`
}

// CreateProposal stores a new draft owned by the actor. An empty chamber
// id places the proposal in the general chamber.
func (e *Engine) CreateProposal(
	ctx context.Context,
	actor string,
	req CreateProposalRequest,
) (*models.Proposal, error) {
	if req.ChamberID == "" {
		req.ChamberID = models.GeneralChamberID
	}
	var ret *models.Proposal
	err := e.command(
		ctx,
		"proposal.create",
		[]attribute.KeyValue{
			attribute.String("proposal.id", req.ID),
			attribute.String("chamber.id", req.ChamberID),
		},
		func(c *commandCtx) error {
			if err := validateIdentifier("proposal id", req.ID); err != nil {
				return err
			}
			if err := validateIdentifier("actor address", actor); err != nil {
				return err
			}
			if len(req.Title) > 256 {
				return newError(ErrInvalidArgument, "title exceeds 256 bytes")
			}
			if _, err := e.loadActiveChamber(c, req.ChamberID); err != nil {
				return err
			}
			_, err := e.db.GetProposal(req.ID, c.txn)
			if err == nil {
				return newError(ErrProposalExists, "proposal %s already exists", req.ID)
			}
			if !errors.Is(err, models.ErrProposalNotFound) {
				return err
			}
			proposal := &models.Proposal{
				ID:            req.ID,
				Title:         req.Title,
				Stage:         lifecycle.StageDraft.String(),
				AuthorAddress: actor,
				ChamberID:     req.ChamberID,
				CreatedAt:     c.now,
				UpdatedAt:     c.now,
			}
			if err := e.db.CreateProposal(proposal, c.txn); err != nil {
				return err
			}
			ret = proposal
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// SubmitProposal moves the actor's draft into the attention pool
func (e *Engine) SubmitProposal(
	ctx context.Context,
	actor string,
	id string,
) (*models.Proposal, error) {
	var ret *models.Proposal
	err := e.command(
		ctx,
		"proposal.submit",
		[]attribute.KeyValue{attribute.String("proposal.id", id)},
		func(c *commandCtx) error {
			proposal, err := e.loadProposal(c, id)
			if err != nil {
				return err
			}
			if proposal.AuthorAddress != actor {
				return newError(
					ErrForbidden,
					"only the author may submit proposal %s",
					id,
				)
			}
			if _, err := e.transition(c, proposal, lifecycle.StagePool); err != nil {
				return err
			}
			ret = proposal
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// TransitionStage moves a proposal between two adjacent stages if it is
// still in the from stage. A proposal already in the to stage is left
// alone and reported as not moved.
func (e *Engine) TransitionStage(
	ctx context.Context,
	id string,
	from lifecycle.Stage,
	to lifecycle.Stage,
) (bool, error) {
	var moved bool
	err := e.command(
		ctx,
		"proposal.transition",
		[]attribute.KeyValue{
			attribute.String("proposal.id", id),
			attribute.String("stage.from", from.String()),
			attribute.String("stage.to", to.String()),
		},
		func(c *commandCtx) error {
			if _, err := lifecycle.TriggerFor(from, to); err != nil {
				return newError(ErrIllegalTransition, "%s", err)
			}
			proposal, err := e.loadProposal(c, id)
			if err != nil {
				return err
			}
			switch proposal.Stage {
			case to.String():
				return nil
			case from.String():
			default:
				return newError(
					ErrStageConflict,
					"proposal %s is in stage %s, not %s",
					id,
					proposal.Stage,
					from,
				)
			}
			if to == lifecycle.StageBuild {
				// Finalization owns the move to build
				if !proposal.Passed() || c.now.Before(*proposal.VoteFinalizesAt) {
					return newError(
						ErrIllegalTransition,
						"proposal %s has no elapsed veto window",
						id,
					)
				}
				moved, err = e.finalize(c, proposal)
				return err
			}
			moved, err = e.transition(c, proposal, to)
			return err
		},
	)
	return moved, err
}

// transition performs the guarded stage move, capturing the denominator of
// the stage being entered. The proposal is updated in place.
func (e *Engine) transition(
	c *commandCtx,
	proposal *models.Proposal,
	to lifecycle.Stage,
) (bool, error) {
	from, err := lifecycle.ParseStage(proposal.Stage)
	if err != nil {
		return false, err
	}
	trigger, err := lifecycle.TriggerFor(from, to)
	if err != nil {
		return false, newError(ErrIllegalTransition, "%s", err)
	}
	moved, err := e.db.SetProposalStage(
		proposal.ID,
		from.String(),
		to.String(),
		c.now,
		c.txn,
	)
	if err != nil {
		return false, err
	}
	if !moved {
		return false, newError(
			ErrStageConflict,
			"proposal %s already left stage %s",
			proposal.ID,
			from,
		)
	}
	proposal.Stage = to.String()
	proposal.UpdatedAt = c.now
	if to.HasDenominator() {
		if _, err := e.captureDenominator(c, proposal.ID, to); err != nil {
			return false, err
		}
	}
	e.logger.Debug(
		"proposal stage transition",
		"proposal_id", proposal.ID,
		"from", from.String(),
		"to", to.String(),
		"trigger", trigger.String(),
	)
	c.emit(
		event.StageTransitionEventType,
		event.StageTransitionEvent{
			ProposalID: proposal.ID,
			From:       from.String(),
			To:         to.String(),
		},
	)
	c.onCommit(func() {
		e.metrics.stageTransitions.WithLabelValues(from.String(), to.String()).Inc()
	})
	return true, nil
}

// captureDenominator freezes the current era's active-governor count for
// the proposal's stage. An existing capture is kept.
func (e *Engine) captureDenominator(
	c *commandCtx,
	proposalID string,
	stage lifecycle.Stage,
) (*models.StageDenominator, error) {
	currentEra, activeGovernors, err := e.activeGovernors(c)
	if err != nil {
		return nil, err
	}
	return e.db.CaptureStageDenominator(
		&models.StageDenominator{
			ProposalID:      proposalID,
			Stage:           stage.String(),
			Era:             currentEra,
			ActiveGovernors: activeGovernors,
			CapturedAt:      c.now,
		},
		c.txn,
	)
}

// denominator returns the captured count for the proposal's stage, falling
// back to the current era's count when nothing was captured
func (e *Engine) denominator(
	c *commandCtx,
	proposalID string,
	stage lifecycle.Stage,
) (uint64, error) {
	captured, err := e.db.GetStageDenominator(
		proposalID,
		stage.String(),
		c.txn,
	)
	if err != nil {
		return 0, err
	}
	if captured != nil {
		return captured.ActiveGovernors, nil
	}
	_, activeGovernors, err := e.activeGovernors(c)
	return activeGovernors, err
}

func (e *Engine) GetProposal(
	ctx context.Context,
	id string,
) (*models.Proposal, error) {
	var ret *models.Proposal
	err := e.read(
		ctx,
		"proposal.get",
		[]attribute.KeyValue{attribute.String("proposal.id", id)},
		func(c *commandCtx) error {
			var err error
			ret, err = e.loadProposal(c, id)
			return err
		},
	)
	return ret, err
}

// ListProposals returns proposals ordered by id. An empty stage lists all.
func (e *Engine) ListProposals(
	ctx context.Context,
	stage string,
) ([]models.Proposal, error) {
	if stage != "" {
		if _, err := lifecycle.ParseStage(stage); err != nil {
			return nil, newError(ErrInvalidArgument, "%s", err)
		}
	}
	var ret []models.Proposal
	err := e.read(
		ctx,
		"proposal.list",
		[]attribute.KeyValue{attribute.String("stage", stage)},
		func(c *commandCtx) error {
			var err error
			ret, err = e.db.GetProposals(stage, c.txn)
			return err
		},
	)
	return ret, err
}
