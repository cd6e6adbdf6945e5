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
)

type CreateChamberRequest struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	// Multiplier scales LCM into MCM. Zero uses the configured default.
	Multiplier float64 `json:"multiplier"`
}

type AwardMeritRequest struct {
	ProposalID string `json:"proposalId"`
	ChamberID  string `json:"chamberId"`
	Address    string `json:"address"`
	LCM        uint64 `json:"lcm"`
}

func (e *Engine) CreateChamber(
	ctx context.Context,
	req CreateChamberRequest,
) (*models.Chamber, error) {
	var ret *models.Chamber
	err := e.command(
		ctx,
		"chamber.create",
		[]attribute.KeyValue{attribute.String("chamber.id", req.ID)},
		func(c *commandCtx) error {
			if err := validateIdentifier("chamber id", req.ID); err != nil {
				return err
			}
			if req.Multiplier < 0 {
				return newError(ErrInvalidArgument, "multiplier must not be negative")
			}
			if req.Multiplier == 0 {
				req.Multiplier = e.params.DefaultChamberMultiplier
			}
			chamber := &models.Chamber{
				ID:         req.ID,
				Title:      req.Title,
				Multiplier: req.Multiplier,
				CreatedAt:  c.now,
			}
			added, err := e.db.AddChamber(chamber, c.txn)
			if err != nil {
				return err
			}
			if !added {
				return newError(ErrChamberExists, "chamber %s already exists", req.ID)
			}
			c.emit(
				event.ChamberChangedEventType,
				event.ChamberChangedEvent{ChamberID: chamber.ID},
			)
			ret = chamber
			return nil
		},
	)
	return ret, err
}

// DissolveChamber marks a chamber inactive. Its delegations and merit stay
// on record but it no longer seats a veto council member.
func (e *Engine) DissolveChamber(
	ctx context.Context,
	id string,
) (*models.Chamber, error) {
	var ret *models.Chamber
	err := e.command(
		ctx,
		"chamber.dissolve",
		[]attribute.KeyValue{attribute.String("chamber.id", id)},
		func(c *commandCtx) error {
			if id == models.GeneralChamberID {
				return ErrChamberProtected
			}
			chamber, err := e.loadChamber(c, id)
			if err != nil {
				return err
			}
			ret = chamber
			if !chamber.Active() {
				return nil
			}
			if err := e.db.SetChamberDissolved(id, c.now, c.txn); err != nil {
				return err
			}
			dissolvedAt := c.now
			chamber.DissolvedAt = &dissolvedAt
			c.emit(
				event.ChamberChangedEventType,
				event.ChamberChangedEvent{ChamberID: id, Dissolved: true},
			)
			return nil
		},
	)
	return ret, err
}

func (e *Engine) Chambers(ctx context.Context) ([]models.Chamber, error) {
	var ret []models.Chamber
	err := e.read(
		ctx,
		"chamber.list",
		nil,
		func(c *commandCtx) error {
			var err error
			ret, err = e.db.GetChambers(c.txn)
			return err
		},
	)
	return ret, err
}

// AwardMerit records merit outside of proposal finalization, such as
// history imported from an earlier system. Each proposal is awarded once.
func (e *Engine) AwardMerit(
	ctx context.Context,
	req AwardMeritRequest,
) (*models.MeritAward, error) {
	var ret *models.MeritAward
	err := e.command(
		ctx,
		"merit.award",
		[]attribute.KeyValue{
			attribute.String("proposal.id", req.ProposalID),
			attribute.String("chamber.id", req.ChamberID),
		},
		func(c *commandCtx) error {
			if err := validateIdentifier("proposal id", req.ProposalID); err != nil {
				return err
			}
			if err := validateIdentifier("address", req.Address); err != nil {
				return err
			}
			chamber, err := e.loadChamber(c, req.ChamberID)
			if err != nil {
				return err
			}
			award := &models.MeritAward{
				ProposalID: req.ProposalID,
				ChamberID:  chamber.ID,
				Address:    req.Address,
				LCM:        req.LCM,
				MCM:        multiplied(req.LCM, chamber.Multiplier),
				AwardedAt:  c.now,
			}
			added, err := e.db.AddMeritAward(award, c.txn)
			if err != nil {
				return err
			}
			if !added {
				return newError(
					ErrMeritExists,
					"merit already awarded for proposal %s",
					req.ProposalID,
				)
			}
			e.emitMerit(c, award)
			ret = award
			return nil
		},
	)
	return ret, err
}

func (e *Engine) MeritTotals(ctx context.Context) ([]models.MeritTotal, error) {
	var ret []models.MeritTotal
	err := e.read(
		ctx,
		"merit.totals",
		nil,
		func(c *commandCtx) error {
			var err error
			ret, err = e.db.GetMeritTotals(c.txn)
			return err
		},
	)
	return ret, err
}

// IsNotFound reports whether err is a missing proposal or chamber
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound ||
		errors.Is(err, models.ErrProposalNotFound) ||
		errors.Is(err, models.ErrChamberNotFound)
}
