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
	"github.com/blinklabs-io/gavel/governance/delegation"
)

type SetDelegationRequest struct {
	ChamberID        string `json:"chamberId"`
	DelegateeAddress string `json:"delegateeAddress"`
}

// SetDelegation points the actor's chamber weight at the delegatee,
// replacing any earlier delegation. Self delegation and edges that would
// close a cycle are rejected and leave the graph untouched.
func (e *Engine) SetDelegation(
	ctx context.Context,
	actor string,
	req SetDelegationRequest,
) (*models.Delegation, error) {
	var ret *models.Delegation
	err := e.command(
		ctx,
		"delegation.set",
		[]attribute.KeyValue{
			attribute.String("chamber.id", req.ChamberID),
			attribute.String("delegatee", req.DelegateeAddress),
		},
		func(c *commandCtx) error {
			if err := validateIdentifier("chamber id", req.ChamberID); err != nil {
				return err
			}
			if err := validateIdentifier("delegator address", actor); err != nil {
				return err
			}
			if err := validateIdentifier("delegatee address", req.DelegateeAddress); err != nil {
				return err
			}
			if _, err := e.loadActiveChamber(c, req.ChamberID); err != nil {
				return err
			}
			graph, err := e.delegationGraph(c, req.ChamberID)
			if err != nil {
				return err
			}
			if err := graph.Validate(actor, req.DelegateeAddress); err != nil {
				switch {
				case errors.Is(err, delegation.ErrSelfDelegation):
					return newError(ErrDelegationSelf, "%s cannot delegate to self", actor)
				case errors.Is(err, delegation.ErrCycle):
					return newError(
						ErrDelegationCycle,
						"%s -> %s would create a cycle in chamber %s",
						actor,
						req.DelegateeAddress,
						req.ChamberID,
					)
				}
				return err
			}
			if graph[actor] == req.DelegateeAddress {
				// Unchanged, nothing to log
				ret = &models.Delegation{
					ChamberID:        req.ChamberID,
					DelegatorAddress: actor,
					DelegateeAddress: req.DelegateeAddress,
				}
				return nil
			}
			ret = &models.Delegation{
				ChamberID:        req.ChamberID,
				DelegatorAddress: actor,
				DelegateeAddress: req.DelegateeAddress,
				UpdatedAt:        c.now,
			}
			if err := e.db.SetDelegation(ret, c.txn); err != nil {
				return err
			}
			return e.logDelegation(c, &models.DelegationEvent{
				Timestamp:        c.now,
				ChamberID:        req.ChamberID,
				Action:           models.DelegationActionSet,
				DelegatorAddress: actor,
				DelegateeAddress: req.DelegateeAddress,
			})
		},
	)
	return ret, err
}

// ClearDelegation removes the actor's delegation in the chamber. Clearing a
// delegation that does not exist is a no-op.
func (e *Engine) ClearDelegation(
	ctx context.Context,
	actor string,
	chamberID string,
) (bool, error) {
	var existed bool
	err := e.command(
		ctx,
		"delegation.clear",
		[]attribute.KeyValue{attribute.String("chamber.id", chamberID)},
		func(c *commandCtx) error {
			if err := validateIdentifier("chamber id", chamberID); err != nil {
				return err
			}
			if err := validateIdentifier("delegator address", actor); err != nil {
				return err
			}
			if _, err := e.loadChamber(c, chamberID); err != nil {
				return err
			}
			var err error
			existed, err = e.db.DeleteDelegation(chamberID, actor, c.txn)
			if err != nil || !existed {
				return err
			}
			return e.logDelegation(c, &models.DelegationEvent{
				Timestamp:        c.now,
				ChamberID:        chamberID,
				Action:           models.DelegationActionClear,
				DelegatorAddress: actor,
			})
		},
	)
	return existed, err
}

func (e *Engine) logDelegation(
	c *commandCtx,
	evt *models.DelegationEvent,
) error {
	if err := e.db.AppendDelegationEvent(evt, c.txn); err != nil {
		return err
	}
	c.emit(
		event.DelegationChangedEventType,
		event.DelegationChangedEvent{
			ChamberID: evt.ChamberID,
			Delegator: evt.DelegatorAddress,
			Delegatee: evt.DelegateeAddress,
		},
	)
	return nil
}

// DelegationWeights returns the number of direct delegators per delegatee,
// leaving out the excluded delegators
func (e *Engine) DelegationWeights(
	ctx context.Context,
	chamberID string,
	excluded []string,
) (map[string]uint64, error) {
	var ret map[string]uint64
	err := e.read(
		ctx,
		"delegation.weights",
		[]attribute.KeyValue{attribute.String("chamber.id", chamberID)},
		func(c *commandCtx) error {
			if _, err := e.loadChamber(c, chamberID); err != nil {
				return err
			}
			graph, err := e.delegationGraph(c, chamberID)
			if err != nil {
				return err
			}
			skip := make(map[string]struct{}, len(excluded))
			for _, address := range excluded {
				skip[address] = struct{}{}
			}
			ret = graph.Weights(skip)
			return nil
		},
	)
	return ret, err
}

func (e *Engine) Delegations(
	ctx context.Context,
	chamberID string,
) ([]models.Delegation, error) {
	var ret []models.Delegation
	err := e.read(
		ctx,
		"delegation.list",
		[]attribute.KeyValue{attribute.String("chamber.id", chamberID)},
		func(c *commandCtx) error {
			if _, err := e.loadChamber(c, chamberID); err != nil {
				return err
			}
			var err error
			ret, err = e.db.GetDelegations(chamberID, c.txn)
			return err
		},
	)
	return ret, err
}

// DelegationLog returns the chamber's delegation audit events oldest first
func (e *Engine) DelegationLog(
	ctx context.Context,
	chamberID string,
) ([]models.DelegationEvent, error) {
	var ret []models.DelegationEvent
	err := e.read(
		ctx,
		"delegation.log",
		[]attribute.KeyValue{attribute.String("chamber.id", chamberID)},
		func(c *commandCtx) error {
			var err error
			ret, err = e.db.GetDelegationEvents(chamberID, c.txn)
			return err
		},
	)
	return ret, err
}
