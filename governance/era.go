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
	"github.com/blinklabs-io/gavel/governance/era"
)

type EraStatus struct {
	StartedAt       time.Time `json:"startedAt"`
	Era             uint64    `json:"era"`
	ActiveGovernors uint64    `json:"activeGovernors"`
}

type EraRollupResult struct {
	Rollup   models.EraRollup       `json:"rollup"`
	Statuses []models.EraUserStatus `json:"statuses"`
}

type AdvanceEraResult struct {
	// Advanced is false when the era had already moved past the expected one
	Advanced        bool             `json:"advanced"`
	PreviousEra     uint64           `json:"previousEra"`
	Era             uint64           `json:"era"`
	ActiveGovernors uint64           `json:"activeGovernors"`
	Rollup          *EraRollupResult `json:"rollup,omitempty"`
}

var activityColumns = map[era.Category]string{
	era.CategoryPoolVote:        models.ActivityColumnPoolVotes,
	era.CategoryChamberVote:     models.ActivityColumnChamberVotes,
	era.CategoryCourtAction:     models.ActivityColumnCourtActions,
	era.CategoryFormationAction: models.ActivityColumnFormationActions,
}

func (e *Engine) clockState(c *commandCtx) (*models.ClockState, error) {
	state, err := e.db.GetClockState(c.txn)
	if err != nil {
		return nil, err
	}
	if state == nil {
		// Only possible if the store was emptied after bootstrap
		return &models.ClockState{}, nil
	}
	return state, nil
}

// activeGovernors returns the current era and its active-governor baseline
func (e *Engine) activeGovernors(c *commandCtx) (uint64, uint64, error) {
	state, err := e.clockState(c)
	if err != nil {
		return 0, 0, err
	}
	snapshot, err := e.db.GetEraSnapshot(state.CurrentEra, c.txn)
	if err != nil {
		return 0, 0, err
	}
	if snapshot == nil {
		return state.CurrentEra, e.params.GenesisActiveGovernors, nil
	}
	return state.CurrentEra, snapshot.ActiveGovernors, nil
}

// markActivity records the first occurrence of a category for the address
// in the current era
func (e *Engine) markActivity(
	c *commandCtx,
	address string,
	category era.Category,
) (bool, error) {
	state, err := e.clockState(c)
	if err != nil {
		return false, err
	}
	return e.db.MarkEraActivity(
		state.CurrentEra,
		address,
		activityColumns[category],
		c.txn,
	)
}

func (e *Engine) CurrentEra(ctx context.Context) (*EraStatus, error) {
	var ret *EraStatus
	err := e.read(
		ctx,
		"clock.status",
		nil,
		func(c *commandCtx) error {
			state, err := e.clockState(c)
			if err != nil {
				return err
			}
			_, activeGovernors, err := e.activeGovernors(c)
			if err != nil {
				return err
			}
			ret = &EraStatus{
				Era:             state.CurrentEra,
				StartedAt:       state.EraStartedAt,
				ActiveGovernors: activeGovernors,
			}
			return nil
		},
	)
	return ret, err
}

// RecordActivity marks an action performed outside the engine, such as a
// court or formation action, reporting whether it was the first of its
// category for the address this era
func (e *Engine) RecordActivity(
	ctx context.Context,
	address string,
	category era.Category,
) (bool, error) {
	var first bool
	err := e.command(
		ctx,
		"activity.record",
		[]attribute.KeyValue{
			attribute.String("address", address),
			attribute.String("category", category.String()),
		},
		func(c *commandCtx) error {
			if err := validateIdentifier("address", address); err != nil {
				return err
			}
			if _, ok := activityColumns[category]; !ok {
				return newError(ErrInvalidArgument, "unknown category %s", category)
			}
			var err error
			first, err = e.markActivity(c, address, category)
			return err
		},
	)
	return first, err
}

// EraActivity returns the counters recorded for an address in an era
func (e *Engine) EraActivity(
	ctx context.Context,
	eraNum uint64,
	address string,
) (*models.EraUserActivity, error) {
	var ret *models.EraUserActivity
	err := e.read(
		ctx,
		"activity.get",
		[]attribute.KeyValue{attribute.String("address", address)},
		func(c *commandCtx) error {
			activity, err := e.db.GetEraActivity(eraNum, address, c.txn)
			if err != nil {
				return err
			}
			if activity == nil {
				activity = &models.EraUserActivity{Era: eraNum, Address: address}
			}
			ret = activity
			return nil
		},
	)
	return ret, err
}

// RollupEra evaluates every address active in the era against the quotas
// and stores the result once. A nil era rolls up the current one. Repeated
// calls return the stored rollup.
func (e *Engine) RollupEra(
	ctx context.Context,
	eraNum *uint64,
) (*EraRollupResult, error) {
	var ret *EraRollupResult
	err := e.command(
		ctx,
		"clock.rollup_era",
		nil,
		func(c *commandCtx) error {
			state, err := e.clockState(c)
			if err != nil {
				return err
			}
			target := state.CurrentEra
			if eraNum != nil {
				target = *eraNum
			}
			if target > state.CurrentEra {
				return newError(
					ErrInvalidArgument,
					"era %d has not started, current era is %d",
					target,
					state.CurrentEra,
				)
			}
			ret, err = e.rollupEra(c, target)
			return err
		},
	)
	return ret, err
}

func (e *Engine) rollupEra(c *commandCtx, eraNum uint64) (*EraRollupResult, error) {
	existing, err := e.db.GetEraRollup(eraNum, c.txn)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		activities, err := e.db.GetEraActivities(eraNum, c.txn)
		if err != nil {
			return nil, err
		}
		input := make([]era.Activity, 0, len(activities))
		for _, activity := range activities {
			input = append(input, era.Activity{
				Address:          activity.Address,
				PoolVotes:        uint64(activity.PoolVotes),
				ChamberVotes:     uint64(activity.ChamberVotes),
				CourtActions:     uint64(activity.CourtActions),
				FormationActions: uint64(activity.FormationActions),
			})
		}
		quotas := e.params.EraQuotas
		statuses, active := era.Rollup(input, quotas)
		rows := make([]models.EraUserStatus, 0, len(statuses))
		for _, status := range statuses {
			rows = append(rows, models.EraUserStatus{
				Era:             eraNum,
				Address:         status.Address,
				CompletedTotal:  status.CompletedTotal,
				RequiredTotal:   status.RequiredTotal,
				IsActiveNextEra: status.IsActiveNextEra,
			})
		}
		written, err := e.db.AddEraRollup(
			&models.EraRollup{
				Era:                      eraNum,
				RequiredPoolVotes:        quotas.PoolVotes,
				RequiredChamberVotes:     quotas.ChamberVotes,
				RequiredCourtActions:     quotas.CourtActions,
				RequiredFormationActions: quotas.FormationActions,
				RequiredTotal:            quotas.RequiredTotal(),
				ActiveGovernorsNextEra:   active,
				RolledAt:                 c.now,
			},
			rows,
			c.txn,
		)
		if err != nil {
			return nil, err
		}
		if written {
			e.logger.Info(
				"rolled up era",
				"era", eraNum,
				"addresses", len(rows),
				"active_next_era", active,
			)
			c.emit(
				event.EraRolledUpEventType,
				event.EraRolledUpEvent{
					Era:                    eraNum,
					ActiveGovernorsNextEra: active,
				},
			)
			c.onCommit(e.metrics.eraRollups.Inc)
		}
	}
	// Always return what the store holds so replays match the first call
	rollup, err := e.db.GetEraRollup(eraNum, c.txn)
	if err != nil {
		return nil, err
	}
	statuses, err := e.db.GetEraUserStatuses(eraNum, c.txn)
	if err != nil {
		return nil, err
	}
	return &EraRollupResult{
		Rollup:   *rollup,
		Statuses: statuses,
	}, nil
}

// AdvanceEra rolls up the current era, seeds the next era's active-governor
// baseline from the rollup and moves the clock forward. When expectedFrom
// is set the call only advances out of that era, and a replay after the
// clock already moved on returns the state of the following era.
func (e *Engine) AdvanceEra(
	ctx context.Context,
	expectedFrom *uint64,
) (*AdvanceEraResult, error) {
	var ret *AdvanceEraResult
	err := e.command(
		ctx,
		"clock.advance_era",
		nil,
		func(c *commandCtx) error {
			state, err := e.clockState(c)
			if err != nil {
				return err
			}
			from := state.CurrentEra
			if expectedFrom != nil {
				if *expectedFrom < from {
					next := *expectedFrom + 1
					snapshot, err := e.db.GetEraSnapshot(next, c.txn)
					if err != nil {
						return err
					}
					ret = &AdvanceEraResult{
						PreviousEra: *expectedFrom,
						Era:         next,
					}
					if snapshot != nil {
						ret.ActiveGovernors = snapshot.ActiveGovernors
					}
					return nil
				}
				if *expectedFrom > from {
					return newError(
						ErrInvalidArgument,
						"era %d has not started, current era is %d",
						*expectedFrom,
						from,
					)
				}
			}
			rollup, err := e.rollupEra(c, from)
			if err != nil {
				return err
			}
			snapshot, err := e.db.AddEraSnapshot(
				&models.EraSnapshot{
					Era:             from + 1,
					ActiveGovernors: rollup.Rollup.ActiveGovernorsNextEra,
					CreatedAt:       c.now,
				},
				c.txn,
			)
			if err != nil {
				return err
			}
			moved, err := e.db.SetClockEra(from, from+1, c.now, c.txn)
			if err != nil {
				return err
			}
			if !moved {
				return newError(ErrEraConflict, "era moved past %d concurrently", from)
			}
			ret = &AdvanceEraResult{
				Advanced:        true,
				PreviousEra:     from,
				Era:             from + 1,
				ActiveGovernors: snapshot.ActiveGovernors,
				Rollup:          rollup,
			}
			e.logger.Info(
				"advanced era",
				"era", ret.Era,
				"active_governors", ret.ActiveGovernors,
			)
			c.emit(
				event.EraAdvancedEventType,
				event.EraAdvancedEvent{
					PreviousEra:     from,
					Era:             ret.Era,
					ActiveGovernors: ret.ActiveGovernors,
				},
			)
			c.onCommit(func() {
				e.metrics.eraCurrent.Set(float64(ret.Era))
			})
			return nil
		},
	)
	return ret, err
}
