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

// Package lifecycle defines the proposal stages and the only legal moves
// between them.
package lifecycle

import (
	"errors"
	"fmt"
)

type Stage uint8

const (
	StageDraft Stage = iota
	StagePool
	StageVote
	StageBuild
)

var stageNames = map[Stage]string{
	StageDraft: "draft",
	StagePool:  "pool",
	StageVote:  "vote",
	StageBuild: "build",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Stage(%d)", uint8(s))
}

func (s Stage) Valid() bool {
	_, ok := stageNames[s]
	return ok
}

// HasDenominator reports whether entering the stage captures an
// active-governor denominator
func (s Stage) HasDenominator() bool {
	return s == StagePool || s == StageVote
}

func ParseStage(name string) (Stage, error) {
	for stage, stageName := range stageNames {
		if stageName == name {
			return stage, nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q", name)
}

type Trigger uint8

const (
	// TriggerSubmit moves a draft into the attention pool
	TriggerSubmit Trigger = iota
	// TriggerPoolQuorum fires when attention quorum and upvote floor are met
	TriggerPoolQuorum
	// TriggerVetoWindowElapsed fires when a passed proposal's veto window closes
	TriggerVetoWindowElapsed
)

func (t Trigger) String() string {
	switch t {
	case TriggerSubmit:
		return "submit"
	case TriggerPoolQuorum:
		return "pool_quorum"
	case TriggerVetoWindowElapsed:
		return "veto_window_elapsed"
	default:
		return fmt.Sprintf("Trigger(%d)", uint8(t))
	}
}

var ErrIllegalTransition = errors.New("illegal stage transition")

// Next returns the stage reached from the given stage by the trigger.
// Every combination is handled. Anything not explicitly legal returns
// ErrIllegalTransition.
func Next(from Stage, trigger Trigger) (Stage, error) {
	switch {
	case from == StageDraft && trigger == TriggerSubmit:
		return StagePool, nil
	case from == StagePool && trigger == TriggerPoolQuorum:
		return StageVote, nil
	case from == StageVote && trigger == TriggerVetoWindowElapsed:
		return StageBuild, nil
	}
	return from, fmt.Errorf(
		"%w: %s from %s",
		ErrIllegalTransition,
		trigger,
		from,
	)
}

// TriggerFor returns the trigger that moves a proposal between two stages
func TriggerFor(from, to Stage) (Trigger, error) {
	for _, trigger := range []Trigger{TriggerSubmit, TriggerPoolQuorum, TriggerVetoWindowElapsed} {
		if next, err := Next(from, trigger); err == nil && next == to {
			return trigger, nil
		}
	}
	return 0, fmt.Errorf("%w: %s to %s", ErrIllegalTransition, from, to)
}
