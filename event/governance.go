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

package event

import "time"

const (
	StageTransitionEventType   EventType = "governance.stage_transition"
	ProposalPassedEventType    EventType = "governance.proposal_passed"
	ProposalVetoedEventType    EventType = "governance.proposal_vetoed"
	ProposalFinalizedEventType EventType = "governance.proposal_finalized"
	VoteRecordedEventType      EventType = "governance.vote_recorded"
	DelegationChangedEventType EventType = "governance.delegation_changed"
	EraAdvancedEventType       EventType = "governance.era_advanced"
	EraRolledUpEventType       EventType = "governance.era_rolled_up"
	MeritAwardedEventType      EventType = "governance.merit_awarded"
	ChamberChangedEventType    EventType = "governance.chamber_changed"
)

// StageTransitionEvent is emitted after a proposal stage change commits
type StageTransitionEvent struct {
	ProposalID string
	From       string
	To         string
}

// ProposalPassedEvent is emitted when a proposal reaches the passing
// threshold and its veto window opens
type ProposalPassedEvent struct {
	ProposalID      string
	ChamberID       string
	VoteFinalizesAt time.Time
	VetoCouncil     []string
	VetoThreshold   uint32
}

// ProposalVetoedEvent is emitted when the veto council rolls back a pass
type ProposalVetoedEvent struct {
	ProposalID string
	VetoCount  uint32
}

// ProposalFinalizedEvent is emitted when a passed proposal moves to build
type ProposalFinalizedEvent struct {
	ProposalID string
	ChamberID  string
}

// VoteRecordedEvent is emitted for each accepted pool, chamber, or veto vote
type VoteRecordedEvent struct {
	ProposalID string
	Kind       string
	Voter      string
	Choice     string
}

// DelegationChangedEvent is emitted when a delegation is set or cleared
type DelegationChangedEvent struct {
	ChamberID string
	Delegator string
	// Delegatee is empty when the delegation was cleared
	Delegatee string
}

type EraAdvancedEvent struct {
	PreviousEra     uint64
	Era             uint64
	ActiveGovernors uint64
}

type EraRolledUpEvent struct {
	Era                    uint64
	ActiveGovernorsNextEra uint64
}

type MeritAwardedEvent struct {
	ProposalID string
	ChamberID  string
	Address    string
	LCM        uint64
	MCM        uint64
}

type ChamberChangedEvent struct {
	ChamberID string
	Dissolved bool
}
