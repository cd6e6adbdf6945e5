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

package models

import "time"

// StageDenominator freezes the active-governor count used as the quorum
// divisor for one proposal stage. Rows are never updated after insert.
type StageDenominator struct {
	CapturedAt      time.Time `gorm:"not null"                                                json:"capturedAt"`
	ProposalID      string    `gorm:"uniqueIndex:idx_stage_denominator,priority:1;size:128"   json:"proposalId"`
	Stage           string    `gorm:"uniqueIndex:idx_stage_denominator,priority:2;size:16"    json:"stage"`
	Era             uint64    `gorm:"not null"                                                json:"era"`
	ActiveGovernors uint64    `gorm:"not null"                                                json:"activeGovernors"`
	ID              uint      `gorm:"primarykey"                                              json:"-"`
}

func (StageDenominator) TableName() string {
	return "stage_denominator"
}
