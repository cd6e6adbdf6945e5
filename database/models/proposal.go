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

import (
	"time"

	"github.com/blinklabs-io/gavel/database/types"
)

type Proposal struct {
	CreatedAt       time.Time        `gorm:"autoCreateTime:false;not null"                  json:"createdAt"`
	UpdatedAt       time.Time        `gorm:"autoUpdateTime:false;not null"                  json:"updatedAt"`
	VotePassedAt    *time.Time       `                                                      json:"votePassedAt"`
	VoteFinalizesAt *time.Time       `                                                      json:"voteFinalizesAt"`
	VetoThreshold   *uint32          `                                                      json:"vetoThreshold"`
	ID              string           `gorm:"primaryKey;size:128"                            json:"id"`
	Title           string           `gorm:"size:256"                                       json:"title"`
	Stage           string           `gorm:"index;size:16;not null"                         json:"stage"`
	AuthorAddress   string           `gorm:"index;size:128;not null"                        json:"authorAddress"`
	ChamberID       string           `gorm:"index;size:64;not null"                         json:"chamberId"`
	VetoCouncil     types.StringList `gorm:"type:text"                                      json:"vetoCouncil"`
	VetoCount       uint32           `gorm:"not null;default:0"                             json:"vetoCount"`
}

func (Proposal) TableName() string {
	return "proposal"
}

// Passed reports whether the proposal is inside its veto window
func (p *Proposal) Passed() bool {
	return p.VotePassedAt != nil
}

// PassState is written exactly once when a chamber vote first passes
type PassState struct {
	VotePassedAt    time.Time
	VoteFinalizesAt time.Time
	VetoCouncil     []string
	VetoThreshold   uint32
}
