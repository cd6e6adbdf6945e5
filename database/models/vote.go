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

const (
	PoolDirectionUp   = "up"
	PoolDirectionDown = "down"

	ChamberChoiceYes     = "yes"
	ChamberChoiceNo      = "no"
	ChamberChoiceAbstain = "abstain"

	VetoChoiceVeto = "veto"
	VetoChoiceKeep = "keep"
)

type PoolVote struct {
	CreatedAt    time.Time `gorm:"autoCreateTime:false;not null"                          json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime:false;not null"                          json:"updatedAt"`
	ProposalID   string    `gorm:"uniqueIndex:idx_pool_vote_voter,priority:1;size:128"    json:"proposalId"`
	VoterAddress string    `gorm:"uniqueIndex:idx_pool_vote_voter,priority:2;size:128"    json:"voterAddress"`
	Direction    string    `gorm:"size:8;not null"                                        json:"direction"`
	ID           uint      `gorm:"primarykey"                                             json:"-"`
}

func (PoolVote) TableName() string {
	return "pool_vote"
}

type ChamberVote struct {
	CreatedAt    time.Time `gorm:"autoCreateTime:false;not null"                          json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime:false;not null"                          json:"updatedAt"`
	Score        *uint8    `                                                              json:"score,omitempty"`
	ProposalID   string    `gorm:"uniqueIndex:idx_chamber_vote_voter,priority:1;size:128" json:"proposalId"`
	VoterAddress string    `gorm:"uniqueIndex:idx_chamber_vote_voter,priority:2;size:128" json:"voterAddress"`
	Choice       string    `gorm:"size:8;not null"                                        json:"choice"`
	ID           uint      `gorm:"primarykey"                                             json:"-"`
}

func (ChamberVote) TableName() string {
	return "chamber_vote"
}

type VetoVote struct {
	CreatedAt    time.Time `gorm:"autoCreateTime:false;not null"                          json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime:false;not null"                          json:"updatedAt"`
	ProposalID   string    `gorm:"uniqueIndex:idx_veto_vote_voter,priority:1;size:128"    json:"proposalId"`
	VoterAddress string    `gorm:"uniqueIndex:idx_veto_vote_voter,priority:2;size:128"    json:"voterAddress"`
	Choice       string    `gorm:"size:8;not null"                                        json:"choice"`
	ID           uint      `gorm:"primarykey"                                             json:"-"`
}

func (VetoVote) TableName() string {
	return "veto_vote"
}
