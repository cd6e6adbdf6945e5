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

const GeneralChamberID = "general"

type Chamber struct {
	CreatedAt   time.Time  `gorm:"autoCreateTime:false;not null" json:"createdAt"`
	DissolvedAt *time.Time `                                     json:"dissolvedAt,omitempty"`
	ID          string     `gorm:"primaryKey;size:64"            json:"id"`
	Title       string     `gorm:"size:256"                      json:"title"`
	Multiplier  float64    `gorm:"not null;default:1"            json:"multiplier"`
}

func (Chamber) TableName() string {
	return "chamber"
}

func (c *Chamber) Active() bool {
	return c.DissolvedAt == nil
}

// MeritAward records the points granted for one finalized proposal
type MeritAward struct {
	AwardedAt  time.Time `gorm:"not null"                        json:"awardedAt"`
	ProposalID string    `gorm:"uniqueIndex;size:128;not null"   json:"proposalId"`
	ChamberID  string    `gorm:"index;size:64;not null"          json:"chamberId"`
	Address    string    `gorm:"index;size:128;not null"         json:"address"`
	LCM        uint64    `gorm:"column:lcm;not null"             json:"lcm"`
	MCM        uint64    `gorm:"column:mcm;not null"             json:"mcm"`
	ID         uint      `gorm:"primarykey"                      json:"-"`
}

func (MeritAward) TableName() string {
	return "merit_award"
}

// MeritTotal is an aggregate over MeritAward rows and has no table
type MeritTotal struct {
	ChamberID string `json:"chamberId"`
	Address   string `json:"address"`
	LCM       uint64 `json:"lcm"`
	MCM       uint64 `json:"mcm"`
}
