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
	ActivityColumnPoolVotes        = "pool_votes"
	ActivityColumnChamberVotes     = "chamber_votes"
	ActivityColumnCourtActions     = "court_actions"
	ActivityColumnFormationActions = "formation_actions"
)

// ClockState is a single row tracking the current era
type ClockState struct {
	EraStartedAt time.Time `gorm:"not null"                        json:"eraStartedAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime:false;not null"   json:"updatedAt"`
	CurrentEra   uint64    `gorm:"not null"                        json:"currentEra"`
	ID           uint      `gorm:"primarykey"                      json:"-"`
}

func (ClockState) TableName() string {
	return "clock_state"
}

type EraSnapshot struct {
	CreatedAt       time.Time `gorm:"autoCreateTime:false;not null"      json:"createdAt"`
	Era             uint64    `gorm:"primaryKey;autoIncrement:false"     json:"era"`
	ActiveGovernors uint64    `gorm:"not null"                           json:"activeGovernors"`
}

func (EraSnapshot) TableName() string {
	return "era_snapshot"
}

// EraUserActivity counters only ever move from 0 to 1
type EraUserActivity struct {
	Address          string `gorm:"uniqueIndex:idx_era_activity_address,priority:2;size:128" json:"address"`
	Era              uint64 `gorm:"uniqueIndex:idx_era_activity_address,priority:1"          json:"era"`
	ID               uint   `gorm:"primarykey"                                               json:"-"`
	PoolVotes        uint32 `gorm:"not null;default:0"                                       json:"poolVotes"`
	ChamberVotes     uint32 `gorm:"not null;default:0"                                       json:"chamberVotes"`
	CourtActions     uint32 `gorm:"not null;default:0"                                       json:"courtActions"`
	FormationActions uint32 `gorm:"not null;default:0"                                       json:"formationActions"`
}

func (EraUserActivity) TableName() string {
	return "era_user_activity"
}

type EraRollup struct {
	RolledAt                 time.Time `gorm:"not null"                        json:"rolledAt"`
	Era                      uint64    `gorm:"primaryKey;autoIncrement:false"  json:"era"`
	RequiredPoolVotes        uint64    `gorm:"not null"                        json:"requiredPoolVotes"`
	RequiredChamberVotes     uint64    `gorm:"not null"                        json:"requiredChamberVotes"`
	RequiredCourtActions     uint64    `gorm:"not null"                        json:"requiredCourtActions"`
	RequiredFormationActions uint64    `gorm:"not null"                        json:"requiredFormationActions"`
	RequiredTotal            uint64    `gorm:"not null"                        json:"requiredTotal"`
	ActiveGovernorsNextEra   uint64    `gorm:"not null"                        json:"activeGovernorsNextEra"`
}

func (EraRollup) TableName() string {
	return "era_rollup"
}

type EraUserStatus struct {
	Address         string `gorm:"uniqueIndex:idx_era_status_address,priority:2;size:128" json:"address"`
	Era             uint64 `gorm:"uniqueIndex:idx_era_status_address,priority:1"          json:"era"`
	CompletedTotal  uint64 `gorm:"not null"                                               json:"completedTotal"`
	RequiredTotal   uint64 `gorm:"not null"                                               json:"requiredTotal"`
	ID              uint   `gorm:"primarykey"                                             json:"-"`
	IsActiveNextEra bool   `gorm:"not null"                                               json:"isActiveNextEra"`
}

func (EraUserStatus) TableName() string {
	return "era_user_status"
}
