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

type Delegation struct {
	UpdatedAt        time.Time `gorm:"autoUpdateTime:false;not null"                              json:"updatedAt"`
	ChamberID        string    `gorm:"uniqueIndex:idx_delegation_delegator,priority:1;size:64"    json:"chamberId"`
	DelegatorAddress string    `gorm:"uniqueIndex:idx_delegation_delegator,priority:2;size:128"   json:"delegatorAddress"`
	DelegateeAddress string    `gorm:"index;size:128;not null"                                    json:"delegateeAddress"`
	ID               uint      `gorm:"primarykey"                                                 json:"-"`
}

func (Delegation) TableName() string {
	return "delegation"
}

const (
	DelegationActionSet   = "set"
	DelegationActionClear = "clear"
)

// DelegationEvent is one entry of the append-only delegation audit log. It
// is kept in the blob store rather than in a table.
type DelegationEvent struct {
	Timestamp        time.Time `json:"timestamp"`
	ID               string    `json:"id"`
	ChamberID        string    `json:"chamberId"`
	Action           string    `json:"action"`
	DelegatorAddress string    `json:"delegatorAddress"`
	DelegateeAddress string    `json:"delegateeAddress,omitempty"`
}
