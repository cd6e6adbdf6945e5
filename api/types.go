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

package api

import (
	"context"

	"github.com/blinklabs-io/gavel/database/models"
	"github.com/blinklabs-io/gavel/governance"
	"github.com/blinklabs-io/gavel/governance/era"
	"github.com/blinklabs-io/gavel/governance/veto"
)

// Engine is the subset of the governance engine served over HTTP
type Engine interface {
	CreateProposal(ctx context.Context, actor string, req governance.CreateProposalRequest) (*models.Proposal, error)
	SubmitProposal(ctx context.Context, actor string, id string) (*models.Proposal, error)
	GetProposal(ctx context.Context, id string) (*models.Proposal, error)
	ListProposals(ctx context.Context, stage string) ([]models.Proposal, error)
	PoolVote(ctx context.Context, actor string, req governance.PoolVoteRequest) (*governance.PoolStatus, error)
	PoolStatus(ctx context.Context, proposalID string) (*governance.PoolStatus, error)
	ChamberVote(ctx context.Context, actor string, req governance.ChamberVoteRequest) (*governance.ChamberStatus, error)
	ChamberStatus(ctx context.Context, proposalID string) (*governance.ChamberStatus, error)
	VetoVote(ctx context.Context, actor string, req governance.VetoVoteRequest) (*governance.VetoResult, error)
	ComputeVetoCouncil(ctx context.Context) (*veto.Council, error)
	SetDelegation(ctx context.Context, actor string, req governance.SetDelegationRequest) (*models.Delegation, error)
	ClearDelegation(ctx context.Context, actor string, chamberID string) (bool, error)
	Delegations(ctx context.Context, chamberID string) ([]models.Delegation, error)
	DelegationWeights(ctx context.Context, chamberID string, excluded []string) (map[string]uint64, error)
	DelegationLog(ctx context.Context, chamberID string) ([]models.DelegationEvent, error)
	CurrentEra(ctx context.Context) (*governance.EraStatus, error)
	AdvanceEra(ctx context.Context, expectedFrom *uint64) (*governance.AdvanceEraResult, error)
	RollupEra(ctx context.Context, eraNum *uint64) (*governance.EraRollupResult, error)
	RecordActivity(ctx context.Context, address string, category era.Category) (bool, error)
	CreateChamber(ctx context.Context, req governance.CreateChamberRequest) (*models.Chamber, error)
	DissolveChamber(ctx context.Context, id string) (*models.Chamber, error)
	Chambers(ctx context.Context) ([]models.Chamber, error)
	AwardMerit(ctx context.Context, req governance.AwardMeritRequest) (*models.MeritAward, error)
	MeritTotals(ctx context.Context) ([]models.MeritTotal, error)
}

// ErrorResponse is the body of every non-2xx response. Error carries the
// stable reason code.
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

type HealthResponse struct {
	Healthy bool `json:"is_healthy"`
}

type ClearDelegationRequest struct {
	ChamberID string `json:"chamberId"`
}

type ClearDelegationResponse struct {
	ChamberID string `json:"chamberId"`
	Cleared   bool   `json:"cleared"`
}

type AdvanceEraRequest struct {
	ExpectedFrom *uint64 `json:"expectedFrom,omitempty"`
}

type RollupEraRequest struct {
	Era *uint64 `json:"era,omitempty"`
}

type RecordActivityRequest struct {
	Address  string `json:"address"`
	Category string `json:"category"`
}

type RecordActivityResponse struct {
	Address  string `json:"address"`
	Category string `json:"category"`
	Counted  bool   `json:"counted"`
}

type DelegationWeightsResponse struct {
	Weights   map[string]uint64 `json:"weights"`
	ChamberID string            `json:"chamberId"`
}
