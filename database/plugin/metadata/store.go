// Copyright 2025 Blink Labs Software
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

package metadata

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/gavel/database/models"
	"github.com/blinklabs-io/gavel/database/plugin"
	"github.com/blinklabs-io/gavel/database/plugin/metadata/memory"
	"github.com/blinklabs-io/gavel/database/plugin/metadata/sqlite"
	"github.com/blinklabs-io/gavel/database/types"
)

// MetadataStore holds all relational governance state. Every method takes
// the transaction it runs in. A nil transaction runs the call on its own.
type MetadataStore interface {
	// Database
	Close() error
	Transaction(readWrite bool) types.Txn

	// Proposals
	GetProposal(string, types.Txn) (*models.Proposal, error)
	// GetProposals returns proposals ordered by id, optionally filtered by stage
	GetProposals(string, types.Txn) ([]models.Proposal, error)
	CreateProposal(*models.Proposal, types.Txn) error
	// SetProposalStage moves a proposal from one stage to another only if it
	// is currently in the from stage, reporting whether it moved
	SetProposalStage(
		string, // proposalId
		string, // from
		string, // to
		time.Time, // updatedAt
		types.Txn,
	) (bool, error)
	// SetProposalPassed records the pass state only while the proposal is in
	// the vote stage without a pass, reporting whether it was written
	SetProposalPassed(string, models.PassState, types.Txn) (bool, error)
	// ClearProposalPassed rolls back the pass state and resets the veto count
	ClearProposalPassed(string, time.Time, types.Txn) error
	SetProposalVetoCount(string, uint32, types.Txn) error

	// Votes
	SetPoolVote(*models.PoolVote, types.Txn) error
	GetPoolVotes(string, types.Txn) ([]models.PoolVote, error)
	SetChamberVote(*models.ChamberVote, types.Txn) error
	GetChamberVotes(string, types.Txn) ([]models.ChamberVote, error)
	DeleteChamberVotes(string, types.Txn) error
	SetVetoVote(*models.VetoVote, types.Txn) error
	GetVetoVotes(string, types.Txn) ([]models.VetoVote, error)
	DeleteVetoVotes(string, types.Txn) error

	// Delegation
	SetDelegation(*models.Delegation, types.Txn) error
	GetDelegations(string, types.Txn) ([]models.Delegation, error)
	// DeleteDelegation reports whether a delegation existed
	DeleteDelegation(
		string, // chamberId
		string, // delegator
		types.Txn,
	) (bool, error)

	// Stage denominators
	GetStageDenominator(
		string, // proposalId
		string, // stage
		types.Txn,
	) (*models.StageDenominator, error)
	// AddStageDenominator inserts the row if absent and returns the stored row
	AddStageDenominator(
		*models.StageDenominator,
		types.Txn,
	) (*models.StageDenominator, error)

	// Eras
	GetClockState(types.Txn) (*models.ClockState, error)
	// SetClockEra advances the era only if it currently equals from
	SetClockEra(
		uint64, // from
		uint64, // to
		time.Time, // startedAt
		types.Txn,
	) (bool, error)
	GetEraSnapshot(uint64, types.Txn) (*models.EraSnapshot, error)
	// AddEraSnapshot inserts the row if absent and returns the stored row
	AddEraSnapshot(*models.EraSnapshot, types.Txn) (*models.EraSnapshot, error)
	// MarkEraActivity sets the counter named by column to 1, reporting
	// whether this was the first occurrence
	MarkEraActivity(
		uint64, // era
		string, // address
		string, // column
		types.Txn,
	) (bool, error)
	GetEraActivity(uint64, string, types.Txn) (*models.EraUserActivity, error)
	GetEraActivities(uint64, types.Txn) ([]models.EraUserActivity, error)
	GetEraRollup(uint64, types.Txn) (*models.EraRollup, error)
	// AddEraRollup writes the rollup and its statuses unless the era was
	// already rolled up, reporting whether it wrote anything
	AddEraRollup(
		*models.EraRollup,
		[]models.EraUserStatus,
		types.Txn,
	) (bool, error)
	GetEraUserStatuses(uint64, types.Txn) ([]models.EraUserStatus, error)

	// Chambers and merit
	GetChamber(string, types.Txn) (*models.Chamber, error)
	GetChambers(types.Txn) ([]models.Chamber, error)
	// AddChamber inserts the chamber if absent, reporting whether it did
	AddChamber(*models.Chamber, types.Txn) (bool, error)
	SetChamberDissolved(string, time.Time, types.Txn) error
	// AddMeritAward writes at most one award per proposal
	AddMeritAward(*models.MeritAward, types.Txn) (bool, error)
	GetMeritAward(string, types.Txn) (*models.MeritAward, error)
	// GetMeritTotals sums awards per chamber and address
	GetMeritTotals(types.Txn) ([]models.MeritTotal, error)

	// Export
	GetSnapshot(types.Txn) (*models.Snapshot, error)
}

// New creates a metadata store from a built-in or registered plugin
func New(
	pluginName, dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (MetadataStore, error) {
	switch pluginName {
	case "", "sqlite":
		store, err := sqlite.New(
			sqlite.WithDataDir(dataDir),
			sqlite.WithLogger(logger),
			sqlite.WithPromRegistry(promRegistry),
			sqlite.WithBusyTimeout(sqlite.ConfiguredBusyTimeout()),
		)
		if err != nil {
			if store != nil {
				_ = store.Close()
			}
			return nil, err
		}
		return store, nil
	case "memory":
		return memory.New(
			memory.WithLogger(logger),
		), nil
	}
	err := plugin.SetPluginOption(
		plugin.PluginTypeMetadata,
		pluginName,
		"data-dir",
		dataDir,
	)
	if err != nil {
		return nil, err
	}
	p, err := plugin.StartPlugin(plugin.PluginTypeMetadata, pluginName)
	if err != nil {
		return nil, err
	}
	store, ok := p.(MetadataStore)
	if !ok {
		return nil, fmt.Errorf(
			"plugin '%s' does not implement MetadataStore interface",
			pluginName,
		)
	}
	return store, nil
}
