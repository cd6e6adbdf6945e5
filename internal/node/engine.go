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

package node

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/blinklabs-io/gavel/database"
	"github.com/blinklabs-io/gavel/governance"
	"github.com/blinklabs-io/gavel/internal/config"
)

// OpenEngine opens the configured database and a governance engine on top
// of it for one-shot administrative commands. The caller closes the
// returned database.
func OpenEngine(
	cfg *config.Config,
	logger *slog.Logger,
) (*governance.Engine, *database.Database, error) {
	db, err := database.New(&database.Config{
		DataDir:        cfg.DatabasePath,
		Logger:         logger,
		BlobPlugin:     cfg.BlobPlugin,
		MetadataPlugin: cfg.MetadataPlugin,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	engine, err := governance.NewEngine(governance.EngineConfig{
		Database: db,
		Logger:   logger,
		Params:   cfg.Governance,
	})
	if err != nil {
		return nil, nil, errors.Join(
			fmt.Errorf("loading governance engine: %w", err),
			db.Close(),
		)
	}
	return engine, db, nil
}
