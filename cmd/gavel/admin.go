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

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/blinklabs-io/gavel/database"
	"github.com/blinklabs-io/gavel/governance"
	"github.com/blinklabs-io/gavel/internal/node"
)

// adminLogger writes warnings to stderr so command output on stdout stays
// machine readable
func adminLogger() *slog.Logger {
	return newLogger(os.Stderr, slog.LevelWarn)
}

// withEngine opens the configured database for a one-shot command
func withEngine(
	cmd *cobra.Command,
	fn func(*governance.Engine, *database.Database) error,
) error {
	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}
	engine, db, err := node.OpenEngine(cfg, adminLogger())
	if err != nil {
		return err
	}
	return errors.Join(fn(engine, db), db.Close())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
