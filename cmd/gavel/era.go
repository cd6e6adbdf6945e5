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
	"github.com/spf13/cobra"

	"github.com/blinklabs-io/gavel/database"
	"github.com/blinklabs-io/gavel/governance"
)

func eraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "era",
		Short: "Governance era commands",
	}
	cmd.AddCommand(eraStatusCommand())
	cmd.AddCommand(eraAdvanceCommand())
	cmd.AddCommand(eraRollupCommand())
	return cmd
}

func eraStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current era and its active governor count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(cmd, func(engine *governance.Engine, _ *database.Database) error {
				status, err := engine.CurrentEra(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), status)
			})
		},
	}
}

func eraAdvanceCommand() *cobra.Command {
	var expectedFrom uint64
	cmd := &cobra.Command{
		Use:   "advance",
		Short: "Roll up the current era and start the next one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var from *uint64
			if cmd.Flags().Changed("expected-from") {
				from = &expectedFrom
			}
			return withEngine(cmd, func(engine *governance.Engine, _ *database.Database) error {
				result, err := engine.AdvanceEra(cmd.Context(), from)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().
		Uint64Var(&expectedFrom, "expected-from", 0, "only advance if the current era matches")
	return cmd
}

func eraRollupCommand() *cobra.Command {
	var eraNum uint64
	cmd := &cobra.Command{
		Use:   "rollup",
		Short: "Compute or show the activity rollup for an era",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var target *uint64
			if cmd.Flags().Changed("era") {
				target = &eraNum
			}
			return withEngine(cmd, func(engine *governance.Engine, _ *database.Database) error {
				result, err := engine.RollupEra(cmd.Context(), target)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().
		Uint64Var(&eraNum, "era", 0, "era to roll up (default: current era)")
	return cmd
}
