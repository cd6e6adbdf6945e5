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

func delegationCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delegation",
		Short: "Delegation commands",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "log <chamber-id>",
			Short: "Print the delegation audit log for a chamber",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withEngine(cmd, func(engine *governance.Engine, _ *database.Database) error {
					entries, err := engine.DelegationLog(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), entries)
				})
			},
		},
		&cobra.Command{
			Use:   "list <chamber-id>",
			Short: "Print the current delegations for a chamber",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withEngine(cmd, func(engine *governance.Engine, _ *database.Database) error {
					delegations, err := engine.Delegations(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), delegations)
				})
			},
		},
	)
	return cmd
}
