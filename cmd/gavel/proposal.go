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

func proposalCommand() *cobra.Command {
	var stage string
	cmd := &cobra.Command{
		Use:   "proposals",
		Short: "List proposals, optionally filtered by stage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(cmd, func(engine *governance.Engine, _ *database.Database) error {
				proposals, err := engine.ListProposals(cmd.Context(), stage)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), proposals)
			})
		},
	}
	cmd.Flags().StringVar(&stage, "stage", "", "only list proposals in this stage")
	return cmd
}
