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

package main

import (
	"github.com/spf13/cobra"

	"github.com/blinklabs-io/gavel/internal/node"
)

func serveRun(cmd *cobra.Command, _ []string) error {
	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := serverLogger()
	if err != nil {
		return err
	}
	return node.Run(cfg, logger)
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the governance server",
		Args:  cobra.NoArgs,
		RunE:  serveRun,
	}
}
