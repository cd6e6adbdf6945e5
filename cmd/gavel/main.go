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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/blinklabs-io/gavel/database/plugin"
	"github.com/blinklabs-io/gavel/internal/config"
	"github.com/blinklabs-io/gavel/internal/version"
)

const (
	programName = "gavel"

	// Plugin flag value that prints the registered plugins instead of running
	pluginListValue = "list"
)

// errPluginsListed stops a command after a plugin flag printed the available
// plugins
var errPluginsListed = errors.New("plugins listed")

var (
	globalFlags = struct {
		debug bool
	}{}
	configFile string
)

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if globalFlags.debug {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// serverLogger installs the long-running server's logger as the default and
// sizes GOMAXPROCS to the container quota
func serverLogger() (*slog.Logger, error) {
	logger := newLogger(os.Stdout, slog.LevelInfo)
	slog.SetDefault(logger)
	_, err := maxprocs.Set(maxprocs.Logger(func(format string, v ...any) {
		logger.Info(fmt.Sprintf(format, v...), "component", programName)
	}))
	if err != nil {
		return nil, fmt.Errorf("set GOMAXPROCS: %w", err)
	}
	logger.Info(
		"version: "+version.GetVersionString(),
		"component", programName,
	)
	return logger, nil
}

// pluginListing describes the registered storage plugins of each given type
func pluginListing(types ...plugin.PluginType) string {
	var buf strings.Builder
	for i, pluginType := range types {
		if i > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "Available %s plugins:\n", plugin.PluginTypeName(pluginType))
		for _, p := range plugin.GetPlugins(pluginType) {
			fmt.Fprintf(&buf, "  %s: %s\n", p.Name, p.Description)
		}
	}
	return buf.String()
}

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all available storage plugins",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprint(
				cmd.OutOrStdout(),
				pluginListing(plugin.PluginTypeBlob, plugin.PluginTypeMetadata),
			)
		},
	}
}

// resolveConfig builds the configuration every subcommand runs with. A config
// already attached to the context is used as the base instead of loading one.
// Storage plugin and governance flags given on the command line override it,
// and the result is validated once here.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Root().PersistentFlags()
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		loaded, err := config.LoadConfig(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	pluginFlags := []struct {
		name       string
		pluginType plugin.PluginType
		target     *string
	}{
		{"blob", plugin.PluginTypeBlob, &cfg.BlobPlugin},
		{"metadata", plugin.PluginTypeMetadata, &cfg.MetadataPlugin},
	}
	for _, pf := range pluginFlags {
		if flags.Changed(pf.name) {
			*pf.target, _ = flags.GetString(pf.name)
		}
		if !pluginRegistered(pf.pluginType, *pf.target) {
			return nil, fmt.Errorf(
				"unknown %s plugin %q, use --%s=%s to show available",
				pf.name, *pf.target, pf.name, pluginListValue,
			)
		}
	}
	if flags.Changed("genesis-governors") {
		cfg.Governance.GenesisActiveGovernors, _ = flags.GetUint64("genesis-governors")
	}
	windowFlags := []struct {
		name   string
		target *time.Duration
	}{
		{"pool-window", &cfg.Governance.PoolWindow},
		{"vote-window", &cfg.Governance.VoteWindow},
		{"veto-window", &cfg.Governance.VetoWindow},
	}
	for _, wf := range windowFlags {
		if flags.Changed(wf.name) {
			*wf.target, _ = flags.GetDuration(wf.name)
		}
	}
	if err := cfg.Governance.Validate(); err != nil {
		return nil, fmt.Errorf("invalid governance parameters: %w", err)
	}
	return cfg, nil
}

func pluginRegistered(pluginType plugin.PluginType, name string) bool {
	for _, p := range plugin.GetPlugins(pluginType) {
		if p.Name == name {
			return true
		}
	}
	return false
}

// requestedListings returns the plugin types whose flag asks for a listing
func requestedListings(cmd *cobra.Command) []plugin.PluginType {
	var ret []plugin.PluginType
	flags := cmd.Root().PersistentFlags()
	if v, _ := flags.GetString("blob"); v == pluginListValue {
		ret = append(ret, plugin.PluginTypeBlob)
	}
	if v, _ := flags.GetString("metadata"); v == pluginListValue {
		ret = append(ret, plugin.PluginTypeMetadata)
	}
	return ret
}

// commandConfig returns the config resolved by the root command
func commandConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return nil, errors.New("no config found in context")
	}
	return cfg, nil
}

func newRootCommand() (*cobra.Command, error) {
	rootCmd := &cobra.Command{
		Use:   programName,
		Short: "DAO governance quorum and lifecycle engine",
		Args:  cobra.NoArgs,
		RunE:  serveRun,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if listed := requestedListings(cmd); len(listed) > 0 {
				fmt.Fprint(cmd.OutOrStdout(), pluginListing(listed...))
				cmd.SilenceErrors = true
				cmd.SilenceUsage = true
				return errPluginsListed
			}
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			cmd.SetContext(config.WithContext(cmd.Context(), cfg))
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	flags.StringVar(&configFile, "config", "", "path to config file")
	flags.StringP("blob", "b", config.DefaultBlobPlugin, "blob store plugin to use, '"+pluginListValue+"' to show available")
	flags.StringP("metadata", "m", config.DefaultMetadataPlugin, "metadata store plugin to use, '"+pluginListValue+"' to show available")
	flags.Uint64("genesis-governors", 0, "active governor count used as the era 0 quorum baseline")
	flags.Duration("pool-window", 0, "how long a proposal may stay in the pool (0 never expires)")
	flags.Duration("vote-window", 0, "how long a chamber vote stays open (0 never closes)")
	flags.Duration("veto-window", 0, "how long an approved proposal stays open to veto")
	if err := plugin.PopulateCmdlineOptions(flags); err != nil {
		return nil, fmt.Errorf("adding plugin flags: %w", err)
	}

	rootCmd.AddCommand(
		serveCommand(),
		eraCommand(),
		delegationCommand(),
		proposalCommand(),
		exportCommand(),
		listCommand(),
		versionCommand(),
	)
	return rootCmd, nil
}

func main() {
	rootCmd, err := newRootCommand()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errPluginsListed) {
			return
		}
		// NOTE: we purposely don't display the error, since cobra will have already displayed it
		os.Exit(1)
	}
}
