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
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/gavel/database/plugin"
	"github.com/blinklabs-io/gavel/governance"
	"github.com/blinklabs-io/gavel/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DatabasePath:   t.TempDir(),
		BlobPlugin:     config.DefaultBlobPlugin,
		MetadataPlugin: config.DefaultMetadataPlugin,
		Governance:     governance.DefaultParams(),
	}
}

// executeRoot runs the full root command against a preseeded config
func executeRoot(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	root, err := newRootCommand()
	require.NoError(t, err)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err = root.ExecuteContext(config.WithContext(context.Background(), cfg))
	return out.String(), err
}

func runCommand(t *testing.T, cfg *config.Config, args ...string) string {
	t.Helper()
	out, err := executeRoot(t, cfg, args...)
	require.NoError(t, err)
	return out
}

func TestPluginListing(t *testing.T) {
	output := pluginListing(plugin.PluginTypeBlob)
	assert.Contains(t, output, "Available blob plugins:")
	assert.Contains(t, output, "badger")
	assert.NotContains(t, output, "metadata plugins")

	output = pluginListing(plugin.PluginTypeBlob, plugin.PluginTypeMetadata)
	assert.Contains(t, output, "Available metadata plugins:")
	assert.Contains(t, output, "sqlite")
	assert.Contains(t, output, "memory")

	out := runCommand(t, testConfig(t), "list")
	assert.Equal(t, output, out)
}

func TestPluginListFlagStopsCommand(t *testing.T) {
	out, err := executeRoot(t, testConfig(t), "--metadata", "list", "era", "status")
	require.ErrorIs(t, err, errPluginsListed)
	assert.Contains(t, out, "Available metadata plugins:")
	assert.NotContains(t, out, "Available blob plugins:")
	assert.NotContains(t, out, "activeGovernors")
}

func TestRootResolvesOverrides(t *testing.T) {
	cfg := testConfig(t)
	out := runCommand(
		t, cfg,
		"--metadata", "memory",
		"--genesis-governors", "12",
		"--pool-window", "48h",
		"era", "status",
	)
	assert.Equal(t, "memory", cfg.MetadataPlugin)
	assert.Equal(t, config.DefaultBlobPlugin, cfg.BlobPlugin)
	assert.Equal(t, uint64(12), cfg.Governance.GenesisActiveGovernors)
	assert.Equal(t, 48*time.Hour, cfg.Governance.PoolWindow)
	assert.Equal(t, governance.DefaultParams().VoteWindow, cfg.Governance.VoteWindow)

	var status governance.EraStatus
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, uint64(12), status.ActiveGovernors)
}

func TestRootRejectsBadOverrides(t *testing.T) {
	_, err := executeRoot(t, testConfig(t), "--blob", "tape", "era", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown blob plugin "tape"`)

	_, err = executeRoot(t, testConfig(t), "--vote-window=-1h", "proposals")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid governance parameters")
}

func TestEraCommands(t *testing.T) {
	cfg := testConfig(t)

	var status governance.EraStatus
	require.NoError(t, json.Unmarshal([]byte(runCommand(t, cfg, "era", "status")), &status))
	assert.Zero(t, status.Era)

	var result governance.AdvanceEraResult
	require.NoError(t, json.Unmarshal([]byte(runCommand(t, cfg, "era", "advance", "--expected-from", "0")), &result))
	assert.True(t, result.Advanced)
	assert.Equal(t, uint64(1), result.Era)

	// Replaying the same advance reports the era without moving it
	require.NoError(t, json.Unmarshal([]byte(runCommand(t, cfg, "era", "advance", "--expected-from", "0")), &result))
	assert.False(t, result.Advanced)
	assert.Equal(t, uint64(1), result.Era)

	var rollup governance.EraRollupResult
	require.NoError(t, json.Unmarshal([]byte(runCommand(t, cfg, "era", "rollup", "--era", "0")), &rollup))
	assert.Equal(t, uint64(0), rollup.Rollup.Era)
}

func TestProposalsCommand(t *testing.T) {
	cfg := testConfig(t)
	out := runCommand(t, cfg, "proposals", "--stage", "draft")
	var proposals []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &proposals))
	assert.Empty(t, proposals)
}

func TestVersionCommand(t *testing.T) {
	out := runCommand(t, testConfig(t), "version")
	assert.Contains(t, out, "gavel devel")
}

func TestExportCompressed(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "state.json.zst")
	runCommand(t, cfg, "export", path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	zr, err := zstd.NewReader(f)
	require.NoError(t, err)
	defer zr.Close()
	var export map[string]any
	require.NoError(t, json.NewDecoder(zr).Decode(&export))
	assert.Contains(t, export, "metadata")
}
