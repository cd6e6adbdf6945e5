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

package plugin_test

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/gavel/database/plugin"
)

type mockPlugin struct{}

func (m *mockPlugin) Start() error { return nil }
func (m *mockPlugin) Stop() error  { return nil }

func TestRegister(t *testing.T) {
	pluginName := "test-plugin-" + t.Name()
	plugin.Register(plugin.PluginEntry{
		Type:               plugin.PluginTypeBlob,
		Name:               pluginName,
		NewFromOptionsFunc: func() plugin.Plugin { return &mockPlugin{} },
	})
	require.NotNil(t, plugin.GetPlugin(plugin.PluginTypeBlob, pluginName))
	assert.Nil(t, plugin.GetPlugin(plugin.PluginTypeMetadata, pluginName))
	found := false
	for _, pl := range plugin.GetPlugins(plugin.PluginTypeBlob) {
		if pl.Name == pluginName {
			found = true
		}
	}
	assert.True(t, found, "plugin not in GetPlugins list")
}

func TestRegisterReplaces(t *testing.T) {
	pluginName := "test-plugin-" + t.Name()
	for _, desc := range []string{"first", "second"} {
		plugin.Register(plugin.PluginEntry{
			Type:               plugin.PluginTypeMetadata,
			Name:               pluginName,
			Description:        desc,
			NewFromOptionsFunc: func() plugin.Plugin { return &mockPlugin{} },
		})
	}
	count := 0
	for _, pl := range plugin.GetPlugins(plugin.PluginTypeMetadata) {
		if pl.Name == pluginName {
			count++
			assert.Equal(t, "second", pl.Description)
		}
	}
	assert.Equal(t, 1, count)
}

func TestPluginOptionSources(t *testing.T) {
	pluginName := "test-plugin-" + t.Name()
	var (
		strOpt  string
		boolOpt bool
		uintOpt uint64
	)
	plugin.Register(plugin.PluginEntry{
		Type:               plugin.PluginTypeBlob,
		Name:               pluginName,
		NewFromOptionsFunc: func() plugin.Plugin { return &mockPlugin{} },
		Options: []plugin.PluginOption{
			{Name: "path", Type: plugin.PluginOptionTypeString, DefaultValue: "a", Dest: &strOpt},
			{Name: "gc", Type: plugin.PluginOptionTypeBool, DefaultValue: false, Dest: &boolOpt},
			{Name: "cache-size", Type: plugin.PluginOptionTypeUint, DefaultValue: uint64(1), Dest: &uintOpt},
		},
	})

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, plugin.PopulateCmdlineOptions(fs))
	require.NoError(t, fs.Parse([]string{"--blob-" + pluginName + "-path=b"}))
	assert.Equal(t, "b", strOpt)
	assert.Equal(t, uint64(1), uintOpt)

	require.NoError(t, plugin.ProcessConfig(map[string]map[string]map[string]any{
		"blob": {pluginName: {"cache-size": 42, "gc": true}},
	}))
	assert.Equal(t, uint64(42), uintOpt)
	assert.True(t, boolOpt)

	t.Setenv("GAVEL_DATABASE_BLOB_TEST_PLUGIN_TESTPLUGINOPTIONSOURCES_PATH", "c")
	require.NoError(t, plugin.ProcessEnvVars())
	assert.Equal(t, "c", strOpt)

	require.Error(t, plugin.ProcessConfig(map[string]map[string]map[string]any{
		"bogus": {},
	}))
}

func TestStartPluginNotFound(t *testing.T) {
	_, err := plugin.StartPlugin(plugin.PluginTypeBlob, "does-not-exist")
	require.Error(t, err)
}
