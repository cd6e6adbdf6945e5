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

package plugin

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

type PluginType int

const (
	PluginTypeBlob PluginType = iota + 1
	PluginTypeMetadata
)

func PluginTypeName(pluginType PluginType) string {
	switch pluginType {
	case PluginTypeBlob:
		return "blob"
	case PluginTypeMetadata:
		return "metadata"
	default:
		return "unknown"
	}
}

type PluginOptionType int

const (
	PluginOptionTypeString PluginOptionType = iota + 1
	PluginOptionTypeBool
	PluginOptionTypeInt
	PluginOptionTypeUint
)

type PluginOption struct {
	DefaultValue any
	Dest         any
	Name         string
	Description  string
	Type         PluginOptionType
}

type PluginEntry struct {
	NewFromOptionsFunc func() Plugin
	Name               string
	Description        string
	Options            []PluginOption
	Type               PluginType
}

var (
	pluginEntries      []PluginEntry
	pluginEntriesMutex sync.Mutex
)

// Register adds a plugin to the registry. A later registration with the same
// type and name replaces the earlier one.
func Register(pluginEntry PluginEntry) {
	pluginEntriesMutex.Lock()
	defer pluginEntriesMutex.Unlock()
	for i, p := range pluginEntries {
		if p.Type == pluginEntry.Type && p.Name == pluginEntry.Name {
			pluginEntries[i] = pluginEntry
			return
		}
	}
	pluginEntries = append(pluginEntries, pluginEntry)
}

// GetPlugins returns the registered plugins of a type
func GetPlugins(pluginType PluginType) []PluginEntry {
	pluginEntriesMutex.Lock()
	defer pluginEntriesMutex.Unlock()
	var ret []PluginEntry
	for _, p := range pluginEntries {
		if p.Type == pluginType {
			ret = append(ret, p)
		}
	}
	return ret
}

// GetPlugin builds a plugin instance from its current options, or returns nil
func GetPlugin(pluginType PluginType, name string) Plugin {
	pluginEntriesMutex.Lock()
	var newFunc func() Plugin
	for _, p := range pluginEntries {
		if p.Type == pluginType && p.Name == name {
			newFunc = p.NewFromOptionsFunc
			break
		}
	}
	pluginEntriesMutex.Unlock()
	if newFunc == nil {
		return nil
	}
	return newFunc()
}

func optionFlagName(p PluginEntry, opt PluginOption) string {
	return fmt.Sprintf("%s-%s-%s", PluginTypeName(p.Type), p.Name, opt.Name)
}

func optionEnvName(p PluginEntry, opt PluginOption) string {
	name := fmt.Sprintf(
		"GAVEL_DATABASE_%s_%s_%s",
		PluginTypeName(p.Type),
		p.Name,
		opt.Name,
	)
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// PopulateCmdlineOptions adds a flag for every plugin option, named
// <type>-<plugin>-<option>
func PopulateCmdlineOptions(fs *pflag.FlagSet) error {
	pluginEntriesMutex.Lock()
	defer pluginEntriesMutex.Unlock()
	for _, p := range pluginEntries {
		for _, opt := range p.Options {
			flagName := optionFlagName(p, opt)
			switch opt.Type {
			case PluginOptionTypeString:
				dest, ok := opt.Dest.(*string)
				def, _ := opt.DefaultValue.(string)
				if !ok {
					return fmt.Errorf("invalid destination for option %s", flagName)
				}
				fs.StringVar(dest, flagName, def, opt.Description)
			case PluginOptionTypeBool:
				dest, ok := opt.Dest.(*bool)
				def, _ := opt.DefaultValue.(bool)
				if !ok {
					return fmt.Errorf("invalid destination for option %s", flagName)
				}
				fs.BoolVar(dest, flagName, def, opt.Description)
			case PluginOptionTypeInt:
				dest, ok := opt.Dest.(*int)
				def, _ := opt.DefaultValue.(int)
				if !ok {
					return fmt.Errorf("invalid destination for option %s", flagName)
				}
				fs.IntVar(dest, flagName, def, opt.Description)
			case PluginOptionTypeUint:
				dest, ok := opt.Dest.(*uint64)
				def, _ := opt.DefaultValue.(uint64)
				if !ok {
					return fmt.Errorf("invalid destination for option %s", flagName)
				}
				fs.Uint64Var(dest, flagName, def, opt.Description)
			default:
				return fmt.Errorf("unknown plugin option type %d for option %s", opt.Type, flagName)
			}
		}
	}
	return nil
}

// ProcessConfig applies plugin options from the config file. The map is
// keyed by plugin type name, then plugin name, then option name.
func ProcessConfig(pluginConfig map[string]map[string]map[string]any) error {
	for typeName, plugins := range pluginConfig {
		pluginType, err := pluginTypeFromName(typeName)
		if err != nil {
			return err
		}
		for pluginName, options := range plugins {
			for optionName, value := range options {
				if err := SetPluginOption(pluginType, pluginName, optionName, normalizeConfigValue(value)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// ProcessEnvVars applies plugin options from GAVEL_DATABASE_<TYPE>_<PLUGIN>_<OPTION>
func ProcessEnvVars() error {
	pluginEntriesMutex.Lock()
	type pending struct {
		pluginType PluginType
		pluginName string
		optionName string
		value      any
	}
	var updates []pending
	for _, p := range pluginEntries {
		for _, opt := range p.Options {
			envName := optionEnvName(p, opt)
			raw, ok := os.LookupEnv(envName)
			if !ok {
				continue
			}
			value, err := parseOptionValue(opt.Type, raw)
			if err != nil {
				pluginEntriesMutex.Unlock()
				return fmt.Errorf("invalid value for %s: %w", envName, err)
			}
			updates = append(updates, pending{p.Type, p.Name, opt.Name, value})
		}
	}
	pluginEntriesMutex.Unlock()
	for _, u := range updates {
		if err := SetPluginOption(u.pluginType, u.pluginName, u.optionName, u.value); err != nil {
			return err
		}
	}
	return nil
}

func pluginTypeFromName(name string) (PluginType, error) {
	for _, t := range []PluginType{PluginTypeBlob, PluginTypeMetadata} {
		if PluginTypeName(t) == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown plugin type %q", name)
}

func parseOptionValue(optType PluginOptionType, raw string) (any, error) {
	switch optType {
	case PluginOptionTypeString:
		return raw, nil
	case PluginOptionTypeBool:
		return strconv.ParseBool(raw)
	case PluginOptionTypeInt:
		return strconv.Atoi(raw)
	case PluginOptionTypeUint:
		return strconv.ParseUint(raw, 10, 64)
	default:
		return nil, fmt.Errorf("unknown plugin option type %d", optType)
	}
}

// yaml decodes integers as int, which uint options also accept
func normalizeConfigValue(value any) any {
	switch v := value.(type) {
	case int64:
		return int(v)
	case uint:
		return uint64(v)
	default:
		return value
	}
}
