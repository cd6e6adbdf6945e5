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

package config

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/blinklabs-io/gavel/database/plugin"
	"github.com/blinklabs-io/gavel/governance"
	"github.com/blinklabs-io/gavel/scheduler"
)

type ctxKey string

const configContextKey ctxKey = "gavel.config"

const DefaultShutdownTimeout = "30s"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

const (
	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"
)

// ErrPluginListRequested is returned when the user requests to list available plugins
// This is not an error condition but a successful operation that displays plugin information
var ErrPluginListRequested = errors.New("plugin list requested")

type tempConfig struct {
	Config   *Config                   `yaml:"config,omitempty"`
	Database *databaseConfig           `yaml:"database,omitempty"`
	Blob     map[string]map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]map[string]any `yaml:"metadata,omitempty"`
}

type databaseConfig struct {
	Blob     map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

// TracingConfig selects the span exporter. OTLP endpoints are read from the
// standard OTEL_EXPORTER_OTLP_* environment variables.
type TracingConfig struct {
	Enabled bool `yaml:"enabled" envconfig:"GAVEL_TRACING_ENABLED"`
	Stdout  bool `yaml:"stdout"  envconfig:"GAVEL_TRACING_STDOUT"`
}

type Config struct {
	Governance           governance.Params `yaml:"governance"`
	Tracing              TracingConfig     `yaml:"tracing"`
	MetadataPlugin       string            `yaml:"metadataPlugin"       envconfig:"GAVEL_DATABASE_METADATA_PLUGIN"`
	BlobPlugin           string            `yaml:"blobPlugin"           envconfig:"GAVEL_DATABASE_BLOB_PLUGIN"`
	DatabasePath         string            `yaml:"databasePath"                                                       split_words:"true"`
	BindAddr             string            `yaml:"bindAddr"                                                           split_words:"true"`
	EraSchedule          string            `yaml:"eraSchedule"                                                        split_words:"true"`
	FinalizeSchedule     string            `yaml:"finalizeSchedule"                                                   split_words:"true"`
	ShutdownTimeout      string            `yaml:"shutdownTimeout"                                                    split_words:"true"`
	IdempotencyCacheSize int               `yaml:"idempotencyCacheSize"                                               split_words:"true"`
	ApiPort              uint              `yaml:"apiPort"                                                            split_words:"true"`
	MetricsPort          uint              `yaml:"metricsPort"                                                        split_words:"true"`
}

// ApiListenAddress returns the API listen address, or an empty string when
// the API is disabled
func (c *Config) ApiListenAddress() string {
	if c.ApiPort == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.BindAddr, c.ApiPort)
}

func (c *Config) ShutdownTimeoutDuration() (time.Duration, error) {
	if c.ShutdownTimeout == "" {
		return 30 * time.Second, nil
	}
	ret, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	return ret, nil
}

func defaultConfig() *Config {
	return &Config{
		Governance:           governance.DefaultParams(),
		BindAddr:             "0.0.0.0",
		DatabasePath:         ".gavel",
		EraSchedule:          scheduler.DefaultEraSchedule,
		FinalizeSchedule:     scheduler.DefaultFinalizeSchedule,
		IdempotencyCacheSize: 4096,
		ApiPort:              8080,
		MetricsPort:          12799,
		BlobPlugin:           DefaultBlobPlugin,
		MetadataPlugin:       DefaultMetadataPlugin,
		ShutdownTimeout:      DefaultShutdownTimeout,
	}
}

var globalConfig = defaultConfig()

func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.gavel/gavel.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".gavel", "gavel.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/gavel/gavel.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/gavel/gavel.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		// First unmarshal into temp config to handle plugin sections
		var tempCfg tempConfig
		err = yaml.Unmarshal(buf, &tempCfg)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}

		// If config section exists, use it for main config
		if tempCfg.Config != nil {
			// Overlay config values onto existing defaults
			configBytes, err := yaml.Marshal(tempCfg.Config)
			if err != nil {
				return nil, fmt.Errorf("error re-marshalling config: %w", err)
			}
			err = yaml.Unmarshal(configBytes, globalConfig)
			if err != nil {
				return nil, fmt.Errorf("error parsing config section: %w", err)
			}
		} else {
			// Otherwise unmarshal the whole file as main config
			err = yaml.Unmarshal(buf, globalConfig)
			if err != nil {
				return nil, fmt.Errorf("error parsing config file: %w", err)
			}
		}

		// Process plugin configurations
		pluginConfig := make(map[string]map[string]map[string]any)
		if tempCfg.Blob != nil {
			pluginConfig["blob"] = tempCfg.Blob
		}
		if tempCfg.Metadata != nil {
			pluginConfig["metadata"] = tempCfg.Metadata
		}
		// Handle database section if present
		if tempCfg.Database != nil {
			if tempCfg.Database.Blob != nil {
				blobPlugin, blobConfig := splitPluginSection(
					"blob",
					tempCfg.Database.Blob,
				)
				if blobPlugin != "" {
					globalConfig.BlobPlugin = blobPlugin
				}
				// Merge with existing blob config instead of overwriting
				if pluginConfig["blob"] == nil {
					pluginConfig["blob"] = blobConfig
				} else {
					maps.Copy(pluginConfig["blob"], blobConfig)
				}
			}
			if tempCfg.Database.Metadata != nil {
				metadataPlugin, metadataConfig := splitPluginSection(
					"metadata",
					tempCfg.Database.Metadata,
				)
				if metadataPlugin != "" {
					globalConfig.MetadataPlugin = metadataPlugin
				}
				// Merge with existing metadata config instead of overwriting
				if pluginConfig["metadata"] == nil {
					pluginConfig["metadata"] = metadataConfig
				} else {
					maps.Copy(pluginConfig["metadata"], metadataConfig)
				}
			}
		}
		if len(pluginConfig) > 0 {
			err = plugin.ProcessConfig(pluginConfig)
			if err != nil {
				return nil, fmt.Errorf(
					"error processing plugin config: %w",
					err,
				)
			}
		}
	}
	// Process environment variables
	err := envconfig.Process("gavel", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}

	// Process plugin environment variables
	err = plugin.ProcessEnvVars()
	if err != nil {
		return nil, fmt.Errorf(
			"error processing plugin environment variables: %w",
			err,
		)
	}

	if err := globalConfig.Governance.Validate(); err != nil {
		return nil, fmt.Errorf("invalid governance parameters: %w", err)
	}
	if _, err := globalConfig.ShutdownTimeoutDuration(); err != nil {
		return nil, err
	}
	return globalConfig, nil
}

// splitPluginSection extracts the plugin name from a database section and
// returns the remaining per-plugin option maps
func splitPluginSection(
	sectionName string,
	section map[string]any,
) (string, map[string]map[string]any) {
	var pluginName string
	if pluginVal, exists := section["plugin"]; exists {
		if name, ok := pluginVal.(string); ok {
			pluginName = name
		}
	}
	ret := make(map[string]map[string]any)
	for k, v := range section {
		if k == "plugin" {
			continue
		}
		if val, ok := v.(map[string]any); ok {
			ret[k] = val
		} else if val, ok := v.(map[any]any); ok {
			// Convert map[any]any to map[string]any
			stringAnyMap := make(map[string]any)
			for vk, vv := range val {
				if keyStr, ok := vk.(string); ok {
					stringAnyMap[keyStr] = vv
				}
			}
			ret[k] = stringAnyMap
		} else {
			// Log skipped non-map config entries
			fmt.Fprintf(os.Stderr, "warning: skipping %s config entry %q: expected map, got %T\n", sectionName, k, v)
		}
	}
	return pluginName, ret
}

func GetConfig() *Config {
	return globalConfig
}
