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

package blob

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/gavel/database/plugin"
	"github.com/blinklabs-io/gavel/database/plugin/blob/badger"
	"github.com/blinklabs-io/gavel/database/types"
)

// BlobStore is an ordered key-value store used for append-only logs and
// cached command results
type BlobStore interface {
	Close() error
	NewTransaction(bool) types.Txn
	Get(types.Txn, []byte) ([]byte, error)
	Set(types.Txn, []byte, []byte) error
	Delete(types.Txn, []byte) error
	Scan(types.Txn, []byte, func(key, val []byte) error) error
}

// New returns the blob store selected by name. An empty data dir keeps the
// data in memory.
func New(
	pluginName, dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (BlobStore, error) {
	if pluginName == "" || pluginName == "badger" {
		blockCache, indexCache := badger.ConfiguredCacheSizes()
		store, err := badger.New(
			badger.WithDataDir(dataDir),
			badger.WithBlockCacheSize(blockCache),
			badger.WithIndexCacheSize(indexCache),
			badger.WithLogger(logger),
			badger.WithPromRegistry(promRegistry),
			badger.WithGc(dataDir != ""),
		)
		if err != nil {
			if store != nil {
				_ = store.Close()
			}
			return nil, err
		}
		return store, nil
	}
	err := plugin.SetPluginOption(
		plugin.PluginTypeBlob,
		pluginName,
		"data-dir",
		dataDir,
	)
	if err != nil {
		return nil, err
	}
	// Get and start the plugin
	p, err := plugin.StartPlugin(plugin.PluginTypeBlob, pluginName)
	if err != nil {
		return nil, err
	}

	// Type assert to BlobStore interface
	blobStore, ok := p.(BlobStore)
	if !ok {
		return nil, fmt.Errorf(
			"plugin '%s' does not implement BlobStore interface",
			pluginName,
		)
	}

	return blobStore, nil
}
