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
package badger

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func WithPromRegistry(registry prometheus.Registerer) Option {
	return func(s *Store) {
		s.promRegistry = registry
	}
}

// WithDataDir stores data under dataDir/blob. Empty keeps it in memory.
func WithDataDir(dataDir string) Option {
	return func(s *Store) {
		s.dataDir = dataDir
	}
}

func WithBlockCacheSize(size uint64) Option {
	return func(s *Store) {
		s.blockCacheSize = size
	}
}

func WithIndexCacheSize(size uint64) Option {
	return func(s *Store) {
		s.indexCacheSize = size
	}
}

func WithGc(enabled bool) Option {
	return func(s *Store) {
		s.gcEnabled = enabled
	}
}

// WithGcInterval sets how often the value log is compacted
func WithGcInterval(interval time.Duration) Option {
	return func(s *Store) {
		if interval > 0 {
			s.gcInterval = interval
		}
	}
}
