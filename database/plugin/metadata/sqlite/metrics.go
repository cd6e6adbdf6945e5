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

package sqlite

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus/collectors"
)

func (d *MetadataStoreSqlite) registerMetrics(sqlDB *sql.DB) {
	collector := collectors.NewDBStatsCollector(sqlDB, "gavel_metadata")
	if err := d.promRegistry.Register(collector); err != nil {
		d.logger.Warn(
			"failed to register metadata store metrics",
			"error", err,
		)
	}
}
