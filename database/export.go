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

package database

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/blinklabs-io/gavel/database/models"
	"github.com/blinklabs-io/gavel/database/types"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Export is the complete persisted state
type Export struct {
	ExportedAt    time.Time                `json:"exportedAt"`
	Metadata      *models.Snapshot         `json:"metadata"`
	DelegationLog []models.DelegationEvent `json:"delegationLog"`
}

// Export writes the full state as JSON, zstd compressed when compress is set.
// Both stores are read in a single transaction.
func (d *Database) Export(
	w io.Writer,
	compress bool,
	exportedAt time.Time,
) error {
	txn := d.Transaction(false)
	defer txn.Release()
	snapshot, err := d.metadata.GetSnapshot(txn.Metadata())
	if err != nil {
		return fmt.Errorf("failed to read metadata snapshot: %w", err)
	}
	delegationLog, err := d.scanDelegationEvents(
		[]byte(types.DelegationLogKeyPrefix),
		txn,
	)
	if err != nil {
		return err
	}
	export := Export{
		ExportedAt:    exportedAt,
		Metadata:      snapshot,
		DelegationLog: delegationLog,
	}
	if !compress {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(export)
	}
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if err := json.NewEncoder(zw).Encode(export); err != nil {
		_ = zw.Close()
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return zw.Close()
}

// ReadExport decodes an export written by Export, detecting compression
func ReadExport(r io.Reader) (*Export, error) {
	br := bufio.NewReader(r)
	var src io.Reader = br
	magic, err := br.Peek(len(zstdMagic))
	if err == nil && bytes.Equal(magic, zstdMagic) {
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer zr.Close()
		src = zr
	}
	ret := &Export{}
	if err := json.NewDecoder(src).Decode(ret); err != nil {
		return nil, fmt.Errorf("failed to decode export: %w", err)
	}
	return ret, nil
}
