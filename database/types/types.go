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

package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// StringList is stored as a JSON array in a text column. A nil list is
// stored as NULL.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *StringList) Scan(val any) error {
	var data []byte
	switch v := val.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf(
			"value was not expected type, wanted string, got %T",
			val,
		)
	}
	var tmp []string
	if err := json.Unmarshal(data, &tmp); err != nil {
		return fmt.Errorf("failed to decode string list: %w", err)
	}
	if tmp == nil {
		tmp = []string{}
	}
	*l = tmp
	return nil
}

var ErrBlobKeyNotFound = errors.New("blob key not found")

var ErrTxnWrongType = errors.New("invalid transaction type")

var ErrNilTxn = errors.New("nil transaction")

var ErrNoStoreAvailable = errors.New("no store available")

var ErrReadOnlyTxn = errors.New("write in read-only transaction")

var ErrTxnFinished = errors.New("transaction already finished")

// ErrPartialCommit means the metadata side committed but the blob side
// could not be written
var ErrPartialCommit = errors.New("partial commit")

type Txn interface {
	Commit() error
	Rollback() error
}
