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
	"encoding/binary"
	"slices"
)

const (
	DelegationLogKeyPrefix = "dl"
	IdempotencyKeyPrefix   = "ik"
)

func Uint64ToBytes(input uint64) []byte {
	ret := make([]byte, 8)
	binary.BigEndian.PutUint64(ret, input)
	return ret
}

// DelegationLogPrefix returns the key prefix shared by all audit entries of
// one chamber
func DelegationLogPrefix(chamberID string) []byte {
	return slices.Concat(
		[]byte(DelegationLogKeyPrefix),
		[]byte(chamberID),
		[]byte{0},
	)
}

// DelegationLogKey orders entries by time within a chamber. The id suffix
// is a time-ordered UUID, so entries written in the same nanosecond keep
// their append order.
func DelegationLogKey(chamberID string, unixNano int64, id []byte) []byte {
	return slices.Concat(
		DelegationLogPrefix(chamberID),
		Uint64ToBytes(uint64(unixNano)), //nolint:gosec // timestamps are positive
		id,
	)
}

func IdempotencyKey(actor string, key string) []byte {
	return slices.Concat(
		[]byte(IdempotencyKeyPrefix),
		[]byte(actor),
		[]byte{0},
		[]byte(key),
	)
}
