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

// Package testutil holds shared fixtures and channel helpers for gavel
// tests.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/gavel/database"
)

// OpenDatabase opens a database without a data dir, so both stores live in
// memory, and closes it when the test ends
func OpenDatabase(t *testing.T, metadataPlugin string) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{
		MetadataPlugin: metadataPlugin,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	return db
}

// WaitForCondition polls condition every 10ms until it holds or the
// timeout expires
func WaitForCondition(
	t *testing.T,
	condition func() bool,
	timeout time.Duration,
	msg string,
) {
	t.Helper()
	require.Eventually(
		t,
		condition,
		timeout,
		10*time.Millisecond,
		msg,
	)
}

// RequireReceive returns the next value on ch or fails the test
func RequireReceive[T any](
	t *testing.T,
	ch <-chan T,
	timeout time.Duration,
	msg string,
) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(timeout):
		t.Fatalf("timeout waiting for %s", msg)
	}
	var zero T
	return zero
}

// RequireNoReceive fails the test if anything arrives on ch within d
func RequireNoReceive[T any](
	t *testing.T,
	ch <-chan T,
	d time.Duration,
	msg string,
) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected %s: %v", msg, v)
	case <-time.After(d):
	}
}
