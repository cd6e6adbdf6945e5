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

package badger_test

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/gavel/database/plugin/blob/badger"
	"github.com/blinklabs-io/gavel/database/types"
)

func newStore(
	t *testing.T,
	opts ...badger.Option,
) *badger.Store {
	t.Helper()
	opts = append(
		[]badger.Option{badger.WithGc(false)},
		opts...,
	)
	store, err := badger.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestSetGetDelete(t *testing.T) {
	store := newStore(t)
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("k1"), []byte("v1")))
	require.NoError(t, txn.Commit())

	txn = store.NewTransaction(false)
	val, err := store.Get(txn, []byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), val)
	_, err = store.Get(txn, []byte("missing"))
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
	require.NoError(t, txn.Rollback())

	txn = store.NewTransaction(true)
	require.NoError(t, store.Delete(txn, []byte("k1")))
	require.NoError(t, txn.Commit())
	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	_, err = store.Get(txn, []byte("k1"))
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestRollbackDiscardsWrites(t *testing.T) {
	store := newStore(t)
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("k"), []byte("v")))
	require.NoError(t, txn.Rollback())
	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	_, err := store.Get(txn, []byte("k"))
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestReadOnlyTxnRejectsWrites(t *testing.T) {
	store := newStore(t)
	txn := store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	err := store.Set(txn, []byte("k"), []byte("v"))
	require.ErrorIs(t, err, types.ErrReadOnlyTxn)
	err = store.Delete(txn, []byte("k"))
	require.ErrorIs(t, err, types.ErrReadOnlyTxn)
}

func TestFinishedTxnRejected(t *testing.T) {
	store := newStore(t)
	txn := store.NewTransaction(true)
	require.NoError(t, txn.Commit())
	require.ErrorIs(t, store.Set(txn, []byte("k"), []byte("v")), types.ErrTxnFinished)
	_, err := store.Get(nil, []byte("k"))
	require.ErrorIs(t, err, types.ErrNilTxn)
}

func TestScanPrefix(t *testing.T) {
	store := newStore(t)
	txn := store.NewTransaction(true)
	for _, key := range []string{"a2", "a1", "b1", "a3"} {
		require.NoError(t, store.Set(txn, []byte(key), []byte("v"+key)))
	}
	require.NoError(t, txn.Commit())

	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	var keys, vals []string
	err := store.Scan(txn, []byte("a"), func(key, val []byte) error {
		keys = append(keys, string(key))
		vals = append(vals, string(val))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2", "a3"}, keys)
	assert.Equal(t, []string{"va1", "va2", "va3"}, vals)
}

func TestScanStopsOnError(t *testing.T) {
	store := newStore(t)
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("a1"), []byte("v")))
	require.NoError(t, store.Set(txn, []byte("a2"), []byte("v")))
	require.NoError(t, txn.Commit())

	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	stop := errors.New("stop")
	calls := 0
	err := store.Scan(txn, []byte("a"), func(_, _ []byte) error {
		calls++
		return stop
	})
	require.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)

	err = store.Scan(nil, []byte("a"), func(_, _ []byte) error { return nil })
	require.ErrorIs(t, err, types.ErrNilTxn)
}

func TestForeignTxnRejected(t *testing.T) {
	a := newStore(t)
	b := newStore(t)
	txn := a.NewTransaction(true)
	defer txn.Rollback() //nolint:errcheck
	require.ErrorIs(t, b.Set(txn, []byte("k"), []byte("v")), types.ErrTxnWrongType)
}

func TestOnDiskStore(t *testing.T) {
	dir := t.TempDir()
	reg := prometheus.NewRegistry()
	store, err := badger.New(
		badger.WithDataDir(dir),
		badger.WithGc(false),
		badger.WithPromRegistry(reg),
	)
	require.NoError(t, err)
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("k"), []byte("v")))
	require.NoError(t, txn.Commit())
	require.NoError(t, store.Close())

	store, err = badger.New(badger.WithDataDir(dir), badger.WithGc(false))
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck
	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	val, err := store.Get(txn, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)
}
