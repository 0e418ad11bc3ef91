// Copyright (C) 2026 BoxOps Systems (oss@boxops.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package badger

import (
	"bytes"
	"context"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_InMemory(t *testing.T) {
	db, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer db.Close()

	err = db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("key"), []byte("value"))
	})
	require.NoError(t, err)

	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("key"))
		require.NoError(t, err)
		return item.Value(func(val []byte) error {
			assert.Equal(t, []byte("value"), val)
			return nil
		})
	})
	require.NoError(t, err)
}

func TestOpen_Persistent(t *testing.T) {
	dir := t.TempDir()

	db, err := Open(DefaultConfig(dir))
	require.NoError(t, err)

	err = db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("persistent-key"), []byte("persistent-value"))
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopen read-only and verify the data survived.
	db2, err := Open(ReadOnlyConfig(dir))
	require.NoError(t, err)
	defer db2.Close()

	err = db2.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("persistent-key"))
		require.NoError(t, err)
		return item.Value(func(val []byte) error {
			assert.Equal(t, []byte("persistent-value"), val)
			return nil
		})
	})
	require.NoError(t, err)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")
}

func TestOpen_ReadOnlyMissingDir(t *testing.T) {
	_, err := Open(ReadOnlyConfig(t.TempDir() + "/nope"))
	assert.Error(t, err)
}

func TestWithTxn_RollbackOnError(t *testing.T) {
	db, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	err = db.WithTxn(ctx, func(txn *badger.Txn) error {
		if err := txn.Set([]byte("rollback-key"), nil); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	err = db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		_, err := txn.Get([]byte("rollback-key"))
		assert.Equal(t, badger.ErrKeyNotFound, err)
		return nil
	})
	require.NoError(t, err)
}

func TestWithTxn_ContextCancelled(t *testing.T) {
	db, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = db.WithTxn(ctx, func(txn *badger.Txn) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context cancelled")
}

func TestBackupLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()

	src, err := Open(DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	defer src.Close()

	err = src.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte("a"), []byte("1")); err != nil {
			return err
		}
		return txn.Set([]byte("b"), []byte("2"))
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, src.Backup(ctx, &buf))

	dst, err := Open(DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	defer dst.Close()

	require.NoError(t, dst.Load(ctx, &buf))

	err = dst.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("b"))
		require.NoError(t, err)
		return item.Value(func(val []byte) error {
			assert.Equal(t, []byte("2"), val)
			return nil
		})
	})
	require.NoError(t, err)
}
