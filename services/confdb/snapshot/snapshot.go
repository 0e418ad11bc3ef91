// Copyright (C) 2026 BoxOps Systems (oss@boxops.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package snapshot reads and writes database snapshot files.
//
// A snapshot file is the engine's native point-in-time backup stream,
// gzip-compressed. Both directions are pass-throughs to the engine's own
// backup/restore facility; this package adds only compression and file
// handling.
package snapshot

import (
	"context"
	"fmt"
	"os"

	"github.com/klauspost/compress/gzip"

	storage "github.com/boxops/confdb/services/confdb/storage/badger"
)

// Write streams a snapshot of db into snapshotFile. A partially written
// file is removed on failure.
func Write(ctx context.Context, db *storage.DB, snapshotFile string) (err error) {
	f, err := os.Create(snapshotFile)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close snapshot file: %w", cerr)
		}
		if err != nil {
			os.Remove(snapshotFile)
		}
	}()

	gz := gzip.NewWriter(f)
	if err := db.Backup(ctx, gz); err != nil {
		gz.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("finalize snapshot compression: %w", err)
	}
	return nil
}

// Restore materializes a new database at dbDir from snapshotFile. The
// target directory must not already hold data; restoring over an
// existing database would silently merge the two graphs.
func Restore(ctx context.Context, snapshotFile, dbDir string) error {
	if entries, err := os.ReadDir(dbDir); err == nil && len(entries) > 0 {
		return fmt.Errorf("restore target %s is not empty", dbDir)
	}

	f, err := os.Open(snapshotFile)
	if err != nil {
		return fmt.Errorf("open snapshot file: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("read snapshot compression header: %w", err)
	}
	defer gz.Close()

	db, err := storage.Open(storage.DefaultConfig(dbDir))
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Load(ctx, gz)
}
