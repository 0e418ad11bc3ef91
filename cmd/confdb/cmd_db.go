// Copyright (C) 2026 BoxOps Systems (oss@boxops.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boxops/confdb/services/confdb/snapshot"
	storage "github.com/boxops/confdb/services/confdb/storage/badger"
)

// runDBCreate initializes an empty database at args[0].
func runDBCreate(cmd *cobra.Command, args []string) {
	dir := args[0]
	db, err := storage.Open(storage.DefaultConfig(dir))
	if err != nil {
		fail("create database", err)
	}
	if err := db.Close(); err != nil {
		fail("close database", err)
	}
	logger.Info("database created", "dir", dir)
	fmt.Fprintln(cmd.OutOrStdout(), dir)
}

// runDBBackup snapshots the database at args[0] into the file args[1].
// The database is opened read-only so a backup can run next to a writer.
func runDBBackup(cmd *cobra.Command, args []string) {
	dir, snapshotFile := args[0], args[1]

	db, err := storage.Open(storage.ReadOnlyConfig(dir))
	if err != nil {
		fail("open database", err)
	}
	defer db.Close()

	if err := snapshot.Write(cmd.Context(), db, snapshotFile); err != nil {
		fail("write snapshot", err)
	}
	logger.Info("snapshot written", "dir", dir, "snapshot", snapshotFile)
	fmt.Fprintln(cmd.OutOrStdout(), snapshotFile)
}

// runDBRestore materializes the snapshot args[0] into a new database
// at args[1].
func runDBRestore(cmd *cobra.Command, args []string) {
	snapshotFile, dir := args[0], args[1]

	if err := snapshot.Restore(cmd.Context(), snapshotFile, dir); err != nil {
		fail("restore snapshot", err)
	}
	logger.Info("snapshot restored", "snapshot", snapshotFile, "dir", dir)
	fmt.Fprintln(cmd.OutOrStdout(), dir)
}
