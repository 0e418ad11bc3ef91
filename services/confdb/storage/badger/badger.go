// Copyright (C) 2026 BoxOps Systems (oss@boxops.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package badger provides the engine binding for the config dependency
// database. BadgerDB is treated as an opaque ordered byte-keyed store: the
// rest of the system only relies on point get/put/delete, lexicographic
// prefix scans, and the engine's native backup/restore stream.
//
// The build path opens the engine read-write; query and fanout paths open it
// read-only and may run concurrently with a writer in a separate process,
// subject to Badger's own isolation guarantees.
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
package badger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// Config holds configuration for the engine handle.
type Config struct {
	// Path is the engine-owned directory. Required unless InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence). For tests.
	InMemory bool

	// ReadOnly opens the engine without write access. The directory must
	// already contain a database.
	ReadOnly bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives the engine's internal log output. If nil, the
	// engine's internal logging is disabled.
	Logger *slog.Logger
}

// DefaultConfig returns the production configuration for a database at path.
func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		SyncWrites: true,
	}
}

// ReadOnlyConfig returns a read-only configuration for a database at path.
func ReadOnlyConfig(path string) Config {
	return Config{
		Path:     path,
		ReadOnly: true,
	}
}

// InMemoryConfig returns a configuration for tests: in-memory, async writes.
func InMemoryConfig() Config {
	return Config{
		InMemory: true,
	}
}

// engineLogger adapts slog.Logger to Badger's Logger interface.
type engineLogger struct {
	logger *slog.Logger
}

func (l *engineLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *engineLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *engineLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *engineLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// DB wraps an open engine handle.
//
// The handle is the sole shared mutable resource in the system; it is safe
// for concurrent use and must be released with Close on every exit path.
type DB struct {
	*badger.DB
	path     string
	inMemory bool
}

// Open opens the engine with the given configuration.
//
// In read-write mode the directory is created if missing (this is also how
// `db create` materializes a new database). In read-only mode the directory
// must already exist.
//
// The returned DB must be closed by the caller.
func Open(cfg Config) (*DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	switch {
	case cfg.InMemory:
		opts = badger.DefaultOptions("").WithInMemory(true)
	case cfg.ReadOnly:
		if _, err := os.Stat(cfg.Path); err != nil {
			return nil, fmt.Errorf("database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path).WithReadOnly(true)
	default:
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites)
	opts = opts.WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&engineLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	return &DB{
		DB:       db,
		path:     cfg.Path,
		inMemory: cfg.InMemory,
	}, nil
}

// Path returns the database directory, or empty string for in-memory mode.
func (d *DB) Path() string {
	return d.path
}

// WithTxn executes fn within a read-write transaction, committing if fn
// returns nil and discarding otherwise.
func (d *DB) WithTxn(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	txn := d.DB.NewTransaction(true)
	defer txn.Discard()

	if err := fn(txn); err != nil {
		return err
	}
	return txn.Commit()
}

// WithReadTxn executes fn within a read-only transaction. The transaction,
// and any iterator opened inside it, is discarded on every exit path.
func (d *DB) WithReadTxn(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	txn := d.DB.NewTransaction(false)
	defer txn.Discard()

	return fn(txn)
}

// Backup streams the engine's native point-in-time backup to w.
func (d *DB) Backup(ctx context.Context, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	// Full backup: since version 0.
	if _, err := d.DB.Backup(w, 0); err != nil {
		return fmt.Errorf("backup badger database: %w", err)
	}
	return nil
}

// Load restores the engine's native backup stream from r into this database.
// The database must have been opened read-write.
func (d *DB) Load(ctx context.Context, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	if err := d.DB.Load(r, 256); err != nil {
		return fmt.Errorf("load badger backup stream: %w", err)
	}
	return nil
}
