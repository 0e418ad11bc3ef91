// Copyright (C) 2026 BoxOps Systems (oss@boxops.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store persists the config dependency graph in the embedded engine.
//
// Edges are directed (dependency -> dependent) pairs stored as presence-only
// records; the encoded dependency occupies the leading variable key field
// because the only required query direction is "who is affected if this
// changes". There is intentionally no symmetric "dependencies of X" index.
//
// Edges form a set: re-inserting an existing edge is observably a no-op, and
// no edge-deletion operation is exposed. Edges accumulate monotonically
// across rebuilds; consumers must treat a dependent set as a superset of the
// currently-true one. The graph may contain cycles.
//
// # Thread Safety
//
// Store is safe for concurrent use; each method runs in its own engine
// transaction.
package store

import (
	"context"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/boxops/confdb/services/confdb/configpath"
	storage "github.com/boxops/confdb/services/confdb/storage/badger"
)

// Store exposes the dependency graph over an open engine handle.
type Store struct {
	db *storage.DB
}

// New wraps an already-open engine handle. The caller retains ownership of
// the handle and is responsible for closing it.
func New(db *storage.DB) *Store {
	return &Store{db: db}
}

// Open opens the engine with cfg and wraps it in a Store. Open failures are
// reported as *StorageError and are fatal to the invoking command.
func Open(cfg storage.Config) (*Store, error) {
	db, err := storage.Open(cfg)
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}
	return New(db), nil
}

// Close releases the underlying engine handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Engine returns the underlying engine handle, for operations (backup,
// restore) that pass through to the engine's native facilities.
func (s *Store) Engine() *storage.DB {
	return s.db
}

// PutEdge records that dependent's build result was produced using
// dependency. Idempotent: one engine write, and writing an existing edge is
// observably a no-op.
//
// Both inputs are re-canonicalized before encoding; re-validating a canonical
// path is safe and rejects zero-value Paths that never went through the
// canonicalizer.
func (s *Store) PutEdge(ctx context.Context, dependency, dependent configpath.Path) error {
	dependency, err := configpath.Canonicalize(dependency.String())
	if err != nil {
		return err
	}
	dependent, err = configpath.Canonicalize(dependent.String())
	if err != nil {
		return err
	}

	err = s.db.WithTxn(ctx, func(txn *badgerdb.Txn) error {
		return txn.Set(edgeKey(dependency, dependent), nil)
	})
	if err != nil {
		return &StorageError{Op: "put edge", Err: err}
	}
	return nil
}

// ScanDependents streams every direct dependent of dependency to fn, in
// engine key order. Order carries no semantic meaning; only completeness and
// uniqueness are guaranteed. An unknown dependency yields zero calls, not an
// error. A decode failure or an error from fn aborts the scan and propagates;
// the scan cursor is released on every exit path.
func (s *Store) ScanDependents(ctx context.Context, dependency configpath.Path, fn func(configpath.Path) error) error {
	dependency, err := configpath.Canonicalize(dependency.String())
	if err != nil {
		return err
	}
	prefix := edgePrefix(dependency)

	err = s.db.WithReadTxn(ctx, func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().Key()
			dependent, err := configpath.Canonicalize(string(key[len(prefix):]))
			if err != nil {
				return err
			}
			if err := fn(dependent); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if _, ok := err.(*configpath.InvalidPathError); ok {
			return err
		}
		return &StorageError{Op: "scan dependents", Err: err}
	}
	return nil
}

// DependentsOf collects the direct dependents of dependency.
func (s *Store) DependentsOf(ctx context.Context, dependency configpath.Path) ([]configpath.Path, error) {
	var out []configpath.Path
	err := s.ScanDependents(ctx, dependency, func(p configpath.Path) error {
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PutConfig records p as a known config target. Written on every successful
// build so `query ls` can enumerate configs without scanning the edge index.
func (s *Store) PutConfig(ctx context.Context, p configpath.Path) error {
	p, err := configpath.Canonicalize(p.String())
	if err != nil {
		return err
	}

	err = s.db.WithTxn(ctx, func(txn *badgerdb.Txn) error {
		return txn.Set(configKey(p), nil)
	})
	if err != nil {
		return &StorageError{Op: "put config", Err: err}
	}
	return nil
}

// ListConfigs returns the known configs under dir ("" means the root).
// Without recursive, only configs directly in dir are returned.
func (s *Store) ListConfigs(ctx context.Context, dir string, recursive bool) ([]configpath.Path, error) {
	prefix := configPrefix()
	var scope configpath.Path
	if dir != "" {
		var err error
		scope, err = configpath.Canonicalize(dir)
		if err != nil {
			return nil, err
		}
		dir = scope.String()
		prefix = append(prefix, dir+"/"...)
	}

	var out []configpath.Path
	err := s.db.WithReadTxn(ctx, func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		nsLen := len(configPrefix())
		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().Key()
			p, err := configpath.Canonicalize(string(key[nsLen:]))
			if err != nil {
				return err
			}
			if !recursive && !directlyIn(p.String(), dir) {
				continue
			}
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		if _, ok := err.(*configpath.InvalidPathError); ok {
			return nil, err
		}
		return nil, &StorageError{Op: "list configs", Err: err}
	}
	return out, nil
}

// directlyIn reports whether canonical path p names an immediate child of
// dir ("" means the root).
func directlyIn(p, dir string) bool {
	rest := p
	if dir != "" {
		if len(p) <= len(dir)+1 || p[:len(dir)] != dir || p[len(dir)] != '/' {
			return false
		}
		rest = p[len(dir)+1:]
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' {
			return false
		}
	}
	return true
}
