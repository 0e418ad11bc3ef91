// Copyright (C) 2026 BoxOps Systems (oss@boxops.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package fanout computes the impact set of a change: the transitive closure
// of dependents over the stored graph.
//
// The resolver is a pure function of current graph state and the input set.
// It only requires eventual convergence across repeated scans, not
// point-in-time snapshot consistency, so it may run read-only concurrently
// with an active writer.
package fanout

import (
	"context"
	"sort"

	"github.com/boxops/confdb/services/confdb/configpath"
	"github.com/boxops/confdb/services/confdb/store"
)

// Resolver answers impact queries over a graph store.
type Resolver struct {
	store *store.Store
}

// NewResolver creates a Resolver over s.
func NewResolver(s *store.Store) *Resolver {
	return &Resolver{store: s}
}

// Fanout computes every config impacted when the given paths change: a
// breadth-first traversal over direct dependents, seeded with modified.
//
// The visited set guarantees termination on cyclic graphs and uniqueness of
// the output on diamonds. Seed paths are never part of the result. Seeds
// with zero recorded dependents contribute nothing and raise no error; the
// result is sorted lexically.
func (r *Resolver) Fanout(ctx context.Context, modified []configpath.Path) ([]configpath.Path, error) {
	visited := make(map[string]struct{}, len(modified))
	queue := make([]configpath.Path, 0, len(modified))
	for _, seed := range modified {
		if _, seen := visited[seed.String()]; seen {
			continue
		}
		visited[seed.String()] = struct{}{}
		queue = append(queue, seed)
	}

	impacted := make([]configpath.Path, 0)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		err := r.store.ScanDependents(ctx, current, func(dependent configpath.Path) error {
			if _, seen := visited[dependent.String()]; seen {
				return nil
			}
			visited[dependent.String()] = struct{}{}
			impacted = append(impacted, dependent)
			queue = append(queue, dependent)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(impacted, func(i, j int) bool {
		return impacted[i].String() < impacted[j].String()
	})
	return impacted, nil
}
