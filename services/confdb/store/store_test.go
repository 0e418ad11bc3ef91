// Copyright (C) 2026 BoxOps Systems (oss@boxops.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxops/confdb/services/confdb/configpath"
	storage "github.com/boxops/confdb/services/confdb/storage/badger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(storage.InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func mustPath(t *testing.T, raw string) configpath.Path {
	t.Helper()
	p, err := configpath.Canonicalize(raw)
	require.NoError(t, err)
	return p
}

func pathStrings(paths []configpath.Path) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, p.String())
	}
	return out
}

func TestPutEdge_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	dep := mustPath(t, "shared/base.hcl")
	dependent := mustPath(t, "services/web.hcl")

	require.NoError(t, s.PutEdge(ctx, dep, dependent))
	require.NoError(t, s.PutEdge(ctx, dep, dependent))

	got, err := s.DependentsOf(ctx, dep)
	require.NoError(t, err)
	assert.Equal(t, []string{"services/web.hcl"}, pathStrings(got))
}

func TestDependentsOf_UnknownDependency(t *testing.T) {
	s := newTestStore(t)

	got, err := s.DependentsOf(context.Background(), mustPath(t, "never/written.hcl"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDependentsOf_MultipleAndPrefixSafety(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := mustPath(t, "shared/base.hcl")
	require.NoError(t, s.PutEdge(ctx, base, mustPath(t, "a.hcl")))
	require.NoError(t, s.PutEdge(ctx, base, mustPath(t, "b/c.hcl")))

	// A dependency whose encoding is a prefix of another must not leak
	// the longer dependency's dependents into its own scan.
	longer := mustPath(t, "shared/base.hcl.bak")
	require.NoError(t, s.PutEdge(ctx, longer, mustPath(t, "z.hcl")))

	got, err := s.DependentsOf(ctx, base)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.hcl", "b/c.hcl"}, pathStrings(got))
}

func TestPutEdge_RejectsZeroPath(t *testing.T) {
	s := newTestStore(t)

	err := s.PutEdge(context.Background(), configpath.Path{}, mustPath(t, "a.hcl"))
	require.Error(t, err)
	var perr *configpath.InvalidPathError
	assert.ErrorAs(t, err, &perr)
}

func TestScanDependents_CallbackErrorAborts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	dep := mustPath(t, "base.hcl")
	require.NoError(t, s.PutEdge(ctx, dep, mustPath(t, "a.hcl")))
	require.NoError(t, s.PutEdge(ctx, dep, mustPath(t, "b.hcl")))

	calls := 0
	err := s.ScanDependents(ctx, dep, func(configpath.Path) error {
		calls++
		return assert.AnError
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestListConfigs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, raw := range []string{
		"top.hcl",
		"services/web.hcl",
		"services/db.hcl",
		"services/web/extra.hcl",
	} {
		require.NoError(t, s.PutConfig(ctx, mustPath(t, raw)))
	}

	t.Run("direct children only", func(t *testing.T) {
		got, err := s.ListConfigs(ctx, "services", false)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"services/web.hcl", "services/db.hcl"}, pathStrings(got))
	})

	t.Run("recursive", func(t *testing.T) {
		got, err := s.ListConfigs(ctx, "services", true)
		require.NoError(t, err)
		assert.ElementsMatch(t,
			[]string{"services/web.hcl", "services/db.hcl", "services/web/extra.hcl"},
			pathStrings(got))
	})

	t.Run("root non-recursive", func(t *testing.T) {
		got, err := s.ListConfigs(ctx, "", false)
		require.NoError(t, err)
		assert.Equal(t, []string{"top.hcl"}, pathStrings(got))
	})

	t.Run("root recursive", func(t *testing.T) {
		got, err := s.ListConfigs(ctx, "", true)
		require.NoError(t, err)
		assert.Len(t, got, 4)
	})
}

func TestPutConfig_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := mustPath(t, "a/b.hcl")
	require.NoError(t, s.PutConfig(ctx, p))
	require.NoError(t, s.PutConfig(ctx, p))

	got, err := s.ListConfigs(ctx, "", true)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
