// Copyright (C) 2026 BoxOps Systems (oss@boxops.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package build

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxops/confdb/services/confdb/configpath"
	"github.com/boxops/confdb/services/confdb/hclconf"
	storage "github.com/boxops/confdb/services/confdb/storage/badger"
	"github.com/boxops/confdb/services/confdb/store"
)

func writeConfig(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0750))
	require.NoError(t, os.WriteFile(full, []byte(content), 0640))
}

func mustPath(t *testing.T, raw string) configpath.Path {
	t.Helper()
	p, err := configpath.Canonicalize(raw)
	require.NoError(t, err)
	return p
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(storage.InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func depStrings(paths []configpath.Path) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, p.String())
	}
	return out
}

func TestBuild_RecordsDiscoveredDependencies(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(t.TempDir(), "banner.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0640))

	writeConfig(t, root, "shared/m1.hcl", "export {\n  a = 1\n}\n")
	writeConfig(t, root, "shared/m2.hcl", "export {\n  b = 2\n}\n")
	writeConfig(t, root, "target.hcl", `
export {
  a      = import("shared/m1.hcl").a
  b      = import("shared/m2.hcl").b
  banner = file("`+outside+`")
}
`)

	s := newTestStore(t)
	b, err := New(Options{ConfigRoot: root, OutDir: t.TempDir(), Store: s})
	require.NoError(t, err)

	ctx := context.Background()
	res, err := b.Build(ctx, filepath.Join(root, "target.hcl"))
	require.NoError(t, err)
	assert.Equal(t, []string{"shared/m1.hcl", "shared/m2.hcl"}, depStrings(res.Deps))

	// Exactly the two in-root configs became edges; the file() read did not.
	for _, dep := range []string{"shared/m1.hcl", "shared/m2.hcl"} {
		got, err := s.DependentsOf(ctx, mustPath(t, dep))
		require.NoError(t, err)
		assert.Equal(t, []string{"target.hcl"}, depStrings(got))
	}
}

func TestBuild_FailedEvaluationWritesNothing(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "good.hcl", "export {\n  a = 1\n}\n")
	writeConfig(t, root, "bad.hcl", `
export {
  a = import("good.hcl").a
  b = import("ghost.hcl").b
}
`)

	s := newTestStore(t)
	b, err := New(Options{ConfigRoot: root, OutDir: t.TempDir(), Store: s})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = b.Build(ctx, filepath.Join(root, "bad.hcl"))
	require.Error(t, err)

	// Atomic per target: the successful import of good.hcl must not have
	// left an edge behind.
	got, err := s.DependentsOf(ctx, mustPath(t, "good.hcl"))
	require.NoError(t, err)
	assert.Empty(t, got)

	configs, err := s.ListConfigs(ctx, "", true)
	require.NoError(t, err)
	assert.Empty(t, configs)
}

func TestBuild_MissingEntryPoint(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "bare.hcl", "# nothing exported\n")

	b, err := New(Options{ConfigRoot: root, OutDir: t.TempDir()})
	require.NoError(t, err)

	_, err = b.Build(context.Background(), filepath.Join(root, "bare.hcl"))
	require.Error(t, err)

	var merr *hclconf.MissingEntryPointError
	assert.ErrorAs(t, err, &merr)
}

func TestBuild_JSONOutput(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "svc/web.hcl", "export {\n  replicas = 3\n}\n")

	outDir := t.TempDir()
	b, err := New(Options{ConfigRoot: root, OutDir: outDir, JSON: true})
	require.NoError(t, err)

	res, err := b.Build(context.Background(), filepath.Join(root, "svc/web.hcl"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "svc", "web.json"), res.OutFile)

	data, err := os.ReadFile(res.OutFile)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.EqualValues(t, 3, decoded["replicas"])
}

func TestBuild_BinaryOutput(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "svc/db.hcl", "export {\n  engine = \"postgres\"\n}\n")

	outDir := t.TempDir()
	b, err := New(Options{ConfigRoot: root, OutDir: outDir})
	require.NoError(t, err)

	res, err := b.Build(context.Background(), filepath.Join(root, "svc/db.hcl"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "svc", "db.bin"), res.OutFile)

	info, err := os.Stat(res.OutFile)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestBuild_TargetOutsideRoot(t *testing.T) {
	root := t.TempDir()
	elsewhere := filepath.Join(t.TempDir(), "rogue.hcl")
	require.NoError(t, os.WriteFile(elsewhere, []byte("export {}\n"), 0640))

	b, err := New(Options{ConfigRoot: root, OutDir: t.TempDir()})
	require.NoError(t, err)

	_, err = b.Build(context.Background(), elsewhere)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside the configuration root")
}

func TestNew_RequiresRootAndOutDir(t *testing.T) {
	_, err := New(Options{OutDir: "x"})
	assert.Error(t, err)

	_, err = New(Options{ConfigRoot: "x"})
	assert.Error(t, err)
}
