// Copyright (C) 2026 BoxOps Systems (oss@boxops.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package build runs a build for exactly one config target: it evaluates the
// target's definition, writes the serialized export object to the output
// directory, and records one dependency edge per config definition the
// evaluation touched.
//
// Builds are atomic with respect to the graph: if evaluation fails at any
// step, no edges are written for the target. A retried build with the same
// outcome re-adds the same edge set, which is safe because edges are
// idempotent. Each edge write is an independent point write; a crash between
// writes leaves a partial edge set that the next run completes.
package build

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	ctymsgpack "github.com/zclconf/go-cty/cty/msgpack"

	"github.com/boxops/confdb/services/confdb/configpath"
	"github.com/boxops/confdb/services/confdb/hclconf"
	"github.com/boxops/confdb/services/confdb/store"
)

// Options configures a Builder.
type Options struct {
	// ConfigRoot is the directory config paths are relative to.
	ConfigRoot string

	// OutDir is where serialized build outputs are written.
	OutDir string

	// JSON selects JSON output instead of the binary (msgpack) encoding.
	JSON bool

	// Store receives dependency edges on successful builds. When nil, the
	// build still produces output but records nothing.
	Store *store.Store

	// Logger receives build progress. When nil, logging is disabled.
	Logger *slog.Logger
}

// Result describes one successful build.
type Result struct {
	// Target is the built config.
	Target configpath.Path

	// Deps is the discovered dependency set, sorted lexically.
	Deps []configpath.Path

	// OutFile is the path of the serialized output.
	OutFile string
}

// Builder builds config targets under one configuration root.
type Builder struct {
	root   string
	outDir string
	json   bool
	store  *store.Store
	logger *slog.Logger
}

// New creates a Builder. ConfigRoot and OutDir are required.
func New(opts Options) (*Builder, error) {
	if opts.ConfigRoot == "" {
		return nil, fmt.Errorf("config root is required")
	}
	if opts.OutDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	root, err := filepath.Abs(opts.ConfigRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve config root: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Builder{
		root:   root,
		outDir: opts.OutDir,
		json:   opts.JSON,
		store:  opts.Store,
		logger: logger,
	}, nil
}

// TargetPath maps a filesystem path to its canonical config path relative to
// the configuration root.
func (b *Builder) TargetPath(configFile string) (configpath.Path, error) {
	abs, err := filepath.Abs(configFile)
	if err != nil {
		return configpath.Path{}, fmt.Errorf("resolve config file: %w", err)
	}
	rel, err := filepath.Rel(b.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return configpath.Path{}, fmt.Errorf("config file %s is outside the configuration root %s", configFile, b.root)
	}
	return configpath.Canonicalize(filepath.ToSlash(rel))
}

// Build evaluates one config target, writes its output, and records its
// discovered dependency edges.
func (b *Builder) Build(ctx context.Context, configFile string) (*Result, error) {
	target, err := b.TargetPath(configFile)
	if err != nil {
		return nil, err
	}

	logger := b.logger.With("build_id", uuid.NewString(), "target", target.String())
	logger.Info("building config target")

	res, err := hclconf.NewEvaluator(b.root).EvaluateTarget(target)
	if err != nil {
		return nil, err
	}

	outFile, err := b.writeOutput(target, res)
	if err != nil {
		return nil, err
	}
	logger.Info("wrote build output", "out_file", outFile)

	if b.store != nil {
		for _, dep := range res.Imports {
			if err := b.store.PutEdge(ctx, dep, target); err != nil {
				return nil, err
			}
		}
		if err := b.store.PutConfig(ctx, target); err != nil {
			return nil, err
		}
		logger.Info("recorded dependency edges", "count", len(res.Imports))
	}

	return &Result{Target: target, Deps: res.Imports, OutFile: outFile}, nil
}

// writeOutput serializes the export object next to the target's path under
// the output directory, swapping the extension for the encoding's.
func (b *Builder) writeOutput(target configpath.Path, res *hclconf.Result) (string, error) {
	var (
		data []byte
		ext  string
		err  error
	)
	if b.json {
		ext = ".json"
		data, err = ctyjson.Marshal(res.Value, res.Value.Type())
	} else {
		ext = ".bin"
		data, err = ctymsgpack.Marshal(res.Value, res.Value.Type())
	}
	if err != nil {
		return "", fmt.Errorf("serialize config %s: %w", target, err)
	}

	rel := target.String()
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ext

	outFile := filepath.Join(b.outDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(outFile), 0750); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(outFile, data, 0640); err != nil {
		return "", fmt.Errorf("write build output: %w", err)
	}
	return outFile, nil
}
