// Copyright (C) 2026 BoxOps Systems (oss@boxops.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/boxops/confdb/services/confdb/build"
	"github.com/boxops/confdb/services/confdb/store"
	storage "github.com/boxops/confdb/services/confdb/storage/badger"
)

// runBuild evaluates args[0] and writes its artifact under args[1].
// With --db, discovered dependencies are recorded; with --watch, the
// command keeps running and rebuilds on changes until interrupted.
func runBuild(cmd *cobra.Command, args []string) {
	configFile, outDir := args[0], args[1]

	opts := build.Options{
		ConfigRoot: resolveConfigRoot(cmd),
		OutDir:     outDir,
		JSON:       buildJSON,
		Logger:     logger.Slog(),
	}

	if buildDBDir != "" {
		st, err := store.Open(storage.DefaultConfig(buildDBDir))
		if err != nil {
			fail("open database", err)
		}
		defer st.Close()
		opts.Store = st
	}

	builder, err := build.New(opts)
	if err != nil {
		fail("configure build", err)
	}

	if buildWatch {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := builder.Watch(ctx, configFile); err != nil {
			fail("watch", err)
		}
		return
	}

	res, err := builder.Build(cmd.Context(), configFile)
	if err != nil {
		fail("build", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.OutFile)
}
