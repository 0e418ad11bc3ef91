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

	"github.com/boxops/confdb/services/confdb/configpath"
	"github.com/boxops/confdb/services/confdb/store"
	storage "github.com/boxops/confdb/services/confdb/storage/badger"
)

// openReadOnlyStore opens the database at dir for queries.
func openReadOnlyStore(dir string) *store.Store {
	st, err := store.Open(storage.ReadOnlyConfig(dir))
	if err != nil {
		fail("open database", err)
	}
	return st
}

// runQueryRDeps prints the direct dependents of args[1], one per line.
func runQueryRDeps(cmd *cobra.Command, args []string) {
	dir, rawPath := args[0], args[1]

	p, err := configpath.Canonicalize(rawPath)
	if err != nil {
		fail("invalid config path", err)
	}

	st := openReadOnlyStore(dir)
	defer st.Close()

	err = st.ScanDependents(cmd.Context(), p, func(dependent configpath.Path) error {
		fmt.Fprintln(cmd.OutOrStdout(), dependent)
		return nil
	})
	if err != nil {
		fail("scan dependents", err)
	}
}

// runQueryLs prints the built configs under args[1] (the database root
// when omitted), one per line.
func runQueryLs(cmd *cobra.Command, args []string) {
	dir := args[0]
	subdir := ""
	if len(args) > 1 {
		subdir = args[1]
	}

	st := openReadOnlyStore(dir)
	defer st.Close()

	configs, err := st.ListConfigs(cmd.Context(), subdir, lsRecursive)
	if err != nil {
		fail("list configs", err)
	}
	for _, p := range configs {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
}
