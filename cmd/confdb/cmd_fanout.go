// Copyright (C) 2026 BoxOps Systems (oss@boxops.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/boxops/confdb/services/confdb/fanout"
)

// runFanout reads modified file lists and prints the transitive set of
// impacted configs, one per line, sorted. The modified files themselves
// are not echoed back.
func runFanout(cmd *cobra.Command, args []string) {
	var in io.Reader = os.Stdin
	if fanoutModified != "-" {
		f, err := os.Open(fanoutModified)
		if err != nil {
			fail("open modified-files input", err)
		}
		defer f.Close()
		in = f
	}

	modified, err := fanout.ReadModified(in)
	if err != nil {
		fail("parse modified-files input", err)
	}

	st := openReadOnlyStore(fanoutDBDir)
	defer st.Close()

	impacted, err := fanout.NewResolver(st).Fanout(cmd.Context(), modified)
	if err != nil {
		fail("resolve fanout", err)
	}

	logger.Info("fanout resolved", "modified", len(modified), "impacted", len(impacted))
	for _, p := range impacted {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
}
