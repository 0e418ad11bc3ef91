// Copyright (C) 2026 BoxOps Systems (oss@boxops.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	logLevelName string
	logJSON      bool
	logQuiet     bool
	configRoot   string // CLI override for the configuration root directory

	buildDBDir string
	buildJSON  bool
	buildWatch bool

	lsRecursive bool

	fanoutDBDir    string
	fanoutModified string

	rootCmd = &cobra.Command{
		Use:   "confdb",
		Short: "A cli to build configuration files and track their dependency graph",
		Long: `confdb evaluates HCL configuration files into JSON or binary
				artifacts and records which configs import which, so that a
				change to one file can be mapped to everything it impacts.`,
	}

	// --- Database Administration ---
	dbCmd = &cobra.Command{
		Use:   "db",
		Short: "Administer a dependency-graph database",
	}
	dbCreateCmd = &cobra.Command{
		Use:   "create [dir]",
		Short: "Create an empty database at the given directory",
		Args:  cobra.ExactArgs(1),
		Run:   runDBCreate, // Defined in cmd_db.go
	}
	dbBackupCmd = &cobra.Command{
		Use:   "backup [dir] [snapshot-file]",
		Short: "Write a compressed snapshot of the database to a file",
		Args:  cobra.ExactArgs(2),
		Run:   runDBBackup, // Defined in cmd_db.go
	}
	dbRestoreCmd = &cobra.Command{
		Use:   "restore [snapshot-file] [dir]",
		Short: "Materialize a new database from a snapshot file",
		Args:  cobra.ExactArgs(2),
		Run:   runDBRestore, // Defined in cmd_db.go
	}

	// --- Build ---
	buildCmd = &cobra.Command{
		Use:   "build [config-file] [out-dir]",
		Short: "Evaluate a config file and write its output artifact",
		Long: `Evaluates the export block of the given config file and writes
				the result under out-dir, mirroring the config's path relative
				to the configuration root. With --db, every import discovered
				during evaluation is recorded as a dependency edge.`,
		Args: cobra.ExactArgs(2),
		Run:  runBuild, // Defined in cmd_build.go
	}

	// --- Queries ---
	queryCmd = &cobra.Command{
		Use:   "query",
		Short: "Read the dependency graph",
	}
	queryRDepsCmd = &cobra.Command{
		Use:   "rdeps [db-dir] [config-file]",
		Short: "List the configs that directly depend on the given config",
		Args:  cobra.ExactArgs(2),
		Run:   runQueryRDeps, // Defined in cmd_query.go
	}
	queryLsCmd = &cobra.Command{
		Use:   "ls [db-dir] [path]",
		Short: "List built configs under a directory",
		Args:  cobra.RangeArgs(1, 2),
		Run:   runQueryLs, // Defined in cmd_query.go
	}

	// --- Fanout ---
	fanoutCmd = &cobra.Command{
		Use:   "fanout",
		Short: "Compute every config transitively impacted by a set of modified files",
		Long: `Reads modified file lists (one JSON array of paths per line,
				from a file or stdin with -) and prints the full transitive
				set of configs that depend on any of them.`,
		Run: runFanout, // Defined in cmd_fanout.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelName, "log-level", "",
		"Minimum log level: debug, info, warn, or error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false,
		"Emit logs as JSON instead of text")
	rootCmd.PersistentFlags().BoolVar(&logQuiet, "quiet", false,
		"Suppress log output on stderr")
	rootCmd.PersistentFlags().StringVar(&configRoot, "config-root", "",
		"Configuration root directory (also CONFDB_CONFIG_ROOT)")

	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbCreateCmd)
	dbCmd.AddCommand(dbBackupCmd)
	dbCmd.AddCommand(dbRestoreCmd)

	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVar(&buildDBDir, "db", "",
		"Database directory to record discovered dependencies into")
	buildCmd.Flags().BoolVar(&buildJSON, "json", false,
		"Write the output artifact as JSON instead of binary")
	buildCmd.Flags().BoolVar(&buildWatch, "watch", false,
		"Keep running and rebuild when the config or its dependencies change")

	rootCmd.AddCommand(queryCmd)
	queryCmd.AddCommand(queryRDepsCmd)
	queryCmd.AddCommand(queryLsCmd)
	queryLsCmd.Flags().BoolVarP(&lsRecursive, "recursive", "r", false,
		"Include configs in subdirectories")

	rootCmd.AddCommand(fanoutCmd)
	fanoutCmd.Flags().StringVar(&fanoutDBDir, "db", "",
		"Database directory holding the dependency graph")
	fanoutCmd.Flags().StringVar(&fanoutModified, "modified-files", "-",
		"File with one JSON array of modified paths per line, or - for stdin")
	fanoutCmd.MarkFlagRequired("db")
}
