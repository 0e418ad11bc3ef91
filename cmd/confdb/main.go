// Copyright (C) 2026 BoxOps Systems (oss@boxops.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/boxops/confdb/pkg/logging"
)

// defaultsFile is an optional per-checkout settings file read from the
// working directory. Flags and environment variables override it.
const defaultsFile = ".confdb.yaml"

// fileDefaults mirrors the keys accepted in .confdb.yaml.
type fileDefaults struct {
	LogLevel   string `yaml:"log_level"`
	LogJSON    bool   `yaml:"log_json"`
	ConfigRoot string `yaml:"config_root"`
}

var (
	defaults fileDefaults
	logger   *logging.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if data, err := os.ReadFile(defaultsFile); err == nil {
			// A malformed defaults file is ignored rather than fatal;
			// the CLI must stay usable from any directory.
			_ = yaml.Unmarshal(data, &defaults)
		}

		if !cmd.Flags().Changed("log-level") && defaults.LogLevel != "" {
			logLevelName = defaults.LogLevel
		}
		if !cmd.Flags().Changed("log-json") && defaults.LogJSON {
			logJSON = true
		}

		level, err := logging.ParseLevel(logLevelName)
		logger = logging.New(logging.Config{
			Level:   level,
			Service: "confdb",
			JSON:    logJSON,
			Quiet:   logQuiet,
		})
		if err != nil {
			logger.Warn("invalid --log-level, using info", "value", logLevelName)
		}
	}
}

// resolveConfigRoot applies the precedence chain for the configuration
// root: --config-root flag, CONFDB_CONFIG_ROOT, .confdb.yaml, then the
// working directory.
func resolveConfigRoot(cmd *cobra.Command) string {
	if cmd.Flags().Changed("config-root") && configRoot != "" {
		return configRoot
	}
	if env := os.Getenv("CONFDB_CONFIG_ROOT"); env != "" {
		return env
	}
	if defaults.ConfigRoot != "" {
		return defaults.ConfigRoot
	}
	return "."
}

// fail logs the error and terminates with a non-zero exit code.
func fail(msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
