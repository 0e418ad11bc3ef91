// Copyright (C) 2026 BoxOps Systems (oss@boxops.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import "github.com/boxops/confdb/services/confdb/configpath"

// Key layout. Each index lives under its own namespace tag so additional
// indexes can share the keyspace later. Fields are joined with NUL, which
// the config path charset excludes, so no escaping is needed anywhere.
//
//	rdeps   \0 <dependency> \0 <dependent>   (presence record, empty value)
//	configs \0 <path>                        (presence record, empty value)
const (
	nsRDeps   = "rdeps"
	nsConfigs = "configs"
	sep       = "\x00"
)

// edgeKey encodes one directed (dependency -> dependent) edge.
func edgeKey(dependency, dependent configpath.Path) []byte {
	return []byte(nsRDeps + sep + dependency.String() + sep + dependent.String())
}

// edgePrefix is the scan prefix matching every dependent of dependency.
func edgePrefix(dependency configpath.Path) []byte {
	return []byte(nsRDeps + sep + dependency.String() + sep)
}

// configKey encodes one known-config record.
func configKey(p configpath.Path) []byte {
	return []byte(nsConfigs + sep + p.String())
}

// configPrefix is the scan prefix matching every known config.
func configPrefix() []byte {
	return []byte(nsConfigs + sep)
}
