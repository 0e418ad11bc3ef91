// Copyright (C) 2026 BoxOps Systems (oss@boxops.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package configpath

import "fmt"

// InvalidPathError is returned by Canonicalize when a raw path violates one
// of the config path invariants. Component is empty when the violation is a
// whole-path rule (empty input, leading hyphen, length, absolute path).
type InvalidPathError struct {
	// Raw is the input as given by the caller.
	Raw string

	// Component is the offending path component, if the violated rule is
	// component-scoped.
	Component string

	// Rule describes the violated rule in human terms.
	Rule string
}

// Error implements the error interface.
func (e *InvalidPathError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("invalid config path %q: component %q: %s", e.Raw, e.Component, e.Rule)
	}
	return fmt.Sprintf("invalid config path %q: %s", e.Raw, e.Rule)
}
