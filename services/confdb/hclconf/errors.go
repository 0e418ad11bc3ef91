// Copyright (C) 2026 BoxOps Systems (oss@boxops.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package hclconf

import (
	"fmt"

	"github.com/boxops/confdb/services/confdb/configpath"
)

// MissingEntryPointError is returned when a config definition does not
// declare the required export block.
type MissingEntryPointError struct {
	// Path is the config that lacks the entry point.
	Path configpath.Path
}

// Error implements the error interface.
func (e *MissingEntryPointError) Error() string {
	return fmt.Sprintf("config %s does not define an export block", e.Path)
}

// EvaluationError is returned when evaluating a config definition fails:
// parse errors, expression diagnostics, unreadable or cyclic imports.
type EvaluationError struct {
	// Path is the config whose evaluation failed.
	Path configpath.Path

	// Err is the underlying failure, typically hcl.Diagnostics.
	Err error
}

// Error implements the error interface.
func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate config %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *EvaluationError) Unwrap() error {
	return e.Err
}
