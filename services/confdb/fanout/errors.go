// Copyright (C) 2026 BoxOps Systems (oss@boxops.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package fanout

import "fmt"

// MalformedInputError is returned when a line of the modified-files input is
// not a JSON array of path strings. The line number identifies the offender.
type MalformedInputError struct {
	// Line is the 1-based input line number.
	Line int

	// Err is the underlying decode or path validation failure.
	Err error
}

// Error implements the error interface.
func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("modified-files input line %d: expected a JSON array of path strings: %v", e.Line, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *MalformedInputError) Unwrap() error {
	return e.Err
}
