// Copyright (C) 2026 BoxOps Systems (oss@boxops.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import "fmt"

// StorageError wraps an engine failure (open, read, write, or scan) with the
// operation that triggered it. The engine's native message is preserved via
// the wrapped error.
type StorageError struct {
	// Op names the failed operation, e.g. "open", "put edge", "scan dependents".
	Op string

	// Err is the engine's native error.
	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

// Unwrap returns the engine's native error for errors.Is/As support.
func (e *StorageError) Unwrap() error {
	return e.Err
}
