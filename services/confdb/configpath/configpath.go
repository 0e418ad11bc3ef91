// Copyright (C) 2026 BoxOps Systems (oss@boxops.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package configpath defines the canonical identifier for configuration
// definitions and the validation rules that make those identifiers safe to
// embed in engine keys.
//
// A config path is a slash-separated, relative identifier such as
// "services/web/frontend.hcl". The charset deliberately excludes the NUL
// byte, which the store uses as its key field separator, so encoded paths
// never need escaping.
//
// Normalization is purely lexical: it collapses "." and ".." segments and
// repeated separators without ever touching the filesystem.
//
// # Thread Safety
//
// Path is an immutable value type and is safe to share between goroutines.
package configpath

import (
	"path"
	"regexp"
	"strings"
)

const (
	// MaxComponentLen is the maximum size of a single path component in bytes.
	MaxComponentLen = 255

	// MaxPathLen is the maximum size of a full canonical path in bytes.
	// One byte of the traditional 4096-byte limit is reserved for an
	// implicit terminator.
	MaxPathLen = 4095
)

// componentPattern matches a single valid path component.
var componentPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Path is a canonical config path. The zero value is invalid; construct
// values with Canonicalize.
type Path struct {
	s string
}

// String returns the canonical slash-separated form.
func (p Path) String() string {
	return p.s
}

// IsZero reports whether p is the invalid zero value.
func (p Path) IsZero() bool {
	return p.s == ""
}

// InDir reports whether p resides under the directory named by dir
// (p itself is not "in" dir when they are equal).
func (p Path) InDir(dir Path) bool {
	return strings.HasPrefix(p.s, dir.s+"/")
}

// Canonicalize validates and normalizes a raw path string into a canonical
// config Path.
//
// Validation fails with *InvalidPathError when:
//   - the input is empty
//   - the input begins with '-'
//   - the normalized path is absolute or still contains "." or ".." segments
//   - any component contains a byte outside [A-Za-z0-9._-]
//   - any component exceeds MaxComponentLen bytes
//   - the normalized path exceeds MaxPathLen bytes
//
// Canonicalize is idempotent: feeding the String of a canonical Path back
// in yields the same Path.
func Canonicalize(raw string) (Path, error) {
	if raw == "" {
		return Path{}, &InvalidPathError{Raw: raw, Rule: "path must not be empty"}
	}
	if raw[0] == '-' {
		return Path{}, &InvalidPathError{Raw: raw, Rule: "path must not start with a hyphen"}
	}

	clean := path.Clean(raw)
	if path.IsAbs(clean) {
		return Path{}, &InvalidPathError{Raw: raw, Rule: "path must be relative"}
	}
	if len(clean) > MaxPathLen {
		return Path{}, &InvalidPathError{
			Raw:  raw,
			Rule: "path exceeds maximum length of 4095 bytes",
		}
	}

	for _, component := range strings.Split(clean, "/") {
		if component == "." || component == ".." {
			return Path{}, &InvalidPathError{
				Raw:       raw,
				Component: component,
				Rule:      "path must not contain '.' or '..' segments",
			}
		}
		if !componentPattern.MatchString(component) {
			return Path{}, &InvalidPathError{
				Raw:       raw,
				Component: component,
				Rule:      "components may only contain alphanumeric characters, dots, underscores, and hyphens",
			}
		}
		if len(component) > MaxComponentLen {
			return Path{}, &InvalidPathError{
				Raw:       raw,
				Component: component,
				Rule:      "component exceeds maximum length of 255 bytes",
			}
		}
	}

	return Path{s: clean}, nil
}
