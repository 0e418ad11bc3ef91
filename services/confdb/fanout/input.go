// Copyright (C) 2026 BoxOps Systems (oss@boxops.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package fanout

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/boxops/confdb/services/confdb/configpath"
)

// maxInputLine bounds a single input line. Generous: a line may carry many
// 4 KiB paths.
const maxInputLine = 16 * 1024 * 1024

// ReadModified parses the modified-files input format: one JSON array of
// path strings per non-blank line. Blank lines are skipped. Any other JSON
// shape, or a path failing canonicalization, is fatal and reported as a
// *MalformedInputError naming the offending line.
func ReadModified(r io.Reader) ([]configpath.Path, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxInputLine)

	var out []configpath.Path
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var decoded any
		if err := json.Unmarshal([]byte(line), &decoded); err != nil {
			return nil, &MalformedInputError{Line: lineno, Err: err}
		}
		arr, ok := decoded.([]any)
		if !ok {
			return nil, &MalformedInputError{Line: lineno, Err: fmt.Errorf("got %T", decoded)}
		}
		for _, item := range arr {
			raw, ok := item.(string)
			if !ok {
				return nil, &MalformedInputError{Line: lineno, Err: fmt.Errorf("array element is %T, not a string", item)}
			}
			p, err := configpath.Canonicalize(raw)
			if err != nil {
				return nil, &MalformedInputError{Line: lineno, Err: err}
			}
			out = append(out, p)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read modified-files input: %w", err)
	}
	return out, nil
}
