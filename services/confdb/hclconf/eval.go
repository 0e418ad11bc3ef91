// Copyright (C) 2026 BoxOps Systems (oss@boxops.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package hclconf evaluates HCL config definitions and records, by
// interception rather than by observing ambient state, every other config
// definition an evaluation touches.
//
// A config definition is an HCL file under the configuration root whose
// entry point is a single top-level export block:
//
//	export {
//	  replicas = 3
//	  image    = import("shared/images.hcl").web
//	  motd     = file("../assets/motd.txt")
//	}
//
// import("rel/path.hcl") evaluates another config (memoized within one
// evaluator) and returns its export object; every import call is recorded as
// a dependency, including calls that hit the memo cache, so the recorded set
// does not depend on evaluation order. file("path") embeds raw file contents
// and is deliberately NOT recorded: only config definitions participate in
// the dependency graph.
//
// # Thread Safety
//
// An Evaluator is single-use, single-goroutine state for one build; create a
// fresh one per target.
package hclconf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/boxops/confdb/services/confdb/configpath"
)

// configSchema admits the export entry point; other top-level content is
// tolerated and ignored.
var configSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "export"},
	},
}

// Result is the outcome of one successful target evaluation.
type Result struct {
	// Value is the evaluated export object.
	Value cty.Value

	// Imports is the complete set of config definitions the evaluation
	// touched, directly or transitively, excluding the target itself.
	// Sorted lexically.
	Imports []configpath.Path
}

// Evaluator evaluates config definitions rooted at a configuration root
// directory.
type Evaluator struct {
	root    string
	parser  *hclparse.Parser
	cache   map[string]cty.Value
	imports map[string]configpath.Path
	stack   []string
}

// NewEvaluator creates an evaluator for config definitions under root.
func NewEvaluator(root string) *Evaluator {
	return &Evaluator{
		root:    root,
		parser:  hclparse.NewParser(),
		cache:   make(map[string]cty.Value),
		imports: make(map[string]configpath.Path),
	}
}

// EvaluateTarget evaluates one config target.
//
// Fails with *MissingEntryPointError when the target lacks an export block,
// or *EvaluationError for any other failure (parse errors, expression
// diagnostics, missing or cyclic imports). On failure no partial Result is
// returned; callers must not record any edges for the target.
func (e *Evaluator) EvaluateTarget(target configpath.Path) (*Result, error) {
	target, err := configpath.Canonicalize(target.String())
	if err != nil {
		return nil, err
	}

	val, err := e.evaluateFile(target)
	if err != nil {
		return nil, err
	}

	imports := make([]configpath.Path, 0, len(e.imports))
	for key, p := range e.imports {
		if key == target.String() {
			continue
		}
		imports = append(imports, p)
	}
	sort.Slice(imports, func(i, j int) bool {
		return imports[i].String() < imports[j].String()
	})

	return &Result{Value: val, Imports: imports}, nil
}

// evaluateFile parses and evaluates the config at p, with cycle detection
// against the active evaluation chain.
func (e *Evaluator) evaluateFile(p configpath.Path) (cty.Value, error) {
	for _, active := range e.stack {
		if active == p.String() {
			return cty.NilVal, &EvaluationError{
				Path: p,
				Err:  fmt.Errorf("import cycle: %v -> %s", e.stack, p),
			}
		}
	}
	e.stack = append(e.stack, p.String())
	defer func() { e.stack = e.stack[:len(e.stack)-1] }()

	filename := filepath.Join(e.root, filepath.FromSlash(p.String()))
	file, diags := e.parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return cty.NilVal, &EvaluationError{Path: p, Err: diags}
	}

	content, _, _ := file.Body.PartialContent(configSchema)
	blocks := content.Blocks.OfType("export")
	switch len(blocks) {
	case 0:
		return cty.NilVal, &MissingEntryPointError{Path: p}
	case 1:
	default:
		return cty.NilVal, &EvaluationError{
			Path: p,
			Err:  fmt.Errorf("multiple export blocks (%d)", len(blocks)),
		}
	}

	attrs, diags := blocks[0].Body.JustAttributes()
	if diags.HasErrors() {
		return cty.NilVal, &EvaluationError{Path: p, Err: diags}
	}

	evalCtx := &hcl.EvalContext{
		Functions: map[string]function.Function{
			"import": e.importFunc(),
			"file":   e.fileFunc(),
		},
	}

	values := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return cty.NilVal, &EvaluationError{Path: p, Err: diags}
		}
		values[name] = val
	}
	if len(values) == 0 {
		return cty.EmptyObjectVal, nil
	}
	return cty.ObjectVal(values), nil
}

// importFunc returns the import(path) function: evaluate another config and
// return its export object, recording the dependency.
func (e *Evaluator) importFunc() function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "path", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			p, err := configpath.Canonicalize(args[0].AsString())
			if err != nil {
				return cty.NilVal, err
			}

			// Record before consulting the cache: a dependency shared with
			// an earlier import in the same build must still be observed.
			e.imports[p.String()] = p

			if val, ok := e.cache[p.String()]; ok {
				return val, nil
			}
			val, err := e.evaluateFile(p)
			if err != nil {
				return cty.NilVal, err
			}
			e.cache[p.String()] = val
			return val, nil
		},
	})
}

// fileFunc returns the file(path) function: embed raw file contents as a
// string. Relative paths resolve against the configuration root and may
// escape it; files read this way are not config dependencies.
func (e *Evaluator) fileFunc() function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "path", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			name := args[0].AsString()
			if !filepath.IsAbs(name) {
				name = filepath.Join(e.root, filepath.FromSlash(name))
			}
			data, err := os.ReadFile(name)
			if err != nil {
				return cty.NilVal, err
			}
			return cty.StringVal(string(data)), nil
		},
	})
}
