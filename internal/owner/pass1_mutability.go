// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package owner

import (
	"github.com/meftunca/vex/internal/ast"
	"github.com/meftunca/vex/internal/diag"
	"github.com/meftunca/vex/internal/types"
)

// checkMutability implements pass O1: every assignment and
// every exclusive borrow must root at a local declared mutable. Struct
// field writes through a shared reference are rejected; writes through an
// exclusive reference are allowed. Reassignment of a shared local is
// rejected even when the types match.
func checkMutability(sink *diag.Sink, fn *ast.Function) {
	check := func(p *ast.Place, span diag.Span, verb string) {
		if p.Root == nil {
			return
		}
		// Field access (and any explicit dereference) through a reference
		// auto-derefs: a path like `r.field` carries no StepDeref at all,
		// it is simply Root=r (a Reference-typed local) followed by a
		// StepField. So the path's legality is governed by whatever
		// reference type it crosses, not by the root local's own
		// DeclaredMutable flag, the moment it crosses one.
		if blocked, crossedRef := writeCrossesReference(p); crossedRef {
			if blocked {
				sink.Errorf(diag.KindAssignToShared, span,
					"cannot %s %q: written through a shared reference", verb, p.String())
			}
			return
		}
		if !p.Root.DeclaredMutable {
			sink.Errorf(diag.KindAssignToShared, span,
				"cannot %s %q: declared without `mut`", verb, p.String())
		}
	}

	forEachStmt(fn.Body, func(stmt ast.Stmt) {
		if as, ok := stmt.(*ast.AssignStmt); ok {
			check(as.Place, as.SpanPos, "assign to")
		}
		for _, e := range stmtExprs(stmt) {
			forEachExpr(e, func(ex ast.Expr) {
				if b, ok := ex.(*ast.BorrowExpr); ok && b.Exclusive {
					check(b.Place, b.SpanPos, "exclusively borrow")
				}
			})
		}
	})
}

// writeCrossesReference walks p's root type through every step, watching
// for the point (field access or explicit deref) where the path passes
// through a Reference type. crossedRef reports whether the path ever does
// so; blocked reports whether any reference crossed along the way was
// Shared — sticky once true, since one shared hop anywhere in the chain
// makes the whole write illegal regardless of what follows it (spec
// §4.2.1).
func writeCrossesReference(p *ast.Place) (blocked, crossedRef bool) {
	cur := p.Root.Type
	for _, step := range p.Steps {
		switch step.Kind {
		case ast.StepField:
			if cur != nil && cur.Kind == types.Reference {
				crossedRef = true
				if cur.Mut == types.Shared {
					blocked = true
				}
			}
			cur = step.FieldType

		case ast.StepDeref:
			if cur != nil && cur.Kind == types.Reference {
				crossedRef = true
				if cur.Mut == types.Shared {
					blocked = true
				}
				cur = cur.Inner
			} else if cur != nil && cur.Kind == types.RawPointer {
				cur = cur.Inner
			}

		case ast.StepIndex:
			if cur != nil && cur.Kind == types.Reference {
				crossedRef = true
				if cur.Mut == types.Shared {
					blocked = true
				}
				cur = cur.Inner
			}
			if cur != nil {
				cur = cur.Inner
			}
		}
	}
	return blocked, crossedRef
}
