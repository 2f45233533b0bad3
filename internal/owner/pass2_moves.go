// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package owner

import (
	"github.com/meftunca/vex/internal/ast"
	"github.com/meftunca/vex/internal/diag"
	"github.com/meftunca/vex/internal/types"
)

// checkMoves implements pass O2: a forward data-flow analysis
// over the Moved ⊆ Place lattice, merge = union, with fixed-point iteration
// over while-loop back edges. Termination is guaranteed because Moved can only grow and the
// function has finitely many places worth tracking.
func checkMoves(sink *diag.Sink, fn *ast.Function) {
	moveBlock(sink, fn.Body, newMovedSet(), true)
}

// moveBlock analyzes block starting from moved, reporting diagnostics to
// sink only when report is true, and returns the moved-set after the block
// (the forward-flow exit state callers merge at join points).
func moveBlock(sink *diag.Sink, block *ast.Block, moved movedSet, report bool) movedSet {
	if block == nil {
		return moved
	}
	for _, stmt := range block.Stmts {
		moved = moveStmt(sink, stmt, moved, report)
	}
	return moved
}

func moveStmt(sink *diag.Sink, stmt ast.Stmt, moved movedSet, report bool) movedSet {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		moved = moveExpr(sink, s.Value, moved, report)
		lp := &ast.Place{Root: s.Local}
		moved.reinit(lp)
		return moved

	case *ast.AssignStmt:
		moved = moveExpr(sink, s.Value, moved, report)
		moved.reinit(s.Place)
		return moved

	case *ast.ExprStmt:
		return moveExpr(sink, s.Value, moved, report)

	case *ast.ReturnStmt:
		if s.Value != nil {
			moved = moveExpr(sink, s.Value, moved, report)
		}
		return moved

	case *ast.DeferStmt:
		return moveExpr(sink, s.Call, moved, report)

	case *ast.IfStmt:
		moved = moveExpr(sink, s.Cond, moved, report)
		thenOut := moveBlock(sink, s.Then, moved.clone(), report)
		elseOut := moveBlock(sink, s.Else, moved.clone(), report)
		return union(thenOut, elseOut)

	case *ast.WhileStmt:
		// Dry-run to a fixed point first (no diagnostics), then a final
		// reporting pass using the converged entry set, so loop-carried
		// moves are visible on the very first statement of the body
		// without double-reporting every iteration of the fixed point
		// search itself.
		fixed := moved.clone()
		for {
			next := moveExpr(sink, s.Cond, fixed.clone(), false)
			next = moveBlock(sink, s.Body, next, false)
			merged := union(fixed, next)
			if equalSets(merged, fixed) {
				break
			}
			fixed = merged
		}
		if report {
			reportMoved := moveExpr(sink, s.Cond, fixed.clone(), true)
			moveBlock(sink, s.Body, reportMoved, true)
		}
		// After the loop, the place may or may not have run at all, so
		// the conservative exit state is the fixed point (loop executed
		// zero or more times).
		return fixed

	case *ast.MatchStmt:
		moved = moveExpr(sink, s.Scrutinee, moved, report)
		var merged movedSet
		first := true
		for _, arm := range s.Arms {
			armIn := moved.clone()
			bindPatternMoves(arm.Pattern, s.Scrutinee, &armIn)
			armOut := moveBlock(sink, arm.Body, armIn, report)
			if first {
				merged = armOut
				first = false
			} else {
				merged = union(merged, armOut)
			}
		}
		if first {
			return moved
		}
		return merged

	default:
		return moved
	}
}

// bindPatternMoves records that binding-by-value patterns move from the
// scrutinee along their bound subpath.
func bindPatternMoves(pat ast.Pattern, scrutinee ast.Expr, moved *movedSet) {
	root := placeOf(scrutinee)
	var walk func(ast.Pattern, *ast.Place)
	walk = func(p ast.Pattern, path *ast.Place) {
		switch pt := p.(type) {
		case *ast.BindingPattern:
			if !pt.ByRef && path != nil && !types.IsCopy(pt.Local.Type) {
				moved.add(MoveRecord{Place: path, Span: pt.Local.Span, Reason: "bound by value in match pattern"})
			}
		case *ast.TuplePattern:
			if path == nil {
				return
			}
			for i, item := range pt.Items {
				walk(item, extend(path, ast.PlaceStep{Kind: ast.StepField, FieldName: indexFieldName(i)}))
			}
		case *ast.StructPattern:
			if path == nil {
				return
			}
			for name, fp := range pt.Fields {
				walk(fp, extend(path, ast.PlaceStep{Kind: ast.StepField, FieldName: name}))
			}
		case *ast.VariantPattern:
			if path == nil {
				return
			}
			for i, fp := range pt.Payload {
				walk(fp, extend(path, ast.PlaceStep{Kind: ast.StepField, FieldName: indexFieldName(i)}))
			}
		}
	}
	walk(pat, root)
}

func indexFieldName(i int) string {
	const digits = "0123456789"
	if i < 10 {
		return string(digits[i])
	}
	return "_"
}

func extend(p *ast.Place, step ast.PlaceStep) *ast.Place {
	steps := make([]ast.PlaceStep, len(p.Steps)+1)
	copy(steps, p.Steps)
	steps[len(p.Steps)] = step
	return &ast.Place{Root: p.Root, Steps: steps}
}

// placeOf returns the Place e denotes, or nil if e is not a place
// expression (e.g. a literal or a call result, which cannot be the target
// of a binding-by-value pattern's source path).
func placeOf(e ast.Expr) *ast.Place {
	if pe, ok := e.(*ast.PlaceExpr); ok {
		return pe.P
	}
	return nil
}

// moveExpr evaluates e left-to-right, recording moves of r-value place
// reads of non-Copy type, and returns the moved-set afterward. Function
// calls move their by-value arguments.
func moveExpr(sink *diag.Sink, e ast.Expr, moved movedSet, report bool) movedSet {
	if e == nil {
		return moved
	}
	switch ex := e.(type) {
	case *ast.PlaceExpr:
		if ex.Access == ast.AccessValue {
			if prefix, isMoved := moved.anyPrefixMoved(ex.P); isMoved {
				if report {
					sink.Report(diag.Diagnostic{
						Severity: diag.Error,
						Kind:     diag.KindUseAfterMove,
						Primary:  ex.SpanPos,
						Message:  "use of moved value: " + ex.P.String(),
						Secondary: []diag.Secondary{{
							Span: prefix.Span,
							Note: "moved via " + prefix.Place.String(),
						}},
					})
				}
			} else if !types.IsCopy(ex.Ty) {
				moved.add(MoveRecord{Place: ex.P, Span: ex.SpanPos, Reason: "moved by value read"})
			}
		}
		return moved

	case *ast.BorrowExpr:
		// Taking a reference never moves; O3 governs borrow legality.
		return moved

	case *ast.CallExpr:
		if ex.Receiver != nil {
			moved = moveExpr(sink, ex.Receiver.Value, moved, report)
			if !ex.Receiver.ByRef {
				if p := placeOf(ex.Receiver.Value); p != nil {
					moved.add(MoveRecord{Place: p, Span: ex.Receiver.Value.Span(), Reason: "moved into call receiver"})
				}
			}
		}
		for _, arg := range ex.Args {
			moved = moveExpr(sink, arg.Value, moved, report)
			if !arg.ByRef {
				if p := placeOf(arg.Value); p != nil {
					moved.add(MoveRecord{Place: p, Span: arg.Value.Span(), Reason: "moved into call argument"})
				}
			}
		}
		return moved

	case *ast.ClosureExpr:
		for _, cap := range ex.Captures {
			if cap.ByMove {
				moved.add(MoveRecord{Place: cap.Place, Span: ex.SpanPos, Reason: "moved into closure capture"})
			}
		}
		return moved

	default:
		for _, child := range subExprs(e) {
			moved = moveExpr(sink, child, moved, report)
		}
		return moved
	}
}
