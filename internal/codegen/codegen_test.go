// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meftunca/vex/internal/ast"
	"github.com/meftunca/vex/internal/diag"
	"github.com/meftunca/vex/internal/ir"
	"github.com/meftunca/vex/internal/types"
)

func span(n int) diag.Span { return diag.Span{File: "codegen_test.vx", Offset: n, Length: 1} }

var i32Ty = &types.Type{Kind: types.Primitive, Prim: types.I32}
var unitTy = &types.Type{Kind: types.Unit}

func printCall(arg int64, at int) *ast.CallExpr {
	sig := &types.FunctionSig{Params: []*types.Type{i32Ty}, Result: unitTy}
	return &ast.CallExpr{
		ExprBase:  ast.ExprBase{Ty: unitTy, SpanPos: span(at)},
		Callee:    100,
		CalleeSig: sig,
		Args:      []ast.CallArg{{Value: &ast.LitExpr{ExprBase: ast.ExprBase{Ty: i32Ty, SpanPos: span(at)}, Kind: ast.LitInt, Int: arg}}},
	}
}

// TestDeferRunsInLIFOOrder lowers spec §8 seed test 4 — `fn f() { defer
// print(1); defer print(2); print(0); }` — and checks the emitted call
// sequence is 0, 2, 1: the immediate call first, then the deferred calls
// in last-in-first-out order at the function's single exit.
func TestDeferRunsInLIFOOrder(t *testing.T) {
	fn := &ast.Function{
		Name: "f",
		Sig:  &types.FunctionSig{Result: unitTy},
		Body: &ast.Block{
			SpanPos: span(0),
			Stmts: []ast.Stmt{
				&ast.DeferStmt{Call: printCall(1, 1), SpanPos: span(1)},
				&ast.DeferStmt{Call: printCall(2, 2), SpanPos: span(2)},
				&ast.ExprStmt{Value: printCall(0, 3), SpanPos: span(3)},
			},
		},
	}

	g := New(&diag.Sink{}, LookupArch("amd64"))
	out := g.LowerFunction(fn)

	var calledWith []int64
	for _, blk := range out.Blocks {
		for _, v := range blk.Values {
			if v.Op == ir.OpCall {
				calledWith = append(calledWith, v.Args[0].Const.(int64))
			}
		}
	}
	require.Equal(t, []int64{0, 2, 1}, calledWith)
}

// TestEmptyFunctionTerminatesEveryBlock verifies every block the lowering
// of a trivial function produces ends in a terminator — spec §4.4's
// Block invariant ("exactly one terminator").
func TestEmptyFunctionTerminatesEveryBlock(t *testing.T) {
	fn := &ast.Function{
		Name: "noop",
		Sig:  &types.FunctionSig{Result: unitTy},
		Body: &ast.Block{SpanPos: span(0)},
	}
	g := New(&diag.Sink{}, LookupArch("amd64"))
	out := g.LowerFunction(fn)
	for _, blk := range out.Blocks {
		require.NotNil(t, blk.Term, "block %s has no terminator", blk.Name)
	}
}

// TestClosureReceiverIsByValueForMoveClosure checks a move-closure's
// generated call operator takes $self by value, not by reference — spec
// §4.4 "Closures": "... or by value (for move-closures)."
func TestClosureReceiverIsByValueForMoveClosure(t *testing.T) {
	capturedTy := &types.Type{Kind: types.Struct, DefID: 42}
	captured := &types.Local{Name: "c", Type: capturedTy}
	v := &ast.ClosureExpr{
		ExprBase: ast.ExprBase{Ty: &types.Type{Kind: types.Function, Result: unitTy}, SpanPos: span(0)},
		IsMove:   true,
		Captures: []ast.ClosureCapture{{Place: &ast.Place{Root: captured}, ByMove: true}},
		Body:     &ast.Block{SpanPos: span(0)},
	}

	fn := lowerClosureBody(New(&diag.Sink{}, LookupArch("amd64")), "$closure1", v)
	require.Len(t, fn.Params, 1)
	recvTy := fn.Params[0].Type
	require.Equal(t, types.Struct, recvTy.Kind, "move-closure receiver must be the capture struct by value, not a reference to it")
}

// TestClosureReceiverMutabilityFollowsCaptureAccess checks a non-move
// closure's receiver is an exclusive reference iff some capture needs
// exclusive access, and a shared reference otherwise.
func TestClosureReceiverMutabilityFollowsCaptureAccess(t *testing.T) {
	capturedTy := &types.Type{Kind: types.Struct, DefID: 42}
	sharedCapture := &types.Local{Name: "s", Type: capturedTy}
	exclusiveCapture := &types.Local{Name: "e", Type: capturedTy}

	sharedOnly := &ast.ClosureExpr{
		ExprBase: ast.ExprBase{Ty: &types.Type{Kind: types.Function, Result: unitTy}, SpanPos: span(0)},
		Captures: []ast.ClosureCapture{{Place: &ast.Place{Root: sharedCapture}, Access: ast.AccessShared}},
		Body:     &ast.Block{SpanPos: span(0)},
	}
	fn := lowerClosureBody(New(&diag.Sink{}, LookupArch("amd64")), "$closure2", sharedOnly)
	require.Equal(t, types.Reference, fn.Params[0].Type.Kind)
	require.Equal(t, types.Shared, fn.Params[0].Type.Mut)

	withExclusive := &ast.ClosureExpr{
		ExprBase: ast.ExprBase{Ty: &types.Type{Kind: types.Function, Result: unitTy}, SpanPos: span(0)},
		Captures: []ast.ClosureCapture{
			{Place: &ast.Place{Root: sharedCapture}, Access: ast.AccessShared},
			{Place: &ast.Place{Root: exclusiveCapture}, Access: ast.AccessExclusive},
		},
		Body: &ast.Block{SpanPos: span(0)},
	}
	fn = lowerClosureBody(New(&diag.Sink{}, LookupArch("amd64")), "$closure3", withExclusive)
	require.Equal(t, types.Reference, fn.Params[0].Type.Kind)
	require.Equal(t, types.Exclusive, fn.Params[0].Type.Mut)
}

// TestConstantArrayIndexOutOfBoundsIsDiagnosed checks spec §4.4 "Failure
// semantics": "Bounds errors (array indexing with a constant out of range)
// emit a diagnostic and continue" — lowering the assignment must not panic,
// and the sink must carry a KindIndexOutOfBounds diagnostic.
func TestConstantArrayIndexOutOfBoundsIsDiagnosed(t *testing.T) {
	arrTy := &types.Type{Kind: types.Array, Len: 3, Inner: i32Ty}
	arr := &types.Local{Name: "arr", Type: arrTy}

	fn := &ast.Function{
		Name:   "f",
		Sig:    &types.FunctionSig{Result: unitTy},
		Params: []*ast.Param{{Local: arr, SpanPos: span(0)}},
		Body: &ast.Block{
			SpanPos: span(0),
			Stmts: []ast.Stmt{
				&ast.AssignStmt{
					Place:   &ast.Place{Root: arr, Steps: []ast.PlaceStep{{Kind: ast.StepIndex, FieldType: i32Ty, ConstIndex: 5}}},
					Value:   &ast.LitExpr{ExprBase: ast.ExprBase{Ty: i32Ty, SpanPos: span(1)}, Kind: ast.LitInt, Int: 1},
					SpanPos: span(1),
				},
			},
		},
	}

	sink := &diag.Sink{}
	g := New(sink, LookupArch("amd64"))
	require.NotPanics(t, func() { g.LowerFunction(fn) })

	var found bool
	for _, d := range sink.Diagnostics() {
		if d.Kind == diag.KindIndexOutOfBounds {
			found = true
			require.Equal(t, span(1), d.Primary)
		}
	}
	require.True(t, found, "expected an index-out-of-bounds diagnostic, got: %v", sink.Diagnostics())
}

// TestConstantArrayIndexInBoundsProducesNoDiagnostic is the flip side: a
// constant index within the array's static length must lower cleanly.
func TestConstantArrayIndexInBoundsProducesNoDiagnostic(t *testing.T) {
	arrTy := &types.Type{Kind: types.Array, Len: 3, Inner: i32Ty}
	arr := &types.Local{Name: "arr", Type: arrTy}

	fn := &ast.Function{
		Name:   "f",
		Sig:    &types.FunctionSig{Result: unitTy},
		Params: []*ast.Param{{Local: arr, SpanPos: span(0)}},
		Body: &ast.Block{
			SpanPos: span(0),
			Stmts: []ast.Stmt{
				&ast.AssignStmt{
					Place:   &ast.Place{Root: arr, Steps: []ast.PlaceStep{{Kind: ast.StepIndex, FieldType: i32Ty, ConstIndex: 1}}},
					Value:   &ast.LitExpr{ExprBase: ast.ExprBase{Ty: i32Ty, SpanPos: span(1)}, Kind: ast.LitInt, Int: 1},
					SpanPos: span(1),
				},
			},
		},
	}

	sink := &diag.Sink{}
	g := New(sink, LookupArch("amd64"))
	g.LowerFunction(fn)
	require.False(t, sink.HasErrors(), "unexpected diagnostics: %v", sink.Diagnostics())
}

// TestUnsupportedCastProducesUndefInsteadOfPanicking checks spec §4.4
// "Failure semantics": "Missing backend capability (e.g., unsupported cast)
// emits a diagnostic and produces an undef value to keep downstream
// lowering alive" — distinct from the ICE path, so this must not panic.
func TestUnsupportedCastProducesUndefInsteadOfPanicking(t *testing.T) {
	sink := &diag.Sink{}
	lc := &loweringContext{
		gen: New(sink, LookupArch("amd64")),
		b:   ir.NewFuncBuilder("f"),
	}
	cast := &ast.CastExpr{
		ExprBase: ast.ExprBase{Ty: i32Ty, SpanPos: span(1)},
		Kind:     ast.CastKind(99),
		Expr:     &ast.LitExpr{ExprBase: ast.ExprBase{Ty: i32Ty, SpanPos: span(1)}, Kind: ast.LitInt, Int: 1},
		To:       i32Ty,
	}

	var out *ir.Value
	require.NotPanics(t, func() { out = lowerCast(lc, cast) })
	require.NotNil(t, out)
	require.Equal(t, ir.OpUndef, out.Op)

	var found bool
	for _, d := range sink.Diagnostics() {
		if d.Kind == diag.KindUnsupportedCast {
			found = true
		}
	}
	require.True(t, found, "expected an unsupported-cast diagnostic, got: %v", sink.Diagnostics())
}

// TestIfElseProducesDistinctBlocks checks if/else lowering opens separate
// then/else/merge blocks rather than reusing the entry block, per spec
// §4.4 ("if/else with two successor blocks and a join").
func TestIfElseProducesDistinctBlocks(t *testing.T) {
	boolTy := &types.Type{Kind: types.Primitive, Prim: types.Bool}
	fn := &ast.Function{
		Name: "branch",
		Sig:  &types.FunctionSig{Result: unitTy},
		Body: &ast.Block{
			SpanPos: span(0),
			Stmts: []ast.Stmt{
				&ast.IfStmt{
					Cond:    &ast.LitExpr{ExprBase: ast.ExprBase{Ty: boolTy, SpanPos: span(1)}, Kind: ast.LitBool, Bool: true},
					Then:    &ast.Block{SpanPos: span(1), Stmts: []ast.Stmt{&ast.ExprStmt{Value: printCall(1, 1), SpanPos: span(1)}}},
					Else:    &ast.Block{SpanPos: span(2), Stmts: []ast.Stmt{&ast.ExprStmt{Value: printCall(2, 2), SpanPos: span(2)}}},
					SpanPos: span(1),
				},
			},
		},
	}
	g := New(&diag.Sink{}, LookupArch("amd64"))
	out := g.LowerFunction(fn)
	require.GreaterOrEqual(t, len(out.Blocks), 4, "expected at least entry/then/else/merge blocks")
}
