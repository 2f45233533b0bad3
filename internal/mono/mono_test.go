// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mono

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meftunca/vex/internal/ast"
	"github.com/meftunca/vex/internal/types"
)

func identityTemplate() *GenericTemplate {
	tparam := &types.GenericParam{Name: "T"}
	tType := &types.Type{Kind: types.Generic, Param: tparam}
	x := &types.Local{ID: 0, Name: "x", Type: tType}

	return &GenericTemplate{
		ID:   42,
		Name: "id",
		Sig: &types.FunctionSig{
			Generic: []*types.GenericParam{tparam},
			Params:  []*types.Type{tType},
			Result:  tType,
		},
		Params: []*ast.Param{{Local: x}},
		Body: &ast.Block{
			Stmts: []ast.Stmt{
				&ast.ReturnStmt{Value: &ast.PlaceExpr{ExprBase: ast.ExprBase{Ty: tType}, P: &ast.Place{Root: x}}},
			},
		},
	}
}

func TestRepeatedCallInstantiatesOnce(t *testing.T) {
	m := New()
	m.Register(identityTemplate())

	i32 := &types.Type{Kind: types.Primitive, Prim: types.I32}
	entries := []EntryCall{
		{Func: 42, Args: []*types.Type{i32}},
		{Func: 42, Args: []*types.Type{i32}},
	}

	insts, err := m.DiscoverAll(context.Background(), entries, 4)
	require.NoError(t, err)
	require.Len(t, insts, 1)
	require.Equal(t, "id_i32", insts[0].Name)
	require.Equal(t, 1, m.Cache.Len())
}

func TestDistinctArgsInstantiateSeparately(t *testing.T) {
	m := New()
	m.Register(identityTemplate())

	i32 := &types.Type{Kind: types.Primitive, Prim: types.I32}
	i64 := &types.Type{Kind: types.Primitive, Prim: types.I64}
	entries := []EntryCall{
		{Func: 42, Args: []*types.Type{i32}},
		{Func: 42, Args: []*types.Type{i64}},
	}

	insts, err := m.DiscoverAll(context.Background(), entries, 4)
	require.NoError(t, err)
	require.Len(t, insts, 2)

	names := map[string]bool{insts[0].Name: true, insts[1].Name: true}
	require.True(t, names["id_i32"])
	require.True(t, names["id_i64"])
}

func TestInstantiationBodyIsIndependentPerCall(t *testing.T) {
	m := New()
	m.Register(identityTemplate())

	i32 := &types.Type{Kind: types.Primitive, Prim: types.I32}
	i64 := &types.Type{Kind: types.Primitive, Prim: types.I64}

	a, err := m.Instantiate(42, []*types.Type{i32})
	require.NoError(t, err)
	b, err := m.Instantiate(42, []*types.Type{i64})
	require.NoError(t, err)

	require.NotSame(t, a.Func.Params[0].Local, b.Func.Params[0].Local)
	require.True(t, types.Equal(a.Func.Params[0].Local.Type, i32))
	require.True(t, types.Equal(b.Func.Params[0].Local.Type, i64))

	retA := a.Func.Body.Stmts[0].(*ast.ReturnStmt).Value.(*ast.PlaceExpr)
	require.Same(t, a.Func.Params[0].Local, retA.P.Root)
}

func TestUnknownTemplateReportsError(t *testing.T) {
	m := New()
	_, err := m.Instantiate(999, nil)
	require.Error(t, err)
}
