// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mono

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/meftunca/vex/internal/ast"
	"github.com/meftunca/vex/internal/types"
)

// EntryCall is one call site, reachable from already-concrete code, into a
// generic function.
type EntryCall struct {
	Func types.DefID
	Args []*types.Type
}

// DiscoverAll instantiates every generic function transitively reachable
// from entries, fanning call sites out across up to concurrency goroutines.
// The returned slice is ordered by discovery sequence, not goroutine finish
// order, so two runs over the same input always produce the same order
// regardless of scheduling.
func (m *Monomorphizer) DiscoverAll(ctx context.Context, entries []EntryCall, concurrency int) ([]*Instantiation, error) {
	grp, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		grp.SetLimit(concurrency)
	}
	for _, e := range entries {
		e := e
		grp.Go(func() error { return m.instantiateAndDiscover(ctx, grp, e.Func, e.Args) })
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return m.Cache.All(), nil
}

func (m *Monomorphizer) instantiateAndDiscover(ctx context.Context, grp *errgroup.Group, id types.DefID, args []*types.Type) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	inst, err := m.Instantiate(id, args)
	if err != nil {
		return err
	}

	m.discoveredMu.Lock()
	already := m.discovered[inst.Key]
	m.discovered[inst.Key] = true
	m.discoveredMu.Unlock()
	if already {
		return nil
	}

	for _, call := range collectGenericCalls(inst.Func.Body, m.Templates) {
		call := call
		grp.Go(func() error { return m.instantiateAndDiscover(ctx, grp, call.Callee, call.Args) })
	}
	return nil
}

type callSite struct {
	Callee types.DefID
	Args   []*types.Type
}

// collectGenericCalls finds every call in body whose callee is a
// registered generic template, returning its concrete type arguments as
// given at the call site. Trait-bound resolution (picking a concrete
// callee for a generic-over-trait-object call) happens upstream; by the
// time a CallExpr reaches here its Callee is already a specific
// definition.
func collectGenericCalls(body *ast.Block, templates map[types.DefID]*GenericTemplate) []callSite {
	var out []callSite
	walkBlock(body, func(e ast.Expr) {
		call, ok := e.(*ast.CallExpr)
		if !ok {
			return
		}
		if _, generic := templates[call.Callee]; generic {
			out = append(out, callSite{Callee: call.Callee, Args: call.TypeArgs})
		}
	})
	return out
}

func walkBlock(b *ast.Block, visit func(ast.Expr)) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		walkStmt(s, visit)
	}
}

func walkStmt(s ast.Stmt, visit func(ast.Expr)) {
	switch v := s.(type) {
	case *ast.LetStmt:
		walkExpr(v.Value, visit)
	case *ast.AssignStmt:
		walkExpr(v.Value, visit)
	case *ast.ExprStmt:
		walkExpr(v.Value, visit)
	case *ast.ReturnStmt:
		walkExpr(v.Value, visit)
	case *ast.DeferStmt:
		walkExpr(v.Call, visit)
	case *ast.IfStmt:
		walkExpr(v.Cond, visit)
		walkBlock(v.Then, visit)
		walkBlock(v.Else, visit)
	case *ast.WhileStmt:
		walkExpr(v.Cond, visit)
		walkBlock(v.Body, visit)
	case *ast.MatchStmt:
		walkExpr(v.Scrutinee, visit)
		for _, arm := range v.Arms {
			walkBlock(arm.Body, visit)
		}
	}
}

func walkExpr(e ast.Expr, visit func(ast.Expr)) {
	if e == nil {
		return
	}
	visit(e)
	switch v := e.(type) {
	case *ast.BinExpr:
		walkExpr(v.Left, visit)
		walkExpr(v.Right, visit)
	case *ast.UnaryExpr:
		walkExpr(v.Expr, visit)
	case *ast.CastExpr:
		walkExpr(v.Expr, visit)
	case *ast.CallExpr:
		if v.Receiver != nil {
			walkExpr(v.Receiver.Value, visit)
		}
		for _, a := range v.Args {
			walkExpr(a.Value, visit)
		}
	case *ast.StructLit:
		for _, f := range v.Fields {
			walkExpr(f.Value, visit)
		}
	case *ast.EnumLit:
		for _, p := range v.Payload {
			walkExpr(p, visit)
		}
	case *ast.TupleLit:
		for _, it := range v.Items {
			walkExpr(it, visit)
		}
	case *ast.ClosureExpr:
		walkBlock(v.Body, visit)
	case *ast.AwaitExpr:
		walkExpr(v.Inner, visit)
	case *ast.IfExpr:
		walkExpr(v.Cond, visit)
		walkExpr(v.Then, visit)
		walkExpr(v.Else, visit)
	case *ast.MatchExpr:
		walkExpr(v.Scrutinee, visit)
		for _, arm := range v.Arms {
			walkExpr(arm.Value, visit)
		}
	}
}
