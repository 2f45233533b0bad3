// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package owner

import "github.com/meftunca/vex/internal/ast"

// forEachStmt invokes visit for every statement in block, in source order,
// recursing into nested blocks (if/while/match arm bodies). It does not
// recurse into closure bodies, and no pass analyzes them separately.
func forEachStmt(block *ast.Block, visit func(ast.Stmt)) {
	if block == nil {
		return
	}
	for _, stmt := range block.Stmts {
		visit(stmt)
		switch s := stmt.(type) {
		case *ast.IfStmt:
			forEachStmt(s.Then, visit)
			forEachStmt(s.Else, visit)
		case *ast.WhileStmt:
			forEachStmt(s.Body, visit)
		case *ast.MatchStmt:
			for _, arm := range s.Arms {
				forEachStmt(arm.Body, visit)
			}
		}
	}
}

// subExprs returns the immediate child expressions of e, for passes that
// need to recurse into operands without duplicating a type switch over
// every expression kind.
func subExprs(e ast.Expr) []ast.Expr {
	switch v := e.(type) {
	case *ast.BinExpr:
		return []ast.Expr{v.Left, v.Right}
	case *ast.UnaryExpr:
		return []ast.Expr{v.Expr}
	case *ast.CastExpr:
		return []ast.Expr{v.Expr}
	case *ast.CallExpr:
		var out []ast.Expr
		if v.Receiver != nil {
			out = append(out, v.Receiver.Value)
		}
		for _, arg := range v.Args {
			out = append(out, arg.Value)
		}
		return out
	case *ast.StructLit:
		var out []ast.Expr
		for _, f := range v.Fields {
			out = append(out, f.Value)
		}
		return out
	case *ast.EnumLit:
		return v.Payload
	case *ast.TupleLit:
		return v.Items
	case *ast.IfExpr:
		return []ast.Expr{v.Cond, v.Then, v.Else}
	case *ast.MatchExpr:
		out := []ast.Expr{v.Scrutinee}
		for _, arm := range v.Arms {
			out = append(out, arm.Value)
		}
		return out
	case *ast.AwaitExpr:
		return []ast.Expr{v.Inner}
	default:
		return nil
	}
}

// forEachExpr calls visit for e and, recursively, every expression reachable
// from it (but not through closure bodies).
func forEachExpr(e ast.Expr, visit func(ast.Expr)) {
	if e == nil {
		return
	}
	visit(e)
	for _, child := range subExprs(e) {
		forEachExpr(child, visit)
	}
}

// stmtExprs returns the top-level expressions directly attached to stmt
// (not recursing into nested blocks, which forEachStmt already walks).
func stmtExprs(stmt ast.Stmt) []ast.Expr {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		return []ast.Expr{s.Value}
	case *ast.AssignStmt:
		return []ast.Expr{s.Value}
	case *ast.ExprStmt:
		return []ast.Expr{s.Value}
	case *ast.ReturnStmt:
		if s.Value != nil {
			return []ast.Expr{s.Value}
		}
	case *ast.DeferStmt:
		return []ast.Expr{s.Call}
	case *ast.IfStmt:
		return []ast.Expr{s.Cond}
	case *ast.WhileStmt:
		return []ast.Expr{s.Cond}
	case *ast.MatchStmt:
		return []ast.Expr{s.Scrutinee}
	}
	return nil
}
