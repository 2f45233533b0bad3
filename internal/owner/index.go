// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package owner

import "github.com/meftunca/vex/internal/ast"

// stmtIndex assigns each statement in fn's body a position in a single
// increasing sequence, flattened across nested blocks in source order. It
// is the coarse "program point" pass O3/O4 reason about.
type stmtIndex struct {
	pos map[ast.Stmt]int
	ordered []ast.Stmt
}

func buildStmtIndex(fn *ast.Function) *stmtIndex {
	idx := &stmtIndex{pos: make(map[ast.Stmt]int)}
	forEachStmt(fn.Body, func(s ast.Stmt) {
		idx.pos[s] = len(idx.ordered)
		idx.ordered = append(idx.ordered, s)
	})
	return idx
}

func (idx *stmtIndex) at(s ast.Stmt) int {
	if p, ok := idx.pos[s]; ok {
		return p
	}
	return -1
}

func (idx *stmtIndex) last() int {
	return len(idx.ordered) - 1
}

// findLastUse returns the highest statement index at which local is used
// within fn (read through a PlaceExpr, borrowed, or assigned to, with the
// place rooted at local), or -1 if it is never used after declaration.
func findLastUse(idx *stmtIndex, fn *ast.Function, local *ast.Place) int {
	last := -1
	forEachStmt(fn.Body, func(stmt ast.Stmt) {
		pos := idx.at(stmt)
		for _, e := range stmtExprs(stmt) {
			forEachExpr(e, func(ex ast.Expr) {
				if pe, ok := ex.(*ast.PlaceExpr); ok && pe.P.Root == local.Root {
					if pos > last {
						last = pos
					}
				}
				if be, ok := ex.(*ast.BorrowExpr); ok && be.Place.Root == local.Root {
					if pos > last {
						last = pos
					}
				}
			})
		}
		if as, ok := stmt.(*ast.AssignStmt); ok && as.Place.Root == local.Root {
			if pos > last {
				last = pos
			}
		}
	})
	return last
}
