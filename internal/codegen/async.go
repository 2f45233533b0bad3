// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"github.com/meftunca/vex/internal/ast"
	"github.com/meftunca/vex/internal/diag"
	"github.com/meftunca/vex/internal/ir"
	"github.com/meftunca/vex/internal/types"
)

// asyncState is one suspension point's state-machine entry: the
// fall-through entry block to resume at when the coroutine is scheduled
// with the machine already sitting at this state.
type asyncState struct {
	id    int64
	entry *ir.Block
}

// asyncCtx extends loweringContext with the bookkeeping an async function
// body's `await` expressions need: the live state-struct slot (ctx.state),
// the running list of suspension states discovered so far, and the next
// state id to hand out.
type asyncCtx struct {
	*loweringContext
	stateSlot  *ir.Value // *StateStruct, the coroutine's persistent data
	stateField *ir.Value // address of the $state discriminant field
	states     []asyncState
	nextState  int64
	dispatch   *ir.Block
}

// lowerAsync compiles an `async fn` body to the stackless state-machine
// shape spec §4.4 describes: local variables live across `await` are
// promoted to fields of a generated state struct; the function itself
// becomes a resume method `(ctx, state) -> CoroStatus` that dispatches on
// the current state, runs until the next suspension point, and returns
// RUNNING/YIELDED/DONE to the caller per the runtime ABI (spec §4.6,
// §6 "Coroutine contract").
func lowerAsync(lc *loweringContext) *ir.Function {
	b := lc.b
	stateType := &types.Type{Kind: types.Struct, DefID: asyncStateDefID}
	statePtrType := &types.Type{Kind: types.RawPointer, Mut: types.Exclusive, Inner: stateType}
	stateSlot := b.Param(statePtrType, "$coro")

	ac := &asyncCtx{
		loweringContext: lc,
		stateSlot:       stateSlot,
		stateField:      b.GEPField(stateSlot, "$state", &types.Type{Kind: types.Primitive, Prim: types.I32}),
	}

	// Every parameter is promoted into the state struct immediately: an
	// async function's parameters are live across the first suspension
	// point by definition (the body hasn't run yet), so there is no
	// benefit to a separate stack slot the way a synchronous function's
	// parameters get one.
	for _, p := range lc.fn.Params {
		addr := b.GEPField(stateSlot, "$"+p.Local.Name, p.Local.Type)
		ac.slots[p.Local] = addr
	}

	ac.dispatch = b.NewBlock("async.dispatch")
	b.Br(ac.dispatch)

	entry := b.NewBlock("async.state0")
	b.SetBlock(entry)
	ac.states = append(ac.states, asyncState{id: 0, entry: entry})

	doneBlk := b.NewBlock("async.done")

	ac.lowerAsyncBlock(lc.fn.Body, doneBlk)
	if b.Block().Term == nil {
		b.Br(doneBlk)
	}

	b.SetBlock(doneBlk)
	b.Store(ac.stateField, b.Const(&types.Type{Kind: types.Primitive, Prim: types.I32}, int64(coroDone)))
	b.Ret(b.Const(&types.Type{Kind: types.Primitive, Prim: types.I32}, int64(coroDone)))

	// Now that every await point has registered its state, fill in the
	// dispatch block: a chain of tag comparisons over $state selecting
	// which entry block to jump into, the classic stackless-coroutine
	// resume switch.
	b.SetBlock(ac.dispatch)
	tag := b.Load(ac.stateField)
	for _, st := range ac.states {
		testBlk := b.Block()
		nextBlk := b.NewBlock("async.dispatch.next")
		want := b.Const(&types.Type{Kind: types.Primitive, Prim: types.I32}, st.id)
		test := b.ICmp(ir.CmpEq, tag, want)
		b.SetBlock(testBlk)
		b.CondBr(test, st.entry, nextBlk)
		b.SetBlock(nextBlk)
	}
	b.Unreachable()

	b.Fn.IsAsync = true
	return b.Fn
}

// coroStatus mirrors the runtime ABI's CoroStatus enum (spec §4.6/§6):
// RUNNING (voluntarily yielded without I/O), YIELDED (suspended on I/O via
// await_io), DONE (coroutine returned).
type coroStatus int64

const (
	coroRunning coroStatus = iota
	coroYielded
	coroDone
)

const asyncStateDefID types.DefID = -2

// lowerAsyncBlock lowers statements the same way loweringContext.lowerBlock
// does, except ExprStmt/LetStmt/ReturnStmt route through lowerAsyncExpr so
// that an `await` nested anywhere in the statement can split the current
// block into a new suspension state.
func (ac *asyncCtx) lowerAsyncBlock(blk *ast.Block, doneBlk *ir.Block) {
	if blk == nil {
		return
	}
	for _, s := range blk.Stmts {
		if ac.b.Block().Term != nil {
			return
		}
		ac.lowerAsyncStmt(s, doneBlk)
	}
}

func (ac *asyncCtx) lowerAsyncStmt(s ast.Stmt, doneBlk *ir.Block) {
	switch v := s.(type) {
	case *ast.LetStmt:
		slot := ac.slotFor(v.Local)
		if v.Value != nil {
			val := ac.lowerAsyncExpr(v.Value)
			ac.b.Store(slot, val)
		}
	case *ast.ExprStmt:
		ac.lowerAsyncExpr(v.Value)
	case *ast.ReturnStmt:
		if v.Value != nil && ac.retSlot != nil {
			val := ac.lowerAsyncExpr(v.Value)
			ac.b.Store(ac.retSlot, val)
		}
		ac.b.Br(doneBlk)
	case *ast.IfStmt:
		cond := ac.lowerAsyncExpr(v.Cond)
		thenBlk := ac.b.NewBlock("async.if.then")
		mergeBlk := ac.b.NewBlock("async.if.merge")
		if v.Else != nil {
			elseBlk := ac.b.NewBlock("async.if.else")
			ac.b.CondBr(cond, thenBlk, elseBlk)
			ac.b.SetBlock(thenBlk)
			ac.lowerAsyncBlock(v.Then, doneBlk)
			if ac.b.Block().Term == nil {
				ac.b.Br(mergeBlk)
			}
			ac.b.SetBlock(elseBlk)
			ac.lowerAsyncBlock(v.Else, doneBlk)
			if ac.b.Block().Term == nil {
				ac.b.Br(mergeBlk)
			}
		} else {
			ac.b.CondBr(cond, thenBlk, mergeBlk)
			ac.b.SetBlock(thenBlk)
			ac.lowerAsyncBlock(v.Then, doneBlk)
			if ac.b.Block().Term == nil {
				ac.b.Br(mergeBlk)
			}
		}
		ac.b.SetBlock(mergeBlk)
	case *ast.WhileStmt:
		headerBlk := ac.b.NewBlock("async.while.header")
		bodyBlk := ac.b.NewBlock("async.while.body")
		exitBlk := ac.b.NewBlock("async.while.exit")
		ac.b.Br(headerBlk)
		ac.b.SetBlock(headerBlk)
		cond := ac.lowerAsyncExpr(v.Cond)
		ac.b.CondBr(cond, bodyBlk, exitBlk)
		ac.loops = append(ac.loops, loopFrame{breakBlk: exitBlk, continueBlk: headerBlk})
		ac.b.SetBlock(bodyBlk)
		ac.lowerAsyncBlock(v.Body, doneBlk)
		if ac.b.Block().Term == nil {
			ac.b.Br(headerBlk)
		}
		ac.loops = ac.loops[:len(ac.loops)-1]
		ac.b.SetBlock(exitBlk)
	default:
		// Statements with no possible nested await (break/continue/defer,
		// and assignments whose RHS — by the surface grammar — cannot
		// itself suspend mid-expression without first being let-bound)
		// lower exactly like the synchronous path.
		ac.loweringContext.lowerStmt(s)
	}
}

// lowerAsyncExpr lowers e, splitting the current block into a fresh
// suspension state whenever it encounters an AwaitExpr. Everything else
// recurses structurally so an await nested inside, say, a binary
// expression still produces correct control flow (the left operand's
// suspension point resumes with the right operand still to evaluate).
func (ac *asyncCtx) lowerAsyncExpr(e ast.Expr) *ir.Value {
	switch v := e.(type) {
	case *ast.AwaitExpr:
		return ac.lowerAwaitPoint(v)
	case *ast.BinExpr:
		l := ac.lowerAsyncExpr(v.Left)
		r := ac.lowerAsyncExpr(v.Right)
		if pred, ok := cmpPredMap[v.Op]; ok {
			return ac.b.ICmp(pred, l, r)
		}
		op, ok := binOpMap[v.Op]
		if !ok {
			diag.Fatalf("codegen: unknown binary operator %d in async body", v.Op)
		}
		return ac.b.BinOp(op, l, r)
	case *ast.CallExpr:
		var args []*ir.Value
		if v.Receiver != nil {
			args = append(args, lowerArg(ac.loweringContext, *v.Receiver))
		}
		for _, a := range v.Args {
			args = append(args, ac.lowerAsyncExpr(a.Value))
		}
		return ac.b.Call(calleeName(v), v.CalleeSig, args)
	default:
		return lowerExpr(ac.loweringContext, e)
	}
}

// lowerAwaitPoint is the heart of async lowering: it lowers the awaited
// expression's fd-producing operand, stores $state to the new suspension
// id, emits ir.OpPoll to hand the fd to ctx.await_io, returns YIELDED from
// the resume method, and opens a new entry block registered as the state
// the dispatch switch (built back in lowerAsync) will jump to on the next
// resume.
func (ac *asyncCtx) lowerAwaitPoint(v *ast.AwaitExpr) *ir.Value {
	inner := ac.lowerAsyncExpr(v.Inner)

	ac.nextState++
	stateID := ac.nextState
	i32 := &types.Type{Kind: types.Primitive, Prim: types.I32}
	ac.b.Store(ac.stateField, ac.b.Const(i32, stateID))

	poll := ac.b.Poll(inner, v.Ty)
	ac.b.Ret(ac.b.Const(i32, int64(coroYielded)))

	resumeBlk := ac.b.NewBlock("async.state" + itoa(stateID))
	ac.states = append(ac.states, asyncState{id: stateID, entry: resumeBlk})
	ac.b.SetBlock(resumeBlk)
	return poll
}
