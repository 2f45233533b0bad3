// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package codegen walks the monomorphized, ownership-validated AST
// (internal/ast) and emits target IR (internal/ir) through the backend
// Builder interface. It mirrors the split between the teacher's
// compile/internal/gc walker (go.go, the expression/statement lowering
// functions) and the per-architecture Arch hooks (SSAGenValue/SSAGenBlock)
// that the walker hands off to: internal/codegen owns the walk, the Arch
// registered in arch.go owns anything target-specific.
package codegen

import (
	"sync"
	"sync/atomic"

	"github.com/meftunca/vex/internal/ast"
	"github.com/meftunca/vex/internal/diag"
	"github.com/meftunca/vex/internal/ir"
	"github.com/meftunca/vex/internal/types"
)

// Generator lowers one compilation unit's worth of already-monomorphized,
// ownership-clean functions. Most fields are read-only configuration; all
// per-function mutable state lives in loweringContext so that lowering two
// functions concurrently (internal/codegen/parallel.go) never shares
// mutable state across goroutines. The exception is generatedMu/generated,
// which collect the extra functions closure lowering synthesizes (one
// call-operator per closure literal) as a side effect of lowering some
// other function's body — those two
// append under a mutex precisely because they are shared across the
// parallel fan-out.
type Generator struct {
	Sink *diag.Sink
	Arch *Arch

	// RuntimeVersion is the linked runtime's advertised ABI version,
	// checked against Arch.MinABI once per unit by LowerUnits
	// (internal/codegen/parallel.go) before any function is emitted.
	// Defaults to the architecture's own MinABI — a freshly built
	// runtime trivially satisfies its own floor — when left empty.
	RuntimeVersion string

	closureSeq int64

	generatedMu sync.Mutex
	generated   []*ir.Function
}

// New returns a Generator targeting arch and reporting codegen-level
// diagnostics into sink.
func New(sink *diag.Sink, arch *Arch) *Generator {
	return &Generator{Sink: sink, Arch: arch}
}

// addGenerated records fn (a closure call-operator; async lowering
// rewrites the function itself and adds nothing here) as an extra function the enclosing compilation unit must emit
// alongside the function whose lowering produced it.
func (g *Generator) addGenerated(fn *ir.Function) {
	g.generatedMu.Lock()
	g.generated = append(g.generated, fn)
	g.generatedMu.Unlock()
}

// Generated returns every extra function synthesized since the last call,
// draining the accumulator. internal/codegen/parallel.go calls this once
// per unit after all of its functions have been lowered.
func (g *Generator) Generated() []*ir.Function {
	g.generatedMu.Lock()
	defer g.generatedMu.Unlock()
	out := g.generated
	g.generated = nil
	return out
}

func (g *Generator) nextClosureName() string {
	n := atomic.AddInt64(&g.closureSeq, 1)
	return "$closure" + itoa(n)
}

// loopFrame records the two blocks a break/continue inside the current
// loop body must jump to.
type loopFrame struct {
	breakBlk    *ir.Block
	continueBlk *ir.Block
}

// loweringContext is the per-function state spec §4.4 calls out explicitly:
// the local-variable-to-stack-slot map, the loop stack, the defer stack,
// and the return-value slot.
type loweringContext struct {
	gen     *Generator
	b       ir.Builder
	fn      *ast.Function
	slots   map[*types.Local]*ir.Value
	loops   []loopFrame
	defers  []ast.Expr
	retSlot *ir.Value
	retBlk  *ir.Block
}

// LowerFunction lowers fn's body into a complete ir.Function, assuming fn
// has already passed ownership analysis (internal/owner) and, if generic,
// monomorphization (internal/mono). Deferred statements are collected as
// encountered and run in LIFO order at every exit, matching spec §4.4.
func (g *Generator) LowerFunction(fn *ast.Function) *ir.Function {
	b := ir.NewFuncBuilder(fn.Name)
	b.Fn.IsAsync = fn.Sig.IsAsync
	b.Fn.Result = fn.Sig.Result

	lc := &loweringContext{gen: g, b: b, fn: fn, slots: make(map[*types.Local]*ir.Value)}

	for i, p := range fn.Params {
		v := b.Param(p.Local.Type, p.Local.Name)
		slot := b.Alloca(p.Local.Type, p.Local.Name)
		b.Store(slot, v)
		lc.slots[p.Local] = slot
		_ = i
	}

	if fn.Sig.Result != nil && fn.Sig.Result.Kind != types.Unit && fn.Sig.Result.Kind != types.Never {
		lc.retSlot = b.Alloca(fn.Sig.Result, "ret")
	}
	lc.retBlk = b.NewBlock("return")

	if fn.Sig.IsAsync {
		return lowerAsync(lc)
	}

	lc.lowerBlock(fn.Body)
	lc.fallToReturn()

	cur := b.Block()
	if cur.Term == nil {
		b.SetBlock(cur)
		lc.emitReturn()
	}
	return b.Fn
}

// fallToReturn branches the current block into the shared return block if
// it hasn't already terminated (e.g. via an explicit return or a
// diverging match), then assembles the return block's own body.
func (lc *loweringContext) fallToReturn() {
	if lc.b.Block().Term == nil {
		lc.b.Br(lc.retBlk)
	}
	lc.b.SetBlock(lc.retBlk)
}

// emitReturn runs every deferred call in LIFO order, then returns the
// value stored in retSlot (or nothing, for a unit/never-returning
// function).
func (lc *loweringContext) emitReturn() {
	for i := len(lc.defers) - 1; i >= 0; i-- {
		lowerExpr(lc, lc.defers[i])
	}
	if lc.retSlot == nil {
		lc.b.Ret(nil)
		return
	}
	lc.b.Ret(lc.b.Load(lc.retSlot))
}

// slotFor returns the stack slot backing local, allocating one on first
// use — covers locals bound by match arms and closures that weren't
// function parameters.
func (lc *loweringContext) slotFor(local *types.Local) *ir.Value {
	if s, ok := lc.slots[local]; ok {
		return s
	}
	s := lc.b.Alloca(local.Type, local.Name)
	lc.slots[local] = s
	return s
}
