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

// lowerExpr lowers e to the ir.Value computing its result, switching on
// the concrete ast.Expr node the way the teacher's expression walker
// switches on *Node.Op.
func lowerExpr(lc *loweringContext, e ast.Expr) *ir.Value {
	switch v := e.(type) {
	case *ast.LitExpr:
		return lowerLit(lc, v)
	case *ast.PlaceExpr:
		return lowerPlaceExpr(lc, v)
	case *ast.BorrowExpr:
		return lowerPlaceAddr(lc, v.Place, v.SpanPos)
	case *ast.BinExpr:
		return lowerBin(lc, v)
	case *ast.UnaryExpr:
		return lowerUnary(lc, v)
	case *ast.CastExpr:
		return lowerCast(lc, v)
	case *ast.CallExpr:
		return lowerCall(lc, v)
	case *ast.StructLit:
		return lowerStructLit(lc, v)
	case *ast.EnumLit:
		return lowerEnumLit(lc, v)
	case *ast.TupleLit:
		return lowerTupleLit(lc, v)
	case *ast.ClosureExpr:
		return lowerClosure(lc, v)
	case *ast.AwaitExpr:
		return lowerAwait(lc, v)
	case *ast.IfExpr:
		return lowerIfExpr(lc, v)
	case *ast.MatchExpr:
		return lowerMatchExpr(lc, v)
	default:
		diag.Fatalf("codegen: unhandled expression type %T", e)
		return nil
	}
}

func lowerLit(lc *loweringContext, v *ast.LitExpr) *ir.Value {
	switch v.Kind {
	case ast.LitInt:
		return lc.b.Const(v.Ty, v.Int)
	case ast.LitFloat:
		return lc.b.Const(v.Ty, v.Flt)
	case ast.LitBool:
		return lc.b.Const(v.Ty, v.Bool)
	case ast.LitChar:
		return lc.b.Const(v.Ty, v.Int)
	case ast.LitString:
		return lc.b.Const(v.Ty, v.Str)
	default:
		diag.Fatalf("codegen: unknown literal kind %d", v.Kind)
		return nil
	}
}

// lowerPlaceExpr reads a place according to the access mode the ownership
// analyzer annotated: a plain value read loads it, a shared/exclusive
// borrow takes its address instead — AccessMode is a decision O3/O4 have
// already made, codegen never re-derives it.
func lowerPlaceExpr(lc *loweringContext, v *ast.PlaceExpr) *ir.Value {
	addr := lowerPlaceAddr(lc, v.P, v.SpanPos)
	switch v.Access {
	case ast.AccessShared, ast.AccessExclusive:
		return addr
	default:
		return lc.b.Load(addr)
	}
}

// lowerPlaceAddr computes the address of a Place by chaining a root local's
// slot through field/deref/index steps via GEP-equivalent ops. addr always
// denotes "the address of the place reached so far": a field or index step
// advances it with a GEP off the same address, while a deref step first
// loads the pointer/reference value stored there and continues from the
// address it points to.
func lowerPlaceAddr(lc *loweringContext, p *ast.Place, span diag.Span) *ir.Value {
	addr := lc.slotFor(p.Root)
	for _, step := range p.Steps {
		switch step.Kind {
		case ast.StepField:
			addr = lc.b.GEPField(addr, step.FieldName, step.FieldType)
		case ast.StepDeref:
			addr = lc.b.Load(addr)
		case ast.StepIndex:
			if step.IndexExpr != nil {
				idx := lowerExpr(lc, step.IndexExpr)
				addr = lc.b.GEPIndexValue(addr, idx, step.FieldType)
			} else {
				idx := step.ConstIndex
				// addr's own Type is always RawPointer{Inner: <element so far>}
				// (every Builder GEP/Alloca wraps its result that way), so the
				// array being indexed — if it is one — is addr.Type.Inner.
				if arr := addr.Type.Inner; arr != nil && arr.Kind == types.Array && (idx < 0 || idx >= arr.Len) {
					lc.gen.Sink.Errorf(diag.KindIndexOutOfBounds, span,
						"index %d out of bounds for array of length %d", idx, arr.Len)
					idx = 0
				}
				addr = lc.b.GEPIndex(addr, idx, step.FieldType)
			}
		}
	}
	return addr
}

var binOpMap = map[ast.BinOp]ir.BinOp{
	ast.OpAdd: ir.Add,
	ast.OpSub: ir.Sub,
	ast.OpMul: ir.Mul,
	ast.OpDiv: ir.Div,
	ast.OpRem: ir.Rem,
}

var cmpPredMap = map[ast.BinOp]ir.CmpPred{
	ast.OpEq: ir.CmpEq,
	ast.OpNe: ir.CmpNe,
	ast.OpLt: ir.CmpLt,
	ast.OpLe: ir.CmpLe,
	ast.OpGt: ir.CmpGt,
	ast.OpGe: ir.CmpGe,
}

// lowerBin lowers a binary expression. && and || are short-circuit: each
// produces two successor blocks and a join block taking a boolean
// block-parameter, per spec §4.4, implemented here with a phi over the two
// incoming values (ir.Builder.Phi reads the join block's Block.Preds,
// which the two Br calls into it populate).
func lowerBin(lc *loweringContext, v *ast.BinExpr) *ir.Value {
	switch v.Op {
	case ast.OpAnd:
		return lowerShortCircuit(lc, v, false)
	case ast.OpOr:
		return lowerShortCircuit(lc, v, true)
	}
	l := lowerExpr(lc, v.Left)
	r := lowerExpr(lc, v.Right)
	if pred, ok := cmpPredMap[v.Op]; ok {
		return lc.b.ICmp(pred, l, r)
	}
	op, ok := binOpMap[v.Op]
	if !ok {
		diag.Fatalf("codegen: unknown binary operator %d", v.Op)
	}
	return lc.b.BinOp(op, l, r)
}

// lowerShortCircuit lowers `a && b` / `a || b`. shortOnTrue is true for ||
// (short-circuits to true when the left operand is already true).
func lowerShortCircuit(lc *loweringContext, v *ast.BinExpr, shortOnTrue bool) *ir.Value {
	l := lowerExpr(lc, v.Left)
	rhsBlk := lc.b.NewBlock("logic.rhs")
	joinBlk := lc.b.NewBlock("logic.join")

	shortBlk := lc.b.NewBlock("logic.short")
	if shortOnTrue {
		lc.b.CondBr(l, shortBlk, rhsBlk)
	} else {
		lc.b.CondBr(l, rhsBlk, shortBlk)
	}

	lc.b.SetBlock(shortBlk)
	shortVal := lc.b.Const(&types.Type{Kind: types.Primitive, Prim: types.Bool}, shortOnTrue)
	lc.b.Br(joinBlk)

	lc.b.SetBlock(rhsBlk)
	rhsVal := lowerExpr(lc, v.Right)
	lc.b.Br(joinBlk)

	lc.b.SetBlock(joinBlk)
	return lc.b.Phi(&types.Type{Kind: types.Primitive, Prim: types.Bool}, map[*ir.Block]*ir.Value{
		shortBlk: shortVal,
		rhsBlk:   rhsVal,
	})
}

func lowerUnary(lc *loweringContext, v *ast.UnaryExpr) *ir.Value {
	val := lowerExpr(lc, v.Expr)
	switch v.Op {
	case ast.OpNeg:
		zero := lc.b.Const(v.Ty, int64(0))
		return lc.b.BinOp(ir.Sub, zero, val)
	case ast.OpNot:
		t := lc.b.Const(v.Ty, true)
		return lc.b.BinOp(ir.Xor, val, t)
	default:
		diag.Fatalf("codegen: unknown unary operator %d", v.Op)
		return nil
	}
}

var castOpMap = map[ast.CastKind]ir.CastOp{
	ast.CastIntTruncate: ir.CastTruncate,
	ast.CastFloatCast:   ir.CastFloatExt,
	ast.CastIntToFloat:  ir.CastIntToFloat,
	ast.CastFloatToInt:  ir.CastFloatToInt,
	ast.CastPointerCast: ir.CastBitcast,
}

// lowerCast lowers an integer/float/pointer conversion. Widening integer
// casts sign-extend for signed sources and zero-extend for unsigned ones
// (spec §8 boundary behavior); fp-to-int saturates on out-of-range input
// per the Open Question decision recorded in DESIGN.md, implemented by the
// backend's CastFloatToInt op rather than an extra branch here (the
// saturating behavior is a target-lowering concern, not a walker one).
//
// A CastKind this Arch/backend combination has no castOpMap entry for is a
// missing backend capability, not a compiler bug: it's reported through the
// sink and lowered to an undef value of the target type so the rest of the
// function keeps lowering (spec §4.4 "Failure semantics"), unlike the
// ICE path used for states type resolution and ownership analysis should
// already have ruled out.
func lowerCast(lc *loweringContext, v *ast.CastExpr) *ir.Value {
	val := lowerExpr(lc, v.Expr)
	if v.Kind == ast.CastIntExtend {
		op := ir.CastZeroExtend
		if srcSigned(v.Expr.Type()) {
			op = ir.CastSignExtend
		}
		return lc.b.Cast(op, val, v.To)
	}
	op, ok := castOpMap[v.Kind]
	if !ok {
		lc.gen.Sink.Errorf(diag.KindUnsupportedCast, v.SpanPos,
			"unsupported cast kind %d for this target", v.Kind)
		return lc.b.Undef(v.To)
	}
	return lc.b.Cast(op, val, v.To)
}

func srcSigned(t *types.Type) bool {
	return t != nil && t.Kind == types.Primitive && t.Prim.IsSigned()
}

// lowerCall lowers a call, including a receiver argument for method calls.
// By-value arguments are loaded; by-reference arguments pass the address
// computed the same way a BorrowExpr would.
func lowerCall(lc *loweringContext, v *ast.CallExpr) *ir.Value {
	var args []*ir.Value
	if v.Receiver != nil {
		args = append(args, lowerArg(lc, *v.Receiver))
	}
	for _, a := range v.Args {
		args = append(args, lowerArg(lc, a))
	}
	return lc.b.Call(calleeName(v), v.CalleeSig, args)
}

func lowerArg(lc *loweringContext, a ast.CallArg) *ir.Value {
	if a.ByRef {
		if pe, ok := a.Value.(*ast.PlaceExpr); ok {
			return lowerPlaceAddr(lc, pe.P, pe.SpanPos)
		}
	}
	return lowerExpr(lc, a.Value)
}

// calleeName resolves the mangled symbol name for a call. Monomorphized
// callees carry their own instantiation-specific name by the time codegen
// sees them (internal/mono rewrites CallExpr.Callee to point at the
// concrete definition); codegen only needs a stable string to hand the
// backend, derived from the definition id since the AST layer doesn't
// carry display names on every DefID.
func calleeName(v *ast.CallExpr) string {
	return defSymbol(v.Callee)
}

func defSymbol(id types.DefID) string {
	return "$def" + itoa(int64(id))
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func lowerStructLit(lc *loweringContext, v *ast.StructLit) *ir.Value {
	slot := lc.b.Alloca(v.Ty, "struct.tmp")
	for _, f := range v.Fields {
		var fieldType *types.Type
		for _, def := range v.Def.Fields {
			if def.Name == f.Name {
				fieldType = def.Type
				break
			}
		}
		val := lowerExpr(lc, f.Value)
		addr := lc.b.GEPField(slot, f.Name, fieldType)
		lc.b.Store(addr, val)
	}
	return lc.b.Load(slot)
}

// lowerEnumLit builds a tagged union: a discriminant store (the variant
// index) followed by one store per payload field, exactly the layout
// §9 "Sum types and pattern exhaustiveness" specifies (a discriminant plus
// a payload sized to the largest variant).
func lowerEnumLit(lc *loweringContext, v *ast.EnumLit) *ir.Value {
	slot := lc.b.Alloca(v.Ty, "enum.tmp")
	tagType := &types.Type{Kind: types.Primitive, Prim: types.I32}
	tagAddr := lc.b.GEPField(slot, "$tag", tagType)
	lc.b.Store(tagAddr, lc.b.Const(tagType, int64(v.Variant)))

	payloadTypes := v.Def.Variant[v.Variant].Payload
	for i, p := range v.Payload {
		val := lowerExpr(lc, p)
		addr := lc.b.GEPIndex(slot, int64(i), payloadTypes[i])
		lc.b.Store(addr, val)
	}
	return lc.b.Load(slot)
}

func lowerTupleLit(lc *loweringContext, v *ast.TupleLit) *ir.Value {
	slot := lc.b.Alloca(v.Ty, "tuple.tmp")
	for i, item := range v.Items {
		val := lowerExpr(lc, item)
		addr := lc.b.GEPIndex(slot, int64(i), item.Type())
		lc.b.Store(addr, val)
	}
	return lc.b.Load(slot)
}

// lowerAwait is reached only if an AwaitExpr somehow survives outside the
// async state-machine walk in async.go, which routes every `await` in an
// async function body through lowerAsyncExpr instead of here. Trait-bound
// checking and type resolution (both out of scope) are responsible for
// rejecting `await` in a non-async function before codegen ever runs, so
// landing here is a compiler bug, not a user error.
func lowerAwait(lc *loweringContext, v *ast.AwaitExpr) *ir.Value {
	diag.Fatalf("codegen: await expression reached outside async lowering")
	return nil
}

// lowerIfExpr lowers the expression-position `if`: both arms must produce
// a value of the same type (enforced upstream by Unify), joined by a phi.
func lowerIfExpr(lc *loweringContext, v *ast.IfExpr) *ir.Value {
	cond := lowerExpr(lc, v.Cond)
	thenBlk := lc.b.NewBlock("ifexpr.then")
	elseBlk := lc.b.NewBlock("ifexpr.else")
	joinBlk := lc.b.NewBlock("ifexpr.join")
	lc.b.CondBr(cond, thenBlk, elseBlk)

	lc.b.SetBlock(thenBlk)
	thenVal := lowerExpr(lc, v.Then)
	thenEnd := lc.b.Block()
	lc.b.Br(joinBlk)

	lc.b.SetBlock(elseBlk)
	elseVal := lowerExpr(lc, v.Else)
	elseEnd := lc.b.Block()
	lc.b.Br(joinBlk)

	lc.b.SetBlock(joinBlk)
	return lc.b.Phi(v.Ty, map[*ir.Block]*ir.Value{thenEnd: thenVal, elseEnd: elseVal})
}
