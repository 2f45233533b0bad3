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

// lowerMatchStmt compiles a match used as a statement. Exhaustiveness was
// already proven by internal/owner's usefulness analysis (spec §9), so the
// final "no arm matched" block here is simply Unreachable rather than a
// runtime panic path — spec §8 requires a fully-covered match never hits
// that arm at runtime, and codegen takes the analyzer's word for it.
func (lc *loweringContext) lowerMatchStmt(s *ast.MatchStmt) {
	scrutAddr := matchScrutineeAddr(lc, s.Scrutinee)
	joinBlk := lc.b.NewBlock("match.join")

	lc.lowerArms(scrutAddr, len(s.Arms), func(i int) ast.Pattern { return s.Arms[i].Pattern }, func(i int) {
		lc.lowerBlock(s.Arms[i].Body)
		if lc.b.Block().Term == nil {
			lc.b.Br(joinBlk)
		}
	})
	lc.b.SetBlock(joinBlk)
}

// lowerMatchExpr compiles a match in expression position: every arm's
// value feeds one incoming edge of a phi at the join block.
func lowerMatchExpr(lc *loweringContext, v *ast.MatchExpr) *ir.Value {
	scrutAddr := matchScrutineeAddr(lc, v.Scrutinee)
	joinBlk := lc.b.NewBlock("matchexpr.join")
	incoming := make(map[*ir.Block]*ir.Value, len(v.Arms))

	lc.lowerArms(scrutAddr, len(v.Arms), func(i int) ast.Pattern { return v.Arms[i].Pattern }, func(i int) {
		val := lowerExpr(lc, v.Arms[i].Value)
		end := lc.b.Block()
		incoming[end] = val
		lc.b.Br(joinBlk)
	})
	lc.b.SetBlock(joinBlk)
	return lc.b.Phi(v.Ty, incoming)
}

// matchScrutineeAddr evaluates the scrutinee once into a temporary slot so
// every arm's pattern test and binding reads the same address rather than
// re-evaluating an expression with side effects per arm.
func matchScrutineeAddr(lc *loweringContext, e ast.Expr) *ir.Value {
	if pe, ok := e.(*ast.PlaceExpr); ok {
		return lowerPlaceAddr(lc, pe.P, pe.SpanPos)
	}
	val := lowerExpr(lc, e)
	slot := lc.b.Alloca(e.Type(), "match.scrutinee")
	lc.b.Store(slot, val)
	return slot
}

// lowerArms tries each arm's pattern top-to-bottom, branching to its body
// on the first match — spec §4.4 "arms are tried top-to-bottom; the first
// matching arm executes."
func (lc *loweringContext) lowerArms(scrutAddr *ir.Value, n int, pat func(int) ast.Pattern, body func(int)) {
	for i := 0; i < n; i++ {
		p := pat(i)
		if _, ok := p.(*ast.WildcardPattern); ok {
			bindPattern(lc, scrutAddr, p)
			body(i)
			return
		}
		bodyBlk := lc.b.NewBlock("match.arm")
		var nextBlk *ir.Block
		if i == n-1 {
			nextBlk = lc.b.NewBlock("match.unreachable")
		} else {
			nextBlk = lc.b.NewBlock("match.next")
		}
		test := compilePatternTest(lc, scrutAddr, p)
		lc.b.CondBr(test, bodyBlk, nextBlk)

		lc.b.SetBlock(bodyBlk)
		bindPattern(lc, scrutAddr, p)
		body(i)

		lc.b.SetBlock(nextBlk)
		if i == n-1 {
			lc.b.Unreachable()
		}
	}
}

// compilePatternTest emits the boolean test deciding whether pat matches
// the value at addr, without yet binding anything.
func compilePatternTest(lc *loweringContext, addr *ir.Value, pat ast.Pattern) *ir.Value {
	boolT := &types.Type{Kind: types.Primitive, Prim: types.Bool}
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		return lc.b.Const(boolT, true)
	case *ast.BindingPattern:
		return lc.b.Const(boolT, true)
	case *ast.LiteralPattern:
		lit := lowerExpr(lc, p.Lit)
		return lc.b.ICmp(ir.CmpEq, lc.b.Load(addr), lit)
	case *ast.VariantPattern:
		tagType := &types.Type{Kind: types.Primitive, Prim: types.I32}
		tagAddr := lc.b.GEPField(addr, "$tag", tagType)
		tag := lc.b.Load(tagAddr)
		want := lc.b.Const(tagType, int64(p.Variant))
		test := lc.b.ICmp(ir.CmpEq, tag, want)
		payloadTypes := p.Def.Variant[p.Variant].Payload
		for i, sub := range p.Payload {
			if _, wild := sub.(*ast.WildcardPattern); wild {
				continue
			}
			if _, bind := sub.(*ast.BindingPattern); bind {
				continue
			}
			subAddr := lc.b.GEPIndex(addr, int64(i), payloadTypes[i])
			subTest := compilePatternTest(lc, subAddr, sub)
			test = lc.b.BinOp(ir.And, test, subTest)
		}
		return test
	case *ast.TuplePattern:
		var test *ir.Value
		for i, item := range p.Items {
			subAddr := lc.b.GEPIndex(addr, int64(i), nil)
			subTest := compilePatternTest(lc, subAddr, item)
			if test == nil {
				test = subTest
			} else {
				test = lc.b.BinOp(ir.And, test, subTest)
			}
		}
		if test == nil {
			return lc.b.Const(boolT, true)
		}
		return test
	case *ast.StructPattern:
		var test *ir.Value
		for name, fieldPat := range p.Fields {
			var fieldType *types.Type
			for _, f := range p.Def.Fields {
				if f.Name == name {
					fieldType = f.Type
					break
				}
			}
			subAddr := lc.b.GEPField(addr, name, fieldType)
			subTest := compilePatternTest(lc, subAddr, fieldPat)
			if test == nil {
				test = subTest
			} else {
				test = lc.b.BinOp(ir.And, test, subTest)
			}
		}
		if test == nil {
			return lc.b.Const(boolT, true)
		}
		return test
	default:
		diag.Fatalf("codegen: unhandled pattern type %T", pat)
		return nil
	}
}

// bindPattern materializes every binding introduced by pat (recursively,
// for nested struct/tuple/variant patterns) once the arm is known to
// match, storing by reference or by value according to each binding's
// ByRef flag.
func bindPattern(lc *loweringContext, addr *ir.Value, pat ast.Pattern) {
	switch p := pat.(type) {
	case *ast.BindingPattern:
		slot := lc.slotFor(p.Local)
		if p.ByRef {
			lc.b.Store(slot, addr)
		} else {
			lc.b.Store(slot, lc.b.Load(addr))
		}
	case *ast.VariantPattern:
		payloadTypes := p.Def.Variant[p.Variant].Payload
		for i, sub := range p.Payload {
			subAddr := lc.b.GEPIndex(addr, int64(i), payloadTypes[i])
			bindPattern(lc, subAddr, sub)
		}
	case *ast.TuplePattern:
		for i, sub := range p.Items {
			subAddr := lc.b.GEPIndex(addr, int64(i), nil)
			bindPattern(lc, subAddr, sub)
		}
	case *ast.StructPattern:
		for name, sub := range p.Fields {
			var fieldType *types.Type
			for _, f := range p.Def.Fields {
				if f.Name == name {
					fieldType = f.Type
					break
				}
			}
			subAddr := lc.b.GEPField(addr, name, fieldType)
			bindPattern(lc, subAddr, sub)
		}
	}
}
