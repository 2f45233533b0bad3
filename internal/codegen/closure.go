// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"github.com/meftunca/vex/internal/ast"
	"github.com/meftunca/vex/internal/ir"
	"github.com/meftunca/vex/internal/types"
)

// captureStructType synthesizes the anonymous struct type backing a
// closure's captures, one field per ClosureCapture, named positionally
// since the surface language gives capture fields no user-visible name.
// Unlike a user-declared struct, nothing ever looks this DefID up in a
// StructDef table — every GEPField into it supplies the field's type
// inline (captureFieldType), so the synthesized Type needs no Fields list
// of its own.
func captureStructType(expr *ast.ClosureExpr) *types.Type {
	return &types.Type{Kind: types.Struct, DefID: closureCaptureDefID}
}

// closureCaptureDefID tags every synthesized capture-struct type. It is
// never looked up in a StructDef table (see captureStructType), so sharing
// one sentinel id across all closures is harmless — the code generator
// only uses it to tell "this is an anonymous capture struct" apart from a
// user-declared one when formatting a Type for a diagnostic.
const closureCaptureDefID types.DefID = -1

func captureFieldName(i int) string {
	return "$cap" + itoa(int64(i))
}

// captureFieldType is the capture's place type, wrapped in a reference if
// the closure body only borrows it (decided by the ownership analyzer's
// borrow-inference over the closure body, already recorded on the
// capture's Access mode by the time codegen sees it).
func captureFieldType(c ast.ClosureCapture) *types.Type {
	base := c.Place.Root.Type
	if c.ByMove || c.Access == ast.AccessValue {
		return base
	}
	return &types.Type{Kind: types.Reference, Mut: accessMut(c.Access), Inner: base}
}

func accessMut(a ast.AccessMode) types.Mutability {
	if a == ast.AccessExclusive {
		return types.Exclusive
	}
	return types.Shared
}

// receiverType picks the call-operator's $self parameter type: capType
// itself, by value, for a move-closure (v.IsMove — the struct's fields are
// the moved values themselves, so the generated function owns them
// outright), or a reference to capType otherwise, shared unless some
// capture needs exclusive access to its place through the closure body, in
// which case the whole capture struct is taken by exclusive reference —
// spec §4.4 "Closures": "by reference (shared or exclusive, according to
// how the body uses captures) or by value (for move-closures)."
func receiverType(v *ast.ClosureExpr, capType *types.Type) *types.Type {
	if v.IsMove {
		return capType
	}
	mut := types.Shared
	for _, c := range v.Captures {
		if c.Access == ast.AccessExclusive {
			mut = types.Exclusive
			break
		}
	}
	return &types.Type{Kind: types.Reference, Mut: mut, Inner: capType}
}

// lowerClosure lowers a closure literal to a MakeClosure op building the
// capture struct, and registers a generated call-operator function taking
// the struct by reference (shared or exclusive, matching how the body
// uses its captures) or by value for a move-closure — spec §4.4.
func lowerClosure(lc *loweringContext, v *ast.ClosureExpr) *ir.Value {
	name := lc.gen.nextClosureName()
	captureVals := make([]*ir.Value, len(v.Captures))
	for i, c := range v.Captures {
		if c.ByMove || c.Access == ast.AccessValue {
			captureVals[i] = lc.b.Load(lowerPlaceAddr(lc, c.Place, v.SpanPos))
		} else {
			captureVals[i] = lowerPlaceAddr(lc, c.Place, v.SpanPos)
		}
	}

	callOp := lowerClosureBody(lc.gen, name, v)
	lc.gen.addGenerated(callOp)

	return lc.b.MakeClosure(name, captureVals, v.Ty)
}

// lowerClosureBody builds the generated call-operator function's own
// ir.Function: a capture-struct receiver parameter followed by the
// closure's declared parameters, lowering the same body a plain function
// would.
func lowerClosureBody(g *Generator, name string, v *ast.ClosureExpr) *ir.Function {
	b := ir.NewFuncBuilder(name)
	capType := captureStructType(v)
	recvParam := b.Param(receiverType(v, capType), "$self")
	recv := recvParam
	if v.IsMove {
		// A move-closure's $self arrives by value; GEPField needs an
		// address, so it gets the same Alloca+Store treatment as any other
		// by-value parameter (see LowerFunction).
		recv = b.Alloca(capType, "$self")
		b.Store(recv, recvParam)
	}

	lc := &loweringContext{gen: g, b: b, slots: make(map[*types.Local]*ir.Value)}
	for i, cap := range v.Captures {
		addr := b.GEPField(recv, captureFieldName(i), captureFieldType(cap))
		lc.slots[cap.Place.Root] = addr
	}
	for _, p := range v.Params {
		pv := b.Param(p.Local.Type, p.Local.Name)
		slot := b.Alloca(p.Local.Type, p.Local.Name)
		b.Store(slot, pv)
		lc.slots[p.Local] = slot
	}

	var result *types.Type
	if v.Ty != nil && v.Ty.Kind == types.Function {
		result = v.Ty.Result
	}
	b.Fn.Result = result
	if result != nil && result.Kind != types.Unit {
		lc.retSlot = b.Alloca(result, "ret")
	}
	lc.retBlk = b.NewBlock("return")

	lc.lowerBlock(v.Body)
	lc.fallToReturn()
	if lc.b.Block().Term == nil {
		lc.emitReturn()
	}
	return b.Fn
}
