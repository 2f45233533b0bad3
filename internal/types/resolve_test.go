// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePrimitive(t *testing.T) {
	r := NewResolver(NewSymbolTable())
	typ, err := r.ResolveType(&TypeExpr{Kind: TENamed, Name: "i32"})
	require.Nil(t, err)
	require.Equal(t, Primitive, typ.Kind)
	require.Equal(t, I32, typ.Prim)
}

func TestResolveIsIdempotent(t *testing.T) {
	// Resolving an already-resolved type must be a no-op: resolving the
	// same TypeExpr (a reference to a primitive) twice yields structurally
	// Equal Types.
	r := NewResolver(NewSymbolTable())
	node := &TypeExpr{Kind: TEReference, Inner: &TypeExpr{Kind: TENamed, Name: "bool"}}
	a, err := r.ResolveType(node)
	require.Nil(t, err)
	b, err := r.ResolveType(node)
	require.Nil(t, err)
	require.True(t, Equal(a, b))
}

func TestResolveStructGeneric(t *testing.T) {
	st := NewSymbolTable()
	st.DeclareGlobal("Vec", DefID(1))
	r := NewResolver(st)
	r.Structs[DefID(1)] = &StructDef{
		ID:      1,
		Name:    "Vec",
		Generic: []*GenericParam{{Name: "T"}},
	}

	typ, err := r.ResolveType(&TypeExpr{
		Kind: TENamed,
		Name: "Vec",
		Args: []*TypeExpr{{Kind: TENamed, Name: "i32"}},
	})
	require.Nil(t, err)
	require.Equal(t, Struct, typ.Kind)
	require.Len(t, typ.TypeArgs, 1)
	require.Equal(t, I32, typ.TypeArgs[0].Prim)

	_, err = r.ResolveType(&TypeExpr{Kind: TENamed, Name: "Vec"})
	require.NotNil(t, err, "wrong arity must be rejected")
}

func TestUnifyMismatch(t *testing.T) {
	a := &Type{Kind: Primitive, Prim: I32}
	b := &Type{Kind: Primitive, Prim: I64}
	_, err := Unify(a, a)
	require.Nil(t, err)
	_, err = Unify(a, b)
	require.NotNil(t, err)
}

func TestReferenceMutabilityInvariant(t *testing.T) {
	shared := &Type{Kind: Reference, Mut: Shared, Inner: &Type{Kind: Primitive, Prim: I32}}
	excl := &Type{Kind: Reference, Mut: Exclusive, Inner: &Type{Kind: Primitive, Prim: I32}}
	require.False(t, Equal(shared, excl), "references must unify invariantly in mutability")
}

func TestFingerprintStable(t *testing.T) {
	a := &Type{Kind: Struct, DefID: 5, TypeArgs: []*Type{{Kind: Primitive, Prim: I32}}}
	b := &Type{Kind: Struct, DefID: 5, TypeArgs: []*Type{{Kind: Primitive, Prim: I32}}}
	require.Equal(t, a.Fingerprint(), b.Fingerprint())

	c := &Type{Kind: Struct, DefID: 5, TypeArgs: []*Type{{Kind: Primitive, Prim: I64}}}
	require.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestIsCopy(t *testing.T) {
	require.True(t, IsCopy(&Type{Kind: Primitive, Prim: I32}))
	require.True(t, IsCopy(&Type{Kind: Reference, Mut: Shared, Inner: &Type{Kind: Primitive, Prim: I32}}))
	require.False(t, IsCopy(&Type{Kind: Struct, DefID: 1}))
}
