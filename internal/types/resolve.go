// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"fmt"

	"github.com/meftunca/vex/internal/diag"
)

// TypeExprKind tags the shape of an unresolved type-expression node as
// produced by surface parsing (handled upstream). This is the minimal
// contract surface the resolver consumes — just enough structure to
// resolve names and substitute generics, nothing about syntax.
type TypeExprKind uint8

const (
	TENamed TypeExprKind = iota
	TEReference
	TERawPointer
	TEArray
	TESlice
	TETuple
	TEFunction
	TEUnit
	TENever
)

// TypeExpr is an untyped type-expression node.
type TypeExpr struct {
	Kind TypeExprKind
	Span diag.Span

	// TENamed: a path possibly applied to type arguments, e.g. Vec<i32>.
	Name     string
	Args     []*TypeExpr

	// TEReference / TERawPointer
	Mut   Mutability
	Inner *TypeExpr

	// TEArray
	Len int64

	// TETuple
	Items []*TypeExpr

	// TEFunction
	Params  []*TypeExpr
	Result  *TypeExpr
	IsAsync bool
}

// Resolver resolves type-expression nodes against a symbol table and an
// active generic-parameter substitution, the shared machinery behind
// ResolveType, Lookup, and Unify.
type Resolver struct {
	Symbols *SymbolTable
	Structs map[DefID]*StructDef
	Enums   map[DefID]*EnumDef
	Traits  map[DefID]*TraitDef

	// activeParams maps a generic parameter name to the Type it's bound to
	// during monomorphization, or to a Generic(param) placeholder while
	// still polymorphic. Substitution happens here, so ResolveType never
	// needs a separate substitution pass.
	activeParams map[string]*Type
}

// NewResolver builds a resolver over a (possibly still being populated)
// definition universe.
func NewResolver(st *SymbolTable) *Resolver {
	return &Resolver{
		Symbols:      st,
		Structs:      make(map[DefID]*StructDef),
		Enums:        make(map[DefID]*EnumDef),
		Traits:       make(map[DefID]*TraitDef),
		activeParams: make(map[string]*Type),
	}
}

// PushGenericParam binds name to typ for the duration of resolving a
// generic body (used both in ordinary polymorphic resolution, where typ is
// a Generic placeholder, and in internal/mono substitution, where typ is
// concrete).
func (r *Resolver) PushGenericParam(name string, typ *Type) (restore func()) {
	prev, had := r.activeParams[name]
	r.activeParams[name] = typ
	return func() {
		if had {
			r.activeParams[name] = prev
		} else {
			delete(r.activeParams, name)
		}
	}
}

// ResolveError reports a name or arity failure while resolving a type
// expression.
type ResolveError struct {
	Span diag.Span
	Msg  string
}

func (e *ResolveError) Error() string { return e.Msg }

// ResolveType walks a type-expression node, resolving names through the
// symbol table and substituting any active generic parameter.
func (r *Resolver) ResolveType(node *TypeExpr) (*Type, *ResolveError) {
	if node == nil {
		return nil, &ResolveError{Msg: "nil type expression"}
	}
	switch node.Kind {
	case TEUnit:
		return &Type{Kind: Unit}, nil
	case TENever:
		return &Type{Kind: Never}, nil
	case TENamed:
		return r.resolveNamed(node)
	case TEReference:
		inner, err := r.ResolveType(node.Inner)
		if err != nil {
			return nil, err
		}
		return &Type{Kind: Reference, Mut: node.Mut, Inner: inner}, nil
	case TERawPointer:
		inner, err := r.ResolveType(node.Inner)
		if err != nil {
			return nil, err
		}
		return &Type{Kind: RawPointer, Mut: node.Mut, Inner: inner}, nil
	case TEArray:
		inner, err := r.ResolveType(node.Inner)
		if err != nil {
			return nil, err
		}
		return &Type{Kind: Array, Inner: inner, Len: node.Len}, nil
	case TESlice:
		inner, err := r.ResolveType(node.Inner)
		if err != nil {
			return nil, err
		}
		return &Type{Kind: Slice, Inner: inner}, nil
	case TETuple:
		items := make([]*Type, len(node.Items))
		for i, it := range node.Items {
			rt, err := r.ResolveType(it)
			if err != nil {
				return nil, err
			}
			items[i] = rt
		}
		return &Type{Kind: Tuple, Items: items}, nil
	case TEFunction:
		params := make([]*Type, len(node.Params))
		for i, p := range node.Params {
			rt, err := r.ResolveType(p)
			if err != nil {
				return nil, err
			}
			params[i] = rt
		}
		result, err := r.ResolveType(node.Result)
		if err != nil {
			return nil, err
		}
		return &Type{Kind: Function, Params: params, Result: result, IsAsync: node.IsAsync}, nil
	default:
		return nil, &ResolveError{Span: node.Span, Msg: "unknown type expression kind"}
	}
}

func primByName(name string) (PrimKind, bool) {
	for i, n := range primNames {
		if n == name {
			return PrimKind(i), true
		}
	}
	return 0, false
}

func (r *Resolver) resolveNamed(node *TypeExpr) (*Type, *ResolveError) {
	if bound, ok := r.activeParams[node.Name]; ok {
		return bound, nil
	}
	if prim, ok := primByName(node.Name); ok {
		return &Type{Kind: Primitive, Prim: prim}, nil
	}
	sym, err := r.Symbols.Lookup(node.Name)
	if err != nil {
		return nil, &ResolveError{Span: node.Span, Msg: fmt.Sprintf("undefined type %q", node.Name)}
	}
	args := make([]*Type, len(node.Args))
	for i, a := range node.Args {
		rt, rerr := r.ResolveType(a)
		if rerr != nil {
			return nil, rerr
		}
		args[i] = rt
	}
	if sd, ok := r.Structs[sym.Def]; ok {
		if len(args) != len(sd.Generic) {
			return nil, &ResolveError{Span: node.Span, Msg: fmt.Sprintf("%s takes %d type argument(s), got %d", node.Name, len(sd.Generic), len(args))}
		}
		return &Type{Kind: Struct, DefID: sym.Def, TypeArgs: args}, nil
	}
	if ed, ok := r.Enums[sym.Def]; ok {
		if len(args) != len(ed.Generic) {
			return nil, &ResolveError{Span: node.Span, Msg: fmt.Sprintf("%s takes %d type argument(s), got %d", node.Name, len(ed.Generic), len(args))}
		}
		return &Type{Kind: Enum, DefID: sym.Def, TypeArgs: args}, nil
	}
	if _, ok := r.Traits[sym.Def]; ok {
		return &Type{Kind: TraitObject, DefID: sym.Def, TypeArgs: args}, nil
	}
	return nil, &ResolveError{Span: node.Span, Msg: fmt.Sprintf("%q does not name a type", node.Name)}
}
