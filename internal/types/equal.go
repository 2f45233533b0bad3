// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

// Equal reports structural equality between a and b. Generic parameters
// unify only with themselves, and references compare
// invariantly in mutability but recursively (covariantly, in the sense that
// only the referent is re-checked) in the referent type.
func Equal(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Primitive:
		return a.Prim == b.Prim
	case Unit, Never:
		return true
	case Struct, Enum, TraitObject:
		if a.DefID != b.DefID || len(a.TypeArgs) != len(b.TypeArgs) {
			return false
		}
		for i := range a.TypeArgs {
			if !Equal(a.TypeArgs[i], b.TypeArgs[i]) {
				return false
			}
		}
		return true
	case Function:
		if a.IsAsync != b.IsAsync || len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !Equal(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return Equal(a.Result, b.Result)
	case Reference, RawPointer:
		return a.Mut == b.Mut && Equal(a.Inner, b.Inner)
	case Array:
		return a.Len == b.Len && Equal(a.Inner, b.Inner)
	case Slice:
		return Equal(a.Inner, b.Inner)
	case Tuple:
		if len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !Equal(a.Items[i], b.Items[i]) {
				return false
			}
		}
		return true
	case Generic:
		return a.Param == b.Param
	default:
		return false
	}
}

// Unify performs structural unification of a and b. On success
// it returns the more specific of the two (they are equal under Equal, so
// either would do; Vex returns a for determinism). On failure it returns a
// *Mismatch describing the conflicting pair.
func Unify(a, b *Type) (*Type, *Mismatch) {
	if Equal(a, b) {
		return a, nil
	}
	return nil, &Mismatch{A: a, B: b}
}

// IsCopy reports whether values of t are implicitly duplicated on read
// rather than moved: primitives, shared references, raw pointers, and
// tuples/arrays of Copy types. Struct/enum Copy-ness is a property of the
// definition (a marker the trait-bounds checker attaches, handled
// upstream); this function only decides the structural cases the
// ownership analyzer can determine on its own.
func IsCopy(t *Type) bool {
	switch t.Kind {
	case Primitive, Unit, Never:
		return true
	case Reference:
		return t.Mut == Shared
	case RawPointer:
		return true
	case Tuple:
		for _, item := range t.Items {
			if !IsCopy(item) {
				return false
			}
		}
		return true
	case Array:
		return IsCopy(t.Inner)
	default:
		return false
	}
}
