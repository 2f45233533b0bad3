// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ir is the backend-agnostic intermediate representation that
// internal/codegen lowers the typed, monomorphized AST into. Every
// architecture backend consumes the same ir.Function; none of them — and
// none of internal/codegen's lowering logic — knows anything about a
// specific target instruction set or object file format at this layer.
package ir

import "github.com/meftunca/vex/internal/types"

// Op tags the operation a Value computes.
type Op int

const (
	OpConst Op = iota
	OpParam
	OpAlloca
	OpLoad
	OpStore
	OpBinOp
	OpICmp
	OpCast
	OpGEP
	OpCall
	OpPhi
	OpMakeClosure // builds a capture-struct + function-pointer pair
	OpPoll        // polls an async state machine's suspension point
	OpUndef       // placeholder value for a backend capability codegen couldn't lower
)

func (o Op) String() string {
	switch o {
	case OpConst:
		return "const"
	case OpParam:
		return "param"
	case OpAlloca:
		return "alloca"
	case OpLoad:
		return "load"
	case OpStore:
		return "store"
	case OpBinOp:
		return "binop"
	case OpICmp:
		return "icmp"
	case OpCast:
		return "cast"
	case OpGEP:
		return "gep"
	case OpCall:
		return "call"
	case OpPhi:
		return "phi"
	case OpMakeClosure:
		return "make_closure"
	case OpPoll:
		return "poll"
	case OpUndef:
		return "undef"
	default:
		return "invalid"
	}
}

// BinOp mirrors ast.BinOp but at IR level, where short-circuit && and ||
// have already been lowered to control flow by the time a value reaches
// here.
type BinOp uint8

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Rem
	And
	Or
	Xor
	Shl
	Shr
)

// CmpPred is an integer/pointer comparison predicate.
type CmpPred uint8

const (
	CmpEq CmpPred = iota
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

// CastOp mirrors ast.CastKind at IR level.
type CastOp uint8

const (
	CastSignExtend CastOp = iota
	CastZeroExtend
	CastTruncate
	CastFloatExt
	CastFloatTrunc
	CastIntToFloat
	CastFloatToInt
	CastBitcast
)

// Value is one instruction result. Values are referenced by pointer
// identity within a Function; there is no separate symbol table.
type Value struct {
	ID   int
	Op   Op
	Type *types.Type

	// OpConst
	Const interface{}

	// OpBinOp
	BinOp BinOp
	// OpICmp
	Pred CmpPred
	// OpCast
	CastOp CastOp

	// Operands, meaning depends on Op:
	//   OpLoad:  Args[0] = pointer
	//   OpStore: Args[0] = pointer, Args[1] = value
	//   OpBinOp/OpICmp: Args[0], Args[1]
	//   OpCast: Args[0]
	//   OpGEP: Args[0] = base
	//   OpCall: Args = arguments (receiver first, if any)
	//   OpPhi: Args = one value per predecessor, in Block.Preds order
	Args []*Value

	// OpAlloca
	Name string

	// OpGEP
	Field string
	Index int64 // used when Field == "" (tuple/array index); -1 means the
	// index is a runtime value in Args[1] instead of this literal (see
	// FuncBuilder.GEPIndexValue)

	// OpCall
	Target  string
	CallSig *types.FunctionSig
}

// Block is a single-entry, single-exit straight-line sequence of Values
// ending in a Term.
type Block struct {
	Name   string
	Values []*Value
	Term   *Term
	Preds  []*Block
}

// TermKind tags how a Block ends.
type TermKind uint8

const (
	TermRet TermKind = iota
	TermBr
	TermCondBr
	TermUnreachable
)

// Term is a Block's control-flow-transferring final instruction.
type Term struct {
	Kind TermKind
	// TermRet
	RetVal *Value
	// TermBr
	Target *Block
	// TermCondBr
	Cond       *Value
	Then, Else *Block
}

// Function is one lowered function body: parameters, an entry block, and
// every block reachable from it.
type Function struct {
	Name    string
	Params  []*Value
	Entry   *Block
	Blocks  []*Block
	Result  *types.Type
	IsAsync bool
}

// Module is a set of lowered functions produced by one compilation unit,
// ready for a target backend to emit.
type Module struct {
	Name      string
	Functions []*Function
}
