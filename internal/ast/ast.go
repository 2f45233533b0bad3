// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ast is the typed AST that flows out of surface parsing and trait
// resolution (both handled upstream) and into the ownership analyzer, the
// monomorphizer, and the code generator. It is the contract surface all
// three core subsystems share, so it lives in its own package rather than
// inside any one of them.
package ast

import (
	"github.com/meftunca/vex/internal/diag"
	"github.com/meftunca/vex/internal/types"
)

// AccessMode records the decision the ownership analyzer annotates onto a
// place expression once O3/O4 have run: whether the expression reads the
// place directly, takes a shared loan, or takes an exclusive loan. G's
// expression lowering switches on this instead of re-deriving it.
type AccessMode uint8

const (
	AccessValue AccessMode = iota
	AccessShared
	AccessExclusive
)

// Node is any AST node that carries a source span.
type Node interface {
	Span() diag.Span
}

// Function is one function or method definition after type resolution.
type Function struct {
	ID        types.DefID
	Name      string
	Sig       *types.FunctionSig
	Params    []*Param
	Body      *Block
	SpanPos   diag.Span
}

func (f *Function) Span() diag.Span { return f.SpanPos }

// Param is one function parameter binding.
type Param struct {
	Local *types.Local
	SpanPos diag.Span
}

func (p *Param) Span() diag.Span { return p.SpanPos }

// Block is an ordered sequence of statements introducing its own lexical
// scope.
type Block struct {
	Stmts   []Stmt
	SpanPos diag.Span
}

func (b *Block) Span() diag.Span { return b.SpanPos }

// Stmt is any statement node.
type Stmt interface {
	Node
	stmtNode()
}

// LetStmt is `let x = e;` or `let mut x = e;`.
type LetStmt struct {
	Local   *types.Local
	Mutable bool
	Value   Expr
	SpanPos diag.Span
}

func (s *LetStmt) Span() diag.Span { return s.SpanPos }
func (*LetStmt) stmtNode()         {}

// AssignStmt is `place = e;`.
type AssignStmt struct {
	Place   *Place
	Value   Expr
	SpanPos diag.Span
}

func (s *AssignStmt) Span() diag.Span { return s.SpanPos }
func (*AssignStmt) stmtNode()         {}

// ExprStmt wraps an expression evaluated for effect.
type ExprStmt struct {
	Value   Expr
	SpanPos diag.Span
}

func (s *ExprStmt) Span() diag.Span { return s.SpanPos }
func (*ExprStmt) stmtNode()         {}

// ReturnStmt is `return e;` or bare `return;`.
type ReturnStmt struct {
	Value   Expr // nil for a bare return
	SpanPos diag.Span
}

func (s *ReturnStmt) Span() diag.Span { return s.SpanPos }
func (*ReturnStmt) stmtNode()         {}

// BreakStmt / ContinueStmt target the innermost enclosing loop.
type BreakStmt struct{ SpanPos diag.Span }

func (s *BreakStmt) Span() diag.Span { return s.SpanPos }
func (*BreakStmt) stmtNode()         {}

type ContinueStmt struct{ SpanPos diag.Span }

func (s *ContinueStmt) Span() diag.Span { return s.SpanPos }
func (*ContinueStmt) stmtNode()         {}

// DeferStmt pushes stmt onto the per-function deferred stack.
type DeferStmt struct {
	Call    Expr
	SpanPos diag.Span
}

func (s *DeferStmt) Span() diag.Span { return s.SpanPos }
func (*DeferStmt) stmtNode()         {}

// IfStmt is `if cond { then } else { else }`. Else may be nil.
type IfStmt struct {
	Cond    Expr
	Then    *Block
	Else    *Block
	SpanPos diag.Span
}

func (s *IfStmt) Span() diag.Span { return s.SpanPos }
func (*IfStmt) stmtNode()         {}

// WhileStmt is `while cond { body }`.
type WhileStmt struct {
	Cond    Expr
	Body    *Block
	SpanPos diag.Span
}

func (s *WhileStmt) Span() diag.Span { return s.SpanPos }
func (*WhileStmt) stmtNode()         {}

// MatchArm is one arm of a match expression/statement.
type MatchArm struct {
	Pattern Pattern
	Body    *Block
	SpanPos diag.Span
}

// MatchStmt is `match scrutinee { arms... }` used as a statement.
type MatchStmt struct {
	Scrutinee Expr
	Arms      []*MatchArm
	SpanPos   diag.Span
}

func (s *MatchStmt) Span() diag.Span { return s.SpanPos }
func (*MatchStmt) stmtNode()         {}

// Expr is any expression node.
type Expr interface {
	Node
	Type() *types.Type
	exprNode()
}

type ExprBase struct {
	Ty      *types.Type
	SpanPos diag.Span
}

func (e *ExprBase) Type() *types.Type { return e.Ty }
func (e *ExprBase) Span() diag.Span   { return e.SpanPos }
func (*ExprBase) exprNode()           {}

// Place is a path rooted in a local, indexing through field accesses,
// dereferences, and array indices. Two places are
// compared structurally by Equal/Contains (place.go).
type Place struct {
	Root  *types.Local
	Steps []PlaceStep
}

// PlaceStepKind tags one step of a Place path.
type PlaceStepKind uint8

const (
	StepField PlaceStepKind = iota
	StepDeref
	StepIndex
)

// PlaceStep is one field/deref/index step.
type PlaceStep struct {
	Kind       PlaceStepKind
	FieldName  string // StepField
	FieldType  *types.Type
	IndexExpr  Expr  // StepIndex, when the index is not a compile-time constant
	ConstIndex int64 // StepIndex, when IndexExpr is nil
}

// PlaceExpr reads or takes the address of a Place.
type PlaceExpr struct {
	ExprBase
	P      *Place
	Access AccessMode // annotated by O3/O4; AccessValue until then
}

// LitKind tags the kind of a literal constant.
type LitKind uint8

const (
	LitInt LitKind = iota
	LitFloat
	LitBool
	LitChar
	LitString
)

// LitExpr is a literal constant.
type LitExpr struct {
	ExprBase
	Kind LitKind
	Int  int64
	Flt  float64
	Bool bool
	Str  string
}

// BorrowExpr is `&p` or `&mut p`.
type BorrowExpr struct {
	ExprBase
	Place     *Place
	Exclusive bool
}

// BinOp tags a binary operator.
type BinOp uint8

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd // short-circuit &&
	OpOr  // short-circuit ||
)

// BinExpr is a binary operation.
type BinExpr struct {
	ExprBase
	Op          BinOp
	Left, Right Expr
}

// UnaryOp tags a unary operator.
type UnaryOp uint8

const (
	OpNeg UnaryOp = iota
	OpNot
)

// UnaryExpr is a unary operation.
type UnaryExpr struct {
	ExprBase
	Op   UnaryOp
	Expr Expr
}

// CallArg is one call argument; ByRef/Exclusive mirror how the callee
// receives it (by value move, shared borrow, or exclusive borrow).
type CallArg struct {
	Value     Expr
	ByRef     bool
	Exclusive bool
}

// CallExpr is `callee(args...)`, or a method call lowered to the same
// shape once trait-bound resolution (out of scope) has picked a concrete
// or generic callee.
type CallExpr struct {
	ExprBase
	Callee   types.DefID
	CalleeSig *types.FunctionSig
	TypeArgs []*types.Type // concrete type arguments at this call site, if Callee is generic
	Receiver *CallArg      // non-nil for method calls
	Args     []CallArg
}

// CastKind tags the conversion implemented by a CastExpr.
type CastKind uint8

const (
	CastIntExtend CastKind = iota
	CastIntTruncate
	CastFloatCast
	CastIntToFloat
	CastFloatToInt
	CastPointerCast
)

// CastExpr converts Expr's value from its current type to To.
type CastExpr struct {
	ExprBase
	Kind CastKind
	Expr Expr
	To   *types.Type
}

// StructLit is `StructName { field: value, ... }`.
type StructLit struct {
	ExprBase
	Def    *types.StructDef
	Fields []StructLitField
}

// StructLitField is one `field: value` entry of a StructLit.
type StructLitField struct {
	Name  string
	Value Expr
}

// EnumLit is `EnumName::Variant(payload...)`.
type EnumLit struct {
	ExprBase
	Def       *types.EnumDef
	Variant   int
	Payload   []Expr
}

// TupleLit is `(a, b, c)`.
type TupleLit struct {
	ExprBase
	Items []Expr
}

// ClosureCapture is one captured place and the mode the closure body needs
// it in, decided by the ownership analyzer's borrow inference viewing the
// closure body.
type ClosureCapture struct {
	Place     *Place
	Access    AccessMode
	ByMove    bool
}

// ClosureExpr is a closure literal. Captures is populated by the ownership
// analyzer before code generation lowers it to an anonymous capture struct.
type ClosureExpr struct {
	ExprBase
	Params   []*Param
	Body     *Block
	IsMove   bool
	Captures []ClosureCapture
}

// AwaitExpr is `await e` inside an async function body.
type AwaitExpr struct {
	ExprBase
	Inner Expr
}

// IfExpr/MatchExpr are the expression-position forms (all arms must agree
// on Type()).
type IfExpr struct {
	ExprBase
	Cond       Expr
	Then, Else Expr
}

type MatchExpr struct {
	ExprBase
	Scrutinee Expr
	Arms      []*MatchExprArm
}

type MatchExprArm struct {
	Pattern Pattern
	Value   Expr
}

// Pattern is a match pattern.
type Pattern interface {
	patternNode()
}

type WildcardPattern struct{}

func (*WildcardPattern) patternNode() {}

// BindingPattern binds the matched value (or a sub-place of the scrutinee)
// to a new local, by value or by move according to the scrutinee's
// ownership mode.
type BindingPattern struct {
	Local *types.Local
	ByRef bool
}

func (*BindingPattern) patternNode() {}

type LiteralPattern struct {
	Lit *LitExpr
}

func (*LiteralPattern) patternNode() {}

type TuplePattern struct {
	Items []Pattern
}

func (*TuplePattern) patternNode() {}

type StructPattern struct {
	Def    *types.StructDef
	Fields map[string]Pattern
}

func (*StructPattern) patternNode() {}

// VariantPattern destructures one enum variant by discriminant.
type VariantPattern struct {
	Def     *types.EnumDef
	Variant int
	Payload []Pattern
}

func (*VariantPattern) patternNode() {}
