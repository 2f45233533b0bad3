// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mono

import (
	"github.com/meftunca/vex/internal/ast"
	"github.com/meftunca/vex/internal/types"
)

// substituteType rebuilds t with every Generic leaf bound in subst replaced
// by its concrete argument, recursing through every composite type shape so
// nested generics (a generic struct field typed in terms of its own
// container's type parameter, for instance) get substituted too.
func substituteType(t *types.Type, subst map[*types.GenericParam]*types.Type) *types.Type {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case types.Generic:
		if repl, ok := subst[t.Param]; ok {
			return repl
		}
		return t
	case types.Struct, types.Enum, types.TraitObject:
		if len(t.TypeArgs) == 0 {
			return t
		}
		args := make([]*types.Type, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			args[i] = substituteType(a, subst)
		}
		out := *t
		out.TypeArgs = args
		return &out
	case types.Function:
		params := make([]*types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = substituteType(p, subst)
		}
		out := *t
		out.Params = params
		out.Result = substituteType(t.Result, subst)
		return &out
	case types.Reference, types.RawPointer:
		out := *t
		out.Inner = substituteType(t.Inner, subst)
		return &out
	case types.Array:
		out := *t
		out.Inner = substituteType(t.Inner, subst)
		return &out
	case types.Slice:
		out := *t
		out.Inner = substituteType(t.Inner, subst)
		return &out
	case types.Tuple:
		items := make([]*types.Type, len(t.Items))
		for i, item := range t.Items {
			items[i] = substituteType(item, subst)
		}
		out := *t
		out.Items = items
		return &out
	default:
		return t
	}
}

// cloner deep-copies a generic function body once per instantiation,
// substituting every type and re-pointing every *types.Local so that two
// instantiations of the same template never alias each other's locals —
// the ownership analyzer and code generator both key state off Local
// pointer identity.
type cloner struct {
	subst  map[*types.GenericParam]*types.Type
	locals map[*types.Local]*types.Local
}

func newCloner(subst map[*types.GenericParam]*types.Type) *cloner {
	return &cloner{subst: subst, locals: make(map[*types.Local]*types.Local)}
}

func (c *cloner) ty(t *types.Type) *types.Type { return substituteType(t, c.subst) }

func (c *cloner) local(l *types.Local) *types.Local {
	if l == nil {
		return nil
	}
	if nl, ok := c.locals[l]; ok {
		return nl
	}
	nl := &types.Local{ID: l.ID, Name: l.Name, Type: c.ty(l.Type), DeclaredMutable: l.DeclaredMutable, Span: l.Span}
	c.locals[l] = nl
	return nl
}

func (c *cloner) place(p *ast.Place) *ast.Place {
	if p == nil {
		return nil
	}
	steps := make([]ast.PlaceStep, len(p.Steps))
	for i, s := range p.Steps {
		steps[i] = ast.PlaceStep{Kind: s.Kind, FieldName: s.FieldName, FieldType: c.ty(s.FieldType), IndexExpr: c.expr(s.IndexExpr), ConstIndex: s.ConstIndex}
	}
	return &ast.Place{Root: c.local(p.Root), Steps: steps}
}

func (c *cloner) base(e ast.ExprBase) ast.ExprBase {
	return ast.ExprBase{Ty: c.ty(e.Ty), SpanPos: e.SpanPos}
}

func (c *cloner) expr(e ast.Expr) ast.Expr {
	if e == nil {
		return nil
	}
	switch v := e.(type) {
	case *ast.PlaceExpr:
		return &ast.PlaceExpr{ExprBase: c.base(v.ExprBase), P: c.place(v.P), Access: v.Access}
	case *ast.LitExpr:
		return &ast.LitExpr{ExprBase: c.base(v.ExprBase), Kind: v.Kind, Int: v.Int, Flt: v.Flt, Bool: v.Bool, Str: v.Str}
	case *ast.BorrowExpr:
		return &ast.BorrowExpr{ExprBase: c.base(v.ExprBase), Place: c.place(v.Place), Exclusive: v.Exclusive}
	case *ast.BinExpr:
		return &ast.BinExpr{ExprBase: c.base(v.ExprBase), Op: v.Op, Left: c.expr(v.Left), Right: c.expr(v.Right)}
	case *ast.UnaryExpr:
		return &ast.UnaryExpr{ExprBase: c.base(v.ExprBase), Op: v.Op, Expr: c.expr(v.Expr)}
	case *ast.CastExpr:
		return &ast.CastExpr{ExprBase: c.base(v.ExprBase), Kind: v.Kind, Expr: c.expr(v.Expr), To: c.ty(v.To)}
	case *ast.CallExpr:
		args := make([]ast.CallArg, len(v.Args))
		for i, a := range v.Args {
			args[i] = ast.CallArg{Value: c.expr(a.Value), ByRef: a.ByRef, Exclusive: a.Exclusive}
		}
		var recv *ast.CallArg
		if v.Receiver != nil {
			recv = &ast.CallArg{Value: c.expr(v.Receiver.Value), ByRef: v.Receiver.ByRef, Exclusive: v.Receiver.Exclusive}
		}
		typeArgs := make([]*types.Type, len(v.TypeArgs))
		for i, t := range v.TypeArgs {
			typeArgs[i] = c.ty(t)
		}
		return &ast.CallExpr{ExprBase: c.base(v.ExprBase), Callee: v.Callee, CalleeSig: v.CalleeSig, TypeArgs: typeArgs, Receiver: recv, Args: args}
	case *ast.StructLit:
		fields := make([]ast.StructLitField, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = ast.StructLitField{Name: f.Name, Value: c.expr(f.Value)}
		}
		return &ast.StructLit{ExprBase: c.base(v.ExprBase), Def: v.Def, Fields: fields}
	case *ast.EnumLit:
		payload := make([]ast.Expr, len(v.Payload))
		for i, p := range v.Payload {
			payload[i] = c.expr(p)
		}
		return &ast.EnumLit{ExprBase: c.base(v.ExprBase), Def: v.Def, Variant: v.Variant, Payload: payload}
	case *ast.TupleLit:
		items := make([]ast.Expr, len(v.Items))
		for i, it := range v.Items {
			items[i] = c.expr(it)
		}
		return &ast.TupleLit{ExprBase: c.base(v.ExprBase), Items: items}
	case *ast.ClosureExpr:
		params := make([]*ast.Param, len(v.Params))
		for i, p := range v.Params {
			params[i] = &ast.Param{Local: c.local(p.Local), SpanPos: p.SpanPos}
		}
		captures := make([]ast.ClosureCapture, len(v.Captures))
		for i, cap := range v.Captures {
			captures[i] = ast.ClosureCapture{Place: c.place(cap.Place), Access: cap.Access, ByMove: cap.ByMove}
		}
		return &ast.ClosureExpr{ExprBase: c.base(v.ExprBase), Params: params, Body: c.block(v.Body), IsMove: v.IsMove, Captures: captures}
	case *ast.AwaitExpr:
		return &ast.AwaitExpr{ExprBase: c.base(v.ExprBase), Inner: c.expr(v.Inner)}
	case *ast.IfExpr:
		return &ast.IfExpr{ExprBase: c.base(v.ExprBase), Cond: c.expr(v.Cond), Then: c.expr(v.Then), Else: c.expr(v.Else)}
	case *ast.MatchExpr:
		arms := make([]*ast.MatchExprArm, len(v.Arms))
		for i, a := range v.Arms {
			arms[i] = &ast.MatchExprArm{Pattern: c.pattern(a.Pattern), Value: c.expr(a.Value)}
		}
		return &ast.MatchExpr{ExprBase: c.base(v.ExprBase), Scrutinee: c.expr(v.Scrutinee), Arms: arms}
	default:
		return e
	}
}

func (c *cloner) pattern(p ast.Pattern) ast.Pattern {
	if p == nil {
		return nil
	}
	switch v := p.(type) {
	case *ast.WildcardPattern:
		return &ast.WildcardPattern{}
	case *ast.BindingPattern:
		return &ast.BindingPattern{Local: c.local(v.Local), ByRef: v.ByRef}
	case *ast.LiteralPattern:
		return &ast.LiteralPattern{Lit: c.expr(v.Lit).(*ast.LitExpr)}
	case *ast.TuplePattern:
		items := make([]ast.Pattern, len(v.Items))
		for i, it := range v.Items {
			items[i] = c.pattern(it)
		}
		return &ast.TuplePattern{Items: items}
	case *ast.StructPattern:
		fields := make(map[string]ast.Pattern, len(v.Fields))
		for k, fp := range v.Fields {
			fields[k] = c.pattern(fp)
		}
		return &ast.StructPattern{Def: v.Def, Fields: fields}
	case *ast.VariantPattern:
		payload := make([]ast.Pattern, len(v.Payload))
		for i, pp := range v.Payload {
			payload[i] = c.pattern(pp)
		}
		return &ast.VariantPattern{Def: v.Def, Variant: v.Variant, Payload: payload}
	default:
		return p
	}
}

func (c *cloner) stmt(s ast.Stmt) ast.Stmt {
	switch v := s.(type) {
	case *ast.LetStmt:
		return &ast.LetStmt{Local: c.local(v.Local), Mutable: v.Mutable, Value: c.expr(v.Value), SpanPos: v.SpanPos}
	case *ast.AssignStmt:
		return &ast.AssignStmt{Place: c.place(v.Place), Value: c.expr(v.Value), SpanPos: v.SpanPos}
	case *ast.ExprStmt:
		return &ast.ExprStmt{Value: c.expr(v.Value), SpanPos: v.SpanPos}
	case *ast.ReturnStmt:
		return &ast.ReturnStmt{Value: c.expr(v.Value), SpanPos: v.SpanPos}
	case *ast.BreakStmt:
		return &ast.BreakStmt{SpanPos: v.SpanPos}
	case *ast.ContinueStmt:
		return &ast.ContinueStmt{SpanPos: v.SpanPos}
	case *ast.DeferStmt:
		return &ast.DeferStmt{Call: c.expr(v.Call), SpanPos: v.SpanPos}
	case *ast.IfStmt:
		return &ast.IfStmt{Cond: c.expr(v.Cond), Then: c.block(v.Then), Else: c.block(v.Else), SpanPos: v.SpanPos}
	case *ast.WhileStmt:
		return &ast.WhileStmt{Cond: c.expr(v.Cond), Body: c.block(v.Body), SpanPos: v.SpanPos}
	case *ast.MatchStmt:
		arms := make([]*ast.MatchArm, len(v.Arms))
		for i, a := range v.Arms {
			arms[i] = &ast.MatchArm{Pattern: c.pattern(a.Pattern), Body: c.block(a.Body), SpanPos: a.SpanPos}
		}
		return &ast.MatchStmt{Scrutinee: c.expr(v.Scrutinee), Arms: arms, SpanPos: v.SpanPos}
	default:
		return s
	}
}

func (c *cloner) block(b *ast.Block) *ast.Block {
	if b == nil {
		return nil
	}
	stmts := make([]ast.Stmt, len(b.Stmts))
	for i, s := range b.Stmts {
		stmts[i] = c.stmt(s)
	}
	return &ast.Block{Stmts: stmts, SpanPos: b.SpanPos}
}
