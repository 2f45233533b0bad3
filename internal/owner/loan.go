// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package owner

import (
	"github.com/meftunca/vex/internal/ast"
	"github.com/meftunca/vex/internal/diag"
)

// LoanKind distinguishes shared from exclusive loans.
type LoanKind uint8

const (
	LoanShared LoanKind = iota
	LoanExclusive
)

// interval is a [Start, End] range of linear statement indices approximating
// the loan's lifetime: the lexical region from the borrow expression to the
// last use of the reference it produced.
type interval struct {
	Start, End int
}

func (a interval) overlaps(b interval) bool {
	return a.Start <= b.End && b.Start <= a.End
}

// Loan is a record that a reference exists to a place.
type Loan struct {
	ID        int
	Place     *ast.Place
	Kind      LoanKind
	Lifetime  interval
	IssuedAt  diag.Span
	BoundName string // local name the loan is bound to, for diagnostics
}
