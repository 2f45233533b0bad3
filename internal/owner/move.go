// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package owner

import (
	"github.com/meftunca/vex/internal/ast"
	"github.com/meftunca/vex/internal/diag"
)

// MoveRecord is a transfer of ownership of a non-copyable value out of its
// source place.
type MoveRecord struct {
	Place  *ast.Place
	Span   diag.Span
	Reason string
}

// movedSet is the per-function Moved ⊆ Place lattice element, keyed on
// MoveRecord rather than a bare Place so that a later use-after-move
// diagnostic can point back at the span and reason of the move that
// caused it.
// It's small (one entry per moved place in a function), so a slice with
// linear prefix/extension scans is simpler and plenty fast compared to a
// trie keyed on path segments.
type movedSet struct {
	records []MoveRecord
}

func newMovedSet() movedSet { return movedSet{} }

// clone returns an independent copy, used when forking analysis across
// if/else branches or loop fixed-point iterations.
func (m movedSet) clone() movedSet {
	out := make([]MoveRecord, len(m.records))
	copy(out, m.records)
	return movedSet{records: out}
}

// anyPrefixMoved reports whether some prefix of p (including p itself) is
// already in the set: the use-after-move condition for reading p. The
// returned MoveRecord carries the span of the move that conflicts with p.
func (m movedSet) anyPrefixMoved(p *ast.Place) (*MoveRecord, bool) {
	for i := range m.records {
		if m.records[i].Place.Contains(p) {
			return &m.records[i], true
		}
	}
	return nil, false
}

// add records rec.Place (and nothing else — extensions of it are still
// readable only through it itself, which is already covered since it
// contains them) as moved, keeping the first record seen for a given place.
func (m *movedSet) add(rec MoveRecord) {
	if _, already := m.anyPrefixMoved(rec.Place); already {
		return
	}
	m.records = append(m.records, rec)
}

// reinit removes every prefix and extension of q from the set: q := e
// freshly initializes q.
func (m *movedSet) reinit(q *ast.Place) {
	kept := m.records[:0]
	for _, rec := range m.records {
		if rec.Place.Overlaps(q) {
			continue
		}
		kept = append(kept, rec)
	}
	m.records = kept
}

// union merges two sets from converging control-flow paths.
func union(a, b movedSet) movedSet {
	out := a.clone()
	for _, rec := range b.records {
		out.add(rec)
	}
	return out
}

// equalSets reports whether a and b contain the same places, used to detect
// a fixed point in the while-loop back-edge iteration.
func equalSets(a, b movedSet) bool {
	if len(a.records) != len(b.records) {
		return false
	}
	for _, rec := range a.records {
		found := false
		for _, other := range b.records {
			if rec.Place.Equal(other.Place) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
