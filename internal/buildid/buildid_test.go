// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buildid

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meftunca/vex/internal/ir"
	"github.com/meftunca/vex/internal/types"
)

func sampleModule(name string) *ir.Module {
	i32 := &types.Type{Kind: types.Primitive, Prim: types.I32}
	b := ir.NewFuncBuilder("f")
	p := b.Param(i32, "x")
	b.Ret(p)
	return &ir.Module{Name: name, Functions: []*ir.Function{b.Fn}}
}

func TestModuleIDDeterministic(t *testing.T) {
	a := ModuleID(sampleModule("unit"))
	b := ModuleID(sampleModule("unit"))
	require.Equal(t, a, b)
}

func TestModuleIDDiffersOnName(t *testing.T) {
	a := ModuleID(sampleModule("unit_a"))
	b := ModuleID(sampleModule("unit_b"))
	require.NotEqual(t, a, b)
}
