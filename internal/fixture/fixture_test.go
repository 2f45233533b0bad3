// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fixture

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meftunca/vex/internal/diag"
	"github.com/meftunca/vex/internal/owner"
)

func TestDeferOrderPassesOwnershipAnalysis(t *testing.T) {
	sink := &diag.Sink{}
	ok := owner.New(sink).AnalyzeFunction(DeferOrder())
	require.True(t, ok, "unexpected diagnostics: %v", sink.Diagnostics())
}

// TestIdentityMonoProducesExactlyTwoInstantiations is spec §8 seed test 3
// end to end: two calls at i32 and one at i64 must yield exactly
// {id_i32, id_i64}, with id_i32 deduplicated across its two call sites.
func TestIdentityMonoProducesExactlyTwoInstantiations(t *testing.T) {
	m, entries := IdentityMono()
	insts, err := m.DiscoverAll(context.Background(), entries, 4)
	require.NoError(t, err)
	require.Len(t, insts, 2)

	names := map[string]bool{}
	for _, inst := range insts {
		names[inst.Name] = true
	}
	require.True(t, names["id_i32"])
	require.True(t, names["id_i64"])
}

func TestByNameUnknownProgramErrors(t *testing.T) {
	_, err := ByName("does-not-exist")
	require.Error(t, err)
}
