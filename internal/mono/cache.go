// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mono

import (
	"sort"
	"sync"

	"github.com/meftunca/vex/internal/ast"
	"github.com/meftunca/vex/internal/types"
)

// Instantiation is one concrete, fully substituted copy of a generic
// function.
type Instantiation struct {
	Key  InstantiationKey
	Name string // mangled, e.g. "id_i32"
	Args []*types.Type
	Func *ast.Function

	seq int // discovery order, for deterministic output regardless of goroutine scheduling
}

// entry is the cache slot for one key: either still being built (inst nil,
// done unclosed) or finished. Recursive instantiation graphs — a generic
// function whose body calls itself with the same arguments — terminate
// because the second lookup finds this entry already reserved and reuses
// it instead of recursing again.
type entry struct {
	inst *Instantiation
	done chan struct{}
}

// InstantiationCache deduplicates instantiations across every discovery
// path that reaches the same (function, type arguments) pair, and hands out
// the discovery sequence number each key was first requested at so the
// caller can sort a parallel discovery run back into a deterministic order.
type InstantiationCache struct {
	mu      sync.Mutex
	entries map[InstantiationKey]*entry
	nextSeq int
}

// NewInstantiationCache returns an empty cache.
func NewInstantiationCache() *InstantiationCache {
	return &InstantiationCache{entries: make(map[InstantiationKey]*entry)}
}

// reserve returns the existing entry for key if one exists (waiting for it
// to finish if another goroutine is still building it), or creates and
// returns a fresh reserved entry plus true to signal the caller is
// responsible for finishing it via finish.
func (c *InstantiationCache) reserve(key InstantiationKey) (*entry, bool) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		<-e.done
		return e, false
	}
	e := &entry{done: make(chan struct{})}
	c.entries[key] = e
	c.mu.Unlock()
	return e, true
}

func (c *InstantiationCache) finish(e *entry, inst *Instantiation) {
	c.mu.Lock()
	inst.seq = c.nextSeq
	c.nextSeq++
	c.mu.Unlock()
	e.inst = inst
	close(e.done)
}

// All returns every completed instantiation, ordered by discovery sequence.
func (c *InstantiationCache) All() []*Instantiation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Instantiation, 0, len(c.entries))
	for _, e := range c.entries {
		if e.inst != nil {
			out = append(out, e.inst)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Len reports how many distinct instantiations have completed.
func (c *InstantiationCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if e.inst != nil {
			n++
		}
	}
	return n
}
