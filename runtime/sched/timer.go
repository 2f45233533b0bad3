// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sched

import (
	"container/heap"
	"sync"
	"time"
)

// timerEntry is one pending sleep() or timeout registration (spec §4.7:
// "a min-heap keyed by deadline lets the poller thread wake the single
// next-expiring task without scanning the whole set").
type timerEntry struct {
	deadline time.Time
	task     *Task
	index    int // maintained by container/heap
}

// timerHeap implements container/heap.Interface ordered by deadline,
// earliest first.
type timerHeap []*timerEntry

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].deadline.Before(h[j].deadline) }
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *timerHeap) Push(x any) {
	e := x.(*timerEntry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// TimerWheel is the scheduler's shared deadline queue. One goroutine (the
// scheduler's timer loop, started by Scheduler.Run) owns popping expired
// entries; any worker may register a new deadline concurrently, so the
// heap itself is mutex-guarded — consistent with Queue's "mutex over
// lock-free" choice for the same ABA reasons spec §9 raises.
type TimerWheel struct {
	mu sync.Mutex
	h  timerHeap
}

func NewTimerWheel() *TimerWheel {
	return &TimerWheel{}
}

// Register schedules t to become ready again at deadline.
func (w *TimerWheel) Register(t *Task, deadline time.Time) {
	w.mu.Lock()
	heap.Push(&w.h, &timerEntry{deadline: deadline, task: t})
	w.mu.Unlock()
}

// NextDeadline reports the earliest pending deadline, if any, for the
// timer loop to compute how long it may safely block in the poller.
func (w *TimerWheel) NextDeadline() (time.Time, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.h) == 0 {
		return time.Time{}, false
	}
	return w.h[0].deadline, true
}

// PopExpired removes and returns every entry whose deadline is <= now.
func (w *TimerWheel) PopExpired(now time.Time) []*Task {
	w.mu.Lock()
	defer w.mu.Unlock()
	var expired []*Task
	for len(w.h) > 0 && !w.h[0].deadline.After(now) {
		e := heap.Pop(&w.h).(*timerEntry)
		expired = append(expired, e.task)
	}
	return expired
}

// Len reports the number of pending timers, for debug.go's snapshot.
func (w *TimerWheel) Len() int {
	w.mu.Lock()
	n := len(w.h)
	w.mu.Unlock()
	return n
}
