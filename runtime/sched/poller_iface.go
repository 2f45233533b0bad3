// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sched

// IOPoller is the abstract interface spec §4.7 ("P") specifies: a single
// readiness source the scheduler drives from its dedicated poller thread.
// runtime/poller provides epoll- and kqueue-backed implementations; sched
// itself only depends on this interface so that it never needs to import
// the platform-specific package (avoiding an import cycle, since
// runtime/poller imports sched for the Interest/Task types its
// registrations carry).
type IOPoller interface {
	// Add registers fd for the given interest, invoking wake from the
	// poller thread when the fd becomes ready. A level-triggered backend
	// (epoll) may invoke it again on later Waits while the fd stays ready;
	// Scheduler.wakeReady's state CAS ignores the repeats.
	// Per spec §4.6's registration lifecycle, Add must first remove any
	// stale registration for fd before installing the new one.
	Add(fd int, interest Interest, wake func()) error
	// Remove cancels any registration for fd. It is not an error to
	// remove an fd with no active registration.
	Remove(fd int) error
	// Wait blocks until at least one registered fd becomes ready (or
	// timeoutMs elapses, 0 meaning return immediately and a negative
	// value meaning block indefinitely), invoking each ready fd's wake
	// callback before returning. It returns the number of fds that fired.
	Wait(timeoutMs int) (int, error)
	// Close releases the poller's OS resources. The poller thread must
	// have already exited its Wait loop.
	Close() error
}
