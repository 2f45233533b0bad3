// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package poller implements the abstract I/O readiness source spec §4.7
// ("P") describes, consumed by runtime/sched's dedicated poller thread.
// The platform split (poller_linux.go's epoll backend, poller_kqueue.go's
// kqueue backend for Darwin/BSD, poller_other.go's portable fallback for
// every other GOOS) mirrors the teacher's own per-architecture file
// layout — cmd_local/compile/internal/<arch>/galign.go registers one
// backend per GOARCH the same way these files register one backend per
// relevant GOOS, just keyed on the OS axis instead of the CPU axis.
package poller

import "github.com/meftunca/vex/runtime/sched"

// New constructs the platform-appropriate sched.IOPoller. Exactly one of
// poller_linux.go, poller_kqueue.go, or poller_other.go supplies
// newPlatformPoller for any given build, selected by Go's usual
// filename/GOOS build-constraint matching.
func New() (sched.IOPoller, error) {
	return newPlatformPoller()
}
