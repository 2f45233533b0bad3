// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build darwin || freebsd || netbsd || openbsd || dragonfly

package poller

import (
	"sync"

	"golang.org/x/sys/unix"

	"github.com/meftunca/vex/runtime/sched"
)

// kqueuePoller implements sched.IOPoller over BSD/Darwin's kqueue (spec
// §4.7's other named backend).
type kqueuePoller struct {
	kq int

	mu    sync.Mutex
	wakes map[int]func()
}

func newPlatformPoller() (sched.IOPoller, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, err
	}
	return &kqueuePoller{kq: kq, wakes: make(map[int]func())}, nil
}

func kqueueFilters(interest sched.Interest) []int16 {
	var filters []int16
	if interest&sched.InterestReadable != 0 {
		filters = append(filters, unix.EVFILT_READ)
	}
	if interest&sched.InterestWritable != 0 {
		filters = append(filters, unix.EVFILT_WRITE)
	}
	return filters
}

// Add registers fd, first clearing any stale registration (spec §4.6's
// "add first deletes any stale entry for the fd to avoid phantom
// events").
func (p *kqueuePoller) Add(fd int, interest sched.Interest, wake func()) error {
	_ = p.Remove(fd)

	p.mu.Lock()
	p.wakes[fd] = wake
	p.mu.Unlock()

	changes := make([]unix.Kevent_t, 0, 2)
	for _, filter := range kqueueFilters(interest) {
		var kv unix.Kevent_t
		unix.SetKevent(&kv, fd, int(filter), unix.EV_ADD|unix.EV_ONESHOT)
		changes = append(changes, kv)
	}
	if _, err := unix.Kevent(p.kq, changes, nil, nil); err != nil {
		p.mu.Lock()
		delete(p.wakes, fd)
		p.mu.Unlock()
		return err
	}
	return nil
}

func (p *kqueuePoller) Remove(fd int) error {
	p.mu.Lock()
	_, had := p.wakes[fd]
	delete(p.wakes, fd)
	p.mu.Unlock()
	if !had {
		return nil
	}
	var changes []unix.Kevent_t
	for _, filter := range []int16{unix.EVFILT_READ, unix.EVFILT_WRITE} {
		var kv unix.Kevent_t
		unix.SetKevent(&kv, fd, int(filter), unix.EV_DELETE)
		changes = append(changes, kv)
	}
	// EV_ONESHOT registrations are often already consumed by the kernel
	// by the time Remove runs; ENOENT from a redundant delete is benign.
	_, err := unix.Kevent(p.kq, changes, nil, nil)
	if err == unix.ENOENT {
		return nil
	}
	return err
}

func (p *kqueuePoller) Wait(timeoutMs int) (int, error) {
	var ts *unix.Timespec
	if timeoutMs >= 0 {
		t := unix.NsecToTimespec(int64(timeoutMs) * 1e6)
		ts = &t
	}
	var events [128]unix.Kevent_t
	n, err := unix.Kevent(p.kq, nil, events[:], ts)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}
	for i := 0; i < n; i++ {
		fd := int(events[i].Ident)
		p.mu.Lock()
		wake := p.wakes[fd]
		p.mu.Unlock()
		if wake != nil {
			wake()
		}
	}
	return n, nil
}

func (p *kqueuePoller) Close() error {
	return unix.Close(p.kq)
}
