// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package poller

import (
	"sync"

	"golang.org/x/sys/unix"

	"github.com/meftunca/vex/runtime/sched"
)

// epollPoller implements sched.IOPoller over Linux's epoll, the backend
// named first in spec §4.7's platform list.
type epollPoller struct {
	epfd int

	mu    sync.Mutex
	wakes map[int]func()
}

func newPlatformPoller() (sched.IOPoller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epollPoller{epfd: fd, wakes: make(map[int]func())}, nil
}

func epollEvents(interest sched.Interest) uint32 {
	var ev uint32
	if interest&sched.InterestReadable != 0 {
		ev |= unix.EPOLLIN
	}
	if interest&sched.InterestWritable != 0 {
		ev |= unix.EPOLLOUT
	}
	return ev
}

// Add registers fd, first removing any stale registration per spec
// §4.6's registration lifecycle ("Registration overrides any previous
// registration for the same fd").
func (p *epollPoller) Add(fd int, interest sched.Interest, wake func()) error {
	_ = p.Remove(fd)

	p.mu.Lock()
	p.wakes[fd] = wake
	p.mu.Unlock()

	ev := &unix.EpollEvent{Events: epollEvents(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, ev); err != nil {
		p.mu.Lock()
		delete(p.wakes, fd)
		p.mu.Unlock()
		return err
	}
	return nil
}

func (p *epollPoller) Remove(fd int) error {
	p.mu.Lock()
	_, had := p.wakes[fd]
	delete(p.wakes, fd)
	p.mu.Unlock()
	if !had {
		return nil
	}
	// EPOLL_CTL_DEL on an fd already closed by the caller returns ENOENT;
	// that is not an error from this API's point of view, the fd's
	// registration is gone either way.
	err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	if err == unix.ENOENT {
		return nil
	}
	return err
}

func (p *epollPoller) Wait(timeoutMs int) (int, error) {
	var events [128]unix.EpollEvent
	n, err := unix.EpollWait(p.epfd, events[:], timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}
	for i := 0; i < n; i++ {
		fd := int(events[i].Fd)
		p.mu.Lock()
		wake := p.wakes[fd]
		p.mu.Unlock()
		if wake != nil {
			wake()
		}
	}
	return n, nil
}

func (p *epollPoller) Close() error {
	return unix.Close(p.epfd)
}
