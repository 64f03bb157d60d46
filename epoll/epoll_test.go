/*
 *  Copyright (c) 2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package epoll_test

import (
	"testing"
	"time"

	"go.osspkg.com/casecheck"
	"golang.org/x/sys/unix"

	"go.osspkg.com/reactor/epoll"
)

func socketPair(t *testing.T) (int, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	casecheck.NoError(t, err)
	t.Cleanup(func() {
		unix.Close(fds[0]) //nolint: errcheck
		unix.Close(fds[1]) //nolint: errcheck
	})
	return fds[0], fds[1]
}

func TestUnit_WaitTimeout(t *testing.T) {
	p, err := epoll.New(8)
	casecheck.NoError(t, err)
	defer p.Close() //nolint: errcheck

	start := time.Now()
	events, err := p.Wait(20 * time.Millisecond)
	casecheck.NoError(t, err)
	casecheck.Equal(t, 0, len(events))
	casecheck.True(t, time.Since(start) >= 15*time.Millisecond)
}

func TestUnit_ReadableWritable(t *testing.T) {
	p, err := epoll.New(8)
	casecheck.NoError(t, err)
	defer p.Close() //nolint: errcheck

	a, b := socketPair(t)

	casecheck.NoError(t, p.Register(a, epoll.EventIn|epoll.EdgeTriggered))

	_, err = unix.Write(b, []byte("ping"))
	casecheck.NoError(t, err)

	events, err := p.Wait(time.Second)
	casecheck.NoError(t, err)
	casecheck.Equal(t, 1, len(events))
	casecheck.Equal(t, a, events[0].FD)
	casecheck.True(t, events[0].Readable())
	casecheck.False(t, events[0].Writable())

	// edge triggered: no new edge, no new event
	events, err = p.Wait(10 * time.Millisecond)
	casecheck.NoError(t, err)
	casecheck.Equal(t, 0, len(events))

	casecheck.NoError(t, p.Modify(a, epoll.EventIn|epoll.EventOut|epoll.EdgeTriggered))
	events, err = p.Wait(time.Second)
	casecheck.NoError(t, err)
	casecheck.Equal(t, 1, len(events))
	casecheck.True(t, events[0].Writable())

	casecheck.NoError(t, p.Deregister(a))
	casecheck.Error(t, p.Deregister(a))
	casecheck.Error(t, p.Modify(a, epoll.EventIn))
}

func TestUnit_HangupEvent(t *testing.T) {
	p, err := epoll.New(0)
	casecheck.NoError(t, err)
	defer p.Close() //nolint: errcheck

	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	casecheck.NoError(t, err)
	defer unix.Close(fds[0]) //nolint: errcheck

	casecheck.NoError(t, p.Register(fds[0], epoll.EventIn|epoll.EdgeTriggered))
	casecheck.NoError(t, unix.Close(fds[1]))

	events, err := p.Wait(time.Second)
	casecheck.NoError(t, err)
	casecheck.Equal(t, 1, len(events))
	casecheck.True(t, events[0].Readable())
}
