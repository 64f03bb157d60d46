/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package epoll

import (
	"fmt"
	"time"

	"go.osspkg.com/errors"
	"golang.org/x/sys/unix"

	"go.osspkg.com/reactor/errs"
)

// Poller wraps one epoll instance. It is owned by a single event loop and
// is not safe for concurrent use.
type Poller struct {
	fd     int
	events []unix.EpollEvent
	ready  []Event
}

func New(countEvents int) (*Poller, error) {
	if countEvents <= 0 {
		countEvents = DefaultCountEvents
	}
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrCreatePoller, err)
	}
	return &Poller{
		fd:     fd,
		events: make([]unix.EpollEvent, countEvents),
		ready:  make([]Event, 0, countEvents),
	}, nil
}

func (v *Poller) Register(fd int, mask uint32) error {
	return v.ctl(unix.EPOLL_CTL_ADD, fd, mask)
}

func (v *Poller) Modify(fd int, mask uint32) error {
	return v.ctl(unix.EPOLL_CTL_MOD, fd, mask)
}

func (v *Poller) Deregister(fd int) error {
	if err := unix.EpollCtl(v.fd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return errors.Wrapf(err, "epoll del fd=%d", fd)
	}
	return nil
}

func (v *Poller) ctl(op, fd int, mask uint32) error {
	ev := unix.EpollEvent{Events: mask, Fd: int32(fd)}
	if err := unix.EpollCtl(v.fd, op, fd, &ev); err != nil {
		return errors.Wrapf(err, "epoll ctl op=%d fd=%d", op, fd)
	}
	return nil
}

// Wait blocks for at most timeout and returns the ready descriptors. A
// non-positive timeout falls back to DefaultWaitTimeout so the caller is
// never parked forever. The returned slice is reused by the next call.
func (v *Poller) Wait(timeout time.Duration) ([]Event, error) {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	ms := int(timeout / time.Millisecond)
	if ms == 0 {
		ms = 1
	}

	v.ready = v.ready[:0]

	n, err := unix.EpollWait(v.fd, v.events, ms)
	if err != nil {
		if errs.IsInterrupted(err) {
			return v.ready, nil
		}
		return v.ready, errors.Wrapf(err, "epoll wait")
	}
	for i := 0; i < n; i++ {
		v.ready = append(v.ready, Event{
			FD:   int(v.events[i].Fd),
			Mask: v.events[i].Events,
		})
	}
	return v.ready, nil
}

func (v *Poller) Close() error {
	return unix.Close(v.fd)
}
