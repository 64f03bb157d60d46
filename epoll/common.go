/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package epoll

import (
	"time"

	"golang.org/x/sys/unix"
)

const (
	EventIn       uint32 = unix.EPOLLIN
	EventOut      uint32 = unix.EPOLLOUT
	EventErr      uint32 = unix.EPOLLERR
	EventHup      uint32 = unix.EPOLLHUP
	EdgeTriggered uint32 = unix.EPOLLET

	DefaultCountEvents = 1024
	DefaultWaitTimeout = 3 * time.Second
)

type Event struct {
	FD   int
	Mask uint32
}

func (e Event) Readable() bool { return e.Mask&EventIn != 0 }
func (e Event) Writable() bool { return e.Mask&EventOut != 0 }

// Failed reports an error or hangup condition on the descriptor.
func (e Event) Failed() bool { return e.Mask&(EventErr|EventHup) != 0 }
