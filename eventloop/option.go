/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package eventloop

import (
	"fmt"
	"time"

	"go.osspkg.com/reactor/epoll"
	"go.osspkg.com/reactor/internal"
	"go.osspkg.com/reactor/timer"
)

const (
	DefaultWaitInterval = 500 * time.Millisecond
	DefaultReadBuffer   = internal.ChunkSize
)

type (
	// Source is the consumer side of the handoff queue.
	Source interface {
		Pop() (Handoff, bool)
	}

	// MessageFunc is the business logic. It is called once after each
	// readable drain with every byte read so far visible in c.In(), and
	// appends replies through c.Write.
	MessageFunc func(c *Conn)

	Option struct {
		Source           Source
		OnMessage        MessageFunc
		CountEvents      int
		WaitInterval     time.Duration
		IdleTimeout      time.Duration
		RefreshThreshold int
		ReadBuffer       int
		Clock            func() time.Time
	}
)

func (o *Option) Validate() error {
	if o.CountEvents < 0 {
		return fmt.Errorf("eventloop: negative count events")
	}
	if o.ReadBuffer < 0 {
		return fmt.Errorf("eventloop: negative read buffer")
	}
	o.CountEvents = internal.NotZero(o.CountEvents, epoll.DefaultCountEvents)
	o.WaitInterval = internal.NotZeroDuration(o.WaitInterval, DefaultWaitInterval)
	o.IdleTimeout = internal.NotZeroDuration(o.IdleTimeout, timer.DefaultIdleWindow)
	o.RefreshThreshold = internal.NotZero(o.RefreshThreshold, timer.DefaultThreshold)
	o.ReadBuffer = internal.NotZero(o.ReadBuffer, DefaultReadBuffer)
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return nil
}
