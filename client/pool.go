/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package client

import (
	"context"
	"net"
	"time"
)

type session struct {
	Conn   net.Conn
	Err    error
	UsedAt time.Time
	Idle   time.Duration
}

func (c *session) Close() {
	if c.Conn != nil {
		_ = c.Conn.Close() //nolint: errcheck
	}
}

// IsFailConn reports a session that broke or sat idle long enough for the
// server to have evicted it.
func (c *session) IsFailConn() bool {
	return c.Err != nil || time.Since(c.UsedAt) > c.Idle
}

type (
	object interface {
		Close()
		IsFailConn() bool
	}

	chanPool[T object] struct {
		c    chan T
		call func(ctx context.Context) (T, error)
	}
)

func newChanPool[T object](size int, call func(ctx context.Context) (T, error)) *chanPool[T] {
	return &chanPool[T]{
		c:    make(chan T, size+1),
		call: call,
	}
}

func (p *chanPool[T]) GetIdleOrCreateConn(ctx context.Context) (v T, err error) {
	for {
		select {
		case v = <-p.c:
		default:
			return p.call(ctx)
		}

		if v.IsFailConn() {
			v.Close()
			continue
		}

		return v, nil
	}
}

func (p *chanPool[T]) PutOrCloseIdleConn(v T) {
	if v.IsFailConn() {
		v.Close()
		return
	}

	select {
	case p.c <- v:
		return
	default:
		v.Close()
	}
}

func (p *chanPool[T]) CloseAll() {
	for {
		select {
		case v := <-p.c:
			v.Close()
		default:
			return
		}
	}
}
