/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package client

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"go.osspkg.com/algorithms/control"
	"go.osspkg.com/errors"
	"go.osspkg.com/logx"

	"go.osspkg.com/reactor/errs"
	"go.osspkg.com/reactor/internal"
)

type (
	Client interface {
		Call(ctx context.Context, handler func(ctx context.Context, w io.Writer, r io.Reader) error) error
		Close()
	}

	_client struct {
		conf Config
		log  logx.Logger
		sem  control.Semaphore
		pool *chanPool[*session]
	}
)

func New(c Config, log logx.Logger) (Client, error) {
	addr, err := c.Resolve()
	if err != nil {
		return nil, err
	}

	c.Address = addr.String()
	c.Default()

	cli := &_client{
		conf: c,
		log:  log,
		sem:  control.NewSemaphore(c.MaxConns),
	}
	cli.pool = newChanPool[*session](int(c.MaxConns), cli.dial)

	return cli, nil
}

// dial connects with up to Retries attempts spaced by RetryDelay.
func (v *_client) dial(ctx context.Context) (*session, error) {
	var (
		dialer net.Dialer
		err    error
	)
	for i := 0; i < v.conf.Retries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %s: %w", errs.ErrConnect, v.conf.Address, ctx.Err())
			case <-time.After(v.conf.RetryDelay):
			}
		}

		var conn net.Conn
		if conn, err = dialer.DialContext(ctx, "tcp", v.conf.Address); err == nil {
			return &session{Conn: conn, UsedAt: time.Now(), Idle: v.conf.IdleTimeout}, nil
		}
		v.log.Warn("Client connect failed", "err", err, "addr", v.conf.Address, "attempt", i+1)
	}
	return nil, fmt.Errorf("%w: %s: %w", errs.ErrConnect, v.conf.Address, err)
}

func (v *_client) Call(ctx context.Context, handler func(ctx context.Context, w io.Writer, r io.Reader) error) (e error) {
	v.sem.Acquire()
	defer func() { v.sem.Release() }()

	s, err := v.pool.GetIdleOrCreateConn(ctx)
	if err != nil {
		return err
	}

	stop := internal.DeadlineUpdate(s.Conn, v.conf.Timeout)

	defer func() {
		stop()
		if e == nil && v.conf.Timeout > 0 {
			e = s.Conn.SetDeadline(time.Time{})
		}
		s.Err, s.UsedAt = e, time.Now()
		v.pool.PutOrCloseIdleConn(s)
	}()

	e = handler(ctx, s.Conn, s.Conn)
	if e != nil {
		e = errors.Wrapf(e, "call %s", v.conf.Address)
	}

	return
}

func (v *_client) Close() {
	v.pool.CloseAll()
}
