/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package eventloop

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"go.osspkg.com/errors"
	"go.osspkg.com/logx"
	"golang.org/x/sys/unix"

	"go.osspkg.com/reactor/epoll"
	"go.osspkg.com/reactor/errs"
	"go.osspkg.com/reactor/internal"
	"go.osspkg.com/reactor/timer"
)

const (
	streamMask  = epoll.EventIn | epoll.EdgeTriggered
	pendingMask = epoll.EventIn | epoll.EventOut | epoll.EdgeTriggered
)

// Loop is a single-goroutine reactor. Everything except Active must be
// called from the goroutine running the loop.
type Loop struct {
	poller *epoll.Poller
	timers *timer.Manager
	conns  map[int]*Conn
	opt    Option
	log    logx.Logger
	active atomic.Int64
	closed bool
}

func New(log logx.Logger, opt Option) (*Loop, error) {
	if log == nil {
		return nil, fmt.Errorf("eventloop: logger is empty")
	}
	if err := opt.Validate(); err != nil {
		return nil, fmt.Errorf("validate option: %w", err)
	}
	p, err := epoll.New(opt.CountEvents)
	if err != nil {
		return nil, err
	}
	return &Loop{
		poller: p,
		timers: timer.New(opt.IdleTimeout, opt.RefreshThreshold, opt.Clock),
		conns:  make(map[int]*Conn),
		opt:    opt,
		log:    log,
	}, nil
}

// AddConnection registers fd with the poller and takes ownership of it.
// Listening sockets are kept out of idle tracking.
func (l *Loop) AddConnection(fd int, mask uint32, hooks Hooks, ip string, port uint16, listener bool) error {
	if _, ok := l.conns[fd]; ok {
		return fmt.Errorf("eventloop: fd %d already registered", fd)
	}
	if err := l.poller.Register(fd, mask); err != nil {
		return err
	}
	l.conns[fd] = &Conn{
		fd:       fd,
		mask:     mask,
		ip:       ip,
		port:     port,
		hooks:    hooks,
		listener: listener,
		loop:     l,
	}
	if !listener {
		l.timers.Push(fd)
		l.active.Add(1)
	}
	return nil
}

// AddStream registers an accepted client with the loop's own read, write
// and fault paths.
func (l *Loop) AddStream(h Handoff) error {
	return l.AddConnection(h.FD, streamMask, Hooks{
		Readable: l.Recv,
		Writable: l.Send,
		Fault:    l.Fault,
	}, h.IP, h.Port, false)
}

func (l *Loop) Lookup(fd int) (*Conn, bool) {
	c, ok := l.conns[fd]
	return c, ok
}

func (l *Loop) Len() int {
	return len(l.conns)
}

// Active is the number of client connections owned by the loop. Safe to
// call from any goroutine.
func (l *Loop) Active() int64 {
	return l.active.Load()
}

func (l *Loop) alive(c *Conn) bool {
	cur, ok := l.conns[c.fd]
	return ok && cur == c
}

func (l *Loop) fault(c *Conn) {
	if c.hooks.Fault != nil {
		c.hooks.Fault(c)
		return
	}
	l.Fault(c)
}

// Recv drains the socket until it would block, then hands the input to
// the message func once.
func (l *Loop) Recv(c *Conn) {
	chunk := internal.ChunkPool.Get()
	defer internal.ChunkPool.Put(chunk)
	buf := chunk.Grow(l.opt.ReadBuffer)

	for {
		n, err := unix.Read(c.fd, buf)
		if err != nil {
			if errs.IsInterrupted(err) {
				continue
			}
			if errs.IsWouldBlock(err) {
				break
			}
			internal.LogConnErr(l.log, "Eventloop recv", err, c.fd, c.Addr())
			l.fault(c)
			return
		}
		if n == 0 {
			internal.LogConnErr(l.log, "Eventloop client quit", io.EOF, c.fd, c.Addr())
			l.fault(c)
			return
		}
		c.in.Write(buf[:n])
	}

	if l.opt.OnMessage == nil {
		return
	}
	if !l.message(c) {
		return
	}
	if c.out.Len() > 0 {
		l.Send(c)
	}
}

func (l *Loop) message(c *Conn) (ok bool) {
	defer func() {
		if e := recover(); e != nil {
			l.log.Error("Eventloop message panic", "err", fmt.Errorf("%+v", e), "fd", c.fd, "addr", c.Addr())
			l.fault(c)
			ok = false
		}
	}()
	l.opt.OnMessage(c)
	return l.alive(c)
}

// Send writes from the front of the output buffer until it is empty or the
// socket would block, then adjusts write interest to match what is left.
func (l *Loop) Send(c *Conn) {
	for c.out.Len() > 0 {
		n, err := unix.Write(c.fd, c.out.Bytes())
		if err != nil {
			if errs.IsInterrupted(err) {
				continue
			}
			if errs.IsWouldBlock(err) {
				break
			}
			internal.LogConnErr(l.log, "Eventloop send", err, c.fd, c.Addr())
			l.fault(c)
			return
		}
		if n == 0 {
			internal.LogConnErr(l.log, "Eventloop send", io.EOF, c.fd, c.Addr())
			l.fault(c)
			return
		}
		c.out.Next(n)
	}

	switch {
	case c.out.Len() > 0 && !c.wantOut:
		if err := l.poller.Modify(c.fd, pendingMask); err != nil {
			l.log.Error("Eventloop enable write interest", "err", err, "fd", c.fd, "addr", c.Addr())
			return
		}
		c.wantOut, c.mask = true, pendingMask
	case c.out.Len() == 0 && c.wantOut:
		if err := l.poller.Modify(c.fd, streamMask); err != nil {
			l.log.Error("Eventloop disable write interest", "err", err, "fd", c.fd, "addr", c.Addr())
			return
		}
		c.wantOut, c.mask = false, streamMask
	}
}

// Rearm re-registers the current interest of c so that an edge-triggered
// descriptor which is still ready gets reported by the next wait.
func (l *Loop) Rearm(c *Conn) error {
	if !l.alive(c) {
		return nil
	}
	return l.poller.Modify(c.fd, c.mask)
}

// Fault tears the connection down. Only the first call for a given
// connection has any effect.
func (l *Loop) Fault(c *Conn) {
	if !l.alive(c) {
		return
	}
	delete(l.conns, c.fd)

	if err := l.poller.Deregister(c.fd); err != nil {
		l.log.Error("Eventloop deregister", "err", err, "fd", c.fd, "addr", c.Addr())
	}
	if err := unix.Close(c.fd); err != nil {
		l.log.Error("Eventloop close", "err", err, "fd", c.fd, "addr", c.Addr())
	}
	l.timers.LazyDelete(c.fd)

	if !c.listener {
		l.active.Add(-1)
	}
	l.log.Debug("Eventloop connection closed", "fd", c.fd, "addr", c.Addr())
}

func (l *Loop) takeHandoff() {
	if l.opt.Source == nil {
		return
	}
	h, ok := l.opt.Source.Pop()
	if !ok {
		return
	}
	if err := l.AddStream(h); err != nil {
		l.log.Error("Eventloop add connection", "err", err, "fd", h.FD, "ip", h.IP, "port", h.Port)
		if e := unix.Close(h.FD); e != nil {
			l.log.Error("Eventloop close", "err", e, "fd", h.FD)
		}
		return
	}
	l.log.Debug("Eventloop take connection", "fd", h.FD, "ip", h.IP, "port", h.Port)
}

func (l *Loop) dispatch(events []epoll.Event) {
	for _, ev := range events {
		mask := ev.Mask
		if ev.Failed() {
			mask |= epoll.EventIn | epoll.EventOut
		}

		c, ok := l.conns[ev.FD]
		if !ok {
			continue
		}

		if mask&epoll.EventIn != 0 && c.hooks.Readable != nil {
			c.hooks.Readable(c)
			l.timers.UpdateTime(ev.FD)
		}
		if mask&epoll.EventOut != 0 && c.hooks.Writable != nil && l.alive(c) {
			c.hooks.Writable(c)
			l.timers.UpdateTime(ev.FD)
		}
	}
}

func (l *Loop) sweep() {
	for l.timers.IsTopExpired() {
		top, _ := l.timers.GetTop()
		l.timers.Pop()

		c, ok := l.conns[top.FD]
		if !ok {
			l.timers.LazyDelete(top.FD)
			continue
		}
		l.log.Info("Eventloop idle timeout", "fd", c.fd, "addr", c.Addr())
		l.fault(c)
	}
}

// RunOnce performs one iteration: take at most one handed-off connection,
// wait for readiness, dispatch, then evict idle connections.
func (l *Loop) RunOnce() {
	l.takeHandoff()

	events, err := l.poller.Wait(l.opt.WaitInterval)
	if err != nil {
		l.log.Error("Eventloop wait", "err", err)
	} else {
		l.dispatch(events)
	}

	l.sweep()
}

func (l *Loop) Run(ctx context.Context) (err error) {
	defer func() {
		err = errors.Wrap(err, l.Close())
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		l.RunOnce()
	}
}

// Close flushes what each client can still take without blocking, then
// tears every connection down and releases the poller.
func (l *Loop) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true

	for _, c := range l.conns {
		if !c.listener && c.out.Len() > 0 {
			l.Send(c)
		}
		l.Fault(c)
	}
	return l.poller.Close()
}
