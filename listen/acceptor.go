/*
 *  Copyright (c) 2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package listen

import (
	"time"

	"github.com/joeycumines/go-catrate"
	"go.osspkg.com/logx"
	"golang.org/x/sys/unix"

	"go.osspkg.com/reactor/address"
	"go.osspkg.com/reactor/errs"
	"go.osspkg.com/reactor/eventloop"
)

type (
	Pusher interface {
		TryPush(h eventloop.Handoff) bool
	}

	Acceptor struct {
		fd      int
		queue   Pusher
		log     logx.Logger
		limiter *catrate.Limiter
		backoff time.Duration
	}
)

const (
	minBackoff = 5 * time.Millisecond
	maxBackoff = time.Second
)

func NewAcceptor(fd int, queue Pusher, log logx.Logger) *Acceptor {
	return &Acceptor{
		fd:    fd,
		queue: queue,
		log:   log,
		// a full fd table fails every accept; keep the log readable
		limiter: catrate.NewLimiter(map[time.Duration]int{
			time.Second: 5,
			time.Minute: 60,
		}),
	}
}

func (v *Acceptor) FD() int { return v.fd }

// Hooks binds the acceptor as the readable hook of the listening socket.
func (v *Acceptor) Hooks() eventloop.Hooks {
	return eventloop.Hooks{Readable: v.Accept}
}

// Accept drains the backlog until it would block and pushes every new
// client to the handoff queue. A client that does not fit is closed.
// When descriptors or memory run out the drain pauses and the listener is
// re-armed, so clients still in the backlog are picked up by the next wait.
func (v *Acceptor) Accept(c *eventloop.Conn) {
	for {
		nfd, sa, err := unix.Accept4(v.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		if err != nil {
			if errs.IsWouldBlock(err) {
				return
			}
			if errs.IsInterrupted(err) || errs.IsAborted(err) {
				continue
			}
			if _, ok := v.limiter.Allow(err); ok {
				v.log.Error("Listener accept", "err", err, "fd", v.fd)
			}
			if errs.IsExhausted(err) {
				v.pause()
				v.rearm(c)
				return
			}
			continue
		}
		v.backoff = 0

		ip, port, err := address.FromSockaddr(sa)
		if err != nil {
			v.log.Warn("Listener peer address", "err", err, "fd", nfd)
		}
		v.log.Info("Listener accept new client", "fd", nfd, "ip", ip, "port", port)

		if !v.queue.TryPush(eventloop.Handoff{FD: nfd, IP: ip, Port: port}) {
			v.log.Warn("Listener handoff queue full, drop client", "fd", nfd, "ip", ip, "port", port)
			if err = unix.Close(nfd); err != nil {
				v.log.Error("Listener close dropped client", "err", err, "fd", nfd)
			}
		}
	}
}

func (v *Acceptor) pause() {
	switch {
	case v.backoff == 0:
		v.backoff = minBackoff
	case v.backoff < maxBackoff:
		v.backoff *= 2
		if v.backoff > maxBackoff {
			v.backoff = maxBackoff
		}
	}
	time.Sleep(v.backoff)
}

func (v *Acceptor) rearm(c *eventloop.Conn) {
	if c == nil || c.Loop() == nil {
		return
	}
	if err := c.Loop().Rearm(c); err != nil {
		v.log.Error("Listener rearm", "err", err, "fd", v.fd)
	}
}
