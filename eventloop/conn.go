/*
 *  Copyright (c) 2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package eventloop

import (
	"bytes"
	"net"
	"strconv"
)

type (
	// Hook is one of the three behaviours bound to a connection. The loop
	// passes the connection it just looked up in its table; hooks must not
	// keep it past the call.
	Hook func(c *Conn)

	Hooks struct {
		Readable Hook
		Writable Hook
		Fault    Hook
	}

	// Handoff is a freshly accepted descriptor travelling from the
	// listener to a worker loop.
	Handoff struct {
		FD   int
		IP   string
		Port uint16
	}

	// Conn is the per-descriptor state. It belongs to exactly one loop and
	// is only touched from that loop's goroutine.
	Conn struct {
		fd       int
		mask     uint32
		in       bytes.Buffer
		out      bytes.Buffer
		wantOut  bool
		listener bool
		ip       string
		port     uint16
		hooks    Hooks
		loop     *Loop
	}
)

func (c *Conn) FD() int { return c.fd }

// In is the accumulated input. Handlers consume it from the front.
func (c *Conn) In() *bytes.Buffer { return &c.in }

// Out is the pending output, drained from the front by the loop.
func (c *Conn) Out() *bytes.Buffer { return &c.out }

// Write appends to the output buffer; the loop delivers it.
func (c *Conn) Write(p []byte) (int, error) {
	return c.out.Write(p)
}

func (c *Conn) Addr() string {
	return net.JoinHostPort(c.ip, strconv.Itoa(int(c.port)))
}

func (c *Conn) WriteInterest() bool { return c.wantOut }

func (c *Conn) Loop() *Loop { return c.loop }
