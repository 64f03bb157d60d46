/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package errs

import (
	"io"
	"strings"

	"go.osspkg.com/errors"
	"golang.org/x/sys/unix"
)

var (
	ErrCreatePoller = errors.New("cannot create multiplexer")
	ErrCreateSocket = errors.New("cannot create socket")
	ErrBind         = errors.New("cannot bind")
	ErrListen       = errors.New("cannot listen")
	ErrConnect      = errors.New("cannot connect")
	ErrNonBlock     = errors.New("cannot set non-blocking mode")

	ErrServAlreadyRunning = errors.New("server already running")
)

// IsWouldBlock reports the flow-control signal that ends a drain loop.
func IsWouldBlock(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK)
}

// IsInterrupted reports a syscall cut short by signal delivery; retry it.
func IsInterrupted(err error) bool {
	return errors.Is(err, unix.EINTR)
}

func IsClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) ||
		errors.Is(err, unix.ECONNRESET) ||
		errors.Is(err, unix.EPIPE) ||
		errors.Is(err, unix.EBADF) ||
		strings.Contains(err.Error(), "use of closed network connection") {
		return true
	}
	return false
}

// IsAborted reports a connection reset while it sat in the accept queue.
func IsAborted(err error) bool {
	return errors.Is(err, unix.ECONNABORTED)
}

// IsExhausted reports a descriptor or memory limit; retrying right away
// fails the same way.
func IsExhausted(err error) bool {
	return errors.Is(err, unix.EMFILE) ||
		errors.Is(err, unix.ENFILE) ||
		errors.Is(err, unix.ENOBUFS) ||
		errors.Is(err, unix.ENOMEM)
}
