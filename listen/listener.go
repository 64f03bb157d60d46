/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package listen

import (
	"fmt"

	"golang.org/x/sys/unix"

	"go.osspkg.com/reactor/address"
	"go.osspkg.com/reactor/errs"
)

const DefaultBacklog = 10

// Socket opens a non-blocking TCP listening socket on address. Every
// failure wraps one of the process-fatal sentinels in errs.
func Socket(addr string, backlog int) (fd int, err error) {
	if backlog <= 0 {
		backlog = DefaultBacklog
	}

	sa, family, err := address.Sockaddr(addr)
	if err != nil {
		return -1, fmt.Errorf("%w: %w", errs.ErrBind, err)
	}

	if fd, err = unix.Socket(family, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP); err != nil {
		return -1, fmt.Errorf("%w: %w", errs.ErrCreateSocket, err)
	}
	defer func() {
		if err != nil {
			unix.Close(fd) //nolint: errcheck
			fd = -1
		}
	}()

	if err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return fd, fmt.Errorf("%w: %w", errs.ErrCreateSocket, err)
	}
	if err = unix.Bind(fd, sa); err != nil {
		return fd, fmt.Errorf("%w: %s: %w", errs.ErrBind, addr, err)
	}
	if err = unix.Listen(fd, backlog); err != nil {
		return fd, fmt.Errorf("%w: %w", errs.ErrListen, err)
	}
	if err = unix.SetNonblock(fd, true); err != nil {
		return fd, fmt.Errorf("%w: %w", errs.ErrNonBlock, err)
	}
	return fd, nil
}

// Addr is the address the socket is actually bound to.
func Addr(fd int) string {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return ""
	}
	return address.String(sa)
}
