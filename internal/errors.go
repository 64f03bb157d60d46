/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package internal

import (
	"go.osspkg.com/logx"

	"go.osspkg.com/reactor/errs"
)

// LogConnErr writes a connection-fatal error. A peer hanging up is routine
// and goes to Info, everything else to Warn.
func LogConnErr(log logx.Logger, message string, err error, fd int, addr string) {
	if err == nil {
		log.Info(message, "fd", fd, "addr", addr)
		return
	}
	if errs.IsClosed(err) {
		log.Info(message, "err", err, "fd", fd, "addr", addr)
		return
	}
	log.Warn(message, "err", err, "fd", fd, "addr", addr)
}
