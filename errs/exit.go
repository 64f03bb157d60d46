/*
 *  Copyright (c) 2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package errs

import "go.osspkg.com/errors"

const (
	ExitOK = iota
	ExitUsage
	ExitSocket
	ExitBind
	ExitListen
	ExitConnect
	ExitPoller
	ExitNonBlock
)

var exitCodes = []struct {
	err  error
	code int
}{
	{err: ErrCreateSocket, code: ExitSocket},
	{err: ErrBind, code: ExitBind},
	{err: ErrListen, code: ExitListen},
	{err: ErrConnect, code: ExitConnect},
	{err: ErrCreatePoller, code: ExitPoller},
	{err: ErrNonBlock, code: ExitNonBlock},
}

// ExitCode maps a process-fatal error to its exit status.
// Errors outside the fatal set map to ExitUsage.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	for _, v := range exitCodes {
		if errors.Is(err, v.err) {
			return v.code
		}
	}
	return ExitUsage
}
