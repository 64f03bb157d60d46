/*
 *  Copyright (c) 2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package internal_test

import (
	"sync/atomic"
	"testing"
	"time"

	"go.osspkg.com/casecheck"

	"go.osspkg.com/reactor/internal"
)

func TestUnit_NotZero(t *testing.T) {
	casecheck.Equal(t, 5, internal.NotZero(0, -1, 5, 7))
	casecheck.Equal(t, 0, internal.NotZero[int]())
	casecheck.Equal(t, time.Second, internal.NotZeroDuration(0, time.Second))
}

func TestUnit_ChunkGrow(t *testing.T) {
	c := internal.ChunkPool.Get()
	defer internal.ChunkPool.Put(c)

	casecheck.Equal(t, 16, len(c.Grow(16)))
	casecheck.Equal(t, 4*internal.ChunkSize, len(c.Grow(4*internal.ChunkSize)))
}

type mockDeadline struct {
	calls atomic.Int64
}

func (m *mockDeadline) SetDeadline(time.Time) error {
	m.calls.Add(1)
	return nil
}

func TestUnit_DeadlineUpdate(t *testing.T) {
	m := &mockDeadline{}
	stop := internal.DeadlineUpdate(m, 20*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	stop()

	casecheck.True(t, m.calls.Load() >= 2)

	noop := internal.DeadlineUpdate(m, 0)
	noop()
}
