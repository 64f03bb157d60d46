/*
 *  Copyright (c) 2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package ring

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Queue is a fixed-capacity MPMC ring. Neither Push nor Pop ever blocks:
// a full queue drops the item and an empty queue reports false.
//
// Producers contend only on pmux, consumers only on cmux. The two weighted
// semaphores count free and filled slots and are only ever tried, never awaited.
type Queue[T any] struct {
	buf  []T
	cap  int64
	pidx int
	cidx int
	pmux sync.Mutex
	cmux sync.Mutex

	space *semaphore.Weighted
	data  *semaphore.Weighted
}

func New[T any](capacity int) *Queue[T] {
	if capacity <= 0 {
		capacity = 1
	}
	q := &Queue[T]{
		buf:   make([]T, capacity),
		cap:   int64(capacity),
		space: semaphore.NewWeighted(int64(capacity)),
		data:  semaphore.NewWeighted(int64(capacity)),
	}
	// data starts fully held: nothing has been produced yet.
	if err := q.data.Acquire(context.Background(), q.cap); err != nil {
		panic(err)
	}
	return q
}

// Push stores item if a slot is free, otherwise the item is dropped.
func (q *Queue[T]) Push(item T) {
	_ = q.TryPush(item)
}

// TryPush is Push that reports whether the item was stored.
func (q *Queue[T]) TryPush(item T) bool {
	if !q.space.TryAcquire(1) {
		return false
	}

	q.pmux.Lock()
	q.buf[q.pidx] = item
	q.pidx = (q.pidx + 1) % len(q.buf)
	q.pmux.Unlock()

	q.data.Release(1)
	return true
}

func (q *Queue[T]) Pop() (item T, ok bool) {
	if !q.data.TryAcquire(1) {
		return
	}

	var zero T
	q.cmux.Lock()
	item = q.buf[q.cidx]
	q.buf[q.cidx] = zero
	q.cidx = (q.cidx + 1) % len(q.buf)
	q.cmux.Unlock()

	q.space.Release(1)
	return item, true
}

func (q *Queue[T]) Cap() int {
	return int(q.cap)
}
