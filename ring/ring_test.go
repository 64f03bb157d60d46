/*
 *  Copyright (c) 2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package ring_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"go.osspkg.com/casecheck"

	"go.osspkg.com/reactor/ring"
)

func TestUnit_FIFO(t *testing.T) {
	q := ring.New[int](4)
	casecheck.Equal(t, 4, q.Cap())

	for lap := 0; lap < 3; lap++ {
		for i := 0; i < 3; i++ {
			q.Push(lap*10 + i)
		}
		for i := 0; i < 3; i++ {
			v, ok := q.Pop()
			casecheck.True(t, ok)
			casecheck.Equal(t, lap*10+i, v)
		}
	}

	_, ok := q.Pop()
	casecheck.False(t, ok)
}

func TestUnit_DropWhenFull(t *testing.T) {
	q := ring.New[string](2)
	q.Push("a")
	q.Push("b")
	q.Push("c")

	v, ok := q.Pop()
	casecheck.True(t, ok)
	casecheck.Equal(t, "a", v)

	q.Push("d")

	v, ok = q.Pop()
	casecheck.True(t, ok)
	casecheck.Equal(t, "b", v)

	v, ok = q.Pop()
	casecheck.True(t, ok)
	casecheck.Equal(t, "d", v)

	_, ok = q.Pop()
	casecheck.False(t, ok)
}

func TestUnit_ZeroCapacity(t *testing.T) {
	q := ring.New[int](0)
	casecheck.Equal(t, 1, q.Cap())
	q.Push(1)
	q.Push(2)
	v, ok := q.Pop()
	casecheck.True(t, ok)
	casecheck.Equal(t, 1, v)
}

func TestUnit_TryPush(t *testing.T) {
	q := ring.New[int](1)
	casecheck.True(t, q.TryPush(1))
	casecheck.False(t, q.TryPush(2))
	_, ok := q.Pop()
	casecheck.True(t, ok)
	casecheck.True(t, q.TryPush(3))
}

func TestUnit_ConcurrentExactlyOnce(t *testing.T) {
	const (
		producers = 4
		consumers = 4
		perProd   = 2000
		total     = producers * perProd
	)

	q := ring.New[int](8)
	seen := make([]atomic.Int32, total)
	var popped atomic.Int64

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProd; {
				if q.TryPush(p*perProd + i) {
					i++
				}
			}
		}()
	}
	for c := 0; c < consumers; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for popped.Load() < total {
				if v, ok := q.Pop(); ok {
					seen[v].Add(1)
					popped.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	casecheck.Equal(t, int64(total), popped.Load())
	for i := range seen {
		casecheck.Equal(t, int32(1), seen[i].Load())
	}
}

func TestUnit_PerProducerOrder(t *testing.T) {
	const n = 5000
	q := ring.New[int](16)

	go func() {
		for i := 0; i < n; {
			if q.TryPush(i) {
				i++
			}
		}
	}()

	for want := 0; want < n; {
		if v, ok := q.Pop(); ok {
			casecheck.Equal(t, want, v)
			want++
		}
	}
}
