/*
 *  Copyright (c) 2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package timer

import (
	"container/heap"
	"time"
)

const (
	DefaultIdleWindow = 10 * time.Second
	DefaultThreshold  = 5
)

type (
	// Record is one idle deadline. Count is the number of activity refreshes
	// folded into Expire since the record last entered the heap.
	Record struct {
		FD     int
		Expire time.Time
		Count  int
	}

	// Manager keeps a min-heap of records ordered by Expire plus a side-table
	// holding the single authoritative record per descriptor. Activity only
	// touches the side-table; heap entries go stale and are reconciled when
	// they surface at the top.
	Manager struct {
		heap      records
		table     map[int]Record
		window    time.Duration
		threshold int
		now       func() time.Time
	}
)

func New(window time.Duration, threshold int, now func() time.Time) *Manager {
	if window <= 0 {
		window = DefaultIdleWindow
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if now == nil {
		now = time.Now
	}
	return &Manager{
		table:     make(map[int]Record),
		window:    window,
		threshold: threshold,
		now:       now,
	}
}

func (m *Manager) Push(fd int) {
	r := Record{FD: fd, Expire: m.now().Add(m.window)}
	heap.Push(&m.heap, r)
	m.table[fd] = r
}

// UpdateTime records activity on fd. The heap is left untouched.
func (m *Manager) UpdateTime(fd int) {
	r, ok := m.table[fd]
	if !ok {
		return
	}
	r.Count++
	r.Expire = m.now().Add(m.window)
	m.table[fd] = r
}

// IsTopExpired reconciles the heap top against the side-table and reports
// whether a current, expired record sits at the top. The record is left in
// place; the caller reads it with GetTop and removes it with Pop.
func (m *Manager) IsTopExpired() bool {
	for len(m.heap) > 0 {
		now := m.now()
		top := m.heap[0]
		if top.Expire.After(now) {
			return false
		}

		cur, ok := m.table[top.FD]
		switch {
		case !ok:
			heap.Pop(&m.heap)

		case cur.Count != top.Count || !cur.Expire.Equal(top.Expire):
			heap.Pop(&m.heap)
			heap.Push(&m.heap, cur)

		case cur.Count >= m.threshold:
			heap.Pop(&m.heap)
			cur.Count = 0
			cur.Expire = now.Add(m.window)
			heap.Push(&m.heap, cur)
			m.table[cur.FD] = cur

		default:
			return true
		}
	}
	return false
}

func (m *Manager) GetTop() (Record, bool) {
	if len(m.heap) == 0 {
		return Record{}, false
	}
	return m.heap[0], true
}

func (m *Manager) Pop() {
	if len(m.heap) == 0 {
		return
	}
	heap.Pop(&m.heap)
}

// LazyDelete forgets fd. Its heap copies are dropped when they reach the top.
func (m *Manager) LazyDelete(fd int) {
	delete(m.table, fd)
}

func (m *Manager) Len() int {
	return len(m.table)
}

func (m *Manager) HeapLen() int {
	return len(m.heap)
}

type records []Record

func (h records) Len() int           { return len(h) }
func (h records) Less(i, j int) bool { return h[i].Expire.Before(h[j].Expire) }
func (h records) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *records) Push(x any) {
	*h = append(*h, x.(Record))
}

func (h *records) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}
