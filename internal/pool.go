/*
 *  Copyright (c) 2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package internal

import (
	"go.osspkg.com/ioutils/pool"
)

const ChunkSize = 1024

// ChunkPool hands out scratch slices for a single read syscall.
var ChunkPool = pool.New[*Chunk](func() *Chunk {
	return &Chunk{Slice: make([]byte, ChunkSize)}
})

type Chunk struct {
	Slice []byte
}

func (*Chunk) Reset() {}

// Grow makes sure the chunk holds at least n bytes.
func (v *Chunk) Grow(n int) []byte {
	if cap(v.Slice) < n {
		v.Slice = make([]byte, n)
	}
	return v.Slice[:n]
}
