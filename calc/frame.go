/*
 *  Copyright (c) 2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package calc

import (
	"bytes"
	"strconv"
)

const (
	sep = '\n'

	// MaxFrameSize bounds the content of a single frame and with it the
	// input a peer can make the receiver hold.
	MaxFrameSize = 64 << 10

	maxPrefix = 5
)

// Encode wraps content as "<len>\n<content>\n".
func Encode(content []byte) []byte {
	out := make([]byte, 0, len(content)+8)
	out = strconv.AppendInt(out, int64(len(content)), 10)
	out = append(out, sep)
	out = append(out, content...)
	return append(out, sep)
}

// Decode takes one frame off the front of buf. An incomplete frame is left
// in place; a malformed one throws the whole buffer away since there is no
// way to find the next frame boundary.
func Decode(buf *bytes.Buffer) ([]byte, bool) {
	b := buf.Bytes()
	pos := bytes.IndexByte(b, sep)
	if pos < 0 {
		if len(b) > maxPrefix {
			buf.Reset()
		}
		return nil, false
	}

	size, err := strconv.Atoi(string(b[:pos]))
	if err != nil || size < 0 || size > MaxFrameSize {
		buf.Reset()
		return nil, false
	}

	total := pos + 1 + size + 1
	if len(b) < total {
		return nil, false
	}
	if b[total-1] != sep {
		buf.Reset()
		return nil, false
	}

	content := make([]byte, size)
	copy(content, b[pos+1:pos+1+size])
	buf.Next(total)
	return content, true
}
