// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package flate

// window is the circular history of recently produced output. Back-references
// are resolved against it, so they may reach into bytes handed to the caller
// by earlier calls.
type window struct {
	buf  []byte // len(buf) is the capacity, a power of two
	pos  int    // next write position
	size int    // valid bytes, at most len(buf)
}

// reset prepares an empty window of the given capacity, reusing the
// allocation when the capacity is unchanged.
func (w *window) reset(capacity int) {
	if len(w.buf) != capacity {
		w.buf = make([]byte, capacity)
	}
	w.pos = 0
	w.size = 0
}

func (w *window) capacity() int {
	return len(w.buf)
}

// write appends p, overwriting the oldest bytes once the window is full.
func (w *window) write(p []byte) {
	capacity := len(w.buf)
	if len(p) >= capacity {
		copy(w.buf, p[len(p)-capacity:])
		w.pos = 0
		w.size = capacity
		return
	}
	n := copy(w.buf[w.pos:], p)
	if n < len(p) {
		copy(w.buf, p[n:])
	}
	w.pos = (w.pos + len(p)) & (capacity - 1)
	w.size = min(w.size+len(p), capacity)
}

// read copies len(out) bytes starting back bytes behind the write position.
// The caller guarantees len(out) <= back <= w.size.
func (w *window) read(out []byte, back int) {
	start := (w.pos - back) & (len(w.buf) - 1)
	n := copy(out, w.buf[start:])
	if n < len(out) {
		copy(out[n:], w.buf)
	}
}
