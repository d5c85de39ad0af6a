// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package flate

import "encoding/binary"

// bitReader accumulates input bits least-significant first. Bits at or above
// position n are always zero, so a lookup with fewer than the table width
// available sees zero padding.
type bitReader struct {
	v uint64 // pending bits
	n uint   // number of valid bits in v
}

// pull moves one byte from *in into the accumulator.
func (b *bitReader) pull(in *[]byte) bool {
	if len(*in) == 0 {
		return false
	}
	b.v |= uint64((*in)[0]) << b.n
	*in = (*in)[1:]
	b.n += 8
	return true
}

// fill ensures at least n bits are held. It returns false when the input runs
// out first; bytes already pulled stay in the accumulator.
func (b *bitReader) fill(n uint, in *[]byte) bool {
	for b.n < n {
		if !b.pull(in) {
			return false
		}
	}
	return true
}

// refill tops the accumulator up to at least 56 bits with one unaligned
// load. The caller guarantees len(*in) >= 8.
func (b *bitReader) refill(in *[]byte) {
	if b.n >= 56 {
		return
	}
	consumed := (63 - b.n) >> 3
	b.v |= binary.LittleEndian.Uint64(*in) << b.n
	b.n += consumed * 8
	b.v &= 1<<b.n - 1
	*in = (*in)[consumed:]
}

// bits returns the low n bits without consuming them.
func (b *bitReader) bits(n uint) uint32 {
	return uint32(b.v & (1<<n - 1))
}

func (b *bitReader) peek(n uint, in *[]byte) (uint32, bool) {
	if !b.fill(n, in) {
		return 0, false
	}
	return b.bits(n), true
}

func (b *bitReader) read(n uint, in *[]byte) (uint32, bool) {
	v, ok := b.peek(n, in)
	if ok {
		b.drop(n)
	}
	return v, ok
}

// take consumes n bits that are known to be present.
func (b *bitReader) take(n uint) uint32 {
	v := b.bits(n)
	b.drop(n)
	return v
}

func (b *bitReader) drop(n uint) {
	b.v >>= n
	b.n -= n
}

func (b *bitReader) flush() {
	b.v = 0
	b.n = 0
}

// flushByte discards the bits left over from a partially consumed byte.
func (b *bitReader) flushByte() {
	b.drop(b.n & 7)
}

// unread returns whole pending bytes to the input. At most consumed bytes
// (the ones taken from the current input buffer) are returned; the count is
// reported so the caller can rewind its cursor.
func (b *bitReader) unread(consumed int) int {
	k := min(int(b.n>>3), consumed)
	b.n -= uint(k) * 8
	b.v &= 1<<b.n - 1
	return k
}
