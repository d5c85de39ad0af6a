// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package flate

import "sync"

// code is one decoding table entry.
//
// | op          | meaning                                          |
// | ----------- | ------------------------------------------------ |
// | 0x00        | literal, val is the byte (or code length symbol) |
// | 0x01 - 0x0f | link, op index bits into the sub-table at val    |
// | 0x10 - 0x1f | length/distance base val, op&15 extra bits       |
// | 0x60        | end of block                                     |
// | 0x40        | invalid code                                     |
//
// bits is the number of bits the entry consumes; for links it is the root
// width of the table holding the link.
type code struct {
	op   uint8
	bits uint8
	val  uint16
}

const (
	opLiteral = 0x00
	opBase    = 0x10
	opEnd     = 0x20 // tested before opInvalid; end-of-block entries carry both bits
	opInvalid = 0x40

	maxCodeBits = 15

	codeLenCodes = 19
	maxLitLens   = 286
	maxDists     = 30

	codeLenRootBits = 7
	litLenRootBits  = 9
	distRootBits    = 6

	// Largest tables buildTable can produce for the root widths above.
	enoughLens  = 852
	enoughDists = 592
	enough      = enoughLens + enoughDists
)

type codeKind int

const (
	codeLengths codeKind = iota
	litLens
	dists
)

func (k codeKind) String() string {
	switch k {
	case codeLengths:
		return "code lengths"
	case litLens:
		return "literal/length"
	default:
		return "distance"
	}
}

// Base values and extra bit ops for length symbols 257..287 and distance
// symbols 0..31. The two trailing entries of each are never valid.
var (
	lenBase = [31]uint16{
		3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
		35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258, 0, 0}
	lenOp = [31]uint8{
		16, 16, 16, 16, 16, 16, 16, 16, 17, 17, 17, 17, 18, 18, 18, 18,
		19, 19, 19, 19, 20, 20, 20, 20, 21, 21, 21, 21, 16, opInvalid, opInvalid}
	distBase = [32]uint16{
		1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193,
		257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145,
		8193, 12289, 16385, 24577, 0, 0}
	distOp = [32]uint8{
		16, 16, 16, 16, 17, 17, 18, 18, 19, 19, 20, 20, 21, 21, 22, 22,
		23, 23, 24, 24, 25, 25, 26, 26, 27, 27, 28, 28, 29, 29, opInvalid, opInvalid}
)

// buildTable builds the canonical Huffman decoding table for the code lengths
// in lens into table. The root level indexes root bits (reduced to the longest
// code when that is shorter); longer codes get sub-tables addressed by offset.
// work must hold len(lens) entries. It returns the number of entries used and
// the root width.
//
// Over-subscribed sets are rejected. Incomplete sets are rejected unless the
// set is a single code of length one.
func buildTable(kind codeKind, lens []uint16, table []code, root uint, work []uint16) (int, uint, error) {
	var count, offs [maxCodeBits + 1]uint16
	for _, l := range lens {
		count[l]++
	}

	maxLen := uint(maxCodeBits)
	for ; maxLen >= 1; maxLen-- {
		if count[maxLen] != 0 {
			break
		}
	}
	if root > maxLen {
		root = maxLen
	}
	if maxLen == 0 {
		// No codes at all. Any lookup yields an invalid code.
		here := code{op: opInvalid, bits: 1}
		table[0] = here
		table[1] = here
		return 2, 1, nil
	}
	minLen := uint(1)
	for ; minLen < maxLen; minLen++ {
		if count[minLen] != 0 {
			break
		}
	}
	if root < minLen {
		root = minLen
	}

	left := 1
	for l := 1; l <= maxCodeBits; l++ {
		left <<= 1
		left -= int(count[l])
		if left < 0 {
			return 0, 0, ErrOversubscribedCodes
		}
	}
	if left > 0 && maxLen != 1 {
		return 0, 0, ErrIncompleteCodes
	}

	// Sort symbols by length, then by symbol.
	for l := 1; l < maxCodeBits; l++ {
		offs[l+1] = offs[l] + count[l]
	}
	for sym, l := range lens {
		if l != 0 {
			work[offs[l]] = uint16(sym)
			offs[l]++
		}
	}

	var (
		base  []uint16
		ops   []uint8
		match int
	)
	switch kind {
	case litLens:
		base, ops, match = lenBase[:], lenOp[:], 257
	case dists:
		base, ops, match = distBase[:], distOp[:], 0
	default:
		match = codeLenCodes + 1 // every symbol is a literal
	}

	var (
		huff  uint // current code, bit-reversed
		sym   int
		l     = minLen
		next  int // start of the current (sub-)table
		curr  = root
		drop  uint
		low   = ^uint(0)
		used  = 1 << root
		mask  = uint(used - 1)
		limit = len(table)
	)
	if (kind == litLens && used > enoughLens) || (kind == dists && used > enoughDists) || used > limit {
		return 0, 0, ErrOversubscribedCodes
	}

	for {
		here := code{bits: uint8(l - drop)}
		s := int(work[sym])
		switch {
		case s+1 < match:
			here.op = opLiteral
			here.val = uint16(s)
		case s >= match:
			here.op = ops[s-match]
			here.val = base[s-match]
		default:
			here.op = opEnd | opInvalid
		}

		// Replicate over every index sharing this code's low bits.
		incr := uint(1) << (l - drop)
		fill := uint(1) << curr
		size := fill
		for {
			fill -= incr
			table[next+int(huff>>drop)+int(fill)] = here
			if fill == 0 {
				break
			}
		}

		// Increment the bit-reversed code.
		incr = 1 << (l - 1)
		for huff&incr != 0 {
			incr >>= 1
		}
		if incr != 0 {
			huff &= incr - 1
			huff += incr
		} else {
			huff = 0
		}

		sym++
		count[l]--
		if count[l] == 0 {
			if l == maxLen {
				break
			}
			l = uint(lens[work[sym]])
		}

		// Start a new sub-table when the root prefix changes.
		if l > root && huff&mask != low {
			if drop == 0 {
				drop = root
			}
			next += int(size)

			curr = l - drop
			left = 1 << curr
			for curr+drop < maxLen {
				left -= int(count[curr+drop])
				if left <= 0 {
					break
				}
				curr++
				left <<= 1
			}

			used += 1 << curr
			if (kind == litLens && used > enoughLens) || (kind == dists && used > enoughDists) || used > limit {
				return 0, 0, ErrOversubscribedCodes
			}

			low = huff & mask
			table[low] = code{op: uint8(curr), bits: uint8(root), val: uint16(next)}
		}
	}

	// An incomplete single-code set leaves exactly one slot unfilled.
	if huff != 0 {
		table[next+int(huff)] = code{op: opInvalid, bits: uint8(l - drop)}
	}
	return used, root, nil
}

// Fixed literal/length and distance tables, built on first use.
var (
	fixedOnce    sync.Once
	fixedLitLen  [1 << 9]code
	fixedDist    [1 << 5]code
	fixedLenBits uint
	fixedDstBits uint
)

func fixedTables() ([]code, uint, []code, uint) {
	fixedOnce.Do(func() {
		var lens [288]uint16
		var work [288]uint16
		for i := range lens {
			switch {
			case i < 144:
				lens[i] = 8
			case i < 256:
				lens[i] = 9
			case i < 280:
				lens[i] = 7
			default:
				lens[i] = 8
			}
		}
		_, fixedLenBits, _ = buildTable(litLens, lens[:], fixedLitLen[:], 9, work[:])

		for i := 0; i < 32; i++ {
			lens[i] = 5
		}
		_, fixedDstBits, _ = buildTable(dists, lens[:32], fixedDist[:], 5, work[:])
	})
	return fixedLitLen[:], fixedLenBits, fixedDist[:], fixedDstBits
}
