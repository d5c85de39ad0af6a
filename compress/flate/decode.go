// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package flate

import "github.com/intel/fastinflate/internal/cpu"

const (
	copyLenMax = 258
	// The fast loop decodes a whole length/distance pair from one refill
	// (at most 15+5+15+13 bits) and writes at most copyLenMax bytes, so it
	// only runs while these margins are left.
	inBufferSlop  = 8
	outBufferSlop = copyLenMax
)

// useFastLoop selects the word-refill loop for literal/length decoding.
var useFastLoop = cpu.ArchLevel > 0

// peekCode looks up the next code in table without consuming it. Links are
// followed, and the returned entry's bits covers both levels. It returns false
// when the input runs out before the code is complete.
func (s *Inflater) peekCode(table []code, root uint, in *[]byte) (code, bool) {
	var here code
	for {
		here = table[s.bits.bits(root)]
		if uint(here.bits) <= s.bits.n {
			break
		}
		if !s.bits.pull(in) {
			return here, false
		}
	}
	if here.op == 0 || here.op&0xf0 != 0 {
		return here, true
	}

	link := here
	for {
		idx := s.bits.bits(uint(link.bits)+uint(link.op)) >> link.bits
		here = table[int(link.val)+int(idx)]
		if uint(link.bits)+uint(here.bits) <= s.bits.n {
			break
		}
		if !s.bits.pull(in) {
			return here, false
		}
	}
	here.bits += link.bits
	return here, true
}

// decodeSymbols runs the literal/length/distance loop of a Huffman block.
// It returns false without an error when the input or output ran out, and
// true when the block ended.
func (s *Inflater) decodeSymbols(c *cursor) (bool, error) {
	for {
		switch s.phase {
		case phaseLen:
			if useFastLoop && len(c.in) >= inBufferSlop && c.room() >= outBufferSlop {
				if err := s.decodeFast(c); err != nil {
					return false, err
				}
				if s.phase != phaseLen {
					return true, nil
				}
			}
			here, ok := s.peekCode(s.lencode, s.lenbits, &c.in)
			if !ok {
				return false, nil
			}
			s.bits.drop(uint(here.bits))
			s.length = int(here.val)
			switch {
			case here.op == opLiteral:
				s.phase = phaseLit
			case here.op&opEnd != 0:
				s.endBlock()
				return true, nil
			case here.op&opInvalid != 0:
				return false, ErrInvalidLenCode
			default:
				s.extra = uint(here.op & 15)
				s.phase = phaseLenExt
			}

		case phaseLit:
			if c.room() == 0 {
				return false, nil
			}
			c.out[c.pos] = byte(s.length)
			c.pos++
			s.phase = phaseLen

		case phaseLenExt:
			if s.extra > 0 {
				v, ok := s.bits.read(s.extra, &c.in)
				if !ok {
					return false, nil
				}
				s.length += int(v)
			}
			s.phase = phaseDist

		case phaseDist:
			here, ok := s.peekCode(s.distcode, s.distbits, &c.in)
			if !ok {
				return false, nil
			}
			s.bits.drop(uint(here.bits))
			if here.op&opInvalid != 0 {
				return false, ErrInvalidDistCode
			}
			s.offset = int(here.val)
			s.extra = uint(here.op & 15)
			s.phase = phaseDistExt

		case phaseDistExt:
			if s.extra > 0 {
				v, ok := s.bits.read(s.extra, &c.in)
				if !ok {
					return false, nil
				}
				s.offset += int(v)
			}
			s.commit(c)
			if s.offset > s.win.size {
				return false, ErrDistanceTooFarBack
			}
			s.phase = phaseMatch

		case phaseMatch:
			if !s.copyMatch(c) {
				return false, nil
			}
			s.phase = phaseLen

		default:
			return true, nil
		}
	}
}

// copyMatch copies s.length bytes from s.offset back into the output. It
// returns false when the output fills up first; s.length keeps the rest.
func (s *Inflater) copyMatch(c *cursor) bool {
	for s.length > 0 {
		room := c.room()
		if room == 0 {
			return false
		}
		s.commit(c)
		n := min(s.length, s.offset, room)
		s.win.read(c.out[c.pos:c.pos+n], s.offset)
		c.pos += n
		s.length -= n
	}
	return true
}

// decodeFast decodes literal/length symbols while enough input and output
// space remain to finish any symbol without suspending. It leaves the phase
// at phaseLen when it runs out of margin, and hands unused whole bytes back
// to the input so the accumulator holds fewer than 8 bits afterwards.
func (s *Inflater) decodeFast(c *cursor) (err error) {
	var (
		lmask = uint64(1)<<s.lenbits - 1
		dmask = uint64(1)<<s.distbits - 1
	)
	defer func() {
		k := s.bits.unread(len(c.orig) - len(c.in))
		c.in = c.orig[len(c.orig)-len(c.in)-k:]
	}()

	for len(c.in) >= inBufferSlop && c.room() >= outBufferSlop {
		s.bits.refill(&c.in)

		here := s.lencode[s.bits.v&lmask]
		if here.op != 0 && here.op&0xf0 == 0 {
			link := here
			idx := s.bits.bits(uint(link.bits)+uint(link.op)) >> link.bits
			here = s.lencode[int(link.val)+int(idx)]
			s.bits.drop(uint(link.bits))
		}
		s.bits.drop(uint(here.bits))

		switch {
		case here.op == opLiteral:
			c.out[c.pos] = byte(here.val)
			c.pos++
			continue
		case here.op&opEnd != 0:
			s.endBlock()
			return nil
		case here.op&opInvalid != 0:
			return ErrInvalidLenCode
		}
		length := int(here.val) + int(s.bits.take(uint(here.op&15)))

		here = s.distcode[s.bits.v&dmask]
		if here.op != 0 && here.op&0xf0 == 0 {
			link := here
			idx := s.bits.bits(uint(link.bits)+uint(link.op)) >> link.bits
			here = s.distcode[int(link.val)+int(idx)]
			s.bits.drop(uint(link.bits))
		}
		s.bits.drop(uint(here.bits))
		if here.op&opInvalid != 0 {
			return ErrInvalidDistCode
		}
		offset := int(here.val) + int(s.bits.take(uint(here.op&15)))

		s.commit(c)
		if offset > s.win.size {
			return ErrDistanceTooFarBack
		}
		s.length, s.offset = length, offset
		s.copyMatch(c)
	}
	return nil
}
