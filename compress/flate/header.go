// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

// This file implements dynamic Huffman block header parsing as specified in
// RFC 1951 section 3.2.7. Every step can stop at any bit and resume on the
// next call.
package flate

// Code length code lengths are transmitted in this order.
var codeLengthOrder = [codeLenCodes]uint8{
	16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15,
}

// readDynamicHeader advances through phaseTable, phaseLenLens and
// phaseCodeLens. It returns false without an error when input ran out.
func (s *Inflater) readDynamicHeader(c *cursor) (bool, error) {
	for {
		switch s.phase {
		case phaseTable:
			v, ok := s.bits.read(14, &c.in)
			if !ok {
				return false, nil
			}
			s.nlen = int(v&0x1f) + 257
			s.ndist = int(v>>5&0x1f) + 1
			s.ncode = int(v>>10&0xf) + 4
			if s.nlen > maxLitLens || s.ndist > maxDists {
				return false, ErrTooManySymbols
			}
			s.have = 0
			s.phase = phaseLenLens

		case phaseLenLens:
			for s.have < s.ncode {
				v, ok := s.bits.read(3, &c.in)
				if !ok {
					return false, nil
				}
				s.lens[codeLengthOrder[s.have]] = uint16(v)
				s.have++
			}
			for ; s.have < codeLenCodes; s.have++ {
				s.lens[codeLengthOrder[s.have]] = 0
			}
			used, bits, err := buildTable(codeLengths, s.lens[:codeLenCodes], s.codes[:], codeLenRootBits, s.work[:])
			if err != nil {
				return false, err
			}
			s.lencode = s.codes[:used]
			s.lenbits = bits
			s.have = 0
			s.phase = phaseCodeLens

		case phaseCodeLens:
			if ok, err := s.readCodeLens(c); err != nil || !ok {
				return false, err
			}
			return true, s.buildDynamicTables()

		default:
			return true, nil
		}
	}
}

// readCodeLens decodes the literal/length and distance code lengths with the
// code length table.
func (s *Inflater) readCodeLens(c *cursor) (bool, error) {
	total := s.nlen + s.ndist
	for s.have < total {
		here, ok := s.peekCode(s.lencode, s.lenbits, &c.in)
		if !ok {
			return false, nil
		}
		if here.op&opInvalid != 0 {
			return false, ErrIncompleteCodes
		}
		if here.val < 16 {
			s.bits.drop(uint(here.bits))
			s.lens[s.have] = here.val
			s.have++
			continue
		}

		var (
			repeat uint16
			count  int
		)
		switch here.val {
		case 16:
			if !s.bits.fill(uint(here.bits)+2, &c.in) {
				return false, nil
			}
			s.bits.drop(uint(here.bits))
			if s.have == 0 {
				return false, ErrInvalidBitLengthRepeat
			}
			repeat = s.lens[s.have-1]
			count = 3 + int(s.bits.take(2))
		case 17:
			if !s.bits.fill(uint(here.bits)+3, &c.in) {
				return false, nil
			}
			s.bits.drop(uint(here.bits))
			count = 3 + int(s.bits.take(3))
		default:
			if !s.bits.fill(uint(here.bits)+7, &c.in) {
				return false, nil
			}
			s.bits.drop(uint(here.bits))
			count = 11 + int(s.bits.take(7))
		}
		if s.have+count > total {
			return false, ErrInvalidBitLengthRepeat
		}
		for ; count > 0; count-- {
			s.lens[s.have] = repeat
			s.have++
		}
	}
	return true, nil
}

// buildDynamicTables builds the literal/length and distance tables from the
// decoded code lengths.
func (s *Inflater) buildDynamicTables() error {
	if s.lens[256] == 0 {
		return ErrMissingEndOfBlock
	}

	used, bits, err := buildTable(litLens, s.lens[:s.nlen], s.codes[:], litLenRootBits, s.work[:])
	if err != nil {
		return err
	}
	s.lencode = s.codes[:used]
	s.lenbits = bits

	dused, dbits, err := buildTable(dists, s.lens[s.nlen:s.nlen+s.ndist], s.codes[used:], distRootBits, s.work[:])
	if err != nil {
		return err
	}
	s.distcode = s.codes[used : used+dused]
	s.distbits = dbits

	s.phase = phaseLen
	return nil
}
