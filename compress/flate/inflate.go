// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package flate

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	minWindowBits     = 8
	maxWindowBits     = 15
	defaultWindowBits = maxWindowBits
)

// Params is the cursor record exchanged with Write. NextIn holds the unread
// input and NextOut the unused output space; Write advances both slices and
// adds the consumed and produced byte counts to TotalIn and TotalOut.
type Params struct {
	NextIn   []byte
	TotalIn  int
	NextOut  []byte
	TotalOut int
}

// AvailIn returns the number of input bytes not yet consumed.
func (p *Params) AvailIn() int { return len(p.NextIn) }

// AvailOut returns the output space left.
func (p *Params) AvailOut() int { return len(p.NextOut) }

// phase is the position of the decoder in the DEFLATE grammar.
type phase int

const (
	phaseHead     phase = iota // block header: final flag and type
	phaseStored                // stored block LEN/NLEN
	phaseCopy                  // stored block payload
	phaseTable                 // dynamic block HLIT/HDIST/HCLEN
	phaseLenLens               // code length code lengths
	phaseCodeLens              // literal/length and distance code lengths
	phaseLen                   // literal/length symbol
	phaseLenExt                // length extra bits
	phaseDist                  // distance symbol
	phaseDistExt               // distance extra bits
	phaseMatch                 // back-reference copy
	phaseLit                   // literal waiting for output space
	phaseDone                  // end of stream
	phaseBad                   // fatal error
)

var phaseNames = [...]string{
	"head", "stored", "copy", "table", "lenlens", "codelens", "len",
	"lenext", "dist", "distext", "match", "lit", "done", "bad",
}

func (p phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// Inflater is a resumable raw DEFLATE decoder. It keeps every piece of
// decoding state between calls, so input and output may be supplied in
// pieces of any size. An Inflater is not safe for concurrent use.
type Inflater struct {
	bits  bitReader
	win   window
	phase phase
	last  bool  // current block is the final one
	err   error // sticky fatal error

	// Current literal/length and distance tables with their root widths.
	lencode  []code
	distcode []code
	lenbits  uint
	distbits uint

	// Dynamic header bookkeeping.
	nlen  int
	ndist int
	ncode int
	have  int
	lens  [320]uint16
	work  [288]uint16
	codes [enough]code

	length int    // stored bytes left, or match length
	offset int    // match distance
	extra  uint   // pending extra bits
	blocks uint64 // blocks started, for logging

	totalIn  int64 // bytes consumed since Reset
	totalOut int64 // bytes produced since Reset

	windowBits int
	log        logrus.FieldLogger
	scratch    []byte
}

// Option configures an Inflater.
type Option func(*Inflater) error

// WithWindowBits sets the history size to 1<<bits bytes. Streams produced
// with a larger window fail with ErrDistanceTooFarBack.
func WithWindowBits(bits int) Option {
	return func(s *Inflater) error {
		if bits < minWindowBits || bits > maxWindowBits {
			return errors.Errorf("window bits must be between %d and %d, got %d", minWindowBits, maxWindowBits, bits)
		}
		s.windowBits = bits
		return nil
	}
}

// WithLogger enables debug logging of block boundaries and failures.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Inflater) error {
		if log == nil {
			return errors.New("logger cannot be nil")
		}
		s.log = log
		return nil
	}
}

// NewInflater returns an Inflater ready to decode a new stream.
func NewInflater(opts ...Option) (*Inflater, error) {
	s := &Inflater{windowBits: defaultWindowBits}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, errors.Wrap(err, "invalid inflater option")
		}
	}
	s.win.reset(1 << s.windowBits)
	s.Reset(true)
	return s, nil
}

// Reset prepares s for a new, independent stream. When keepWindow is set the
// history of the previous stream stays available to back-references.
func (s *Inflater) Reset(keepWindow bool) {
	if s.windowBits == 0 {
		s.windowBits = defaultWindowBits
	}
	if !keepWindow || s.win.capacity() != 1<<s.windowBits {
		s.win.reset(1 << s.windowBits)
	}
	s.bits.flush()
	s.phase = phaseHead
	s.last = false
	s.err = nil
	s.lencode, s.distcode = nil, nil
	s.length, s.offset, s.extra = 0, 0, 0
	s.blocks = 0
	s.totalIn, s.totalOut = 0, 0
}

// SetDictionary preloads the history with dict, as if it had been produced
// just before the stream. Only the last window-size bytes are kept.
func (s *Inflater) SetDictionary(dict []byte) {
	if s.win.buf == nil {
		s.Reset(false)
	}
	s.win.write(dict)
}

// TotalIn returns the number of input bytes consumed since the last Reset.
func (s *Inflater) TotalIn() int64 {
	return s.totalIn
}

// TotalOut returns the number of bytes produced since the last Reset.
func (s *Inflater) TotalOut() int64 {
	return s.totalOut
}

// Done reports whether the final block has been decoded.
func (s *Inflater) Done() bool {
	return s.phase == phaseDone
}

// cursor tracks the buffers of one Write call.
type cursor struct {
	orig []byte // input as passed in
	in   []byte // input not yet consumed
	out  []byte // output region
	pos  int    // bytes written to out
	mark int    // bytes of out already recorded in the window
}

func (c *cursor) room() int {
	return len(c.out) - c.pos
}

// Write decodes from ps.NextIn into ps.NextOut, advancing both. It returns
// nil when it stopped because the input or the output ran out, ErrEndOfStream
// once the final block is complete, or a fatal Error.
func (s *Inflater) Write(ps *Params) error {
	if s.win.buf == nil {
		s.Reset(false)
	}
	c := cursor{orig: ps.NextIn, in: ps.NextIn, out: ps.NextOut}
	err := s.step(&c)
	s.commit(&c)

	consumed := len(c.orig) - len(c.in)
	ps.NextIn = c.in
	ps.TotalIn += consumed
	ps.NextOut = c.out[c.pos:]
	ps.TotalOut += c.pos
	s.totalIn += int64(consumed)
	s.totalOut += int64(c.pos)

	if err != nil && err != ErrEndOfStream && s.phase != phaseBad {
		s.fail(err)
	}
	return err
}

func (s *Inflater) fail(err error) {
	if s.log != nil {
		s.log.WithFields(logrus.Fields{
			"phase":     s.phase.String(),
			"block":     s.blocks,
			"total_in":  s.totalIn,
			"total_out": s.totalOut,
		}).WithError(err).Warn("deflate stream rejected")
	}
	s.phase = phaseBad
	s.err = err
}

// commit records the output written since the last commit in the window.
func (s *Inflater) commit(c *cursor) {
	if c.mark < c.pos {
		s.win.write(c.out[c.mark:c.pos])
		c.mark = c.pos
	}
}

// endBlock moves to the next block header, or to the end of the stream.
func (s *Inflater) endBlock() {
	if s.last {
		s.phase = phaseDone
	} else {
		s.phase = phaseHead
	}
}

// step runs the state machine until it needs more input or output space,
// finishes the stream or hits an error.
func (s *Inflater) step(c *cursor) error {
	for {
		switch s.phase {
		case phaseHead:
			v, ok := s.bits.read(3, &c.in)
			if !ok {
				return nil
			}
			s.last = v&1 != 0
			s.blocks++
			switch v >> 1 {
			case 0:
				s.phase = phaseStored
			case 1:
				s.lencode, s.lenbits, s.distcode, s.distbits = fixedTables()
				s.phase = phaseLen
			case 2:
				s.phase = phaseTable
			default:
				return ErrInvalidBlockType
			}
			s.debugBlock(v >> 1)

		case phaseStored:
			s.bits.flushByte()
			v, ok := s.bits.read(32, &c.in)
			if !ok {
				return nil
			}
			if uint16(v) != ^uint16(v>>16) {
				return ErrInvalidStoredBlockLengths
			}
			s.length = int(v & 0xffff)
			s.phase = phaseCopy

		case phaseCopy:
			if s.length == 0 {
				s.endBlock()
				continue
			}
			n := min(s.length, len(c.in), c.room())
			if n == 0 {
				return nil
			}
			copy(c.out[c.pos:], c.in[:n])
			c.in = c.in[n:]
			c.pos += n
			s.length -= n

		case phaseTable, phaseLenLens, phaseCodeLens:
			ok, err := s.readDynamicHeader(c)
			if err != nil || !ok {
				return err
			}

		case phaseLen, phaseLenExt, phaseDist, phaseDistExt, phaseMatch, phaseLit:
			ok, err := s.decodeSymbols(c)
			if err != nil || !ok {
				return err
			}

		case phaseDone:
			return ErrEndOfStream

		case phaseBad:
			return s.err
		}
	}
}

func (s *Inflater) debugBlock(btype uint32) {
	if s.log == nil {
		return
	}
	var kind string
	switch btype {
	case 0:
		kind = "stored"
	case 1:
		kind = "fixed"
	case 2:
		kind = "dynamic"
	default:
		kind = "reserved"
	}
	s.log.WithFields(logrus.Fields{
		"block": s.blocks,
		"type":  kind,
		"final": s.last,
	}).Debug("deflate block")
}
