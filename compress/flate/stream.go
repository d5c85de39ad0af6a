// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package flate

import (
	"io"

	"github.com/pkg/errors"
)

// scratchSize is the size of the intermediate region used by DecodeTo.
const scratchSize = 16 << 10

// Decode decodes the input buffers, in order, into out. It stops when out is
// full, the input is exhausted or the stream ends, and returns the number of
// bytes written and consumed. Unconsumed input must be passed again on the
// next call.
func (s *Inflater) Decode(out []byte, in ...[]byte) (written, consumed int, err error) {
	ps := Params{NextOut: out}
	for _, b := range in {
		ps.NextIn = b
		err = s.Write(&ps)
		if err != nil || ps.AvailIn() > 0 {
			break
		}
	}
	return ps.TotalOut, ps.TotalIn, err
}

// DecodeTo decodes the input buffers and appends the output to dst through
// a fixed scratch region. It returns once all input has been consumed and
// every byte it allows has been written, or when the stream ends.
func (s *Inflater) DecodeTo(dst io.Writer, in ...[]byte) (consumed int, err error) {
	if s.scratch == nil {
		s.scratch = make([]byte, scratchSize)
	}
	var ps Params
	for _, b := range in {
		ps.NextIn = b
		for {
			ps.NextOut = s.scratch
			before := ps.TotalOut
			err = s.Write(&ps)
			if n := ps.TotalOut - before; n > 0 {
				if _, werr := dst.Write(s.scratch[:n]); werr != nil {
					return ps.TotalIn, errors.Wrap(werr, "failed to write decoded data")
				}
			}
			if err != nil {
				return ps.TotalIn, err
			}
			if ps.AvailOut() > 0 {
				// Stopped for input.
				break
			}
		}
	}
	return ps.TotalIn, nil
}

// DecodeOne performs a single decoding step from in to out, stopping at
// whichever runs out first.
func (s *Inflater) DecodeOne(out, in []byte) (written, consumed int, err error) {
	ps := Params{NextIn: in, NextOut: out}
	err = s.Write(&ps)
	return ps.TotalOut, ps.TotalIn, err
}
