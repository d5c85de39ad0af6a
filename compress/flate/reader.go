// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package flate

import (
	"bufio"
	"compress/flate"
	"io"

	"github.com/pkg/errors"
)

// Resetter resets a ReadCloser returned by NewReader or NewReaderDict.
type Resetter = flate.Resetter

// NewReader returns an io.ReadCloser that decompresses the raw DEFLATE
// stream read from r. Input is taken through a bufio.Reader; when r already
// is one, bytes following the stream stay unread in it.
func NewReader(r io.Reader) io.ReadCloser {
	return NewReaderDict(r, nil)
}

// NewReaderDict is like NewReader but preloads the history with dict.
func NewReaderDict(r io.Reader, dict []byte) io.ReadCloser {
	rr := &decompressor{}
	rr.Reset(r, dict)
	return rr
}

type decompressor struct {
	state Inflater
	r     io.Reader
	rBuf  *bufio.Reader
	err   error
}

func (f *decompressor) Reset(under io.Reader, dict []byte) error {
	f.r = under
	if ur, ok := under.(*bufio.Reader); ok {
		f.rBuf = ur
	} else {
		if f.rBuf != nil {
			f.rBuf.Reset(under)
		} else {
			f.rBuf = bufio.NewReader(under)
		}
	}

	f.err = nil
	f.state.Reset(false)
	if dict != nil {
		f.state.SetDictionary(dict)
	}
	return nil
}

func (f *decompressor) Close() error {
	return nil
}

func (f *decompressor) Read(b []byte) (n int, err error) {
	if f.err != nil {
		return 0, f.err
	}
	if len(b) == 0 {
		return 0, nil
	}
	for n == 0 && f.err == nil {
		f.err = f.step(b, &n)
	}
	return n, f.err
}

// step feeds the buffered input to the decoder once.
func (f *decompressor) step(b []byte, n *int) error {
	input, rerr := f.input()
	if rerr != nil && rerr != io.EOF {
		return rerr
	}

	ps := Params{NextIn: input, NextOut: b}
	err := f.state.Write(&ps)
	if _, derr := f.rBuf.Discard(ps.TotalIn); derr != nil {
		return derr
	}
	*n = ps.TotalOut

	switch {
	case err == ErrEndOfStream:
		return io.EOF
	case err != nil:
		return errors.Wrapf(err, "flate: corrupt input near offset %d", f.state.TotalIn())
	case rerr == io.EOF && ps.AvailOut() > 0:
		// All input was consumed and the stream is unfinished.
		return io.ErrUnexpectedEOF
	}
	return nil
}

// input returns the bytes currently buffered, reading more when empty.
func (f *decompressor) input() ([]byte, error) {
	if f.rBuf.Buffered() == 0 {
		if _, err := f.rBuf.Peek(1); err != nil {
			return nil, err
		}
	}
	return f.rBuf.Peek(f.rBuf.Buffered())
}

