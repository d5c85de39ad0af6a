// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package codec

import (
	"bytes"
	"io"
	"sync"

	"github.com/intel/fastinflate/compress/flate"
	"github.com/pkg/errors"
)

// DeflateDecompressor implements Decompressor for raw DEFLATE messages.
// Inflaters are pooled, so it is safe for concurrent use.
type DeflateDecompressor struct {
	maxLength uint64
	pool      sync.Pool
}

// NewDeflateDecompressor creates a DeflateDecompressor with the specified
// max length. opts configure every Inflater it uses.
func NewDeflateDecompressor(maxLength uint64, opts ...flate.Option) (*DeflateDecompressor, error) {
	first, err := flate.NewInflater(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create inflater")
	}
	d := &DeflateDecompressor{maxLength: maxLength}
	d.pool.New = func() any {
		s, _ := flate.NewInflater(opts...)
		return s
	}
	d.pool.Put(first)
	return d, nil
}

// cappedBuffer refuses writes that would grow it past max.
type cappedBuffer struct {
	bytes.Buffer
	max uint64
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if n := uint64(b.Len() + len(p)); b.max > 0 && n > b.max {
		return 0, exceeded(n, b.max)
	}
	return b.Buffer.Write(p)
}

// Decompress decodes one raw DEFLATE stream. Input left after the final
// block is an error.
func (d *DeflateDecompressor) Decompress(data []byte) ([]byte, error) {
	s := d.pool.Get().(*flate.Inflater)
	defer d.pool.Put(s)
	s.Reset(false)

	out := cappedBuffer{max: d.maxLength}
	consumed, err := s.DecodeTo(&out, data)
	switch {
	case err == flate.ErrEndOfStream:
	case err == nil:
		return nil, errors.Wrap(io.ErrUnexpectedEOF, "truncated deflate message")
	default:
		return nil, errors.Wrap(err, "failed to inflate message")
	}
	if consumed != len(data) {
		return nil, errors.Errorf("%d trailing bytes after deflate stream", len(data)-consumed)
	}
	return out.Bytes(), nil
}

// MaxLength returns the maximum allowed length for decompressed data.
func (d *DeflateDecompressor) MaxLength() uint64 {
	return d.maxLength
}

var _ Decompressor = (*DeflateDecompressor)(nil)
