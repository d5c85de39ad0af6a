// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package flate

import (
	"bytes"
	"testing"

	kflate "github.com/klauspost/compress/flate"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// split cuts b into pieces at the given sizes, the last piece taking the rest.
func split(b []byte, sizes ...int) [][]byte {
	var out [][]byte
	for _, n := range sizes {
		n = min(n, len(b))
		out = append(out, b[:n])
		b = b[n:]
	}
	return append(out, b)
}

func TestDecodeMultipleBuffers(t *testing.T) {
	raw := sample(5000, 21)
	stream := compress(t, raw, kflate.DefaultCompression)
	s := newTestInflater(t)

	out := make([]byte, len(raw)+10)
	written, consumed, err := s.Decode(out, split(stream, 1, 7, 100)...)
	require.Equal(t, ErrEndOfStream, err)
	require.Equal(t, len(stream), consumed)
	require.Equal(t, raw, out[:written])
}

func TestDecodeResumesWhenOutputFull(t *testing.T) {
	raw := sample(5000, 22)
	stream := compress(t, raw, kflate.BestCompression)
	s := newTestInflater(t)

	var got []byte
	out := make([]byte, 777)
	for {
		written, consumed, err := s.Decode(out, stream)
		got = append(got, out[:written]...)
		stream = stream[consumed:]
		if err == ErrEndOfStream {
			break
		}
		require.NoError(t, err)
		require.Equal(t, len(out), written)
	}
	require.Equal(t, raw, got)
}

func TestDecodeTo(t *testing.T) {
	raw := sample(3*scratchSize+5, 23)
	stream := compress(t, raw, kflate.BestSpeed)
	s := newTestInflater(t)

	var buf bytes.Buffer
	parts := split(stream, len(stream)/3, len(stream)/3)
	consumed, err := s.DecodeTo(&buf, parts[0], parts[1])
	require.NoError(t, err)
	require.Equal(t, len(parts[0])+len(parts[1]), consumed)

	consumed, err = s.DecodeTo(&buf, parts[2])
	require.Equal(t, ErrEndOfStream, err)
	require.Equal(t, len(parts[2]), consumed)
	require.Equal(t, raw, buf.Bytes())
}

type failingWriter struct{}

var errSink = errors.New("sink closed")

func (failingWriter) Write(p []byte) (int, error) { return 0, errSink }

func TestDecodeToWriterError(t *testing.T) {
	stream := compress(t, sample(100, 24), kflate.BestSpeed)
	_, err := newTestInflater(t).DecodeTo(failingWriter{}, stream)
	require.Error(t, err)
	require.Equal(t, errSink, errors.Cause(err))
}

func TestDecodeOne(t *testing.T) {
	raw := sample(1000, 25)
	stream := compress(t, raw, kflate.BestSpeed)
	s := newTestInflater(t)

	out := make([]byte, 100)
	written, consumed, err := s.DecodeOne(out, stream)
	require.NoError(t, err)
	require.Equal(t, 100, written)
	require.Equal(t, raw[:100], out)

	rest := make([]byte, 2000)
	written, _, err = s.DecodeOne(rest, stream[consumed:])
	require.Equal(t, ErrEndOfStream, err)
	require.Equal(t, raw[100:], rest[:written])
}

func TestAdaptersShareSession(t *testing.T) {
	raw := sample(40000, 26)
	stream := compress(t, raw, kflate.DefaultCompression)
	s := newTestInflater(t)

	head := make([]byte, 1000)
	written, consumed, err := s.DecodeOne(head, stream)
	require.NoError(t, err)

	var buf bytes.Buffer
	buf.Write(head[:written])
	_, err = s.DecodeTo(&buf, stream[consumed:])
	require.Equal(t, ErrEndOfStream, err)
	require.Equal(t, raw, buf.Bytes())
	require.EqualValues(t, len(stream), s.TotalIn())
}

func TestChunkingIndependence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.SliceOfN(rapid.Byte(), 0, 4000).Draw(t, "raw")
		if rapid.Bool().Draw(t, "repetitive") {
			raw = bytes.Repeat(raw, rapid.IntRange(1, 20).Draw(t, "repeat"))
		}
		level := rapid.IntRange(-2, 9).Draw(t, "level")
		inChunk := rapid.IntRange(1, 512).Draw(t, "in")
		outChunk := rapid.IntRange(1, 1024).Draw(t, "out")
		saved := useFastLoop
		useFastLoop = rapid.Bool().Draw(t, "fast")
		defer func() { useFastLoop = saved }()

		stream := compress(t, raw, level)
		s, err := NewInflater()
		require.NoError(t, err)
		got := decodeChunked(t, s, stream, inChunk, outChunk)
		require.True(t, bytes.Equal(raw, got))
		require.EqualValues(t, len(stream), s.TotalIn())
	})
}
