// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package codec

import (
	"bytes"
	"io"
	"sync"
	"testing"

	"github.com/golang/snappy"
	"github.com/intel/fastinflate/compress/flate"
	kflate "github.com/klauspost/compress/flate"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func deflate(t require.TestingT, data []byte) []byte {
	var buf bytes.Buffer
	w, err := kflate.NewWriter(&buf, kflate.DefaultCompression)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDeflateDecompressor(t *testing.T) {
	testData := bytes.Repeat([]byte("Hello, this is a test message that will be compressed. "), 100)

	t.Run("decompress", func(t *testing.T) {
		d, err := NewDeflateDecompressor(0)
		require.NoError(t, err)

		decompressed, err := d.Decompress(deflate(t, testData))
		require.NoError(t, err)
		assert.Equal(t, testData, decompressed)
	})

	t.Run("max length validation", func(t *testing.T) {
		d, err := NewDeflateDecompressor(50)
		require.NoError(t, err)

		_, err = d.Decompress(deflate(t, testData))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds max length")
	})

	t.Run("exact max length", func(t *testing.T) {
		d, err := NewDeflateDecompressor(uint64(len(testData)))
		require.NoError(t, err)

		decompressed, err := d.Decompress(deflate(t, testData))
		require.NoError(t, err)
		assert.Len(t, decompressed, len(testData))
	})

	t.Run("truncated", func(t *testing.T) {
		d, err := NewDeflateDecompressor(0)
		require.NoError(t, err)

		compressed := deflate(t, testData)
		_, err = d.Decompress(compressed[:len(compressed)-3])
		require.Error(t, err)
		assert.Equal(t, io.ErrUnexpectedEOF, errors.Cause(err))
	})

	t.Run("trailing bytes", func(t *testing.T) {
		d, err := NewDeflateDecompressor(0)
		require.NoError(t, err)

		_, err = d.Decompress(append(deflate(t, testData), 0xAA, 0xBB))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 trailing bytes")
	})

	t.Run("invalid compressed data", func(t *testing.T) {
		d, err := NewDeflateDecompressor(0)
		require.NoError(t, err)

		_, err = d.Decompress([]byte{0xFF, 0xFF, 0xFF, 0xFF})
		require.Error(t, err)
		assert.Equal(t, flate.ErrInvalidBlockType, errors.Cause(err))
	})

	t.Run("invalid option", func(t *testing.T) {
		_, err := NewDeflateDecompressor(0, flate.WithWindowBits(3))
		assert.Error(t, err)
	})

	t.Run("empty data", func(t *testing.T) {
		d, err := NewDeflateDecompressor(0)
		require.NoError(t, err)

		decompressed, err := d.Decompress(deflate(t, nil))
		require.NoError(t, err)
		assert.Empty(t, decompressed)
	})

	t.Run("concurrent use", func(t *testing.T) {
		d, err := NewDeflateDecompressor(0)
		require.NoError(t, err)
		compressed := deflate(t, testData)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				decompressed, err := d.Decompress(compressed)
				assert.NoError(t, err)
				assert.Equal(t, testData, decompressed)
			}()
		}
		wg.Wait()
	})
}

func TestDeflateDecompressorRoundTrip(t *testing.T) {
	d, err := NewDeflateDecompressor(0)
	require.NoError(t, err)
	rapid.Check(t, func(t *rapid.T) {
		data := rapid.SliceOfN(rapid.Byte(), 0, 10000).Draw(t, "data")
		decompressed, err := d.Decompress(deflate(t, data))
		require.NoError(t, err)
		require.True(t, bytes.Equal(data, decompressed))
	})
}

func TestSnappyDecompressor(t *testing.T) {
	t.Run("decompress", func(t *testing.T) {
		d := NewSnappyDecompressor(0)

		testData := []byte("Hello, this is a test message that will be compressed")
		decompressed, err := d.Decompress(snappy.Encode(nil, testData))
		require.NoError(t, err)
		assert.Equal(t, testData, decompressed)
	})

	t.Run("max length validation", func(t *testing.T) {
		d := NewSnappyDecompressor(50)

		largeData := make([]byte, 100)
		for i := range largeData {
			largeData[i] = byte(i % 256)
		}

		_, err := d.Decompress(snappy.Encode(nil, largeData))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds max length")
	})

	t.Run("invalid compressed data", func(t *testing.T) {
		d := NewSnappyDecompressor(0)
		_, err := d.Decompress([]byte{0xFF, 0xFF, 0xFF, 0xFF})
		assert.Error(t, err)
	})

	t.Run("max length getter", func(t *testing.T) {
		maxLen := uint64(1024 * 1024)
		assert.Equal(t, maxLen, NewSnappyDecompressor(maxLen).MaxLength())
		assert.Equal(t, uint64(0), NewSnappyDecompressor(0).MaxLength())
	})
}

func TestByName(t *testing.T) {
	for _, name := range Names {
		d, err := ByName(name, 10)
		require.NoError(t, err, name)
		assert.Equal(t, uint64(10), d.MaxLength())
	}

	_, err := ByName("zstd", 0)
	assert.Error(t, err)

	_, err = ByName("deflate", 0, flate.WithWindowBits(99))
	assert.Error(t, err)
}
