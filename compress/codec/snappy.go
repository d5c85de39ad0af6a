// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package codec

import (
	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// SnappyDecompressor implements Decompressor for Snappy block messages.
type SnappyDecompressor struct {
	maxLength uint64
}

// NewSnappyDecompressor creates a new SnappyDecompressor with the specified max length.
func NewSnappyDecompressor(maxLength uint64) *SnappyDecompressor {
	return &SnappyDecompressor{maxLength: maxLength}
}

// Decompress decompresses the input data using Snappy.
func (s *SnappyDecompressor) Decompress(data []byte) ([]byte, error) {
	decodedLen, err := snappy.DecodedLen(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get decoded length")
	}

	if s.maxLength > 0 && uint64(decodedLen) > s.maxLength {
		return nil, exceeded(uint64(decodedLen), s.maxLength)
	}

	out, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode snappy message")
	}
	return out, nil
}

// MaxLength returns the maximum allowed length for decompressed data.
func (s *SnappyDecompressor) MaxLength() uint64 {
	return s.maxLength
}

var _ Decompressor = (*SnappyDecompressor)(nil)
