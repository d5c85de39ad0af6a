// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

// Package codec decodes whole compressed messages with a cap on the decoded
// size.
package codec

import (
	"github.com/intel/fastinflate/compress/flate"
	"github.com/pkg/errors"
)

// Decompressor decodes complete compressed messages.
type Decompressor interface {
	// Decompress decodes data, which must hold exactly one message.
	Decompress(data []byte) ([]byte, error)

	// MaxLength returns the maximum allowed length for decompressed data.
	// Returns 0 if there is no limit.
	MaxLength() uint64
}

// Names lists the codecs ByName accepts.
var Names = []string{"deflate", "snappy"}

// ByName returns the Decompressor registered under name. opts only apply to
// the deflate codec.
func ByName(name string, maxLength uint64, opts ...flate.Option) (Decompressor, error) {
	switch name {
	case "deflate":
		d, err := NewDeflateDecompressor(maxLength, opts...)
		if err != nil {
			return nil, err
		}
		return d, nil
	case "snappy":
		return NewSnappyDecompressor(maxLength), nil
	default:
		return nil, errors.Errorf("unknown codec %q", name)
	}
}

func exceeded(n, limit uint64) error {
	return errors.Errorf("decompressed data exceeds max length: %d > %d", n, limit)
}
