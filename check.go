// Package fastinflate provides a resumable streaming DEFLATE (RFC 1951) decoder
// for Go applications that receive compressed data in arbitrary pieces.
// The decoder itself lives in compress/flate; whole-message helpers live in
// compress/codec.
package fastinflate

import "github.com/intel/fastinflate/internal/cpu"

// Optimized reports whether the word-refill decode loop is active.
// It returns true if the CPU reports an x86-64 microarchitecture level
// (ArchLevel > 0), false otherwise. When it is not active every symbol is
// decoded by the byte-wise path, which produces identical output.
func Optimized() bool {
	return cpu.ArchLevel > 0
}
