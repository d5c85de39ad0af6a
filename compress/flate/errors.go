// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package flate

// Error is a decoder result code. Every code except ErrEndOfStream is fatal:
// the Inflater must be Reset before it is used again.
type Error int

const (
	// ErrEndOfStream reports that the final block has been decoded.
	ErrEndOfStream Error = iota + 1
	ErrInvalidBlockType
	ErrInvalidLenCode
	ErrInvalidDistCode
	ErrInvalidStoredBlockLengths
	ErrTooManySymbols
	ErrInvalidBitLengthRepeat
	ErrMissingEndOfBlock
	ErrOversubscribedCodes
	ErrIncompleteCodes
	ErrDistanceTooFarBack
)

func (e Error) Error() string {
	switch e {
	case ErrEndOfStream:
		return "flate: end of deflate stream"
	case ErrInvalidBlockType:
		return "flate: invalid block type"
	case ErrInvalidLenCode:
		return "flate: invalid literal/length code"
	case ErrInvalidDistCode:
		return "flate: invalid distance code"
	case ErrInvalidStoredBlockLengths:
		return "flate: invalid stored block lengths"
	case ErrTooManySymbols:
		return "flate: too many length or distance symbols"
	case ErrInvalidBitLengthRepeat:
		return "flate: invalid bit length repeat"
	case ErrMissingEndOfBlock:
		return "flate: invalid code -- missing end-of-block"
	case ErrOversubscribedCodes:
		return "flate: over-subscribed code lengths set"
	case ErrIncompleteCodes:
		return "flate: incomplete code lengths set"
	case ErrDistanceTooFarBack:
		return "flate: invalid distance too far back"
	default:
		return "flate: deflate error"
	}
}

// Fatal reports whether e ends the session.
func (e Error) Fatal() bool {
	return e != ErrEndOfStream
}
