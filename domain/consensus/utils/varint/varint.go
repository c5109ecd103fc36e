// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

// Package varint implements the CryptoNote LEB128-style unsigned varint
// codec used throughout block and transaction serialization, plus the
// absolute<->relative output-index delta conversion described in spec §3
// ("outputIndexes are stored as deltas").
package varint

import (
	"encoding/binary"
	"errors"
)

// ErrTruncated is returned when a varint's continuation bit promises more
// bytes than are available in the input.
var ErrTruncated = errors.New("varint: truncated input")

// ErrOverflow is returned when a varint would not fit in a uint64.
var ErrOverflow = errors.New("varint: value overflows uint64")

// Encode appends the varint encoding of v to dst and returns the result.
func Encode(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// Decode reads a varint from the front of src, returning the value and the
// number of bytes consumed.
func Decode(src []byte) (uint64, int, error) {
	var result uint64
	var shift uint
	for i, b := range src {
		if shift >= 64 {
			return 0, 0, ErrOverflow
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, ErrTruncated
}

// AbsoluteToRelative converts a strictly increasing list of absolute
// indexes into the first-absolute, rest-as-positive-offset delta form used
// on the wire for a KeyInput's outputIndexes.
func AbsoluteToRelative(absolute []uint32) []uint32 {
	if len(absolute) == 0 {
		return nil
	}
	relative := make([]uint32, len(absolute))
	relative[0] = absolute[0]
	for i := 1; i < len(absolute); i++ {
		relative[i] = absolute[i] - absolute[i-1]
	}
	return relative
}

// RelativeToAbsolute is the inverse of AbsoluteToRelative.
func RelativeToAbsolute(relative []uint32) []uint32 {
	if len(relative) == 0 {
		return nil
	}
	absolute := make([]uint32, len(relative))
	absolute[0] = relative[0]
	for i := 1; i < len(relative); i++ {
		absolute[i] = absolute[i-1] + relative[i]
	}
	return absolute
}

// PutUvarint64 writes v into dst as a fixed-width 8-byte little-endian
// integer; despite its name it does not use the packed varint form.
func PutUvarint64(dst []byte, v uint64) {
	binary.LittleEndian.PutUint64(dst, v)
}
