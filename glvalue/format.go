// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package glvalue implements a format-tagged numeric cell used to generate
// and check vertex attribute data.
//
// A Value owns one Format and one native-width bit pattern. The bit pattern
// is authoritative: Interpret decodes it into a float64 and every
// arithmetic operation works on interpreted values before re-encoding into
// the receiver's format.
//
// The format set is closed. Passing any other Format to a factory or
// accessor panics.
package glvalue

import "fmt"

// Format identifies the native encoding of a Value.
type Format uint8

// Supported formats. The zero value is FormatFloat.
const (
	FormatFloat Format = iota
	FormatByte
	FormatShort
	FormatUnsignedByte
	FormatUnsignedShort
	FormatInt
	FormatUnsignedInt
	FormatHalf
	FormatInt2101010
	FormatUint2101010

	formatCount
)

var formatNames = [formatCount]string{
	FormatFloat:         "float",
	FormatByte:          "byte",
	FormatShort:         "short",
	FormatUnsignedByte:  "unsigned_byte",
	FormatUnsignedShort: "unsigned_short",
	FormatInt:           "int",
	FormatUnsignedInt:   "unsigned_int",
	FormatHalf:          "half",
	FormatInt2101010:    "packed_int_2_10_10_10",
	FormatUint2101010:   "packed_uint_2_10_10_10",
}

// Formats lists every supported format in declaration order.
func Formats() []Format {
	out := make([]Format, 0, formatCount)
	for f := Format(0); f < formatCount; f++ {
		out = append(out, f)
	}
	return out
}

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	return f < formatCount
}

// String returns the lower-case name of the format.
func (f Format) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
	return formatNames[f]
}

// IsFloat reports whether f is a floating point format.
func (f Format) IsFloat() bool {
	mustValid(f)
	return f == FormatFloat || f == FormatHalf
}

// IsPacked reports whether f is one of the 2-10-10-10 packed formats.
func (f Format) IsPacked() bool {
	mustValid(f)
	return f == FormatInt2101010 || f == FormatUint2101010
}

// IsSigned reports whether f stores signed integers.
// Floating point formats are not reported as signed.
func (f Format) IsSigned() bool {
	mustValid(f)
	switch f {
	case FormatByte, FormatShort, FormatInt, FormatInt2101010:
		return true
	}
	return false
}

// IsUnsigned reports whether f stores unsigned integers.
func (f Format) IsUnsigned() bool {
	mustValid(f)
	switch f {
	case FormatUnsignedByte, FormatUnsignedShort, FormatUnsignedInt, FormatUint2101010:
		return true
	}
	return false
}

// Size returns the number of bytes one component occupies in a vertex
// buffer. Packed formats report the size of the whole 4-component word.
func (f Format) Size() int {
	mustValid(f)
	switch f {
	case FormatByte, FormatUnsignedByte:
		return 1
	case FormatShort, FormatUnsignedShort, FormatHalf:
		return 2
	default:
		return 4
	}
}

// Bits returns the width of the native storage cell in bits.
func (f Format) Bits() int {
	mustValid(f)
	if f.IsPacked() {
		return 10
	}
	return f.Size() * 8
}

// nativeRange returns the representable integer range of an integer format.
func (f Format) nativeRange() (lo, hi int64) {
	switch f {
	case FormatByte:
		return -1 << 7, 1<<7 - 1
	case FormatUnsignedByte:
		return 0, 1<<8 - 1
	case FormatShort:
		return -1 << 15, 1<<15 - 1
	case FormatUnsignedShort:
		return 0, 1<<16 - 1
	case FormatInt:
		return -1 << 31, 1<<31 - 1
	case FormatUnsignedInt:
		return 0, 1<<32 - 1
	case FormatInt2101010:
		return -1 << 9, 1<<9 - 1
	case FormatUint2101010:
		return 0, 1<<10 - 1
	}
	panic(fmt.Sprintf("glvalue: %v has no integer range", f))
}

func mustValid(f Format) {
	if !f.Valid() {
		panic(fmt.Sprintf("glvalue: unsupported format %d", uint8(f)))
	}
}
