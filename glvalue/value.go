package glvalue

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/x448/float16"
)

// Value is a single numeric cell tagged with its Format.
// Values are immutable; arithmetic returns a new Value.
type Value struct {
	format Format
	bits   uint32
}

// Create encodes v into the native representation of f.
//
// Integer formats truncate toward zero and saturate to the format's range;
// NaN encodes as zero. FLOAT rounds to float32. HALF rounds to the nearest
// half, flushes results in the subnormal range to signed zero and
// saturates overflow to infinity.
func Create(v float64, f Format) Value {
	mustValid(f)
	switch f {
	case FormatFloat:
		return Value{format: f, bits: math.Float32bits(float32(v))}
	case FormatHalf:
		return Value{format: f, bits: uint32(halfBits(v))}
	}
	lo, hi := f.nativeRange()
	var n int64
	switch {
	case math.IsNaN(v):
		n = 0
	case v <= float64(lo):
		n = lo
	case v >= float64(hi):
		n = hi
	default:
		n = int64(math.Trunc(v))
	}
	return Value{format: f, bits: uint32(n) & mask(f)}
}

// FromBits wraps a native bit pattern. Bits outside the format's width are
// discarded.
func FromBits(bits uint32, f Format) Value {
	mustValid(f)
	return Value{format: f, bits: bits & mask(f)}
}

// Format returns the format tag.
func (v Value) Format() Format { return v.format }

// Bits returns the native bit pattern, zero-extended to 32 bits.
func (v Value) Bits() uint32 { return v.bits }

// Interpret decodes the bit pattern. HALF values with a zero exponent
// decode to signed zero.
func (v Value) Interpret() float64 {
	switch v.format {
	case FormatFloat:
		return float64(math.Float32frombits(v.bits))
	case FormatHalf:
		return HalfToFloat(uint16(v.bits))
	case FormatByte, FormatShort, FormatInt, FormatInt2101010:
		return float64(signExtend(v.bits, v.format.Bits()))
	case FormatUnsignedByte, FormatUnsignedShort, FormatUnsignedInt, FormatUint2101010:
		return float64(v.bits)
	}
	panic(fmt.Sprintf("glvalue: unsupported format %d", uint8(v.format)))
}

// Int returns the interpreted value of an integer format as int64.
func (v Value) Int() int64 {
	if v.format.IsFloat() {
		panic(fmt.Sprintf("glvalue: Int called on %v", v.format))
	}
	return int64(v.Interpret())
}

// Add returns v+o in v's format.
func (v Value) Add(o Value) Value {
	mustSame(v, o)
	return Create(v.Interpret()+o.Interpret(), v.format)
}

// Sub returns v-o in v's format.
func (v Value) Sub(o Value) Value {
	mustSame(v, o)
	return Create(v.Interpret()-o.Interpret(), v.format)
}

// Mul returns v*o in v's format.
func (v Value) Mul(o Value) Value {
	mustSame(v, o)
	return Create(v.Interpret()*o.Interpret(), v.format)
}

// Div returns v/o in v's format. Division by zero saturates integer
// formats (0/0 yields 0) and produces infinity or NaN for float formats.
func (v Value) Div(o Value) Value {
	mustSame(v, o)
	return Create(v.Interpret()/o.Interpret(), v.format)
}

// Abs returns the magnitude of v. Unsigned formats are returned unchanged;
// the most negative value of a signed integer format saturates.
func (v Value) Abs() Value {
	if v.format.IsUnsigned() {
		return v
	}
	return Create(math.Abs(v.Interpret()), v.format)
}

// Equal compares format and raw bit pattern.
func (v Value) Equal(o Value) bool {
	return v.format == o.format && v.bits == o.bits
}

// Less orders by interpreted value.
func (v Value) Less(o Value) bool {
	return v.Interpret() < o.Interpret()
}

// Compare orders by interpreted value and returns -1, 0 or +1.
func (v Value) Compare(o Value) int {
	return cmp.Compare(v.Interpret(), o.Interpret())
}

// AppendLE appends the little-endian native encoding of v to dst.
// Packed components cannot be written alone; use PackInt2101010 or
// PackUint2101010.
func (v Value) AppendLE(dst []byte) []byte {
	switch v.format.Size() {
	case 1:
		return append(dst, byte(v.bits))
	case 2:
		return binary.LittleEndian.AppendUint16(dst, uint16(v.bits))
	}
	if v.format.IsPacked() {
		panic("glvalue: AppendLE on a packed component")
	}
	return binary.LittleEndian.AppendUint32(dst, v.bits)
}

func (v Value) String() string {
	return fmt.Sprintf("%v(%g)", v.format, v.Interpret())
}

// MinValue returns the smallest value the data generator may produce for f.
// Bounds leave headroom below the native minimum for arithmetic.
func MinValue(f Format) Value {
	mustValid(f)
	switch f {
	case FormatFloat:
		return Create(-127, f)
	case FormatHalf:
		return Create(-256, f)
	case FormatByte:
		return Create(-127, f)
	case FormatShort:
		return Create(-32760, f)
	case FormatInt:
		return Create(-2147483647, f)
	case FormatInt2101010:
		return Create(-511, f)
	}
	return Create(0, f)
}

// MaxValue returns the largest value the data generator may produce for f.
func MaxValue(f Format) Value {
	mustValid(f)
	switch f {
	case FormatFloat:
		return Create(127, f)
	case FormatHalf:
		return Create(256, f)
	case FormatByte:
		return Create(127, f)
	case FormatUnsignedByte:
		return Create(255, f)
	case FormatShort:
		return Create(32760, f)
	case FormatUnsignedShort:
		return Create(65530, f)
	case FormatInt:
		return Create(2147483647, f)
	case FormatUnsignedInt:
		return Create(4294967295, f)
	case FormatInt2101010:
		return Create(511, f)
	}
	return Create(1023, f)
}

// Random returns a value in [min, max]. When max < min, min is returned
// unchanged. Float formats sample uniformly; integer formats reduce a
// 64-bit random draw modulo the unsigned span max-min+1, so every bound
// the format can represent is reachable without overflow.
func Random(rnd *rand.Rand, min, max Value) Value {
	mustSame(min, max)
	if max.Less(min) {
		return min
	}
	f := min.format
	if f.IsFloat() {
		lo, hi := min.Interpret(), max.Interpret()
		return Create(lo+rnd.Float64()*(hi-lo), f)
	}
	lo, hi := min.Int(), max.Int()
	span := uint64(hi-lo) + 1
	return Create(float64(lo+int64(rnd.Uint64()%span)), f)
}

func mask(f Format) uint32 {
	if f.Bits() == 32 {
		return math.MaxUint32
	}
	return 1<<f.Bits() - 1
}

func signExtend(bits uint32, width int) int64 {
	shift := 64 - width
	return int64(uint64(bits)<<shift) >> shift
}

func mustSame(a, b Value) {
	mustValid(a.format)
	if a.format != b.format {
		panic(fmt.Sprintf("glvalue: format mismatch %v and %v", a.format, b.format))
	}
}

// halfBits rounds v to the nearest half-float bit pattern without
// subnormals. The intermediate float32 is rounded to odd so that the
// second rounding to half matches a direct rounding of v.
func halfBits(v float64) uint16 {
	h := float16.Fromfloat32(roundToOdd32(v)).Bits()
	if h&0x7c00 == 0 {
		return h & 0x8000
	}
	return h
}

// HalfToFloat decodes a half-float bit pattern. A zero exponent decodes to
// signed zero.
func HalfToFloat(bits uint16) float64 {
	if bits&0x7c00 == 0 {
		if bits&0x8000 != 0 {
			return math.Copysign(0, -1)
		}
		return 0
	}
	return float64(float16.Frombits(bits).Float32())
}

// roundToOdd32 converts v to float32, truncating toward zero and setting
// the lowest mantissa bit when the conversion is inexact.
func roundToOdd32(v float64) float32 {
	f := float32(v)
	if math.IsInf(float64(f), 0) || math.IsNaN(v) || float64(f) == v {
		return f
	}
	b := math.Float32bits(f)
	if math.Abs(float64(f)) > math.Abs(v) {
		b--
	}
	return math.Float32frombits(b | 1)
}
