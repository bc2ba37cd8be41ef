package drawtest

import (
	"encoding/binary"
	"math"
	"math/rand/v2"

	"github.com/gogpu/drawtest/glvalue"
)

// positionLimit bounds unnormalized position components so every input
// type represents them exactly.
const positionLimit = 127

// coordMargin keeps the outermost positions inside the viewport.
const coordMargin = 1.1

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// normalizedInput reports whether components are scaled to [-1, 1] or
// [0, 1] on fetch.
func normalizedInput(a AttributeSpec) bool {
	return a.Normalize && !a.InputType.IsFloat()
}

// valueRange returns the generation bounds of one component of a.
// Unnormalized positions are limited to integers within positionLimit.
func valueRange(a AttributeSpec, isPosition bool) (lo, hi glvalue.Value) {
	f := a.InputType.Format()
	lo, hi = glvalue.MinValue(f), glvalue.MaxValue(f)
	if isPosition && !normalizedInput(a) {
		if l := glvalue.Create(-positionLimit, f); lo.Less(l) {
			lo = l
		}
		if h := glvalue.Create(positionLimit, f); h.Less(hi) {
			hi = h
		}
	}
	return lo, hi
}

// wRange returns the bounds of the 2-bit w component of a packed word.
func wRange(f glvalue.Format) (lo, hi glvalue.Value) {
	if f == glvalue.FormatInt2101010 {
		return glvalue.Create(-1, f), glvalue.Create(1, f)
	}
	return glvalue.Create(0, f), glvalue.Create(3, f)
}

// extent returns the largest magnitude a component of a takes after
// fetch conversion.
func extent(a AttributeSpec, isPosition bool) float64 {
	if normalizedInput(a) {
		return 1
	}
	lo, hi := valueRange(a, isPosition)
	return max(math.Abs(lo.Interpret()), math.Abs(hi.Interpret()))
}

func randomComponent(rnd *rand.Rand, lo, hi glvalue.Value, integral bool) glvalue.Value {
	v := glvalue.Random(rnd, lo, hi)
	if integral && v.Format().IsFloat() {
		v = glvalue.Create(math.Round(v.Interpret()), v.Format())
	}
	return v
}

// GenerateArray returns the bytes of elementCount vertices of attribute
// a: a.Offset zero bytes followed by one element every effective stride.
// Positions hold integer coordinates unless normalized. The same seed
// always yields the same bytes.
func GenerateArray(seed uint64, elementCount int, a AttributeSpec, isPosition bool) []byte {
	if elementCount <= 0 {
		return make([]byte, a.Offset)
	}
	stride, elem := a.EffectiveStride(), a.ElementSize()
	buf := make([]byte, a.Offset+(elementCount-1)*stride+elem)

	rnd := newRand(seed)
	lo, hi := valueRange(a, isPosition)
	integral := isPosition && !normalizedInput(a)
	for e := 0; e < elementCount; e++ {
		pos := a.Offset + e*stride
		if a.InputType.IsPacked() {
			x := randomComponent(rnd, lo, hi, integral)
			y := randomComponent(rnd, lo, hi, integral)
			z := randomComponent(rnd, lo, hi, integral)
			wlo, whi := wRange(lo.Format())
			w := glvalue.Random(rnd, wlo, whi)
			binary.LittleEndian.PutUint32(buf[pos:], glvalue.PackValues(x, y, z, w))
			continue
		}
		cell := buf[pos:pos]
		for c := 0; c < a.ComponentCount; c++ {
			cell = randomComponent(rnd, lo, hi, integral).AppendLE(cell)
		}
	}
	return buf
}

// GenerateIndices returns offset zero bytes followed by count indices of
// type t drawn from [lo, hi].
func GenerateIndices(seed uint64, count int, t IndexType, offset int, lo, hi uint32) []byte {
	f := indexFormat(t)
	buf := make([]byte, offset, offset+count*t.Size())
	rnd := newRand(seed)
	first, last := glvalue.Create(float64(lo), f), glvalue.Create(float64(hi), f)
	for i := 0; i < count; i++ {
		buf = glvalue.Random(rnd, first, last).AppendLE(buf)
	}
	return buf
}

func indexFormat(t IndexType) glvalue.Format {
	switch t {
	case IndexUnsignedByte:
		return glvalue.FormatUnsignedByte
	case IndexUnsignedShort:
		return glvalue.FormatUnsignedShort
	}
	t.mustValid()
	return glvalue.FormatUnsignedInt
}

// GenerateAttributeValue returns the constant of a default attribute.
// Float attributes fill ComponentCount components; integer attributes
// fill all four.
func GenerateAttributeValue(seed uint64, a AttributeSpec, isPosition bool) Constant {
	rnd := newRand(seed)
	lo, hi := valueRange(a, isPosition)
	integral := isPosition && !normalizedInput(a)
	var c Constant
	switch a.InputType {
	case InputInt:
		for i := range c.Int {
			c.Int[i] = int32(randomComponent(rnd, lo, hi, integral).Int())
		}
	case InputUnsignedInt:
		for i := range c.Uint {
			c.Uint[i] = uint32(randomComponent(rnd, lo, hi, integral).Int())
		}
	default:
		c.Float = [4]float32{0, 0, 0, 1}
		for i := 0; i < min(a.ComponentCount, 4); i++ {
			c.Float[i] = float32(randomComponent(rnd, lo, hi, integral).Interpret())
		}
	}
	return c
}

// CoordScale returns the u_coordScale that maps the summed positions of
// spec into the viewport.
func CoordScale(spec *DrawTestSpec) float32 {
	sum := 0.0
	for i, a := range spec.Attribs {
		if spec.isPosition(i) {
			sum += extent(a, true)
		}
	}
	if sum == 0 {
		return 1
	}
	return float32(1 / (coordMargin * sum))
}

// ColorScale returns the u_colorScale that maps every color attribute of
// spec into [-1, 1].
func ColorScale(spec *DrawTestSpec) float32 {
	m := 0.0
	for i, a := range spec.Attribs {
		if !spec.isPosition(i) {
			m = max(m, extent(a, false))
		}
	}
	if m == 0 {
		return 1
	}
	return float32(1 / m)
}
