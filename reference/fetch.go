package reference

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/drawtest/gl"
	"github.com/gogpu/drawtest/glvalue"
	"golang.org/x/image/math/f32"
)

// elementSize is the number of bytes one vertex occupies in the array.
func (a *attribState) elementSize() int {
	if a.typ.IsPacked() {
		return 4
	}
	return a.size * a.typ.Size()
}

// effectiveStride resolves stride 0 to a tightly packed stride.
func (a *attribState) effectiveStride() int {
	if a.stride == 0 {
		return a.elementSize()
	}
	return a.stride
}

// source returns the bytes backing the array and the offset of element 0.
func (c *Context) source(a *attribState) ([]byte, int, error) {
	if a.ptr.IsClient() {
		return a.ptr.Data(), 0, nil
	}
	data, ok := c.buffers[a.buffer]
	if !ok {
		return nil, 0, fmt.Errorf("%w: array reads deleted buffer %d", gl.ErrInvalidOperation, a.buffer)
	}
	return data, a.ptr.Offset(), nil
}

// fetch reads element index of the array described by a, expanded to
// four components with (0, 0, 0, 1) filling missing ones.
func (c *Context) fetch(a *attribState, index int) (f32.Vec4, error) {
	data, base, err := c.source(a)
	if err != nil {
		return f32.Vec4{}, err
	}
	off := base + index*a.effectiveStride()
	end := off + a.elementSize()
	if index < 0 || off < 0 || end > len(data) {
		return f32.Vec4{}, fmt.Errorf("%w: element %d needs bytes [%d,%d) of %d", gl.ErrOutOfBounds, index, off, end, len(data))
	}
	return decodeElement(data[off:end], a.typ, a.size, a.normalized, a.bgra), nil
}

// decodeElement converts one vertex worth of components to float following
// the GL ES 3 rules for normalized and unnormalized fixed point data.
func decodeElement(b []byte, typ gl.Type, size int, normalized, bgra bool) f32.Vec4 {
	out := f32.Vec4{0, 0, 0, 1}
	if typ.IsPacked() {
		out = decodePacked(binary.LittleEndian.Uint32(b), typ, normalized)
	} else {
		n := typ.Size()
		for i := 0; i < size; i++ {
			out[i] = decodeComponent(b[i*n:(i+1)*n], typ, normalized)
		}
	}
	if bgra {
		out[0], out[2] = out[2], out[0]
	}
	return out
}

func decodeComponent(b []byte, typ gl.Type, normalized bool) float32 {
	switch typ {
	case gl.Float:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	case gl.HalfFloat:
		return float32(glvalue.HalfToFloat(binary.LittleEndian.Uint16(b)))
	case gl.Byte:
		return signedToFloat(int64(int8(b[0])), 8, normalized)
	case gl.UnsignedByte:
		return unsignedToFloat(uint64(b[0]), 8, normalized)
	case gl.Short:
		return signedToFloat(int64(int16(binary.LittleEndian.Uint16(b))), 16, normalized)
	case gl.UnsignedShort:
		return unsignedToFloat(uint64(binary.LittleEndian.Uint16(b)), 16, normalized)
	case gl.Int:
		return signedToFloat(int64(int32(binary.LittleEndian.Uint32(b))), 32, normalized)
	case gl.UnsignedInt:
		return unsignedToFloat(uint64(binary.LittleEndian.Uint32(b)), 32, normalized)
	}
	panic(fmt.Sprintf("reference: cannot decode %v", typ))
}

func decodePacked(word uint32, typ gl.Type, normalized bool) f32.Vec4 {
	var out f32.Vec4
	if typ == gl.Int2101010Rev {
		c := glvalue.UnpackInt2101010(word)
		for i := 0; i < 3; i++ {
			out[i] = signedToFloat(int64(c[i]), 10, normalized)
		}
		out[3] = signedToFloat(int64(c[3]), 2, normalized)
		return out
	}
	c := glvalue.UnpackUint2101010(word)
	for i := 0; i < 3; i++ {
		out[i] = unsignedToFloat(uint64(c[i]), 10, normalized)
	}
	out[3] = unsignedToFloat(uint64(c[3]), 2, normalized)
	return out
}

// signedToFloat applies f = max(c / (2^(b-1) - 1), -1) when normalized.
func signedToFloat(v int64, bits int, normalized bool) float32 {
	if !normalized {
		return float32(v)
	}
	m := float32(int64(1)<<(bits-1) - 1)
	return max(float32(v)/m, -1)
}

// unsignedToFloat applies f = c / (2^b - 1) when normalized.
func unsignedToFloat(v uint64, bits int, normalized bool) float32 {
	if !normalized {
		return float32(v)
	}
	return float32(v) / float32(uint64(1)<<bits-1)
}

// fetchIndex reads index i of an index array.
func (c *Context) fetchIndex(typ gl.Type, indices gl.Pointer, i int) (uint32, error) {
	switch typ {
	case gl.UnsignedByte, gl.UnsignedShort, gl.UnsignedInt:
	default:
		return 0, fmt.Errorf("%w: index type %v", gl.ErrInvalidOperation, typ)
	}
	var data []byte
	base := 0
	if indices.IsClient() {
		data = indices.Data()
	} else {
		b, ok := c.bound[gl.ElementArrayBuffer]
		if !ok {
			return 0, fmt.Errorf("%w: indexed draw with no element array buffer", gl.ErrInvalidOperation)
		}
		data = c.buffers[b]
		base = indices.Offset()
	}
	n := typ.Size()
	off := base + i*n
	if off < 0 || off+n > len(data) {
		return 0, fmt.Errorf("%w: index %d needs bytes [%d,%d) of %d", gl.ErrOutOfBounds, i, off, off+n, len(data))
	}
	switch typ {
	case gl.UnsignedByte:
		return uint32(data[off]), nil
	case gl.UnsignedShort:
		return uint32(binary.LittleEndian.Uint16(data[off:])), nil
	}
	return binary.LittleEndian.Uint32(data[off:]), nil
}
