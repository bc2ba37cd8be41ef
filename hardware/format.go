package hardware

import (
	"github.com/gogpu/drawtest/gl"
	"github.com/gogpu/drawtest/program"
	"github.com/gogpu/gputypes"
)

// vertexFormat maps a configured attribute array to the vertex format the
// pipeline reads it with. The output kind is the shader-side type of the
// location. Encodings with no vertex format equivalent are reported as
// gl.ErrUnsupported.
func vertexFormat(a *attribState, out program.Output) (gputypes.VertexFormat, error) {
	if a.bgra {
		return 0, gl.Unsupported("vertex format", "BGRA component order on %v", a.typ)
	}
	if a.integer != (out != program.OutputFloat) {
		return 0, gl.Unsupported("vertex format", "%v array feeding %v input", a.typ, out)
	}
	switch out {
	case program.OutputFloat:
		return floatFormat(a)
	case program.OutputInt:
		return intFormat(a.typ, a.size, true)
	case program.OutputUint:
		return intFormat(a.typ, a.size, false)
	}
	return 0, gl.Unsupported("vertex format", "output %v", out)
}

var (
	float32Formats = [...]gputypes.VertexFormat{
		gputypes.VertexFormatFloat32, gputypes.VertexFormatFloat32x2,
		gputypes.VertexFormatFloat32x3, gputypes.VertexFormatFloat32x4,
	}
	sint32Formats = [...]gputypes.VertexFormat{
		gputypes.VertexFormatSint32, gputypes.VertexFormatSint32x2,
		gputypes.VertexFormatSint32x3, gputypes.VertexFormatSint32x4,
	}
	uint32Formats = [...]gputypes.VertexFormat{
		gputypes.VertexFormatUint32, gputypes.VertexFormatUint32x2,
		gputypes.VertexFormatUint32x3, gputypes.VertexFormatUint32x4,
	}
)

// pairFormat picks the x2 or x4 variant. Vertex formats narrower than 32
// bits exist only with two or four components.
func pairFormat(size int, x2, x4 gputypes.VertexFormat) (gputypes.VertexFormat, bool) {
	switch size {
	case 2:
		return x2, true
	case 4:
		return x4, true
	}
	return 0, false
}

func floatFormat(a *attribState) (gputypes.VertexFormat, error) {
	var (
		f  gputypes.VertexFormat
		ok bool
	)
	switch a.typ {
	case gl.Float:
		return float32Formats[a.size-1], nil
	case gl.HalfFloat:
		f, ok = pairFormat(a.size, gputypes.VertexFormatFloat16x2, gputypes.VertexFormatFloat16x4)
	case gl.UnsignedInt2101010Rev:
		f, ok = gputypes.VertexFormatUnorm1010102, a.normalized
	case gl.Byte:
		if a.normalized {
			f, ok = pairFormat(a.size, gputypes.VertexFormatSnorm8x2, gputypes.VertexFormatSnorm8x4)
		}
	case gl.UnsignedByte:
		if a.normalized {
			f, ok = pairFormat(a.size, gputypes.VertexFormatUnorm8x2, gputypes.VertexFormatUnorm8x4)
		}
	case gl.Short:
		if a.normalized {
			f, ok = pairFormat(a.size, gputypes.VertexFormatSnorm16x2, gputypes.VertexFormatSnorm16x4)
		}
	case gl.UnsignedShort:
		if a.normalized {
			f, ok = pairFormat(a.size, gputypes.VertexFormatUnorm16x2, gputypes.VertexFormatUnorm16x4)
		}
	}
	if !ok {
		return 0, gl.Unsupported("vertex format", "%d x %v normalized=%v as float", a.size, a.typ, a.normalized)
	}
	return f, nil
}

func intFormat(typ gl.Type, size int, signed bool) (gputypes.VertexFormat, error) {
	var (
		f  gputypes.VertexFormat
		ok bool
	)
	switch {
	case typ == gl.Int && signed:
		return sint32Formats[size-1], nil
	case typ == gl.UnsignedInt && !signed:
		return uint32Formats[size-1], nil
	case typ == gl.Byte && signed:
		f, ok = pairFormat(size, gputypes.VertexFormatSint8x2, gputypes.VertexFormatSint8x4)
	case typ == gl.UnsignedByte && !signed:
		f, ok = pairFormat(size, gputypes.VertexFormatUint8x2, gputypes.VertexFormatUint8x4)
	case typ == gl.Short && signed:
		f, ok = pairFormat(size, gputypes.VertexFormatSint16x2, gputypes.VertexFormatSint16x4)
	case typ == gl.UnsignedShort && !signed:
		f, ok = pairFormat(size, gputypes.VertexFormatUint16x2, gputypes.VertexFormatUint16x4)
	}
	if !ok {
		return 0, gl.Unsupported("vertex format", "%d x %v as signed=%v integer", size, typ, signed)
	}
	return f, nil
}

// constantFormat is the format of a 16-byte constant attribute.
func constantFormat(kind program.Output) gputypes.VertexFormat {
	switch kind {
	case program.OutputInt:
		return gputypes.VertexFormatSint32x4
	case program.OutputUint:
		return gputypes.VertexFormatUint32x4
	}
	return gputypes.VertexFormatFloat32x4
}

// topology maps a primitive mode to a pipeline topology. Line loops and
// triangle fans have no topology of their own; draws expand them into
// lists first.
func topology(mode gl.Primitive) (gputypes.PrimitiveTopology, bool) {
	switch mode {
	case gl.Points:
		return gputypes.PrimitiveTopologyPointList, true
	case gl.Lines, gl.LineLoop:
		return gputypes.PrimitiveTopologyLineList, true
	case gl.LineStrip:
		return gputypes.PrimitiveTopologyLineStrip, true
	case gl.Triangles, gl.TriangleFan:
		return gputypes.PrimitiveTopologyTriangleList, true
	case gl.TriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip, true
	}
	return 0, false
}

// needsExpansion reports whether mode must be rewritten as a list.
func needsExpansion(mode gl.Primitive) bool {
	return mode == gl.LineLoop || mode == gl.TriangleFan
}

// expand rewrites a line loop as a line list and a triangle fan as a
// triangle list, preserving primitive order.
func expand(mode gl.Primitive, elements []uint32) []uint32 {
	n := len(elements)
	switch mode {
	case gl.LineLoop:
		if n < 2 {
			return nil
		}
		out := make([]uint32, 0, 2*n)
		for i := 1; i < n; i++ {
			out = append(out, elements[i-1], elements[i])
		}
		return append(out, elements[n-1], elements[0])
	case gl.TriangleFan:
		if n < 3 {
			return nil
		}
		out := make([]uint32, 0, 3*(n-2))
		for i := 1; i+1 < n; i++ {
			out = append(out, elements[0], elements[i], elements[i+1])
		}
		return out
	}
	return elements
}

func isStrip(t gputypes.PrimitiveTopology) bool {
	return t == gputypes.PrimitiveTopologyLineStrip || t == gputypes.PrimitiveTopologyTriangleStrip
}
