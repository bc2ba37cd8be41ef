package drawtest

import (
	"fmt"

	"github.com/gogpu/drawtest/gl"
	"github.com/gogpu/drawtest/glvalue"
	"github.com/gogpu/drawtest/program"
)

// Storage selects where attribute or index data lives.
type Storage uint8

const (
	// StorageUser keeps data in client memory passed with each draw.
	StorageUser Storage = iota
	// StorageBuffer keeps data in a context buffer object.
	StorageBuffer
)

func (s Storage) String() string {
	switch s {
	case StorageUser:
		return "user_ptr"
	case StorageBuffer:
		return "buffer"
	}
	return fmt.Sprintf("Storage(%d)", uint8(s))
}

// InputType is the encoding of attribute data in memory.
type InputType uint8

const (
	InputFloat InputType = iota
	InputByte
	InputShort
	InputUnsignedByte
	InputUnsignedShort
	InputInt
	InputUnsignedInt
	InputHalf
	InputUnsignedInt2101010
	InputInt2101010

	inputTypeCount
)

var inputTypes = [inputTypeCount]struct {
	name   string
	typ    gl.Type
	format glvalue.Format
}{
	InputFloat:              {"float", gl.Float, glvalue.FormatFloat},
	InputByte:               {"byte", gl.Byte, glvalue.FormatByte},
	InputShort:              {"short", gl.Short, glvalue.FormatShort},
	InputUnsignedByte:       {"unsigned_byte", gl.UnsignedByte, glvalue.FormatUnsignedByte},
	InputUnsignedShort:      {"unsigned_short", gl.UnsignedShort, glvalue.FormatUnsignedShort},
	InputInt:                {"int", gl.Int, glvalue.FormatInt},
	InputUnsignedInt:        {"unsigned_int", gl.UnsignedInt, glvalue.FormatUnsignedInt},
	InputHalf:               {"half", gl.HalfFloat, glvalue.FormatHalf},
	InputUnsignedInt2101010: {"unsigned_int2_10_10_10", gl.UnsignedInt2101010Rev, glvalue.FormatUint2101010},
	InputInt2101010:         {"int2_10_10_10", gl.Int2101010Rev, glvalue.FormatInt2101010},
}

// InputTypes lists every input type in declaration order.
func InputTypes() []InputType {
	out := make([]InputType, inputTypeCount)
	for i := range out {
		out[i] = InputType(i)
	}
	return out
}

func (t InputType) String() string {
	if t < inputTypeCount {
		return inputTypes[t].name
	}
	return fmt.Sprintf("InputType(%d)", uint8(t))
}

func (t InputType) valid() bool { return t < inputTypeCount }

// GLType returns the component type passed to the context.
func (t InputType) GLType() gl.Type {
	t.mustValid()
	return inputTypes[t].typ
}

// Format returns the value format of one component.
func (t InputType) Format() glvalue.Format {
	t.mustValid()
	return inputTypes[t].format
}

// IsFloat reports whether components are floating point.
func (t InputType) IsFloat() bool { return t == InputFloat || t == InputHalf }

// IsPacked reports whether four components share one 32-bit word.
func (t InputType) IsPacked() bool {
	return t == InputUnsignedInt2101010 || t == InputInt2101010
}

// IsSigned reports whether the type is a signed integer type.
func (t InputType) IsSigned() bool {
	switch t {
	case InputByte, InputShort, InputInt, InputInt2101010:
		return true
	}
	return false
}

// IsUnsigned reports whether the type is an unsigned integer type.
func (t InputType) IsUnsigned() bool {
	switch t {
	case InputUnsignedByte, InputUnsignedShort, InputUnsignedInt, InputUnsignedInt2101010:
		return true
	}
	return false
}

// Size returns the byte size of one component. Packed types report the
// size of the whole word.
func (t InputType) Size() int {
	if t.IsPacked() {
		return 4
	}
	return t.Format().Size()
}

func (t InputType) mustValid() {
	if !t.valid() {
		panic(fmt.Sprintf("drawtest: unknown input type %d", uint8(t)))
	}
}

// OutputType is the shader-side type of an attribute.
type OutputType uint8

const (
	OutputFloat OutputType = iota
	OutputVec2
	OutputVec3
	OutputVec4
	OutputInt
	OutputUint
	OutputIVec2
	OutputIVec3
	OutputIVec4
	OutputUVec2
	OutputUVec3
	OutputUVec4

	outputTypeCount
)

var outputTypeNames = [outputTypeCount]string{
	"float", "vec2", "vec3", "vec4",
	"int", "uint",
	"ivec2", "ivec3", "ivec4",
	"uvec2", "uvec3", "uvec4",
}

func (t OutputType) String() string {
	if t < outputTypeCount {
		return outputTypeNames[t]
	}
	return fmt.Sprintf("OutputType(%d)", uint8(t))
}

func (t OutputType) valid() bool { return t < outputTypeCount }

// IsFloat reports whether t is a float scalar or vector.
func (t OutputType) IsFloat() bool { return t <= OutputVec4 }

// IsInt reports whether t is a signed integer scalar or vector.
func (t OutputType) IsInt() bool {
	return t == OutputInt || (t >= OutputIVec2 && t <= OutputIVec4)
}

// IsUint reports whether t is an unsigned integer scalar or vector.
func (t OutputType) IsUint() bool {
	return t == OutputUint || (t >= OutputUVec2 && t <= OutputUVec4)
}

// Kind returns the program input kind for t. Programs always declare
// four-component inputs.
func (t OutputType) Kind() program.Output {
	switch {
	case t.IsInt():
		return program.OutputInt
	case t.IsUint():
		return program.OutputUint
	}
	return program.OutputFloat
}

// Usage is the buffer usage hint.
type Usage uint8

const (
	UsageStaticDraw Usage = iota
	UsageStreamDraw
	UsageDynamicDraw
	UsageStaticCopy
	UsageStreamCopy
	UsageDynamicCopy
	UsageStaticRead
	UsageStreamRead
	UsageDynamicRead

	usageCount
)

var usages = [usageCount]struct {
	name  string
	usage gl.Usage
}{
	UsageStaticDraw:  {"static_draw", gl.StaticDraw},
	UsageStreamDraw:  {"stream_draw", gl.StreamDraw},
	UsageDynamicDraw: {"dynamic_draw", gl.DynamicDraw},
	UsageStaticCopy:  {"static_copy", gl.StaticCopy},
	UsageStreamCopy:  {"stream_copy", gl.StreamCopy},
	UsageDynamicCopy: {"dynamic_copy", gl.DynamicCopy},
	UsageStaticRead:  {"static_read", gl.StaticRead},
	UsageStreamRead:  {"stream_read", gl.StreamRead},
	UsageDynamicRead: {"dynamic_read", gl.DynamicRead},
}

// Usages lists every usage hint.
func Usages() []Usage {
	out := make([]Usage, usageCount)
	for i := range out {
		out[i] = Usage(i)
	}
	return out
}

func (u Usage) String() string {
	if u < usageCount {
		return usages[u].name
	}
	return fmt.Sprintf("Usage(%d)", uint8(u))
}

// GL returns the context usage enum.
func (u Usage) GL() gl.Usage {
	if u >= usageCount {
		panic(fmt.Sprintf("drawtest: unknown usage %d", uint8(u)))
	}
	return usages[u].usage
}

// Primitive is the primitive topology. The zero value means unset.
type Primitive uint8

const (
	PrimitiveNone Primitive = iota
	PrimitivePoints
	PrimitiveTriangles
	PrimitiveTriangleFan
	PrimitiveTriangleStrip
	PrimitiveLines
	PrimitiveLineStrip
	PrimitiveLineLoop

	primitiveCount
)

var primitives = [primitiveCount]struct {
	name string
	mode gl.Primitive
}{
	PrimitiveNone:          {"none", 0},
	PrimitivePoints:        {"points", gl.Points},
	PrimitiveTriangles:     {"triangles", gl.Triangles},
	PrimitiveTriangleFan:   {"triangle_fan", gl.TriangleFan},
	PrimitiveTriangleStrip: {"triangle_strip", gl.TriangleStrip},
	PrimitiveLines:         {"lines", gl.Lines},
	PrimitiveLineStrip:     {"line_strip", gl.LineStrip},
	PrimitiveLineLoop:      {"line_loop", gl.LineLoop},
}

// Primitives lists every set primitive.
func Primitives() []Primitive {
	out := make([]Primitive, 0, primitiveCount-1)
	for p := PrimitivePoints; p < primitiveCount; p++ {
		out = append(out, p)
	}
	return out
}

func (p Primitive) String() string {
	if p < primitiveCount {
		return primitives[p].name
	}
	return fmt.Sprintf("Primitive(%d)", uint8(p))
}

func (p Primitive) valid() bool { return p > PrimitiveNone && p < primitiveCount }

// GL returns the context primitive mode.
func (p Primitive) GL() gl.Primitive {
	if !p.valid() {
		panic(fmt.Sprintf("drawtest: primitive %v has no mode", p))
	}
	return primitives[p].mode
}

// IsStrip reports whether primitives share vertices with their neighbours.
func (p Primitive) IsStrip() bool {
	return p == PrimitiveTriangleStrip || p == PrimitiveLineStrip
}

// DrawMethod is the draw call used to dispatch a case. The zero value
// means unset.
type DrawMethod uint8

const (
	DrawMethodNone DrawMethod = iota
	DrawArrays
	DrawArraysInstanced
	DrawElements
	DrawElementsRanged
	DrawElementsInstanced

	drawMethodCount
)

var drawMethodNames = [drawMethodCount]string{
	"none",
	"draw_arrays",
	"draw_arrays_instanced",
	"draw_elements",
	"draw_range_elements",
	"draw_elements_instanced",
}

// DrawMethods lists every set draw method.
func DrawMethods() []DrawMethod {
	out := make([]DrawMethod, 0, drawMethodCount-1)
	for m := DrawArrays; m < drawMethodCount; m++ {
		out = append(out, m)
	}
	return out
}

func (m DrawMethod) String() string {
	if m < drawMethodCount {
		return drawMethodNames[m]
	}
	return fmt.Sprintf("DrawMethod(%d)", uint8(m))
}

func (m DrawMethod) valid() bool { return m > DrawMethodNone && m < drawMethodCount }

// IsIndexed reports whether the method reads an index array.
func (m DrawMethod) IsIndexed() bool {
	return m == DrawElements || m == DrawElementsRanged || m == DrawElementsInstanced
}

// IsInstanced reports whether the method draws several instances.
func (m DrawMethod) IsInstanced() bool {
	return m == DrawArraysInstanced || m == DrawElementsInstanced
}

// IsRanged reports whether the method declares an index range.
func (m DrawMethod) IsRanged() bool { return m == DrawElementsRanged }

// HasFirst reports whether the method starts at a first vertex.
func (m DrawMethod) HasFirst() bool {
	return m == DrawArrays || m == DrawArraysInstanced
}

// IndexType is the encoding of element indices. The zero value means
// unset.
type IndexType uint8

const (
	IndexTypeNone IndexType = iota
	IndexUnsignedByte
	IndexUnsignedShort
	IndexUnsignedInt

	indexTypeCount
)

var indexTypes = [indexTypeCount]struct {
	name string
	typ  gl.Type
	size int
	max  uint32
}{
	IndexTypeNone:      {"none", 0, 0, 0},
	IndexUnsignedByte:  {"byte", gl.UnsignedByte, 1, 0xff},
	IndexUnsignedShort: {"short", gl.UnsignedShort, 2, 0xffff},
	IndexUnsignedInt:   {"int", gl.UnsignedInt, 4, 0xffffffff},
}

// IndexTypes lists every set index type.
func IndexTypes() []IndexType {
	return []IndexType{IndexUnsignedByte, IndexUnsignedShort, IndexUnsignedInt}
}

func (t IndexType) String() string {
	if t < indexTypeCount {
		return indexTypes[t].name
	}
	return fmt.Sprintf("IndexType(%d)", uint8(t))
}

func (t IndexType) valid() bool { return t > IndexTypeNone && t < indexTypeCount }

// GL returns the context index type.
func (t IndexType) GL() gl.Type {
	t.mustValid()
	return indexTypes[t].typ
}

// Size returns the byte size of one index.
func (t IndexType) Size() int {
	t.mustValid()
	return indexTypes[t].size
}

// Max returns the largest representable index.
func (t IndexType) Max() uint32 {
	t.mustValid()
	return indexTypes[t].max
}

func (t IndexType) mustValid() {
	if !t.valid() {
		panic(fmt.Sprintf("drawtest: index type %v is not set", t))
	}
}
