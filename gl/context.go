package gl

import (
	"image"

	"github.com/gogpu/drawtest/program"
)

// Context is the capability set a draw test drives. A hardware context and
// the software reference implement it; test code never depends on which.
//
// Calls are synchronous from the caller's point of view. Binding state
// persists between calls. Vertex attribute state is indexed by location,
// which must be below MaxVertexAttribs.
//
// Calls that only change state do not return errors; a context records
// invalid state and reports it from the next draw. Draws, uploads and
// readback return errors.
type Context interface {
	// Width and Height return the render target size in pixels.
	Width() int
	Height() int

	CreateBuffer() (Buffer, error)
	DeleteBuffer(b Buffer)
	BindBuffer(target Target, b Buffer)
	BufferData(target Target, data []byte, usage Usage) error
	BufferSubData(target Target, offset int, data []byte) error

	EnableVertexAttribArray(location uint32)
	DisableVertexAttribArray(location uint32)
	VertexAttribArrayEnabled(location uint32) bool

	// VertexAttribPointer sets a float-output array. size is 1-4 or BGRA.
	VertexAttribPointer(location uint32, size int, typ Type, normalized bool, stride int, ptr Pointer)
	// VertexAttribIPointer sets an integer-output array.
	VertexAttribIPointer(location uint32, size int, typ Type, stride int, ptr Pointer)
	VertexAttribDivisor(location uint32, divisor uint32)

	// Constant attribute values, used when an array is disabled.
	VertexAttrib4f(location uint32, v [4]float32)
	VertexAttribI4i(location uint32, v [4]int32)
	VertexAttribI4ui(location uint32, v [4]uint32)

	CreateProgram(p *program.Program) (Program, error)
	DeleteProgram(p Program)
	UseProgram(p Program)
	// Uniform1f sets a float uniform of the program in use.
	Uniform1f(name string, v float32) error

	Clear(r, g, b, a float32) error
	DrawArrays(mode Primitive, first, count int) error
	DrawArraysInstanced(mode Primitive, first, count, instances int) error
	DrawElements(mode Primitive, count int, typ Type, indices Pointer) error
	DrawElementsInstanced(mode Primitive, count int, typ Type, indices Pointer, instances int) error
	DrawRangeElements(mode Primitive, start, end uint32, count int, typ Type, indices Pointer) error

	// ReadPixels returns the render target, top row first.
	ReadPixels() (*image.RGBA, error)

	// Release frees every object the context still owns.
	Release()
}
