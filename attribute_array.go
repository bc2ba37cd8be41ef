package drawtest

import (
	"fmt"

	"github.com/gogpu/drawtest/gl"
)

// Constant is the value an attribute takes when it is not backed by an
// array. Only the field matching the attribute's input type is used.
type Constant struct {
	Float [4]float32
	Int   [4]int32
	Uint  [4]uint32
}

// ArraySetup configures how an AttributeArray binds.
type ArraySetup struct {
	// Bound selects array data. When false the array supplies Default.
	Bound bool

	Offset          int
	ComponentCount  int
	InputType       InputType
	OutputType      OutputType
	Normalize       bool
	Stride          int
	InstanceDivisor int
	Default         Constant
	IsPosition      bool
	BGRA            bool
}

// AttributeArray holds the data and binding state of one vertex attribute
// or of an index array. Buffer storage lives in a context buffer; user
// storage is passed to the context as client memory at bind time.
type AttributeArray struct {
	ctx     gl.Context
	storage Storage
	buffer  gl.Buffer
	client  []byte

	setup      ArraySetup
	configured bool
}

func newAttributeArray(ctx gl.Context, storage Storage) (*AttributeArray, error) {
	a := &AttributeArray{ctx: ctx, storage: storage}
	if storage == StorageBuffer {
		b, err := ctx.CreateBuffer()
		if err != nil {
			return nil, fmt.Errorf("drawtest: create array buffer: %w", err)
		}
		a.buffer = b
	}
	return a, nil
}

// Storage returns where the array keeps its data.
func (a *AttributeArray) Storage() Storage { return a.storage }

// Setup returns the configuration set by SetupArray.
func (a *AttributeArray) Setup() ArraySetup { return a.setup }

// Configured reports whether SetupArray has been called.
func (a *AttributeArray) Configured() bool { return a.configured }

// Data replaces the buffer contents. It panics on user storage.
func (a *AttributeArray) Data(target gl.Target, data []byte, usage gl.Usage) error {
	a.mustBuffer("Data")
	a.ctx.BindBuffer(target, a.buffer)
	err := a.ctx.BufferData(target, data, usage)
	a.ctx.BindBuffer(target, 0)
	return err
}

// SubData updates part of the buffer. It panics on user storage.
func (a *AttributeArray) SubData(target gl.Target, offset int, data []byte) error {
	a.mustBuffer("SubData")
	a.ctx.BindBuffer(target, a.buffer)
	err := a.ctx.BufferSubData(target, offset, data)
	a.ctx.BindBuffer(target, 0)
	return err
}

// SetUserData replaces the client memory. It panics on buffer storage.
func (a *AttributeArray) SetUserData(data []byte) {
	if a.storage != StorageUser {
		panic("drawtest: SetUserData on buffer storage")
	}
	a.client = append(a.client[:0], data...)
}

func (a *AttributeArray) mustBuffer(op string) {
	if a.storage != StorageBuffer {
		panic(fmt.Sprintf("drawtest: %s on user storage", op))
	}
}

// SetupArray configures the binding. It must be called exactly once,
// before BindAttribute.
func (a *AttributeArray) SetupArray(s ArraySetup) {
	if a.configured {
		panic("drawtest: SetupArray called twice")
	}
	a.setup = s
	a.configured = true
}

// pointer returns the source of data starting offset bytes into the
// array.
func (a *AttributeArray) pointer(offset int) gl.Pointer {
	if a.storage == StorageBuffer {
		return gl.BufferOffset(offset)
	}
	if offset > len(a.client) {
		offset = len(a.client)
	}
	return gl.ClientMemory(a.client[offset:])
}

// BindAttribute binds the array to location. Unbound arrays set a
// constant value and leave buffer state untouched. A non-zero instance
// divisor is applied after the pointer or constant.
func (a *AttributeArray) BindAttribute(location uint32) {
	if !a.configured {
		panic("drawtest: BindAttribute before SetupArray")
	}
	s := a.setup
	if !s.Bound {
		a.bindConstant(location)
	} else {
		a.bindPointer(location)
	}
	if s.InstanceDivisor != 0 {
		a.ctx.VertexAttribDivisor(location, uint32(s.InstanceDivisor))
	}
}

func (a *AttributeArray) bindConstant(location uint32) {
	s := a.setup
	switch s.InputType {
	case InputInt:
		a.ctx.VertexAttribI4i(location, s.Default.Int)
	case InputUnsignedInt:
		a.ctx.VertexAttribI4ui(location, s.Default.Uint)
	default:
		v := [4]float32{0, 0, 0, 1}
		copy(v[:min(s.ComponentCount, 4)], s.Default.Float[:])
		a.ctx.VertexAttrib4f(location, v)
	}
}

func (a *AttributeArray) bindPointer(location uint32) {
	s := a.setup
	if a.storage == StorageBuffer {
		a.ctx.BindBuffer(gl.ArrayBuffer, a.buffer)
	}
	ptr := a.pointer(s.Offset)
	typ := s.InputType.GLType()

	switch {
	case s.InputType.IsFloat() && s.OutputType.IsFloat():
		a.ctx.VertexAttribPointer(location, s.ComponentCount, typ, s.Normalize, s.Stride, ptr)
	case s.OutputType.IsFloat():
		size := s.ComponentCount
		if s.BGRA {
			if size != 4 {
				panic("drawtest: BGRA component order needs 4 components")
			}
			size = gl.BGRA
		}
		a.ctx.VertexAttribPointer(location, size, typ, s.Normalize, s.Stride, ptr)
	case !s.InputType.IsFloat():
		a.ctx.VertexAttribIPointer(location, s.ComponentCount, typ, s.Stride, ptr)
	default:
		panic(fmt.Sprintf("drawtest: %v input cannot feed %v output", s.InputType, s.OutputType))
	}
}

// BindIndexArray binds buffer storage as the element array. User storage
// binds nothing; its indices are passed as client memory.
func (a *AttributeArray) BindIndexArray(target gl.Target) {
	if a.storage == StorageBuffer {
		a.ctx.BindBuffer(target, a.buffer)
	}
}

// Release deletes the buffer and drops client memory.
func (a *AttributeArray) Release() {
	if a.buffer != 0 {
		a.ctx.DeleteBuffer(a.buffer)
		a.buffer = 0
	}
	a.client = nil
}
