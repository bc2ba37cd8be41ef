// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package reference implements a software gl.Context used as the ground
// truth for draw tests.
//
// Vertex fetch follows the OpenGL ES 3 conversion rules exactly for every
// supported component type. Rasterization is single-sampled with no depth,
// blending or culling: points cover the pixel containing their center,
// lines step along their major axis, and triangles use edge functions
// with a top-left fill rule and linearly interpolated color.
package reference

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/gogpu/drawtest/gl"
	"github.com/gogpu/drawtest/program"
)

// Compile-time interface check.
var _ gl.Context = (*Context)(nil)

type attribState struct {
	enabled bool

	// Array source, captured by VertexAttribPointer/VertexAttribIPointer.
	configured bool
	size       int
	bgra       bool
	typ        gl.Type
	normalized bool
	integer    bool
	stride     int
	ptr        gl.Pointer
	buffer     gl.Buffer

	divisor uint32

	// Constant value used when the array is disabled.
	current [4]float32
}

type programState struct {
	prog     *program.Program
	uniforms program.Uniforms
}

// Context is a software rendering context. It is not safe for concurrent
// use.
type Context struct {
	width, height int
	target        *image.RGBA

	buffers    map[gl.Buffer][]byte
	nextBuffer gl.Buffer
	bound      map[gl.Target]gl.Buffer

	attribs [gl.MaxVertexAttribs]attribState

	programs    map[gl.Program]*programState
	nextProgram gl.Program
	current     gl.Program

	// err is the first invalid state change since the last draw.
	err error
}

// New returns a context rendering into a width x height target.
func New(width, height int) *Context {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("reference: invalid target size %dx%d", width, height))
	}
	c := &Context{
		width:    width,
		height:   height,
		target:   image.NewRGBA(image.Rect(0, 0, width, height)),
		buffers:  make(map[gl.Buffer][]byte),
		bound:    make(map[gl.Target]gl.Buffer),
		programs: make(map[gl.Program]*programState),
	}
	for i := range c.attribs {
		c.attribs[i].current = [4]float32{0, 0, 0, 1}
	}
	return c
}

// SetLogger sets the package logger on behalf of the context.
func (c *Context) SetLogger(l *slog.Logger) { SetLogger(l) }

// Width returns the target width.
func (c *Context) Width() int { return c.width }

// Height returns the target height.
func (c *Context) Height() int { return c.height }

func (c *Context) recordErr(err error) {
	if c.err == nil {
		c.err = err
	}
}

// takeErr returns and clears the recorded state error.
func (c *Context) takeErr() error {
	err := c.err
	c.err = nil
	return err
}

// CreateBuffer allocates a new empty buffer.
func (c *Context) CreateBuffer() (gl.Buffer, error) {
	c.nextBuffer++
	c.buffers[c.nextBuffer] = nil
	return c.nextBuffer, nil
}

// DeleteBuffer deletes b and unbinds it from every target.
func (c *Context) DeleteBuffer(b gl.Buffer) {
	delete(c.buffers, b)
	for t, bb := range c.bound {
		if bb == b {
			delete(c.bound, t)
		}
	}
}

// BindBuffer binds b to target. Zero unbinds.
func (c *Context) BindBuffer(target gl.Target, b gl.Buffer) {
	if b == 0 {
		delete(c.bound, target)
		return
	}
	if _, ok := c.buffers[b]; !ok {
		c.recordErr(fmt.Errorf("%w: bind of unknown buffer %d", gl.ErrInvalidOperation, b))
		return
	}
	c.bound[target] = b
}

// BufferData replaces the storage of the buffer bound to target.
func (c *Context) BufferData(target gl.Target, data []byte, _ gl.Usage) error {
	b, ok := c.bound[target]
	if !ok {
		return fmt.Errorf("%w: BufferData with no buffer bound to %v", gl.ErrInvalidOperation, target)
	}
	c.buffers[b] = append([]byte(nil), data...)
	return nil
}

// BufferSubData updates part of the buffer bound to target.
func (c *Context) BufferSubData(target gl.Target, offset int, data []byte) error {
	b, ok := c.bound[target]
	if !ok {
		return fmt.Errorf("%w: BufferSubData with no buffer bound to %v", gl.ErrInvalidOperation, target)
	}
	store := c.buffers[b]
	if offset < 0 || offset+len(data) > len(store) {
		return fmt.Errorf("%w: BufferSubData [%d,%d) of %d bytes", gl.ErrOutOfBounds, offset, offset+len(data), len(store))
	}
	copy(store[offset:], data)
	return nil
}

func (c *Context) attrib(location uint32) *attribState {
	if location >= gl.MaxVertexAttribs {
		panic(fmt.Sprintf("reference: attribute location %d out of range", location))
	}
	return &c.attribs[location]
}

// EnableVertexAttribArray enables the array at location.
func (c *Context) EnableVertexAttribArray(location uint32) { c.attrib(location).enabled = true }

// DisableVertexAttribArray disables the array at location.
func (c *Context) DisableVertexAttribArray(location uint32) { c.attrib(location).enabled = false }

// VertexAttribArrayEnabled reports whether the array at location is enabled.
func (c *Context) VertexAttribArrayEnabled(location uint32) bool {
	return c.attrib(location).enabled
}

// VertexAttribPointer configures a float-output array.
func (c *Context) VertexAttribPointer(location uint32, size int, typ gl.Type, normalized bool, stride int, ptr gl.Pointer) {
	c.setPointer(location, size, typ, normalized, false, stride, ptr)
}

// VertexAttribIPointer configures an integer-output array.
func (c *Context) VertexAttribIPointer(location uint32, size int, typ gl.Type, stride int, ptr gl.Pointer) {
	switch typ {
	case gl.Byte, gl.UnsignedByte, gl.Short, gl.UnsignedShort, gl.Int, gl.UnsignedInt:
	default:
		c.recordErr(fmt.Errorf("%w: VertexAttribIPointer type %v", gl.ErrInvalidOperation, typ))
		return
	}
	if size == gl.BGRA {
		c.recordErr(fmt.Errorf("%w: VertexAttribIPointer with BGRA size", gl.ErrInvalidOperation))
		return
	}
	c.setPointer(location, size, typ, false, true, stride, ptr)
}

func (c *Context) setPointer(location uint32, size int, typ gl.Type, normalized, integer bool, stride int, ptr gl.Pointer) {
	a := c.attrib(location)
	if !typ.Valid() {
		c.recordErr(fmt.Errorf("%w: unknown attribute type %v", gl.ErrInvalidOperation, typ))
		return
	}
	bgra := size == gl.BGRA
	if bgra {
		if typ != gl.UnsignedByte && !typ.IsPacked() || !normalized {
			c.recordErr(fmt.Errorf("%w: BGRA size with %v normalized=%v", gl.ErrInvalidOperation, typ, normalized))
			return
		}
		size = 4
	}
	if size < 1 || size > 4 || typ.IsPacked() && size != 4 || stride < 0 {
		c.recordErr(fmt.Errorf("%w: pointer size %d type %v stride %d", gl.ErrInvalidOperation, size, typ, stride))
		return
	}
	var buffer gl.Buffer
	if !ptr.IsClient() {
		buffer = c.bound[gl.ArrayBuffer]
		if buffer == 0 {
			c.recordErr(fmt.Errorf("%w: buffer offset pointer with no array buffer bound", gl.ErrInvalidOperation))
			return
		}
	}
	a.configured = true
	a.size = size
	a.bgra = bgra
	a.typ = typ
	a.normalized = normalized
	a.integer = integer
	a.stride = stride
	a.ptr = ptr
	a.buffer = buffer
}

// VertexAttribDivisor sets the instance divisor at location.
func (c *Context) VertexAttribDivisor(location uint32, divisor uint32) {
	c.attrib(location).divisor = divisor
}

// VertexAttrib4f sets the constant value at location.
func (c *Context) VertexAttrib4f(location uint32, v [4]float32) {
	c.attrib(location).current = v
}

// VertexAttribI4i sets a signed integer constant value at location.
func (c *Context) VertexAttribI4i(location uint32, v [4]int32) {
	c.attrib(location).current = [4]float32{float32(v[0]), float32(v[1]), float32(v[2]), float32(v[3])}
}

// VertexAttribI4ui sets an unsigned integer constant value at location.
func (c *Context) VertexAttribI4ui(location uint32, v [4]uint32) {
	c.attrib(location).current = [4]float32{float32(v[0]), float32(v[1]), float32(v[2]), float32(v[3])}
}

// CreateProgram registers p with the context.
func (c *Context) CreateProgram(p *program.Program) (gl.Program, error) {
	if p == nil {
		return 0, fmt.Errorf("%w: nil program", gl.ErrInvalidOperation)
	}
	if n := len(p.Attributes()); n > gl.MaxVertexAttribs {
		return 0, fmt.Errorf("%w: program uses %d attributes", gl.ErrInvalidOperation, n)
	}
	c.nextProgram++
	c.programs[c.nextProgram] = &programState{prog: p}
	return c.nextProgram, nil
}

// DeleteProgram deletes p.
func (c *Context) DeleteProgram(p gl.Program) {
	delete(c.programs, p)
	if c.current == p {
		c.current = 0
	}
}

// UseProgram makes p current. Zero clears the current program.
func (c *Context) UseProgram(p gl.Program) {
	if p != 0 {
		if _, ok := c.programs[p]; !ok {
			c.recordErr(fmt.Errorf("%w: use of unknown program %d", gl.ErrInvalidOperation, p))
			return
		}
	}
	c.current = p
}

// Uniform1f sets a uniform of the current program.
func (c *Context) Uniform1f(name string, v float32) error {
	ps, ok := c.programs[c.current]
	if !ok {
		return fmt.Errorf("%w: Uniform1f without a program", gl.ErrInvalidOperation)
	}
	switch name {
	case program.UniformCoordScale:
		ps.uniforms.CoordScale = v
	case program.UniformColorScale:
		ps.uniforms.ColorScale = v
	default:
		return fmt.Errorf("%w: unknown uniform %q", gl.ErrInvalidOperation, name)
	}
	return nil
}

// Clear fills the target with the given color.
func (c *Context) Clear(r, g, b, a float32) error {
	col := color.RGBA{R: toUnorm8(r), G: toUnorm8(g), B: toUnorm8(b), A: toUnorm8(a)}
	pix := c.target.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = col.R, col.G, col.B, col.A
	}
	return nil
}

// ReadPixels returns a copy of the target.
func (c *Context) ReadPixels() (*image.RGBA, error) {
	out := image.NewRGBA(c.target.Rect)
	copy(out.Pix, c.target.Pix)
	return out, nil
}

// Release drops all buffers and programs.
func (c *Context) Release() {
	clear(c.buffers)
	clear(c.bound)
	clear(c.programs)
	c.current = 0
}

// toUnorm8 converts a color channel to 8 bits, rounding to nearest.
func toUnorm8(v float32) uint8 {
	switch {
	case !(v > 0):
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
