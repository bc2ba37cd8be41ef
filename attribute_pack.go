package drawtest

import (
	"fmt"
	"image"

	"github.com/gogpu/drawtest/gl"
	"github.com/gogpu/drawtest/program"
)

// RenderParams are the per-draw parameters of AttributePack.Render.
// Which fields are read depends on Method.
type RenderParams struct {
	Method    DrawMethod
	Primitive Primitive

	First int
	Count int

	IndexType   IndexType
	IndexOffset int
	// Indices holds the index data of indexed methods.
	Indices *AttributeArray

	RangeStart uint32
	RangeEnd   uint32

	InstanceCount int

	CoordScale float32
	ColorScale float32
}

// AttributePack owns the attribute arrays of one draw and the program
// generated for them, all created on a single context.
type AttributePack struct {
	ctx    gl.Context
	arrays []*AttributeArray

	prog   *program.Program
	handle gl.Program
}

// NewAttributePack returns an empty pack drawing to ctx.
func NewAttributePack(ctx gl.Context) *AttributePack {
	return &AttributePack{ctx: ctx}
}

// Context returns the context the pack draws to.
func (p *AttributePack) Context() gl.Context { return p.ctx }

// NewArray appends an array. Array N feeds program attribute a_N.
func (p *AttributePack) NewArray(storage Storage) (*AttributeArray, error) {
	a, err := newAttributeArray(p.ctx, storage)
	if err != nil {
		return nil, err
	}
	p.arrays = append(p.arrays, a)
	return a, nil
}

// NewIndexArray returns an array for index data. It is owned by the
// caller and does not feed the program.
func (p *AttributePack) NewIndexArray(storage Storage) (*AttributeArray, error) {
	return newAttributeArray(p.ctx, storage)
}

// Array returns array i.
func (p *AttributePack) Array(i int) *AttributeArray { return p.arrays[i] }

// ArrayCount returns the number of arrays.
func (p *AttributePack) ArrayCount() int { return len(p.arrays) }

// ClearArrays releases every array.
func (p *AttributePack) ClearArrays() {
	for _, a := range p.arrays {
		a.Release()
	}
	p.arrays = nil
}

// Clear fills the render target with opaque black.
func (p *AttributePack) Clear() error {
	return p.ctx.Clear(0, 0, 0, 1)
}

// ReadSurface returns the render target.
func (p *AttributePack) ReadSurface() (*image.RGBA, error) {
	return p.ctx.ReadPixels()
}

// Release frees the arrays and the program.
func (p *AttributePack) Release() {
	p.ClearArrays()
	p.deleteProgram()
}

func (p *AttributePack) deleteProgram() {
	if p.handle != 0 {
		p.ctx.DeleteProgram(p.handle)
	}
	p.prog, p.handle = nil, 0
}

// programAttributes describes the current arrays to the program builder.
func (p *AttributePack) programAttributes() []program.Attribute {
	out := make([]program.Attribute, len(p.arrays))
	for i, a := range p.arrays {
		if !a.configured {
			panic(fmt.Sprintf("drawtest: array %d rendered before SetupArray", i))
		}
		out[i] = program.Attribute{Output: a.setup.OutputType.Kind(), Position: a.setup.IsPosition}
	}
	return out
}

// ensureProgram rebuilds the program when the array configuration no
// longer matches it.
func (p *AttributePack) ensureProgram() error {
	attribs := p.programAttributes()
	if p.prog != nil && p.prog.Key() == program.Key(attribs) {
		return nil
	}
	p.deleteProgram()

	prog, err := program.Build(attribs)
	if err != nil {
		return err
	}
	h, err := p.ctx.CreateProgram(prog)
	if err != nil {
		return fmt.Errorf("drawtest: create program: %w", err)
	}
	p.prog, p.handle = prog, h
	Logger().Debug("drawtest: program built", "key", prog.Key())
	return nil
}

// Render draws the arrays with rp. Every attribute array it enables and
// every divisor it sets is reset before it returns, whatever the outcome.
// An unknown draw method panics.
func (p *AttributePack) Render(rp RenderParams) (err error) {
	if !rp.Method.valid() {
		panic(fmt.Sprintf("drawtest: render with draw method %v", rp.Method))
	}
	if rp.Method.IsIndexed() && rp.Indices == nil {
		panic("drawtest: indexed render without indices")
	}
	if err := p.ensureProgram(); err != nil {
		return err
	}

	ctx := p.ctx
	ctx.UseProgram(p.handle)
	var enabled, divided []uint32
	defer func() {
		for _, loc := range enabled {
			ctx.DisableVertexAttribArray(loc)
		}
		for _, loc := range divided {
			ctx.VertexAttribDivisor(loc, 0)
		}
		ctx.BindBuffer(gl.ElementArrayBuffer, 0)
		ctx.BindBuffer(gl.ArrayBuffer, 0)
		ctx.UseProgram(0)
	}()

	if err := ctx.Uniform1f(program.UniformCoordScale, rp.CoordScale); err != nil {
		return err
	}
	if err := ctx.Uniform1f(program.UniformColorScale, rp.ColorScale); err != nil {
		return err
	}

	for i, a := range p.arrays {
		loc := uint32(i)
		if a.setup.Bound && !ctx.VertexAttribArrayEnabled(loc) {
			ctx.EnableVertexAttribArray(loc)
			enabled = append(enabled, loc)
		}
		a.BindAttribute(loc)
		if a.setup.InstanceDivisor != 0 {
			divided = append(divided, loc)
		}
	}

	var indices gl.Pointer
	if rp.Method.IsIndexed() {
		rp.Indices.BindIndexArray(gl.ElementArrayBuffer)
		indices = rp.Indices.pointer(rp.IndexOffset)
	}

	mode := rp.Primitive.GL()
	switch rp.Method {
	case DrawArrays:
		err = ctx.DrawArrays(mode, rp.First, rp.Count)
	case DrawArraysInstanced:
		err = ctx.DrawArraysInstanced(mode, rp.First, rp.Count, rp.InstanceCount)
	case DrawElements:
		err = ctx.DrawElements(mode, rp.Count, rp.IndexType.GL(), indices)
	case DrawElementsRanged:
		err = ctx.DrawRangeElements(mode, rp.RangeStart, rp.RangeEnd, rp.Count, rp.IndexType.GL(), indices)
	case DrawElementsInstanced:
		err = ctx.DrawElementsInstanced(mode, rp.Count, rp.IndexType.GL(), indices, rp.InstanceCount)
	}
	return err
}
