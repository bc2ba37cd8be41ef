package hardware

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/drawtest/gl"
	"github.com/gogpu/drawtest/program"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

type drawCall struct {
	mode      gl.Primitive
	first     int
	count     int
	instances int

	indexed   bool
	indexType gl.Type
	indices   gl.Pointer

	ranged     bool
	start, end uint32
}

// vertexBinding is one vertex buffer slot of a draw.
type vertexBinding struct {
	buf    hal.Buffer
	offset uint64
}

// drawResources collects the transient objects created for one draw.
type drawResources struct {
	c       *Context
	buffers []hal.Buffer
}

func (r *drawResources) upload(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := r.c.upload(label, data, usage)
	if err != nil {
		return nil, err
	}
	r.buffers = append(r.buffers, buf)
	return buf, nil
}

func (r *drawResources) release() {
	for _, b := range r.buffers {
		r.c.device.DestroyBuffer(b)
	}
	r.buffers = nil
}

// Clear fills the target with the given color.
func (c *Context) Clear(r, g, b, a float32) error {
	if c.released {
		return ErrReleased
	}
	return c.submit("drawtest_clear", func(enc hal.CommandEncoder) error {
		rp := enc.BeginRenderPass(&hal.RenderPassDescriptor{
			Label: "drawtest_clear",
			ColorAttachments: []hal.RenderPassColorAttachment{{
				View:       c.targetView,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{R: float64(r), G: float64(g), B: float64(b), A: float64(a)},
			}},
		})
		rp.End()
		return nil
	})
}

// DrawArrays draws count vertices starting at first.
func (c *Context) DrawArrays(mode gl.Primitive, first, count int) error {
	return c.draw(drawCall{mode: mode, first: first, count: count, instances: 1})
}

// DrawArraysInstanced draws instances copies of a DrawArrays range.
func (c *Context) DrawArraysInstanced(mode gl.Primitive, first, count, instances int) error {
	return c.draw(drawCall{mode: mode, first: first, count: count, instances: instances})
}

// DrawElements draws count indexed vertices.
func (c *Context) DrawElements(mode gl.Primitive, count int, typ gl.Type, indices gl.Pointer) error {
	return c.draw(drawCall{mode: mode, count: count, instances: 1, indexed: true, indexType: typ, indices: indices})
}

// DrawElementsInstanced draws instances copies of an indexed range.
func (c *Context) DrawElementsInstanced(mode gl.Primitive, count int, typ gl.Type, indices gl.Pointer, instances int) error {
	return c.draw(drawCall{mode: mode, count: count, instances: instances, indexed: true, indexType: typ, indices: indices})
}

// DrawRangeElements draws count indexed vertices whose indices all lie in
// [start, end]. An index outside the range is reported as an error.
func (c *Context) DrawRangeElements(mode gl.Primitive, start, end uint32, count int, typ gl.Type, indices gl.Pointer) error {
	if end < start {
		return fmt.Errorf("%w: DrawRangeElements end %d < start %d", gl.ErrInvalidOperation, end, start)
	}
	return c.draw(drawCall{
		mode: mode, count: count, instances: 1,
		indexed: true, indexType: typ, indices: indices,
		ranged: true, start: start, end: end,
	})
}

func (c *Context) draw(d drawCall) error {
	if err := c.takeErr(); err != nil {
		return err
	}
	topo, ok := topology(d.mode)
	if !ok {
		return fmt.Errorf("%w: primitive mode %v", gl.ErrInvalidOperation, d.mode)
	}
	if d.first < 0 || d.count < 0 || d.instances < 0 {
		return fmt.Errorf("%w: first %d count %d instances %d", gl.ErrInvalidOperation, d.first, d.count, d.instances)
	}
	ps, ok := c.programs[c.current]
	if !ok {
		return fmt.Errorf("%w: draw without a program", gl.ErrInvalidOperation)
	}
	if d.count == 0 || d.instances == 0 {
		return nil
	}

	var elements []uint32
	lastVertex := uint32(d.first + d.count - 1)
	if d.indexed {
		var err error
		if elements, err = c.readIndices(d); err != nil {
			return err
		}
		lastVertex = 0
		for _, e := range elements {
			lastVertex = max(lastVertex, e)
		}
	}

	res := &drawResources{c: c}
	defer res.release()

	layouts, slots, err := c.vertexInputs(ps.prog, res, lastVertex, d.instances)
	if err != nil {
		return err
	}

	ix, err := c.indexSource(d, elements, res)
	if err != nil {
		return err
	}
	if ix.buf == nil && needsExpansion(d.mode) {
		return nil
	}

	primitive := gputypes.PrimitiveState{Topology: topo, CullMode: gputypes.CullModeNone}
	if ix.buf != nil && isStrip(topo) {
		f := ix.format
		primitive.StripIndexFormat = &f
	}
	pipeline, err := c.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "drawtest_" + ps.prog.Key(),
		Layout: c.pipeLayout,
		Vertex: hal.VertexState{
			Module:     ps.module,
			EntryPoint: "vs_main",
			Buffers:    layouts,
		},
		Primitive:   primitive,
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
		Fragment: &hal.FragmentState{
			Module:     ps.module,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{{
				Format:    targetFormat,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("hardware: create render pipeline: %w", err)
	}
	defer c.device.DestroyRenderPipeline(pipeline)

	if err := c.queue.WriteBuffer(c.uniformBuf, 0, ps.uniforms[:]); err != nil {
		return fmt.Errorf("hardware: write uniforms: %w", err)
	}

	err = c.submit("drawtest_draw", func(enc hal.CommandEncoder) error {
		rp := enc.BeginRenderPass(&hal.RenderPassDescriptor{
			Label: "drawtest_draw",
			ColorAttachments: []hal.RenderPassColorAttachment{{
				View:    c.targetView,
				LoadOp:  gputypes.LoadOpLoad,
				StoreOp: gputypes.StoreOpStore,
			}},
		})
		rp.SetPipeline(pipeline)
		rp.SetBindGroup(0, c.bindGroup, nil)
		for slot, vb := range slots {
			rp.SetVertexBuffer(uint32(slot), vb.buf, vb.offset)
		}
		rp.SetViewport(0, 0, float32(c.width), float32(c.height), 0, 1)
		if ix.buf != nil {
			rp.SetIndexBuffer(ix.buf, ix.format, 0)
			rp.DrawIndexed(ix.count, uint32(d.instances), ix.first, 0, 0)
		} else {
			rp.Draw(uint32(d.count), uint32(d.instances), uint32(d.first), 0)
		}
		rp.End()
		return nil
	})
	if err != nil {
		return err
	}
	slogger().Debug("hardware draw",
		"mode", d.mode, "count", d.count, "instances", d.instances, "indexed", d.indexed)
	return nil
}

// readIndices reads the index list of an indexed draw on the CPU. It is
// used for range checks, fetch bounds and index rewriting.
func (c *Context) readIndices(d drawCall) ([]uint32, error) {
	switch d.indexType {
	case gl.UnsignedByte, gl.UnsignedShort, gl.UnsignedInt:
	default:
		return nil, fmt.Errorf("%w: index type %v", gl.ErrInvalidOperation, d.indexType)
	}
	data, base, err := c.indexData(d.indices)
	if err != nil {
		return nil, err
	}
	n := d.indexType.Size()
	if base < 0 || base+d.count*n > len(data) {
		return nil, fmt.Errorf("%w: %d indices at offset %d need %d bytes, have %d",
			gl.ErrOutOfBounds, d.count, base, base+d.count*n, len(data))
	}
	out := make([]uint32, d.count)
	for i := range out {
		off := base + i*n
		switch d.indexType {
		case gl.UnsignedByte:
			out[i] = uint32(data[off])
		case gl.UnsignedShort:
			out[i] = uint32(binary.LittleEndian.Uint16(data[off:]))
		default:
			out[i] = binary.LittleEndian.Uint32(data[off:])
		}
		if d.ranged && (out[i] < d.start || out[i] > d.end) {
			return nil, fmt.Errorf("%w: index %d outside range [%d,%d]", gl.ErrInvalidOperation, out[i], d.start, d.end)
		}
	}
	return out, nil
}

func (c *Context) indexData(p gl.Pointer) ([]byte, int, error) {
	if p.IsClient() {
		return p.Data(), 0, nil
	}
	b, ok := c.bound[gl.ElementArrayBuffer]
	if !ok {
		return nil, 0, fmt.Errorf("%w: indexed draw with no element array buffer", gl.ErrInvalidOperation)
	}
	return c.buffers[b].shadow, p.Offset(), nil
}

// indexSource describes the index buffer of a draw. buf is nil for
// non-indexed draws.
type indexSource struct {
	buf    hal.Buffer
	format gputypes.IndexFormat
	first  uint32
	count  uint32
}

func (c *Context) indexSource(d drawCall, elements []uint32, res *drawResources) (indexSource, error) {
	if needsExpansion(d.mode) {
		if !d.indexed {
			elements = make([]uint32, d.count)
			for i := range elements {
				elements[i] = uint32(d.first + i)
			}
		}
		return c.uploadIndices32(expand(d.mode, elements), res)
	}
	if !d.indexed {
		return indexSource{}, nil
	}

	if d.indexType == gl.UnsignedByte {
		// No 8-bit index format; widen to 16 bits.
		data := make([]byte, 2*len(elements))
		for i, e := range elements {
			binary.LittleEndian.PutUint16(data[2*i:], uint16(e))
		}
		buf, err := res.upload("drawtest_indices16", data, gputypes.BufferUsageIndex)
		if err != nil {
			return indexSource{}, err
		}
		return indexSource{buf: buf, format: gputypes.IndexFormatUint16, count: uint32(len(elements))}, nil
	}

	format := gputypes.IndexFormatUint32
	if d.indexType == gl.UnsignedShort {
		format = gputypes.IndexFormatUint16
	}
	n := d.indexType.Size()
	if d.indices.IsClient() {
		buf, err := res.upload("drawtest_client_indices", d.indices.Data()[:d.count*n], gputypes.BufferUsageIndex)
		if err != nil {
			return indexSource{}, err
		}
		return indexSource{buf: buf, format: format, count: uint32(d.count)}, nil
	}
	off := d.indices.Offset()
	if off%n != 0 {
		return indexSource{}, gl.Unsupported("index buffer", "offset %d not a multiple of %v size", off, d.indexType)
	}
	bs := c.buffers[c.bound[gl.ElementArrayBuffer]]
	return indexSource{buf: bs.buf, format: format, first: uint32(off / n), count: uint32(d.count)}, nil
}

func (c *Context) uploadIndices32(elements []uint32, res *drawResources) (indexSource, error) {
	if len(elements) == 0 {
		return indexSource{}, nil
	}
	data := make([]byte, 4*len(elements))
	for i, e := range elements {
		binary.LittleEndian.PutUint32(data[4*i:], e)
	}
	buf, err := res.upload("drawtest_indices32", data, gputypes.BufferUsageIndex)
	if err != nil {
		return indexSource{}, err
	}
	return indexSource{buf: buf, format: gputypes.IndexFormatUint32, count: uint32(len(elements))}, nil
}

// vertexInputs builds one vertex buffer slot per program attribute.
// Enabled arrays read their source buffer; disabled ones read a
// zero-stride constant buffer.
func (c *Context) vertexInputs(p *program.Program, res *drawResources, lastVertex uint32, instances int) ([]gputypes.VertexBufferLayout, []vertexBinding, error) {
	attribs := p.Attributes()
	if len(attribs) > c.maxVertexBufs {
		return nil, nil, gl.Unsupported("vertex input", "%d attributes exceed %d vertex buffers", len(attribs), c.maxVertexBufs)
	}
	layouts := make([]gputypes.VertexBufferLayout, len(attribs))
	slots := make([]vertexBinding, len(attribs))
	for loc, pa := range attribs {
		a := &c.attribs[loc]
		if !a.enabled {
			if a.constKind != pa.Output {
				return nil, nil, gl.Unsupported("constant attribute", "location %d holds %v value for %v input", loc, a.constKind, pa.Output)
			}
			buf, err := res.upload("drawtest_constant", a.constant[:], gputypes.BufferUsageVertex)
			if err != nil {
				return nil, nil, err
			}
			layouts[loc] = gputypes.VertexBufferLayout{
				ArrayStride: 0,
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes: []gputypes.VertexAttribute{{
					Format:         constantFormat(pa.Output),
					ShaderLocation: uint32(loc),
				}},
			}
			slots[loc] = vertexBinding{buf: buf}
			continue
		}
		if !a.configured {
			return nil, nil, fmt.Errorf("%w: attribute %d enabled without a pointer", gl.ErrInvalidOperation, loc)
		}
		layout, slot, err := c.arrayInput(uint32(loc), a, pa.Output, res, lastVertex, instances)
		if err != nil {
			return nil, nil, fmt.Errorf("attribute %d: %w", loc, err)
		}
		layouts[loc] = layout
		slots[loc] = slot
	}
	return layouts, slots, nil
}

func (c *Context) arrayInput(loc uint32, a *attribState, out program.Output, res *drawResources, lastVertex uint32, instances int) (gputypes.VertexBufferLayout, vertexBinding, error) {
	var none gputypes.VertexBufferLayout
	format, err := vertexFormat(a, out)
	if err != nil {
		return none, vertexBinding{}, err
	}
	step := gputypes.VertexStepModeVertex
	last := int(lastVertex)
	switch a.divisor {
	case 0:
	case 1:
		step = gputypes.VertexStepModeInstance
		last = instances - 1
	default:
		return none, vertexBinding{}, gl.Unsupported("vertex input", "instance divisor %d", a.divisor)
	}

	stride := a.effectiveStride()
	if stride%4 != 0 {
		return none, vertexBinding{}, gl.Unsupported("vertex input", "stride %d not a multiple of 4", stride)
	}

	var (
		data []byte
		base int
	)
	if a.ptr.IsClient() {
		data = a.ptr.Data()
	} else {
		bs, ok := c.buffers[a.buffer]
		if !ok {
			return none, vertexBinding{}, fmt.Errorf("%w: array reads deleted buffer %d", gl.ErrInvalidOperation, a.buffer)
		}
		data, base = bs.shadow, a.ptr.Offset()
	}
	end := base + last*stride + a.elementSize()
	if end > len(data) {
		return none, vertexBinding{}, fmt.Errorf("%w: element %d needs bytes up to %d of %d", gl.ErrOutOfBounds, last, end, len(data))
	}

	// Buffer offsets must be 4-byte aligned; the remainder moves into the
	// attribute offset, which must be aligned to the format.
	attrOffset := base & 3
	formatSize := int(format.Size())
	if attrOffset%min(4, formatSize) != 0 || attrOffset+formatSize > stride {
		return none, vertexBinding{}, gl.Unsupported("vertex input", "offset %d for %v", base, format)
	}

	var slot vertexBinding
	if a.ptr.IsClient() {
		buf, err := res.upload("drawtest_client_array", data[:end], gputypes.BufferUsageVertex)
		if err != nil {
			return none, vertexBinding{}, err
		}
		slot = vertexBinding{buf: buf}
	} else {
		slot = vertexBinding{buf: c.buffers[a.buffer].buf, offset: uint64(base &^ 3)}
	}
	layout := gputypes.VertexBufferLayout{
		ArrayStride: uint64(stride),
		StepMode:    step,
		Attributes: []gputypes.VertexAttribute{{
			Format:         format,
			Offset:         uint64(attrOffset),
			ShaderLocation: loc,
		}},
	}
	return layout, slot, nil
}

// submit records one command buffer with record, submits it and waits for
// the device to go idle.
func (c *Context) submit(label string, record func(enc hal.CommandEncoder) error) error {
	enc, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return fmt.Errorf("hardware: create command encoder: %w", err)
	}
	defer enc.Destroy()
	if err := enc.BeginEncoding(label); err != nil {
		return fmt.Errorf("hardware: begin encoding: %w", err)
	}
	if err := record(enc); err != nil {
		enc.DiscardEncoding()
		return err
	}
	cmd, err := enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("hardware: end encoding: %w", err)
	}
	defer c.device.FreeCommandBuffer(cmd)
	if _, err := c.queue.Submit([]hal.CommandBuffer{cmd}); err != nil {
		return fmt.Errorf("hardware: submit: %w", err)
	}
	if err := c.device.WaitIdle(); err != nil {
		return fmt.Errorf("hardware: wait idle: %w", err)
	}
	return nil
}
