// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package hardware implements gl.Context on a wgpu HAL device.
//
// Every draw records one render pass into an RGBA8 offscreen texture and
// waits for the queue to go idle, so calls are synchronous. Vertex
// attribute state is translated into vertex buffer layouts at draw time.
// Encodings that have no vertex format equivalent fail the draw with
// gl.ErrUnsupported instead of being emulated.
package hardware

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"

	"github.com/gogpu/drawtest/gl"
	"github.com/gogpu/drawtest/program"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Compile-time interface check.
var _ gl.Context = (*Context)(nil)

const targetFormat = gputypes.TextureFormatRGBA8Unorm

type bufferState struct {
	// shadow mirrors the buffer contents for index reads and bounds checks.
	shadow []byte
	buf    hal.Buffer
}

type attribState struct {
	enabled bool

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

	// constant is the raw value used when the array is disabled, in the
	// encoding named by constKind.
	constant  [16]byte
	constKind program.Output
}

func (a *attribState) elementSize() int {
	if a.typ.IsPacked() {
		return 4
	}
	return a.size * a.typ.Size()
}

func (a *attribState) effectiveStride() int {
	if a.stride == 0 {
		return a.elementSize()
	}
	return a.stride
}

type programState struct {
	prog     *program.Program
	module   hal.ShaderModule
	uniforms [program.UniformBlockSize]byte
}

// Context renders through a HAL device. It is not safe for concurrent use.
type Context struct {
	device hal.Device
	queue  hal.Queue

	// Set only when the context opened the device itself.
	instance hal.Instance
	owned    bool

	width, height int

	target     hal.Texture
	targetView hal.TextureView

	uniformBuf    hal.Buffer
	bindLayout    hal.BindGroupLayout
	bindGroup     hal.BindGroup
	pipeLayout    hal.PipelineLayout
	maxVertexBufs int

	buffers    map[gl.Buffer]*bufferState
	nextBuffer gl.Buffer
	bound      map[gl.Target]gl.Buffer

	attribs [gl.MaxVertexAttribs]attribState

	programs    map[gl.Program]*programState
	nextProgram gl.Program
	current     gl.Program

	err      error
	released bool
}

// New returns a context rendering into a width x height offscreen target
// on device. The caller keeps ownership of device and queue.
func New(device hal.Device, queue hal.Queue, width, height int) (*Context, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("hardware: nil device or queue")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("hardware: invalid target size %dx%d", width, height)
	}
	c := &Context{
		device:        device,
		queue:         queue,
		width:         width,
		height:        height,
		maxVertexBufs: int(gputypes.DefaultLimits().MaxVertexBuffers),
		buffers:       make(map[gl.Buffer]*bufferState),
		bound:         make(map[gl.Target]gl.Buffer),
		programs:      make(map[gl.Program]*programState),
	}
	for i := range c.attribs {
		c.attribs[i].setConstant(program.OutputFloat, math.Float32bits(0), math.Float32bits(0), math.Float32bits(0), math.Float32bits(1))
	}
	if err := c.createTarget(); err != nil {
		c.destroyResources()
		return nil, err
	}
	if err := c.createUniforms(); err != nil {
		c.destroyResources()
		return nil, err
	}
	slogger().Debug("hardware: context created", "width", width, "height", height)
	return c, nil
}

// NewFromProvider returns a context on the device shared by provider.
// The provider must hand out hal.Device and hal.Queue values, either
// through HalDevice/HalQueue methods or from Device/Queue directly.
func NewFromProvider(provider gpucontext.DeviceProvider, width, height int) (*Context, error) {
	device, queue, err := halHandles(provider)
	if err != nil {
		return nil, err
	}
	c, err := New(device, queue, width, height)
	if err != nil {
		return nil, err
	}
	slogger().Info("hardware: using shared device", "adapter", provider.AdapterInfo().Name)
	return c, nil
}

func halHandles(provider gpucontext.DeviceProvider) (hal.Device, hal.Queue, error) {
	if provider == nil {
		return nil, nil, ErrProviderNotHAL
	}
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	var dev, q any
	if hp, ok := provider.(halProvider); ok {
		dev, q = hp.HalDevice(), hp.HalQueue()
	} else {
		dev, q = provider.Device(), provider.Queue()
	}
	device, ok := dev.(hal.Device)
	if !ok || device == nil {
		return nil, nil, fmt.Errorf("%w: device is %T", ErrProviderNotHAL, dev)
	}
	queue, ok := q.(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, fmt.Errorf("%w: queue is %T", ErrProviderNotHAL, q)
	}
	return device, queue, nil
}

// Open creates a context on its own device from the registered HAL
// backend variant, preferring discrete and integrated GPUs. Release
// destroys the device.
func Open(variant gputypes.Backend, width, height int) (*Context, error) {
	backend, ok := hal.GetBackend(variant)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrBackendNotAvailable, variant)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{})
	if err != nil {
		return nil, fmt.Errorf("hardware: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		t := adapters[i].Info.DeviceType
		if t == gputypes.DeviceTypeDiscreteGPU || t == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	open, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("hardware: open device: %w", err)
	}
	c, err := New(open.Device, open.Queue, width, height)
	if err != nil {
		open.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	c.instance = instance
	c.owned = true
	slogger().Info("hardware: opened device", "backend", variant, "adapter", selected.Info.Name)
	return c, nil
}

func (c *Context) createTarget() error {
	tex, err := c.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "drawtest_target",
		Size:          hal.Extent3D{Width: uint32(c.width), Height: uint32(c.height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        targetFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("hardware: create target texture: %w", err)
	}
	c.target = tex
	view, err := c.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:     "drawtest_target_view",
		Format:    targetFormat,
		Dimension: gputypes.TextureViewDimension2D,
		Aspect:    gputypes.TextureAspectAll,
	})
	if err != nil {
		return fmt.Errorf("hardware: create target view: %w", err)
	}
	c.targetView = view
	return nil
}

// createUniforms builds the uniform buffer and the bind group shared by
// all programs. Each draw rewrites the buffer before submitting.
func (c *Context) createUniforms() error {
	buf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "drawtest_uniforms",
		Size:  program.UniformBlockSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("hardware: create uniform buffer: %w", err)
	}
	c.uniformBuf = buf

	layout, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "drawtest_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: gputypes.ShaderStagesVertexFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		}},
	})
	if err != nil {
		return fmt.Errorf("hardware: create bind group layout: %w", err)
	}
	c.bindLayout = layout

	group, err := c.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "drawtest_uniform_group",
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{{
			Binding:  0,
			Resource: gputypes.BufferBinding{Buffer: buf.NativeHandle(), Offset: 0, Size: program.UniformBlockSize},
		}},
	})
	if err != nil {
		return fmt.Errorf("hardware: create bind group: %w", err)
	}
	c.bindGroup = group

	pl, err := c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "drawtest_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{layout},
	})
	if err != nil {
		return fmt.Errorf("hardware: create pipeline layout: %w", err)
	}
	c.pipeLayout = pl
	return nil
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

func (c *Context) takeErr() error {
	if c.released {
		return ErrReleased
	}
	err := c.err
	c.err = nil
	return err
}

// CreateBuffer allocates a buffer handle. Storage is created by BufferData.
func (c *Context) CreateBuffer() (gl.Buffer, error) {
	if c.released {
		return 0, ErrReleased
	}
	c.nextBuffer++
	c.buffers[c.nextBuffer] = &bufferState{}
	return c.nextBuffer, nil
}

// DeleteBuffer destroys b and unbinds it from every target.
func (c *Context) DeleteBuffer(b gl.Buffer) {
	bs, ok := c.buffers[b]
	if !ok {
		return
	}
	if bs.buf != nil {
		c.device.DestroyBuffer(bs.buf)
	}
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

func (c *Context) boundBuffer(target gl.Target, op string) (*bufferState, error) {
	if c.released {
		return nil, ErrReleased
	}
	b, ok := c.bound[target]
	if !ok {
		return nil, fmt.Errorf("%w: %s with no buffer bound to %v", gl.ErrInvalidOperation, op, target)
	}
	return c.buffers[b], nil
}

// BufferData replaces the storage of the buffer bound to target. The GPU
// buffer is padded to a multiple of four bytes.
func (c *Context) BufferData(target gl.Target, data []byte, _ gl.Usage) error {
	bs, err := c.boundBuffer(target, "BufferData")
	if err != nil {
		return err
	}
	if bs.buf != nil {
		c.device.DestroyBuffer(bs.buf)
		bs.buf = nil
	}
	bs.shadow = append([]byte(nil), data...)
	buf, err := c.upload("drawtest_buffer", bs.shadow,
		gputypes.BufferUsageVertex|gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	bs.buf = buf
	return nil
}

// BufferSubData updates part of the buffer bound to target.
func (c *Context) BufferSubData(target gl.Target, offset int, data []byte) error {
	bs, err := c.boundBuffer(target, "BufferSubData")
	if err != nil {
		return err
	}
	if offset < 0 || offset+len(data) > len(bs.shadow) {
		return fmt.Errorf("%w: BufferSubData [%d,%d) of %d bytes", gl.ErrOutOfBounds, offset, offset+len(data), len(bs.shadow))
	}
	copy(bs.shadow[offset:], data)
	if len(data) == 0 {
		return nil
	}
	// Queue writes must be 4-byte aligned; rewrite the covering words.
	lo := offset &^ 3
	hi := align4(offset + len(data))
	if err := c.queue.WriteBuffer(bs.buf, uint64(lo), padded(bs.shadow, hi)[lo:hi]); err != nil {
		return fmt.Errorf("hardware: write buffer: %w", err)
	}
	return nil
}

// upload creates a buffer holding data padded to four bytes.
func (c *Context) upload(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	size := max(align4(len(data)), 4)
	buf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(size),
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("hardware: create buffer %s: %w", label, err)
	}
	if len(data) > 0 {
		if err := c.queue.WriteBuffer(buf, 0, padded(data, size)); err != nil {
			c.device.DestroyBuffer(buf)
			return nil, fmt.Errorf("hardware: write buffer %s: %w", label, err)
		}
	}
	return buf, nil
}

func align4(n int) int { return (n + 3) &^ 3 }

// padded returns data extended with zeros to n bytes.
func padded(data []byte, n int) []byte {
	if len(data) >= n {
		return data
	}
	out := make([]byte, n)
	copy(out, data)
	return out
}

func (c *Context) attrib(location uint32) *attribState {
	if location >= gl.MaxVertexAttribs {
		panic(fmt.Sprintf("hardware: attribute location %d out of range", location))
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
		if integer || !normalized || typ != gl.UnsignedByte && !typ.IsPacked() {
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
	*a = attribState{
		enabled:    a.enabled,
		configured: true,
		size:       size,
		bgra:       bgra,
		typ:        typ,
		normalized: normalized,
		integer:    integer,
		stride:     stride,
		ptr:        ptr,
		buffer:     buffer,
		divisor:    a.divisor,
		constant:   a.constant,
		constKind:  a.constKind,
	}
}

// VertexAttribDivisor sets the instance divisor at location.
func (c *Context) VertexAttribDivisor(location uint32, divisor uint32) {
	c.attrib(location).divisor = divisor
}

func (a *attribState) setConstant(kind program.Output, x, y, z, w uint32) {
	a.constKind = kind
	binary.LittleEndian.PutUint32(a.constant[0:], x)
	binary.LittleEndian.PutUint32(a.constant[4:], y)
	binary.LittleEndian.PutUint32(a.constant[8:], z)
	binary.LittleEndian.PutUint32(a.constant[12:], w)
}

// VertexAttrib4f sets the constant value at location.
func (c *Context) VertexAttrib4f(location uint32, v [4]float32) {
	c.attrib(location).setConstant(program.OutputFloat,
		math.Float32bits(v[0]), math.Float32bits(v[1]), math.Float32bits(v[2]), math.Float32bits(v[3]))
}

// VertexAttribI4i sets a signed integer constant value at location.
func (c *Context) VertexAttribI4i(location uint32, v [4]int32) {
	c.attrib(location).setConstant(program.OutputInt, uint32(v[0]), uint32(v[1]), uint32(v[2]), uint32(v[3]))
}

// VertexAttribI4ui sets an unsigned integer constant value at location.
func (c *Context) VertexAttribI4ui(location uint32, v [4]uint32) {
	c.attrib(location).setConstant(program.OutputUint, v[0], v[1], v[2], v[3])
}

// CreateProgram creates a shader module for p.
func (c *Context) CreateProgram(p *program.Program) (gl.Program, error) {
	if c.released {
		return 0, ErrReleased
	}
	if p == nil {
		return 0, fmt.Errorf("%w: nil program", gl.ErrInvalidOperation)
	}
	if n := len(p.Attributes()); n > gl.MaxVertexAttribs {
		return 0, fmt.Errorf("%w: program uses %d attributes", gl.ErrInvalidOperation, n)
	}
	module, err := c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "drawtest_" + p.Key(),
		Source: hal.ShaderSource{WGSL: p.WGSL(), SPIRV: p.SPIRV()},
	})
	if err != nil {
		return 0, fmt.Errorf("hardware: create shader module %s: %w", p.Key(), err)
	}
	c.nextProgram++
	c.programs[c.nextProgram] = &programState{prog: p, module: module}
	return c.nextProgram, nil
}

// DeleteProgram destroys p.
func (c *Context) DeleteProgram(p gl.Program) {
	ps, ok := c.programs[p]
	if !ok {
		return
	}
	c.device.DestroyShaderModule(ps.module)
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
	off, ok := program.UniformOffset(name)
	if !ok {
		return fmt.Errorf("%w: unknown uniform %q", gl.ErrInvalidOperation, name)
	}
	binary.LittleEndian.PutUint32(ps.uniforms[off:], math.Float32bits(v))
	return nil
}

// Release destroys every object the context owns. The context must not
// be used afterwards.
func (c *Context) Release() {
	if c.released {
		return
	}
	for b := range c.buffers {
		c.DeleteBuffer(b)
	}
	for p := range c.programs {
		c.DeleteProgram(p)
	}
	c.destroyResources()
	c.released = true
}

func (c *Context) destroyResources() {
	if c.pipeLayout != nil {
		c.device.DestroyPipelineLayout(c.pipeLayout)
		c.pipeLayout = nil
	}
	if c.bindGroup != nil {
		c.device.DestroyBindGroup(c.bindGroup)
		c.bindGroup = nil
	}
	if c.bindLayout != nil {
		c.device.DestroyBindGroupLayout(c.bindLayout)
		c.bindLayout = nil
	}
	if c.uniformBuf != nil {
		c.device.DestroyBuffer(c.uniformBuf)
		c.uniformBuf = nil
	}
	if c.targetView != nil {
		c.device.DestroyTextureView(c.targetView)
		c.targetView = nil
	}
	if c.target != nil {
		c.device.DestroyTexture(c.target)
		c.target = nil
	}
	if c.owned {
		c.device.Destroy()
		if c.instance != nil {
			c.instance.Destroy()
		}
		c.owned = false
	}
}
