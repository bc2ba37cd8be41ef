package hardware

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"unsafe"

	"github.com/gogpu/drawtest/gl"
	"github.com/gogpu/drawtest/program"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/noop"
)

// newNoopContext opens a context on the noop backend. The noop device
// accepts every call and never rasterizes, so these tests cover state
// translation, validation and readback plumbing only.
func newNoopContext(t *testing.T, w, h int) *Context {
	t.Helper()
	c, err := Open(gputypes.BackendEmpty, w, h)
	if err != nil {
		t.Fatalf("Open(noop): %v", err)
	}
	t.Cleanup(c.Release)
	return c
}

func floatBytes(vs ...float32) []byte {
	b := make([]byte, 4*len(vs))
	for i, v := range vs {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(v))
	}
	return b
}

// setupPosition uploads data to a new array buffer, points location 0 at
// it and makes a position-only program current.
func setupPosition(t *testing.T, c *Context, data []byte, size int, typ gl.Type, stride, offset int) {
	t.Helper()
	buf, err := c.CreateBuffer()
	if err != nil {
		t.Fatal(err)
	}
	c.BindBuffer(gl.ArrayBuffer, buf)
	if err := c.BufferData(gl.ArrayBuffer, data, gl.StaticDraw); err != nil {
		t.Fatal(err)
	}
	c.EnableVertexAttribArray(0)
	c.VertexAttribPointer(0, size, typ, false, stride, gl.BufferOffset(offset))
	p, err := program.Build([]program.Attribute{{Output: program.OutputFloat, Position: true}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	prog, err := c.CreateProgram(p)
	if err != nil {
		t.Fatal(err)
	}
	c.UseProgram(prog)
}

func TestVertexFormat(t *testing.T) {
	tests := []struct {
		name string
		a    attribState
		out  program.Output
		want gputypes.VertexFormat
	}{
		{"float1", attribState{size: 1, typ: gl.Float}, program.OutputFloat, gputypes.VertexFormatFloat32},
		{"float3", attribState{size: 3, typ: gl.Float}, program.OutputFloat, gputypes.VertexFormatFloat32x3},
		{"half4", attribState{size: 4, typ: gl.HalfFloat}, program.OutputFloat, gputypes.VertexFormatFloat16x4},
		{"snorm8x2", attribState{size: 2, typ: gl.Byte, normalized: true}, program.OutputFloat, gputypes.VertexFormatSnorm8x2},
		{"unorm16x4", attribState{size: 4, typ: gl.UnsignedShort, normalized: true}, program.OutputFloat, gputypes.VertexFormatUnorm16x4},
		{"unorm1010102", attribState{size: 4, typ: gl.UnsignedInt2101010Rev, normalized: true}, program.OutputFloat, gputypes.VertexFormatUnorm1010102},
		{"sint8x4", attribState{size: 4, typ: gl.Byte, integer: true}, program.OutputInt, gputypes.VertexFormatSint8x4},
		{"sint32x3", attribState{size: 3, typ: gl.Int, integer: true}, program.OutputInt, gputypes.VertexFormatSint32x3},
		{"uint16x2", attribState{size: 2, typ: gl.UnsignedShort, integer: true}, program.OutputUint, gputypes.VertexFormatUint16x2},
		{"uint32", attribState{size: 1, typ: gl.UnsignedInt, integer: true}, program.OutputUint, gputypes.VertexFormatUint32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := vertexFormat(&tt.a, tt.out)
			if err != nil {
				t.Fatalf("vertexFormat: %v", err)
			}
			if got != tt.want {
				t.Errorf("vertexFormat = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVertexFormatUnsupported(t *testing.T) {
	tests := []struct {
		name string
		a    attribState
		out  program.Output
	}{
		{"scaled byte", attribState{size: 4, typ: gl.Byte}, program.OutputFloat},
		{"byte x3", attribState{size: 3, typ: gl.UnsignedByte, normalized: true}, program.OutputFloat},
		{"half x1", attribState{size: 1, typ: gl.HalfFloat}, program.OutputFloat},
		{"normalized int", attribState{size: 4, typ: gl.Int, normalized: true}, program.OutputFloat},
		{"signed packed", attribState{size: 4, typ: gl.Int2101010Rev, normalized: true}, program.OutputFloat},
		{"bgra", attribState{size: 4, typ: gl.UnsignedByte, normalized: true, bgra: true}, program.OutputFloat},
		{"sign mismatch", attribState{size: 4, typ: gl.UnsignedByte, integer: true}, program.OutputInt},
		{"integer to float", attribState{size: 4, typ: gl.Int, integer: true}, program.OutputFloat},
		{"float to int", attribState{size: 4, typ: gl.Float}, program.OutputInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := vertexFormat(&tt.a, tt.out)
			if !errors.Is(err, gl.ErrUnsupported) {
				t.Errorf("vertexFormat err = %v, want ErrUnsupported", err)
			}
		})
	}
}

func TestExpand(t *testing.T) {
	loop := expand(gl.LineLoop, []uint32{4, 5, 6})
	wantLoop := []uint32{4, 5, 5, 6, 6, 4}
	if !equalU32(loop, wantLoop) {
		t.Errorf("line loop = %v, want %v", loop, wantLoop)
	}
	fan := expand(gl.TriangleFan, []uint32{0, 1, 2, 3})
	wantFan := []uint32{0, 1, 2, 0, 2, 3}
	if !equalU32(fan, wantFan) {
		t.Errorf("fan = %v, want %v", fan, wantFan)
	}
	if got := expand(gl.TriangleFan, []uint32{0, 1}); got != nil {
		t.Errorf("degenerate fan = %v, want nil", got)
	}
}

func equalU32(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDrawArraysOnNoopDevice(t *testing.T) {
	c := newNoopContext(t, 8, 8)
	setupPosition(t, c, floatBytes(0, 0, 0, 1, 0.5, 0.5, 0, 1, -0.5, 0.5, 0, 1), 4, gl.Float, 16, 0)
	if err := c.Uniform1f(program.UniformCoordScale, 1); err != nil {
		t.Fatal(err)
	}
	if err := c.Clear(0, 0, 0, 1); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	for _, mode := range []gl.Primitive{gl.Points, gl.Triangles, gl.LineLoop, gl.TriangleFan, gl.TriangleStrip} {
		if err := c.DrawArrays(mode, 0, 3); err != nil {
			t.Errorf("DrawArrays(%v): %v", mode, err)
		}
	}
	img, err := c.ReadPixels()
	if err != nil {
		t.Fatalf("ReadPixels: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 8 {
		t.Errorf("ReadPixels bounds = %v, want 8x8", b)
	}
}

func TestDrawErrors(t *testing.T) {
	c := newNoopContext(t, 4, 4)
	setupPosition(t, c, floatBytes(0, 0, 0, 1), 4, gl.Float, 0, 0)

	if err := c.DrawArrays(gl.Points, 0, 2); !errors.Is(err, gl.ErrOutOfBounds) {
		t.Errorf("fetch past end: err = %v, want ErrOutOfBounds", err)
	}

	c.VertexAttribDivisor(0, 2)
	if err := c.DrawArraysInstanced(gl.Points, 0, 1, 4); !errors.Is(err, gl.ErrUnsupported) {
		t.Errorf("divisor 2: err = %v, want ErrUnsupported", err)
	}
	c.VertexAttribDivisor(0, 0)

	c.UseProgram(0)
	if err := c.DrawArrays(gl.Points, 0, 1); !errors.Is(err, gl.ErrInvalidOperation) {
		t.Errorf("no program: err = %v, want ErrInvalidOperation", err)
	}
}

func TestUnalignedOffsetUnsupported(t *testing.T) {
	c := newNoopContext(t, 4, 4)
	setupPosition(t, c, make([]byte, 64), 4, gl.Float, 16, 2)
	err := c.DrawArrays(gl.Points, 0, 1)
	if !errors.Is(err, gl.ErrUnsupported) {
		t.Errorf("offset 2 float4: err = %v, want ErrUnsupported", err)
	}
}

func TestDrawRangeElements(t *testing.T) {
	c := newNoopContext(t, 4, 4)
	setupPosition(t, c, floatBytes(0, 0, 0, 1, 0.5, 0.5, 0, 1), 4, gl.Float, 0, 0)

	ib, err := c.CreateBuffer()
	if err != nil {
		t.Fatal(err)
	}
	c.BindBuffer(gl.ElementArrayBuffer, ib)
	if err := c.BufferData(gl.ElementArrayBuffer, []byte{0, 1, 1}, gl.StaticDraw); err != nil {
		t.Fatal(err)
	}
	if err := c.DrawRangeElements(gl.Points, 0, 1, 3, gl.UnsignedByte, gl.BufferOffset(0)); err != nil {
		t.Errorf("in range: %v", err)
	}
	if err := c.DrawRangeElements(gl.Points, 1, 1, 3, gl.UnsignedByte, gl.BufferOffset(0)); !errors.Is(err, gl.ErrInvalidOperation) {
		t.Errorf("out of range: err = %v, want ErrInvalidOperation", err)
	}
	if err := c.DrawElements(gl.Points, 4, gl.UnsignedByte, gl.BufferOffset(0)); !errors.Is(err, gl.ErrOutOfBounds) {
		t.Errorf("index past end: err = %v, want ErrOutOfBounds", err)
	}
}

func TestConstantAttributeKindMismatch(t *testing.T) {
	c := newNoopContext(t, 4, 4)
	setupPosition(t, c, floatBytes(0, 0, 0, 1), 4, gl.Float, 0, 0)
	p, err := program.Build([]program.Attribute{
		{Output: program.OutputFloat, Position: true},
		{Output: program.OutputInt},
	})
	if err != nil {
		t.Fatal(err)
	}
	prog, err := c.CreateProgram(p)
	if err != nil {
		t.Fatal(err)
	}
	c.UseProgram(prog)

	if err := c.DrawArrays(gl.Points, 0, 1); !errors.Is(err, gl.ErrUnsupported) {
		t.Errorf("float constant for ivec4: err = %v, want ErrUnsupported", err)
	}
	c.VertexAttribI4i(1, [4]int32{1, 2, 3, 4})
	if err := c.DrawArrays(gl.Points, 0, 1); err != nil {
		t.Errorf("int constant: %v", err)
	}
}

func TestBufferSubDataWritesThrough(t *testing.T) {
	c := newNoopContext(t, 4, 4)
	b, err := c.CreateBuffer()
	if err != nil {
		t.Fatal(err)
	}
	c.BindBuffer(gl.ArrayBuffer, b)
	if err := c.BufferData(gl.ArrayBuffer, make([]byte, 10), gl.DynamicDraw); err != nil {
		t.Fatal(err)
	}
	if err := c.BufferSubData(gl.ArrayBuffer, 5, []byte{7, 8, 9}); err != nil {
		t.Fatal(err)
	}
	if err := c.BufferSubData(gl.ArrayBuffer, 9, []byte{1, 2}); !errors.Is(err, gl.ErrOutOfBounds) {
		t.Errorf("past end: err = %v, want ErrOutOfBounds", err)
	}

	bs := c.buffers[b]
	want := []byte{0, 0, 0, 0, 0, 7, 8, 9, 0, 0}
	if string(bs.shadow) != string(want) {
		t.Errorf("shadow = %v, want %v", bs.shadow, want)
	}
	m, err := c.device.MapBuffer(bs.buf, 0, 12)
	if err != nil {
		t.Fatalf("MapBuffer: %v", err)
	}
	got := unsafe.Slice((*byte)(m.Ptr), 12)
	if string(got[:10]) != string(want) {
		t.Errorf("device buffer = %v, want %v", got[:10], want)
	}
}

func TestReleasedContext(t *testing.T) {
	c, err := Open(gputypes.BackendEmpty, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	c.Release()
	if _, err := c.ReadPixels(); !errors.Is(err, ErrReleased) {
		t.Errorf("ReadPixels after Release: err = %v, want ErrReleased", err)
	}
	c.Release()
}

type fakeProvider struct {
	device hal.Device
	queue  hal.Queue
}

func (p fakeProvider) Device() gpucontext.Device { return p.device }
func (p fakeProvider) Queue() gpucontext.Queue { return p.queue }
func (p fakeProvider) SurfaceFormat() gputypes.TextureFormat { return targetFormat }
func (p fakeProvider) Adapter() gpucontext.Adapter { return nil }
func (p fakeProvider) AdapterInfo() gpucontext.AdapterInfo { return gpucontext.AdapterInfo{Name: "fake"} }

func TestNewFromProvider(t *testing.T) {
	owner := newNoopContext(t, 2, 2)
	c, err := NewFromProvider(fakeProvider{device: owner.device, queue: owner.queue}, 4, 4)
	if err != nil {
		t.Fatalf("NewFromProvider: %v", err)
	}
	defer c.Release()
	if c.Width() != 4 || c.Height() != 4 {
		t.Errorf("size = %dx%d, want 4x4", c.Width(), c.Height())
	}

	_, err = NewFromProvider(fakeProvider{}, 4, 4)
	if !errors.Is(err, ErrProviderNotHAL) {
		t.Errorf("empty provider: err = %v, want ErrProviderNotHAL", err)
	}
}

func TestOpenUnregisteredBackend(t *testing.T) {
	_, err := Open(gputypes.BackendMetal, 2, 2)
	if err == nil {
		t.Skip("metal backend registered in this binary")
	}
	if !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("err = %v, want ErrBackendNotAvailable", err)
	}
}
