package reference

import (
	"encoding/binary"
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/gogpu/drawtest/gl"
	"github.com/gogpu/drawtest/glvalue"
	"github.com/gogpu/drawtest/program"
	"golang.org/x/image/math/f32"
)

func floatBytes(vals ...float32) []byte {
	out := make([]byte, 0, 4*len(vals))
	for _, v := range vals {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out
}

// newPositionContext returns a context with a current program made of a
// single float position attribute and unit uniforms.
func newPositionContext(t *testing.T, w, h int, extra ...program.Attribute) *Context {
	t.Helper()
	attribs := append([]program.Attribute{{Output: program.OutputFloat, Position: true}}, extra...)
	p, err := program.Build(attribs)
	if err != nil {
		t.Fatalf("program.Build: %v", err)
	}
	c := New(w, h)
	h2, err := c.CreateProgram(p)
	if err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}
	c.UseProgram(h2)
	if err := c.Uniform1f(program.UniformCoordScale, 1); err != nil {
		t.Fatal(err)
	}
	if err := c.Uniform1f(program.UniformColorScale, 1); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestClearAndReadPixels(t *testing.T) {
	c := New(4, 3)
	if err := c.Clear(1, 0, 0.5, 1); err != nil {
		t.Fatal(err)
	}
	img, err := c.ReadPixels()
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	want := color.RGBA{255, 0, 128, 255}
	if got := img.RGBAAt(2, 1); got != want {
		t.Errorf("pixel = %v, want %v", got, want)
	}
	// ReadPixels returns a copy.
	img.Pix[0] = 7
	again, _ := c.ReadPixels()
	if again.Pix[0] != 255 {
		t.Error("ReadPixels aliases the render target")
	}
}

func TestDrawArrays_Point(t *testing.T) {
	c := newPositionContext(t, 16, 16)
	buf, _ := c.CreateBuffer()
	c.BindBuffer(gl.ArrayBuffer, buf)
	if err := c.BufferData(gl.ArrayBuffer, floatBytes(0, 0, 0, 1), gl.StaticDraw); err != nil {
		t.Fatal(err)
	}
	c.VertexAttribPointer(0, 4, gl.Float, false, 0, gl.BufferOffset(0))
	c.EnableVertexAttribArray(0)
	_ = c.Clear(0, 0, 0, 1)
	if err := c.DrawArrays(gl.Points, 0, 1); err != nil {
		t.Fatalf("DrawArrays: %v", err)
	}
	img, _ := c.ReadPixels()
	// Window (8, 8) maps to image row 16-1-8.
	if got := img.RGBAAt(8, 7); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("point pixel = %v, want white", got)
	}
	lit := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			lit++
		}
	}
	if lit != 1 {
		t.Errorf("%d pixels lit, want 1", lit)
	}
}

func TestDrawArrays_FullScreenTrianglesCoverEveryPixelOnce(t *testing.T) {
	c := newPositionContext(t, 8, 8)
	verts := floatBytes(
		-1, -1, 1, -1, 1, 1,
		-1, -1, 1, 1, -1, 1,
	)
	c.VertexAttribPointer(0, 2, gl.Float, false, 0, gl.ClientMemory(verts))
	c.EnableVertexAttribArray(0)
	_ = c.Clear(0, 0, 0, 0)
	if err := c.DrawArrays(gl.Triangles, 0, 6); err != nil {
		t.Fatal(err)
	}
	img, _ := c.ReadPixels()
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if got := img.RGBAAt(x, y); got != (color.RGBA{255, 255, 255, 255}) {
				t.Fatalf("pixel (%d,%d) = %v, want white", x, y, got)
			}
		}
	}
}

func TestDrawArrays_LineStrip(t *testing.T) {
	c := newPositionContext(t, 8, 8)
	verts := floatBytes(-1, 0.125, 1, 0.125)
	c.VertexAttribPointer(0, 2, gl.Float, false, 8, gl.ClientMemory(verts))
	c.EnableVertexAttribArray(0)
	_ = c.Clear(0, 0, 0, 1)
	if err := c.DrawArrays(gl.LineStrip, 0, 2); err != nil {
		t.Fatal(err)
	}
	img, _ := c.ReadPixels()
	// y = 0.125 maps to window row 4.5, image row 3.
	for x := 0; x < 8; x++ {
		if img.RGBAAt(x, 3).R != 255 {
			t.Errorf("pixel (%d,3) not lit", x)
		}
	}
}

func TestDrawElements(t *testing.T) {
	c := newPositionContext(t, 4, 4)
	verts := floatBytes(-0.75, -0.75, 0.25, 0.25, 0.75, 0.75)
	vb, _ := c.CreateBuffer()
	c.BindBuffer(gl.ArrayBuffer, vb)
	_ = c.BufferData(gl.ArrayBuffer, verts, gl.StaticDraw)
	c.VertexAttribPointer(0, 2, gl.Float, false, 0, gl.BufferOffset(0))
	c.EnableVertexAttribArray(0)

	ib, _ := c.CreateBuffer()
	c.BindBuffer(gl.ElementArrayBuffer, ib)
	_ = c.BufferData(gl.ElementArrayBuffer, []byte{0xff, 2, 0}, gl.StaticDraw)
	_ = c.Clear(0, 0, 0, 1)
	if err := c.DrawElements(gl.Points, 2, gl.UnsignedByte, gl.BufferOffset(1)); err != nil {
		t.Fatal(err)
	}
	img, _ := c.ReadPixels()
	if img.RGBAAt(3, 0).R != 255 || img.RGBAAt(0, 3).R != 255 {
		t.Error("indexed points not drawn")
	}
	if img.RGBAAt(2, 1).R != 0 {
		t.Error("unreferenced vertex drawn")
	}

	err := c.DrawRangeElements(gl.Points, 0, 1, 2, gl.UnsignedByte, gl.BufferOffset(1))
	if !errors.Is(err, gl.ErrInvalidOperation) {
		t.Errorf("out-of-range index error = %v, want ErrInvalidOperation", err)
	}
	err = c.DrawElements(gl.Points, 1, gl.UnsignedByte, gl.BufferOffset(0))
	if !errors.Is(err, gl.ErrOutOfBounds) {
		t.Errorf("index 255 fetch error = %v, want ErrOutOfBounds", err)
	}
}

func TestDrawArraysInstanced_Divisor(t *testing.T) {
	c := newPositionContext(t, 4, 4, program.Attribute{Output: program.OutputFloat, Position: true})
	base := floatBytes(-0.75, -0.75)
	offsets := floatBytes(0, 0, 0.5, 0, 1, 0)
	c.VertexAttribPointer(0, 2, gl.Float, false, 0, gl.ClientMemory(base))
	c.EnableVertexAttribArray(0)
	c.VertexAttribPointer(1, 2, gl.Float, false, 0, gl.ClientMemory(offsets))
	c.EnableVertexAttribArray(1)
	c.VertexAttribDivisor(1, 1)
	_ = c.Clear(0, 0, 0, 1)
	if err := c.DrawArraysInstanced(gl.Points, 0, 1, 3); err != nil {
		t.Fatal(err)
	}
	img, _ := c.ReadPixels()
	for _, x := range []int{0, 1, 2} {
		if img.RGBAAt(x, 3).R != 255 {
			t.Errorf("instance at column %d not drawn", x)
		}
	}
	if err := c.DrawArraysInstanced(gl.Points, 0, 1, 4); !errors.Is(err, gl.ErrOutOfBounds) {
		t.Errorf("fourth instance error = %v, want ErrOutOfBounds", err)
	}
}

func TestConstantAttribute(t *testing.T) {
	c := newPositionContext(t, 2, 2, program.Attribute{Output: program.OutputFloat})
	c.VertexAttribPointer(0, 2, gl.Float, false, 0, gl.ClientMemory(floatBytes(-0.5, -0.5)))
	c.EnableVertexAttribArray(0)
	c.VertexAttrib4f(1, [4]float32{1, -1, 0, 1})
	_ = c.Clear(0, 0, 0, 1)
	if err := c.DrawArrays(gl.Points, 0, 1); err != nil {
		t.Fatal(err)
	}
	img, _ := c.ReadPixels()
	if got := img.RGBAAt(0, 1); got != (color.RGBA{255, 0, 128, 255}) {
		t.Errorf("pixel = %v, want {255 0 128 255}", got)
	}
}

func TestDrawErrors(t *testing.T) {
	c := New(2, 2)
	if err := c.DrawArrays(gl.Points, 0, 1); !errors.Is(err, gl.ErrInvalidOperation) {
		t.Errorf("draw without program = %v", err)
	}
	c = newPositionContext(t, 2, 2)
	c.EnableVertexAttribArray(0)
	if err := c.DrawArrays(gl.Points, 0, 1); !errors.Is(err, gl.ErrInvalidOperation) {
		t.Errorf("enabled array without pointer = %v", err)
	}
	c.VertexAttribPointer(0, 4, gl.Float, false, 0, gl.BufferOffset(0))
	if err := c.DrawArrays(gl.Points, 0, 1); !errors.Is(err, gl.ErrInvalidOperation) {
		t.Errorf("pointer without bound buffer = %v", err)
	}
	c.VertexAttribPointer(0, 4, gl.Float, false, 0, gl.ClientMemory(floatBytes(0, 0)))
	if err := c.DrawArrays(gl.Points, 0, 1); !errors.Is(err, gl.ErrOutOfBounds) {
		t.Errorf("short client array = %v", err)
	}
	if err := c.DrawArrays(gl.Primitive(42), 0, 1); !errors.Is(err, gl.ErrInvalidOperation) {
		t.Errorf("bad mode = %v", err)
	}
}

func TestDecodeElement(t *testing.T) {
	le16 := func(v uint16) []byte { return binary.LittleEndian.AppendUint16(nil, v) }
	le32 := func(v uint32) []byte { return binary.LittleEndian.AppendUint32(nil, v) }
	tests := []struct {
		name       string
		data       []byte
		typ        gl.Type
		size       int
		normalized bool
		bgra       bool
		want       f32.Vec4
	}{
		{"ubyte normalized", []byte{255, 0}, gl.UnsignedByte, 2, true, false, f32.Vec4{1, 0, 0, 1}},
		{"ubyte raw", []byte{200}, gl.UnsignedByte, 1, false, false, f32.Vec4{200, 0, 0, 1}},
		{"byte normalized clamps", []byte{0x80, 0x7f, 0x81}, gl.Byte, 3, true, false, f32.Vec4{-1, 1, -1, 1}},
		{"short normalized", append(le16(0x7fff), le16(0)...), gl.Short, 2, true, false, f32.Vec4{1, 0, 0, 1}},
		{"ushort raw", le16(65535), gl.UnsignedShort, 1, false, false, f32.Vec4{65535, 0, 0, 1}},
		{"int raw", le32(0xfffffffe), gl.Int, 1, false, false, f32.Vec4{-2, 0, 0, 1}},
		{"half", append(le16(0x3c00), le16(0xc000)...), gl.HalfFloat, 2, false, false, f32.Vec4{1, -2, 0, 1}},
		{"half subnormal flushes", le16(0x0001), gl.HalfFloat, 1, false, false, f32.Vec4{0, 0, 0, 1}},
		{"float", floatBytes(0.5, 0.25, -1), gl.Float, 3, false, false, f32.Vec4{0.5, 0.25, -1, 1}},
		{
			"packed unsigned normalized",
			le32(glvalue.PackUint2101010(1023, 0, 0, 3)),
			gl.UnsignedInt2101010Rev, 4, true, false,
			f32.Vec4{1, 0, 0, 1},
		},
		{
			"packed signed raw",
			le32(glvalue.PackInt2101010(-5, 7, 0, -1)),
			gl.Int2101010Rev, 4, false, false,
			f32.Vec4{-5, 7, 0, -1},
		},
		{
			"packed signed normalized w clamps",
			le32(glvalue.PackInt2101010(-512, 511, 0, -2)),
			gl.Int2101010Rev, 4, true, false,
			f32.Vec4{-1, 1, 0, -1},
		},
		{"bgra", []byte{255, 0, 0, 255}, gl.UnsignedByte, 4, true, true, f32.Vec4{0, 0, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeElement(tt.data, tt.typ, tt.size, tt.normalized, tt.bgra)
			if got != tt.want {
				t.Errorf("decodeElement = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBufferSubData(t *testing.T) {
	c := New(1, 1)
	b, _ := c.CreateBuffer()
	if err := c.BufferData(gl.ArrayBuffer, []byte{1}, gl.StaticDraw); !errors.Is(err, gl.ErrInvalidOperation) {
		t.Errorf("BufferData unbound = %v", err)
	}
	c.BindBuffer(gl.ArrayBuffer, b)
	_ = c.BufferData(gl.ArrayBuffer, make([]byte, 4), gl.StaticDraw)
	if err := c.BufferSubData(gl.ArrayBuffer, 2, []byte{9, 9}); err != nil {
		t.Fatal(err)
	}
	if err := c.BufferSubData(gl.ArrayBuffer, 3, []byte{9, 9}); !errors.Is(err, gl.ErrOutOfBounds) {
		t.Errorf("overflowing BufferSubData = %v", err)
	}
	if got := c.buffers[b]; got[2] != 9 || got[3] != 9 || got[1] != 0 {
		t.Errorf("buffer = %v", got)
	}
}
