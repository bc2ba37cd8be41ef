package program

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/image/math/f32"
)

func TestBuild_Empty(t *testing.T) {
	if _, err := Build(nil); !errors.Is(err, ErrNoAttributes) {
		t.Errorf("Build(nil) error = %v, want ErrNoAttributes", err)
	}
}

func TestBuild_WGSL(t *testing.T) {
	attribs := []Attribute{
		{Output: OutputFloat, Position: true},
		{Output: OutputInt},
		{Output: OutputUint},
	}
	p, err := Build(attribs)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	src := p.WGSL()
	for _, want := range []string{
		"@location(0) a_0: vec4<f32>",
		"@location(1) a_1: vec4<i32>",
		"@location(2) a_2: vec4<u32>",
		"fn vs_main(",
		"fn fs_main(",
		"var<uniform> u: Uniforms",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("WGSL missing %q", want)
		}
	}
	if len(p.SPIRV()) == 0 {
		t.Error("SPIRV() is empty")
	}
	if p.SPIRV()[0] != 0x07230203 {
		t.Errorf("SPIR-V magic = %#x, want 0x07230203", p.SPIRV()[0])
	}
}

func TestBuild_Cached(t *testing.T) {
	attribs := []Attribute{{Output: OutputFloat, Position: true}, {Output: OutputFloat}}
	p, err := Build(attribs)
	if err != nil {
		t.Fatal(err)
	}
	attribs[1].Output = OutputFloat
	q, err := Build(append([]Attribute(nil), attribs...))
	if err != nil {
		t.Fatal(err)
	}
	if p != q {
		t.Error("second Build did not reuse the cached program")
	}
	r, err := Build([]Attribute{{Output: OutputFloat, Position: true}, {Output: OutputInt}})
	if err != nil {
		t.Fatal(err)
	}
	if r == p {
		t.Error("different configurations share a program")
	}
}

func TestKey(t *testing.T) {
	a := []Attribute{{Output: OutputFloat, Position: true}, {Output: OutputInt}}
	b := []Attribute{{Output: OutputFloat, Position: true}, {Output: OutputUint}}
	if Key(a) == Key(b) {
		t.Errorf("Key(%v) == Key(%v)", a, b)
	}
	if Key(a) != Key(append([]Attribute(nil), a...)) {
		t.Error("Key is not deterministic")
	}
	if got := Key(a); got != "vec4(pos),ivec4" {
		t.Errorf("Key = %q", got)
	}
}

func TestShadeVertex(t *testing.T) {
	p := &Program{attribs: []Attribute{
		{Output: OutputFloat, Position: true},
		{Output: OutputFloat, Position: true},
		{Output: OutputFloat},
	}}
	in := []f32.Vec4{
		{1, 2, 0, 1},
		{3, -4, 0, 1},
		{1, 0, -1, 1},
	}
	pos, color := p.ShadeVertex(in, Uniforms{CoordScale: 0.5, ColorScale: 1})
	if want := (f32.Vec4{2, -1, 0, 1}); pos != want {
		t.Errorf("position = %v, want %v", pos, want)
	}
	if want := (f32.Vec4{1, 0.5, 0, 1}); color != want {
		t.Errorf("color = %v, want %v", color, want)
	}
}

func TestShadeVertex_NoColorAttributes(t *testing.T) {
	p := &Program{attribs: []Attribute{{Output: OutputFloat, Position: true}}}
	_, color := p.ShadeVertex([]f32.Vec4{{0, 0, 0, 1}}, Uniforms{CoordScale: 1, ColorScale: 1})
	if want := (f32.Vec4{1, 1, 1, 1}); color != want {
		t.Errorf("color = %v, want white", color)
	}
}

func TestUniformOffset(t *testing.T) {
	if off, ok := UniformOffset(UniformCoordScale); !ok || off != 0 {
		t.Errorf("coord scale offset = %d, %v", off, ok)
	}
	if off, ok := UniformOffset(UniformColorScale); !ok || off != 4 {
		t.Errorf("color scale offset = %d, %v", off, ok)
	}
	if _, ok := UniformOffset("u_missing"); ok {
		t.Error("unknown uniform reported as present")
	}
}
