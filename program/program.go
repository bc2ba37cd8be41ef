// Package program builds the shader program used by every draw test.
//
// A Program is generated from the ordered attribute configuration of a
// draw. It carries WGSL source for GPU contexts, validated by compiling it
// to SPIR-V with naga, and an equivalent Go vertex function that software
// contexts evaluate directly.
//
// Both forms compute the same thing. The clip-space position is the sum of
// the xy components of all position attributes scaled by u_coordScale. The
// color is the product over all other attributes of
// 0.5 + 0.5*u_colorScale*a.xyz, with alpha 1.
package program

import (
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru"

	"github.com/gogpu/naga"
	"golang.org/x/image/math/f32"
)

// cacheSize bounds the number of compiled programs kept by Build.
const cacheSize = 64

// built caches compiled programs by Key. Programs are immutable, so a
// cached one is shared by every context that draws with it.
var built = mustCache(cacheSize)

func mustCache(n int) *lru.Cache {
	c, err := lru.New(n)
	if err != nil {
		panic(err)
	}
	return c
}

// Uniform names shared by all programs.
const (
	UniformCoordScale = "u_coordScale"
	UniformColorScale = "u_colorScale"
)

// UniformBlockSize is the byte size of the uniform block in WGSL.
const UniformBlockSize = 16

// ErrNoAttributes is returned by Build when the attribute list is empty.
var ErrNoAttributes = errors.New("program: no attributes")

// Output is the shader-side type of an attribute.
type Output uint8

// Attribute output types.
const (
	OutputFloat Output = iota
	OutputInt
	OutputUint
)

func (o Output) String() string {
	switch o {
	case OutputFloat:
		return "vec4"
	case OutputInt:
		return "ivec4"
	case OutputUint:
		return "uvec4"
	}
	return fmt.Sprintf("Output(%d)", uint8(o))
}

func (o Output) wgsl() string {
	switch o {
	case OutputInt:
		return "vec4<i32>"
	case OutputUint:
		return "vec4<u32>"
	}
	return "vec4<f32>"
}

// Attribute describes one program input a_N.
type Attribute struct {
	Output   Output
	Position bool
}

// Uniforms holds the values of the shared uniforms.
type Uniforms struct {
	CoordScale float32
	ColorScale float32
}

// Program is an immutable generated shader program.
type Program struct {
	attribs []Attribute
	key     string
	source  string
	spirv   []uint32
}

// Build generates and validates the program for attribs. Attribute i is
// exposed as a_i at location i. Recently built programs are returned from
// a cache.
func Build(attribs []Attribute) (*Program, error) {
	if len(attribs) == 0 {
		return nil, ErrNoAttributes
	}
	key := Key(attribs)
	if v, ok := built.Get(key); ok {
		return v.(*Program), nil
	}
	p := &Program{
		attribs: append([]Attribute(nil), attribs...),
		key:     key,
	}
	p.source = generateWGSL(p.attribs)

	words, err := compile(p.source)
	if err != nil {
		return nil, fmt.Errorf("program %s: %w", p.key, err)
	}
	p.spirv = words
	built.Add(key, p)
	return p, nil
}

// Key identifies an attribute configuration. Two configurations with the
// same key produce the same program.
func Key(attribs []Attribute) string {
	var sb strings.Builder
	for i, a := range attribs {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(a.Output.String())
		if a.Position {
			sb.WriteString("(pos)")
		}
	}
	return sb.String()
}

// Key returns the configuration key of p.
func (p *Program) Key() string { return p.key }

// Attributes returns the attribute list. The slice must not be modified.
func (p *Program) Attributes() []Attribute { return p.attribs }

// WGSL returns the generated WGSL source.
func (p *Program) WGSL() string { return p.source }

// SPIRV returns the compiled SPIR-V words.
func (p *Program) SPIRV() []uint32 { return p.spirv }

// UniformOffset returns the byte offset of a named uniform in the block.
func UniformOffset(name string) (int, bool) {
	switch name {
	case UniformCoordScale:
		return 0, true
	case UniformColorScale:
		return 4, true
	}
	return 0, false
}

// ShadeVertex evaluates the vertex stage. in[i] holds attribute a_i
// expanded to four components and converted to float.
func (p *Program) ShadeVertex(in []f32.Vec4, u Uniforms) (position, color f32.Vec4) {
	var cx, cy float32
	cr, cg, cb := float32(1), float32(1), float32(1)
	for i, a := range p.attribs {
		v := in[i]
		if a.Position {
			cx += v[0]
			cy += v[1]
			continue
		}
		cr *= 0.5 + 0.5*u.ColorScale*v[0]
		cg *= 0.5 + 0.5*u.ColorScale*v[1]
		cb *= 0.5 + 0.5*u.ColorScale*v[2]
	}
	position = f32.Vec4{cx * u.CoordScale, cy * u.CoordScale, 0, 1}
	color = f32.Vec4{cr, cg, cb, 1}
	return position, color
}

func compile(source string) ([]uint32, error) {
	code, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	if len(code)%4 != 0 {
		return nil, fmt.Errorf("compile shader: SPIR-V size %d not a multiple of 4", len(code))
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = uint32(code[i*4]) |
			uint32(code[i*4+1])<<8 |
			uint32(code[i*4+2])<<16 |
			uint32(code[i*4+3])<<24
	}
	return words, nil
}
