package reference

import (
	"fmt"

	"github.com/gogpu/drawtest/gl"
	"golang.org/x/image/math/f32"
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
	if !validMode(d.mode) {
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

	elements := make([]uint32, d.count)
	for i := range elements {
		if !d.indexed {
			elements[i] = uint32(d.first + i)
			continue
		}
		idx, err := c.fetchIndex(d.indexType, d.indices, i)
		if err != nil {
			return err
		}
		if d.ranged && (idx < d.start || idx > d.end) {
			return fmt.Errorf("%w: index %d outside range [%d,%d]", gl.ErrInvalidOperation, idx, d.start, d.end)
		}
		elements[i] = idx
	}

	attribs := ps.prog.Attributes()
	for loc := range attribs {
		a := &c.attribs[loc]
		if a.enabled && !a.configured {
			return fmt.Errorf("%w: attribute %d enabled without a pointer", gl.ErrInvalidOperation, loc)
		}
	}

	in := make([]f32.Vec4, len(attribs))
	verts := make([]vertex, len(elements))
	for inst := 0; inst < d.instances; inst++ {
		for i, e := range elements {
			for loc := range attribs {
				a := &c.attribs[loc]
				if !a.enabled {
					in[loc] = a.current
					continue
				}
				index := int(e)
				if a.divisor != 0 {
					index = inst / int(a.divisor)
				}
				v, err := c.fetch(a, index)
				if err != nil {
					return fmt.Errorf("attribute %d: %w", loc, err)
				}
				in[loc] = v
			}
			pos, col := ps.prog.ShadeVertex(in, ps.uniforms)
			verts[i] = c.toWindow(pos, col)
		}
		c.assemble(d.mode, verts)
	}

	slogger().Debug("reference draw",
		"mode", d.mode, "count", d.count, "instances", d.instances, "indexed", d.indexed)
	return nil
}

func validMode(m gl.Primitive) bool {
	switch m {
	case gl.Points, gl.Lines, gl.LineLoop, gl.LineStrip, gl.Triangles, gl.TriangleStrip, gl.TriangleFan:
		return true
	}
	return false
}

// toWindow applies the perspective divide and the full-target viewport.
// Window y grows upward.
func (c *Context) toWindow(pos, col f32.Vec4) vertex {
	w := pos[3]
	return vertex{
		x:     float64((pos[0]/w + 1) * float32(c.width) / 2),
		y:     float64((pos[1]/w + 1) * float32(c.height) / 2),
		color: col,
	}
}

// assemble splits verts into primitives and rasterizes them in order.
func (c *Context) assemble(mode gl.Primitive, verts []vertex) {
	n := len(verts)
	switch mode {
	case gl.Points:
		for _, v := range verts {
			c.point(v)
		}
	case gl.Lines:
		for i := 0; i+1 < n; i += 2 {
			c.line(verts[i], verts[i+1])
		}
	case gl.LineStrip, gl.LineLoop:
		for i := 1; i < n; i++ {
			c.line(verts[i-1], verts[i])
		}
		if mode == gl.LineLoop && n > 1 {
			c.line(verts[n-1], verts[0])
		}
	case gl.Triangles:
		for i := 0; i+2 < n; i += 3 {
			c.triangle(verts[i], verts[i+1], verts[i+2])
		}
	case gl.TriangleStrip:
		for i := 0; i+2 < n; i++ {
			if i%2 == 0 {
				c.triangle(verts[i], verts[i+1], verts[i+2])
			} else {
				c.triangle(verts[i+1], verts[i], verts[i+2])
			}
		}
	case gl.TriangleFan:
		for i := 1; i+1 < n; i++ {
			c.triangle(verts[0], verts[i], verts[i+1])
		}
	}
}
