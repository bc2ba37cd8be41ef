package drawtest

import (
	"encoding/binary"
	"image"
	"math"
	"testing"

	"github.com/gogpu/drawtest/gl"
	"github.com/gogpu/drawtest/program"
	"github.com/gogpu/drawtest/reference"
)

// spyContext wraps the reference context, recording state changes and
// optionally failing draws or altering readback.
type spyContext struct {
	*reference.Context

	enabled  map[uint32]bool
	divisors map[uint32]uint32
	bound    map[gl.Target]gl.Buffer
	current  gl.Program

	programsCreated int
	programsDeleted int
	draws           int

	drawErr error
	mutate  func(*image.RGBA)
}

func newSpy(w, h int) *spyContext {
	return &spyContext{
		Context:  reference.New(w, h),
		enabled:  make(map[uint32]bool),
		divisors: make(map[uint32]uint32),
		bound:    make(map[gl.Target]gl.Buffer),
	}
}

func (s *spyContext) EnableVertexAttribArray(loc uint32) {
	s.enabled[loc] = true
	s.Context.EnableVertexAttribArray(loc)
}

func (s *spyContext) DisableVertexAttribArray(loc uint32) {
	delete(s.enabled, loc)
	s.Context.DisableVertexAttribArray(loc)
}

func (s *spyContext) VertexAttribDivisor(loc, d uint32) {
	if d == 0 {
		delete(s.divisors, loc)
	} else {
		s.divisors[loc] = d
	}
	s.Context.VertexAttribDivisor(loc, d)
}

func (s *spyContext) BindBuffer(t gl.Target, b gl.Buffer) {
	if b == 0 {
		delete(s.bound, t)
	} else {
		s.bound[t] = b
	}
	s.Context.BindBuffer(t, b)
}

func (s *spyContext) UseProgram(p gl.Program) {
	s.current = p
	s.Context.UseProgram(p)
}

func (s *spyContext) CreateProgram(p *program.Program) (gl.Program, error) {
	s.programsCreated++
	return s.Context.CreateProgram(p)
}

func (s *spyContext) DeleteProgram(p gl.Program) {
	s.programsDeleted++
	s.Context.DeleteProgram(p)
}

func (s *spyContext) DrawArrays(mode gl.Primitive, first, count int) error {
	s.draws++
	if s.drawErr != nil {
		return s.drawErr
	}
	return s.Context.DrawArrays(mode, first, count)
}

func (s *spyContext) DrawElements(mode gl.Primitive, count int, typ gl.Type, indices gl.Pointer) error {
	s.draws++
	if s.drawErr != nil {
		return s.drawErr
	}
	return s.Context.DrawElements(mode, count, typ, indices)
}

func (s *spyContext) ReadPixels() (*image.RGBA, error) {
	img, err := s.Context.ReadPixels()
	if err == nil && s.mutate != nil {
		s.mutate(img)
	}
	return img, err
}

// assertClean fails the test if any attribute array, divisor, buffer
// binding or program is still set.
func (s *spyContext) assertClean(t *testing.T) {
	t.Helper()
	if len(s.enabled) != 0 {
		t.Errorf("arrays still enabled: %v", s.enabled)
	}
	if len(s.divisors) != 0 {
		t.Errorf("divisors still set: %v", s.divisors)
	}
	if len(s.bound) != 0 {
		t.Errorf("buffers still bound: %v", s.bound)
	}
	if s.current != 0 {
		t.Errorf("program %d still in use", s.current)
	}
}

func floatBytes(vals ...float32) []byte {
	out := make([]byte, 0, 4*len(vals))
	for _, v := range vals {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out
}

// pointsSpec is three FLOAT vec4 points at offset 0, stride 16.
func pointsSpec() DrawTestSpec {
	return DrawTestSpec{
		Primitive:      PrimitivePoints,
		PrimitiveCount: 3,
		DrawMethod:     DrawArrays,
		Attribs: []AttributeSpec{{
			InputType:      InputFloat,
			OutputType:     OutputVec4,
			Storage:        StorageBuffer,
			Usage:          UsageStaticDraw,
			ComponentCount: 4,
			Stride:         16,
		}},
	}
}
