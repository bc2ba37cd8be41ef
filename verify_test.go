package drawtest

import (
	"errors"
	"image"
	"os"
	"strings"
	"testing"

	"github.com/gogpu/drawtest/compare"
	"github.com/gogpu/drawtest/gl"
	"github.com/gogpu/drawtest/glvalue"
	"github.com/gogpu/drawtest/reference"
)

func TestVerifyIdenticalContexts(t *testing.T) {
	s := pointsSpec()
	out := NewVerifier().Verify("points", &s, reference.New(32, 32), reference.New(32, 32))
	if out.Verdict != VerdictPass {
		t.Fatalf("verdict = %v (%s), want pass", out.Verdict, out.Message)
	}
	if out.Compare.ErrorPixels != 0 {
		t.Errorf("error pixels = %d, want 0", out.Compare.ErrorPixels)
	}
}

func TestVerifyInvalidSpec(t *testing.T) {
	s := pointsSpec()
	s.Attribs[0].ComponentCount = 5
	out := NewVerifier().Verify("bad", &s, reference.New(4, 4), reference.New(4, 4))
	if out.Verdict != VerdictError {
		t.Errorf("verdict = %v, want error", out.Verdict)
	}
}

func TestVerifyBackendFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Verdict
	}{
		{"unsupported", gl.Unsupported("draw", "points"), VerdictNotSupported},
		{"other", errors.New("device lost"), VerdictError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newSpy(16, 16)
			res.drawErr = tt.err
			s := pointsSpec()
			out := NewVerifier().Verify("points", &s, reference.New(16, 16), res)
			if out.Verdict != tt.want {
				t.Fatalf("verdict = %v, want %v", out.Verdict, tt.want)
			}
			if !strings.HasPrefix(out.Message, "result: ") {
				t.Errorf("message %q does not name the failing side", out.Message)
			}
			res.assertClean(t)
		})
	}
}

func TestVerifyFailWritesDiff(t *testing.T) {
	dir := t.TempDir()
	res := newSpy(16, 16)
	res.mutate = func(img *image.RGBA) { img.Pix[0] += 128 }

	s := pointsSpec()
	out := NewVerifier(WithDiffDir(dir), WithDiffScale(2)).Verify("points", &s, reference.New(16, 16), res)
	if out.Verdict != VerdictFail {
		t.Fatalf("verdict = %v, want fail", out.Verdict)
	}
	if out.Compare.ErrorPixels != 1 {
		t.Errorf("error pixels = %d, want 1", out.Compare.ErrorPixels)
	}
	if out.DiffPath == "" {
		t.Fatal("no diff written")
	}
	if _, err := os.Stat(out.DiffPath); err != nil {
		t.Error(err)
	}

	out = NewVerifier(WithMaxErrorPixels(1)).Verify("points", &s, reference.New(16, 16), res)
	if out.Verdict != VerdictPass {
		t.Errorf("one outlier allowed: verdict = %v, want pass", out.Verdict)
	}
}

func TestRenderDeterministic(t *testing.T) {
	s := pointsSpec()
	s.Attribs = append(s.Attribs, colorAttrib())
	a, err := Render(reference.New(16, 16), &s, 42)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Render(reference.New(16, 16), &s, 42)
	if err != nil {
		t.Fatal(err)
	}
	r, err := compare.Threshold(a, b, compare.Uniform(0))
	if err != nil {
		t.Fatal(err)
	}
	if !r.Pass {
		t.Errorf("same seed rendered differently: %v", r)
	}
}

func TestVerifierSeed(t *testing.T) {
	s := pointsSpec()
	a := NewVerifier().Seed(&s)
	if b := NewVerifier(WithSeed(DefaultSeed)).Seed(&s); a != b {
		t.Error("default seed differs from DefaultSeed")
	}
	if c := NewVerifier(WithSeed(1)).Seed(&s); a == c {
		t.Error("seed option ignored")
	}
}

// renderColor draws one point at the origin of a 1x1 surface with the
// given color array setup and data.
func renderColor(t *testing.T, color ArraySetup, data []byte) *image.RGBA {
	t.Helper()
	p := NewAttributePack(reference.New(1, 1))
	defer p.Release()

	pos, err := p.NewArray(StorageUser)
	if err != nil {
		t.Fatal(err)
	}
	pos.SetUserData(floatBytes(0, 0))
	pos.SetupArray(ArraySetup{Bound: true, ComponentCount: 2, InputType: InputFloat, OutputType: OutputVec2, IsPosition: true})

	col, err := p.NewArray(StorageUser)
	if err != nil {
		t.Fatal(err)
	}
	col.SetUserData(data)
	col.SetupArray(color)

	if err := p.Clear(); err != nil {
		t.Fatal(err)
	}
	if err := p.Render(RenderParams{Method: DrawArrays, Primitive: PrimitivePoints, Count: 1, CoordScale: 1, ColorScale: 1}); err != nil {
		t.Fatal(err)
	}
	img, err := p.ReadSurface()
	if err != nil {
		t.Fatal(err)
	}
	return img
}

// A packed color quantizes to 1/511 steps, so it can land one 8-bit
// step away from the float color it approximates.
func TestPackedQuantizationNeedsTolerance(t *testing.T) {
	const f = 0.75245
	c := int32(385) // round(f * 511)

	floatImg := renderColor(t,
		ArraySetup{Bound: true, ComponentCount: 4, InputType: InputFloat, OutputType: OutputVec4},
		floatBytes(f, f, f, 1))

	word := glvalue.PackInt2101010(c, c, c, 1)
	packedImg := renderColor(t,
		ArraySetup{Bound: true, ComponentCount: 4, InputType: InputInt2101010, OutputType: OutputVec4, Normalize: true},
		[]byte{byte(word), byte(word >> 8), byte(word >> 16), byte(word >> 24)})

	if a, b := floatImg.Pix[0], packedImg.Pix[0]; a != 223 || b != 224 {
		t.Fatalf("red = %d and %d, want 223 and 224", a, b)
	}

	r, err := compare.Threshold(floatImg, packedImg, compare.Uniform(0))
	if err != nil {
		t.Fatal(err)
	}
	if r.Pass {
		t.Error("exact comparison passed")
	}
	r, err = compare.Threshold(floatImg, packedImg, compare.Uniform(1))
	if err != nil {
		t.Fatal(err)
	}
	if !r.Pass {
		t.Errorf("tolerance 1: %v", r)
	}
}
