package drawtest

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/drawtest/compare"
	"github.com/gogpu/drawtest/gl"
)

// maxGeneratedElements bounds the vertex data generated for one attribute.
const maxGeneratedElements = 1 << 20

// Verdict is the outcome of one case.
type Verdict uint8

const (
	// VerdictPass means both contexts rendered compatible surfaces.
	VerdictPass Verdict = iota
	// VerdictFail means the surfaces differ beyond tolerance.
	VerdictFail
	// VerdictNotSupported means a context cannot express the case.
	VerdictNotSupported
	// VerdictError means a context failed to execute the case.
	VerdictError
)

func (v Verdict) String() string {
	switch v {
	case VerdictPass:
		return "pass"
	case VerdictFail:
		return "fail"
	case VerdictNotSupported:
		return "not_supported"
	case VerdictError:
		return "error"
	}
	return fmt.Sprintf("Verdict(%d)", uint8(v))
}

// Outcome is the result of verifying one spec.
type Outcome struct {
	Verdict Verdict
	Message string

	// Compare holds the comparison when both contexts rendered.
	Compare compare.Result

	// DiffPath is the written comparison sheet of a failing case, if any.
	DiffPath string
}

// Verifier renders specs on a reference and a result context and
// compares the surfaces.
type Verifier struct {
	opts options
}

// NewVerifier returns a Verifier configured by opts.
func NewVerifier(opts ...Option) *Verifier {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Verifier{opts: o}
}

// Seed returns the data seed used for spec.
func (v *Verifier) Seed(spec *DrawTestSpec) uint64 {
	return v.opts.seed ^ spec.Hash()
}

// Verify renders spec on ref and res with identical data and compares
// the results. name labels written diff images. Verify never panics on
// backend failures; they become the Error verdict.
func (v *Verifier) Verify(name string, spec *DrawTestSpec, ref, res gl.Context) Outcome {
	if !spec.Valid() {
		return Outcome{Verdict: VerdictError, Message: ErrInvalidSpec.Error()}
	}
	seed := v.Seed(spec)

	refImg, err := Render(ref, spec, seed)
	if err != nil {
		return failure("reference", err)
	}
	resImg, err := Render(res, spec, seed)
	if err != nil {
		return failure("result", err)
	}

	r, err := compare.Threshold(refImg, resImg, v.opts.tolerance)
	if err != nil {
		return Outcome{Verdict: VerdictError, Message: err.Error()}
	}
	out := Outcome{Verdict: VerdictPass, Message: r.String(), Compare: r}
	if r.Pass {
		return out
	}

	out.Verdict = VerdictFail
	if v.opts.diffDir != "" {
		path, err := compare.SaveDiff(v.opts.diffDir, name, refImg, resImg, r.DiffImage, v.opts.diffScale)
		if err != nil {
			Logger().Warn("drawtest: write diff images", "case", name, "err", err)
		} else {
			out.DiffPath = path
		}
	}
	return out
}

func failure(side string, err error) Outcome {
	msg := fmt.Sprintf("%s: %v", side, err)
	if errors.Is(err, gl.ErrUnsupported) {
		return Outcome{Verdict: VerdictNotSupported, Message: msg}
	}
	return Outcome{Verdict: VerdictError, Message: msg}
}

// indexRange returns the bounds of generated indices. Strips avoid the
// largest index of the type, which GPU APIs treat as a restart marker.
func (s *DrawTestSpec) indexRange() (lo, hi uint32) {
	if s.DrawMethod.IsRanged() {
		lo, hi = s.IndexMin, s.IndexMax
	} else if vc := s.VertexCount(); vc > 0 {
		hi = uint32(min(uint64(vc-1), uint64(s.IndexType.Max())))
	}
	if s.Primitive.IsStrip() && hi == s.IndexType.Max() && hi > lo {
		hi--
	}
	return lo, hi
}

// instances returns the number of instances the method draws.
func (s *DrawTestSpec) instances() int {
	if s.DrawMethod.IsInstanced() {
		return s.InstanceCount
	}
	return 1
}

// elementCount returns the number of elements to generate for a.
func (s *DrawTestSpec) elementCount(a AttributeSpec) int {
	if a.InstanceDivisor > 0 {
		return max(1, (s.instances()+a.InstanceDivisor-1)/a.InstanceDivisor)
	}
	if s.DrawMethod.IsIndexed() {
		_, hi := s.indexRange()
		return int(hi) + 1
	}
	return max(1, s.First+s.VertexCount())
}

// Render draws spec on ctx with data generated from seed and returns the
// surface. Every object it creates is released before it returns.
func Render(ctx gl.Context, spec *DrawTestSpec, seed uint64) (*image.RGBA, error) {
	pack := NewAttributePack(ctx)
	defer pack.Release()

	for i := range spec.Attribs {
		if err := setupAttribute(pack, spec, i, seed+uint64(i)); err != nil {
			return nil, err
		}
	}

	rp := RenderParams{
		Method:        spec.DrawMethod,
		Primitive:     spec.Primitive,
		First:         spec.First,
		Count:         spec.VertexCount(),
		InstanceCount: spec.InstanceCount,
		CoordScale:    CoordScale(spec),
		ColorScale:    ColorScale(spec),
	}
	if spec.DrawMethod.IsIndexed() {
		idx, err := pack.NewIndexArray(spec.IndexStorage)
		if err != nil {
			return nil, err
		}
		defer idx.Release()

		lo, hi := spec.indexRange()
		data := GenerateIndices(seed+uint64(len(spec.Attribs)), rp.Count, spec.IndexType, spec.IndexPointerOffset, lo, hi)
		if spec.IndexStorage == StorageBuffer {
			if err := idx.Data(gl.ElementArrayBuffer, data, gl.StaticDraw); err != nil {
				return nil, fmt.Errorf("drawtest: upload indices: %w", err)
			}
		} else {
			idx.SetUserData(data)
		}
		rp.Indices = idx
		rp.IndexType = spec.IndexType
		rp.IndexOffset = spec.IndexPointerOffset
		rp.RangeStart, rp.RangeEnd = spec.IndexMin, spec.IndexMax
	}

	if err := pack.Clear(); err != nil {
		return nil, err
	}
	if err := pack.Render(rp); err != nil {
		return nil, err
	}
	return pack.ReadSurface()
}

func setupAttribute(pack *AttributePack, spec *DrawTestSpec, i int, seed uint64) error {
	a := spec.Attribs[i]
	isPos := spec.isPosition(i)
	setup := ArraySetup{
		Bound:           !a.UseDefaultAttribute,
		Offset:          a.Offset,
		ComponentCount:  a.ComponentCount,
		InputType:       a.InputType,
		OutputType:      a.OutputType,
		Normalize:       a.Normalize,
		Stride:          a.Stride,
		InstanceDivisor: a.InstanceDivisor,
		IsPosition:      isPos,
		BGRA:            a.BGRAComponentOrder,
	}

	if a.UseDefaultAttribute {
		arr, err := pack.NewArray(StorageUser)
		if err != nil {
			return err
		}
		setup.Default = GenerateAttributeValue(seed, a, isPos)
		arr.SetupArray(setup)
		return nil
	}

	n := spec.elementCount(a)
	if n > maxGeneratedElements {
		return fmt.Errorf("drawtest: attribute %d needs %d elements, limit is %d", i, n, maxGeneratedElements)
	}
	arr, err := pack.NewArray(a.Storage)
	if err != nil {
		return err
	}
	data := GenerateArray(seed, n, a, isPos)
	if a.Storage == StorageBuffer {
		if err := arr.Data(gl.ArrayBuffer, data, a.Usage.GL()); err != nil {
			return fmt.Errorf("drawtest: upload attribute %d: %w", i, err)
		}
	} else {
		arr.SetUserData(data)
	}
	arr.SetupArray(setup)
	Logger().Debug("drawtest: attribute data", "index", i, "elements", n, "bytes", len(data))
	return nil
}
