// Package compare checks two rendered surfaces against a per-channel
// tolerance and produces diff images for failing cases.
package compare

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrSizeMismatch is returned when the surfaces being compared differ in
// size.
var ErrSizeMismatch = errors.New("compare: surface sizes differ")

// Tolerance is the largest absolute per-channel difference, in 8-bit
// steps, that still counts as a match.
type Tolerance struct {
	// Channel holds the R, G, B and A thresholds.
	Channel [4]uint8

	// MaxErrorPixels is the number of pixels allowed to exceed Channel
	// before the comparison fails.
	MaxErrorPixels int
}

// Uniform returns a tolerance of v on every channel with no outliers
// allowed.
func Uniform(v uint8) Tolerance {
	return Tolerance{Channel: [4]uint8{v, v, v, v}}
}

func (t Tolerance) String() string {
	c := t.Channel
	return fmt.Sprintf("rgba(%d,%d,%d,%d)+%dpx", c[0], c[1], c[2], c[3], t.MaxErrorPixels)
}

// Result is the outcome of one comparison.
type Result struct {
	Pass bool

	// ErrorPixels counts pixels with any channel above tolerance.
	ErrorPixels int

	// MaxDiff is the largest difference seen on each channel.
	MaxDiff [4]uint8

	// DiffImage shows the result in grayscale with error pixels in red.
	DiffImage *image.RGBA
}

func (r Result) String() string {
	verdict := "pass"
	if !r.Pass {
		verdict = "fail"
	}
	d := r.MaxDiff
	return fmt.Sprintf("%s: %d error pixels, max diff rgba(%d,%d,%d,%d)", verdict, r.ErrorPixels, d[0], d[1], d[2], d[3])
}

var errorColor = color.RGBA{R: 255, A: 255}

// Threshold compares res against ref channel by channel.
func Threshold(ref, res *image.RGBA, tol Tolerance) (Result, error) {
	rb, sb := ref.Bounds(), res.Bounds()
	if rb.Dx() != sb.Dx() || rb.Dy() != sb.Dy() {
		return Result{}, fmt.Errorf("%w: reference %dx%d, result %dx%d", ErrSizeMismatch, rb.Dx(), rb.Dy(), sb.Dx(), sb.Dy())
	}

	out := Result{DiffImage: image.NewRGBA(image.Rect(0, 0, rb.Dx(), rb.Dy()))}
	for y := 0; y < rb.Dy(); y++ {
		for x := 0; x < rb.Dx(); x++ {
			a := ref.RGBAAt(rb.Min.X+x, rb.Min.Y+y)
			b := res.RGBAAt(sb.Min.X+x, sb.Min.Y+y)
			diff := [4]uint8{absDiff(a.R, b.R), absDiff(a.G, b.G), absDiff(a.B, b.B), absDiff(a.A, b.A)}
			bad := false
			for i, d := range diff {
				out.MaxDiff[i] = max(out.MaxDiff[i], d)
				if d > tol.Channel[i] {
					bad = true
				}
			}
			if bad {
				out.ErrorPixels++
				out.DiffImage.SetRGBA(x, y, errorColor)
				continue
			}
			gray := uint8((uint32(b.R) + uint32(b.G) + uint32(b.B)) / 3)
			out.DiffImage.SetRGBA(x, y, color.RGBA{R: gray, G: gray, B: gray, A: 255})
		}
	}
	out.Pass = out.ErrorPixels <= tol.MaxErrorPixels
	return out, nil
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
