package drawtest

import "github.com/gogpu/drawtest/compare"

// Option configures a Verifier.
//
// Example:
//
//	v := drawtest.NewVerifier(
//	    drawtest.WithSeed(42),
//	    drawtest.WithTolerance(2),
//	    drawtest.WithDiffDir("failures"),
//	)
type Option func(*options)

type options struct {
	seed      uint64
	tolerance compare.Tolerance
	diffDir   string
	diffScale int
}

// DefaultSeed is the base seed used when WithSeed is not given.
const DefaultSeed = 0xdeadbeef

func defaultOptions() options {
	return options{
		seed:      DefaultSeed,
		tolerance: compare.Uniform(0),
		diffScale: 4,
	}
}

// WithSeed sets the base seed. Each case derives its data seed from the
// base seed and the hash of its spec, so a fixed base seed reproduces
// every run byte for byte.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithTolerance sets the same per-channel tolerance on R, G, B and A.
func WithTolerance(v uint8) Option {
	return func(o *options) {
		o.tolerance.Channel = [4]uint8{v, v, v, v}
	}
}

// WithChannelTolerance sets separate R, G, B and A tolerances.
func WithChannelTolerance(c [4]uint8) Option {
	return func(o *options) {
		o.tolerance.Channel = c
	}
}

// WithMaxErrorPixels allows n pixels above tolerance before a case fails.
func WithMaxErrorPixels(n int) Option {
	return func(o *options) {
		o.tolerance.MaxErrorPixels = max(n, 0)
	}
}

// WithDiffDir writes reference, result and diff images of failing cases
// to dir. An empty dir disables writing.
//
// Example:
//
//	v := drawtest.NewVerifier(drawtest.WithDiffDir(t.TempDir()))
func WithDiffDir(dir string) Option {
	return func(o *options) {
		o.diffDir = dir
	}
}

// WithDiffScale sets the magnification of written diff images.
func WithDiffScale(scale int) Option {
	return func(o *options) {
		o.diffScale = max(scale, 1)
	}
}
