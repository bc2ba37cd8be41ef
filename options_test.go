package drawtest

import (
	"testing"

	"github.com/gogpu/drawtest/compare"
)

func TestDefaultOptions(t *testing.T) {
	o := NewVerifier().opts
	if o.seed != DefaultSeed {
		t.Errorf("seed = %#x, want %#x", o.seed, uint64(DefaultSeed))
	}
	if o.tolerance != compare.Uniform(0) {
		t.Errorf("tolerance = %v, want exact", o.tolerance)
	}
	if o.diffDir != "" || o.diffScale != 4 {
		t.Errorf("diff options = %q x%d", o.diffDir, o.diffScale)
	}
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name  string
		opts  []Option
		check func(options) bool
	}{
		{"seed", []Option{WithSeed(7)}, func(o options) bool { return o.seed == 7 }},
		{"tolerance", []Option{WithTolerance(3)}, func(o options) bool {
			return o.tolerance.Channel == [4]uint8{3, 3, 3, 3}
		}},
		{"channel tolerance", []Option{WithTolerance(9), WithChannelTolerance([4]uint8{1, 2, 3, 4})}, func(o options) bool {
			return o.tolerance.Channel == [4]uint8{1, 2, 3, 4}
		}},
		{"max error pixels", []Option{WithMaxErrorPixels(5)}, func(o options) bool { return o.tolerance.MaxErrorPixels == 5 }},
		{"negative max error pixels", []Option{WithMaxErrorPixels(-2)}, func(o options) bool { return o.tolerance.MaxErrorPixels == 0 }},
		{"diff dir", []Option{WithDiffDir("out")}, func(o options) bool { return o.diffDir == "out" }},
		{"diff scale floor", []Option{WithDiffScale(0)}, func(o options) bool { return o.diffScale == 1 }},
		{"last wins", []Option{WithSeed(1), WithSeed(2)}, func(o options) bool { return o.seed == 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if o := NewVerifier(tt.opts...).opts; !tt.check(o) {
				t.Errorf("options = %+v", o)
			}
		})
	}
}
