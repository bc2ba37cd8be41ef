package reference

import (
	"math"

	"golang.org/x/image/math/f32"
)

// vertex is a shaded vertex in window coordinates.
type vertex struct {
	x, y  float64
	color f32.Vec4
}

func (v vertex) finite() bool {
	return !math.IsNaN(v.x) && !math.IsNaN(v.y) && !math.IsInf(v.x, 0) && !math.IsInf(v.y, 0)
}

// setPixel writes col at window pixel (px, py), flipping to image rows.
func (c *Context) setPixel(px, py int, col f32.Vec4) {
	if px < 0 || py < 0 || px >= c.width || py >= c.height {
		return
	}
	i := c.target.PixOffset(px, c.height-1-py)
	p := c.target.Pix[i : i+4 : i+4]
	p[0] = toUnorm8(col[0])
	p[1] = toUnorm8(col[1])
	p[2] = toUnorm8(col[2])
	p[3] = toUnorm8(col[3])
}

// point covers the pixel containing the vertex.
func (c *Context) point(v vertex) {
	if !v.finite() {
		return
	}
	c.setPixel(int(math.Floor(v.x)), int(math.Floor(v.y)), v.color)
}

// line steps along the major axis, sampling at pixel centers in the
// half-open span between the endpoints.
func (c *Context) line(a, b vertex) {
	if !a.finite() || !b.finite() {
		return
	}
	dx, dy := b.x-a.x, b.y-a.y
	if dx == 0 && dy == 0 {
		return
	}
	xMajor := math.Abs(dx) >= math.Abs(dy)
	major0, major1, limit := a.x, b.x, c.width
	if !xMajor {
		major0, major1, limit = a.y, b.y, c.height
	}
	lo, hi := math.Min(major0, major1), math.Max(major0, major1)
	first := clampInt(math.Ceil(lo-0.5), 0, limit)
	last := clampInt(math.Ceil(hi-0.5), 0, limit)
	for m := first; m < last; m++ {
		t := (float64(m) + 0.5 - major0) / (major1 - major0)
		col := lerp(a.color, b.color, float32(t))
		if xMajor {
			c.setPixel(m, int(math.Floor(a.y+t*dy)), col)
		} else {
			c.setPixel(int(math.Floor(a.x+t*dx)), m, col)
		}
	}
}

func edge(a, b vertex, px, py float64) float64 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// topLeft reports whether the edge a->b of a counter-clockwise triangle
// (window y up) is a top or left edge.
func topLeft(a, b vertex) bool {
	return a.y == b.y && b.x < a.x || b.y < a.y
}

func inside(w float64, tl bool) bool {
	return w > 0 || w == 0 && tl
}

// triangle fills pixels whose centers lie inside v0 v1 v2, applying the
// top-left rule on shared edges.
func (c *Context) triangle(v0, v1, v2 vertex) {
	if !v0.finite() || !v1.finite() || !v2.finite() {
		return
	}
	area := edge(v0, v1, v2.x, v2.y)
	if area == 0 {
		return
	}
	if area < 0 {
		v1, v2 = v2, v1
		area = -area
	}
	tl0, tl1, tl2 := topLeft(v1, v2), topLeft(v2, v0), topLeft(v0, v1)

	minX := clampInt(math.Floor(math.Min(v0.x, math.Min(v1.x, v2.x))), 0, c.width)
	maxX := clampInt(math.Ceil(math.Max(v0.x, math.Max(v1.x, v2.x))), -1, c.width-1)
	minY := clampInt(math.Floor(math.Min(v0.y, math.Min(v1.y, v2.y))), 0, c.height)
	maxY := clampInt(math.Ceil(math.Max(v0.y, math.Max(v1.y, v2.y))), -1, c.height-1)

	for py := minY; py <= maxY; py++ {
		sy := float64(py) + 0.5
		for px := minX; px <= maxX; px++ {
			sx := float64(px) + 0.5
			w0 := edge(v1, v2, sx, sy)
			w1 := edge(v2, v0, sx, sy)
			w2 := edge(v0, v1, sx, sy)
			if !inside(w0, tl0) || !inside(w1, tl1) || !inside(w2, tl2) {
				continue
			}
			b0, b1, b2 := float32(w0/area), float32(w1/area), float32(w2/area)
			var col f32.Vec4
			for i := range col {
				col[i] = b0*v0.color[i] + b1*v1.color[i] + b2*v2.color[i]
			}
			c.setPixel(px, py, col)
		}
	}
}

func lerp(a, b f32.Vec4, t float32) f32.Vec4 {
	var out f32.Vec4
	for i := range out {
		out[i] = a[i] + (b[i]-a[i])*t
	}
	return out
}

// clampInt converts v to int after clamping it to [lo, hi].
func clampInt(v float64, lo, hi int) int {
	if v <= float64(lo) {
		return lo
	}
	if v >= float64(hi) {
		return hi
	}
	return int(v)
}
