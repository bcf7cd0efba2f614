// Package raster draws points, filled rectangles and lines into a
// framebuffer. All writes go through Framebuffer.Set, so anything outside
// the buffer is dropped silently.
package raster

import (
	"github.com/rook-computer/drawloop/internal/command"
	"github.com/rook-computer/drawloop/internal/framebuffer"
)

func Plot(fb *framebuffer.Framebuffer, p command.Point, c uint32) {
	fb.Set(p.X, p.Y, c)
}

// FillRect fills x in [p1.X, p2.X) and y in [p1.Y, p2.Y). Corners are not
// swapped: if p2 is left of or above p1 nothing is drawn.
func FillRect(fb *framebuffer.Framebuffer, p1, p2 command.Point, c uint32) {
	width, height := fb.Size()
	// Clamp the loop ranges; Set still checks every pixel.
	x0, x1 := max(p1.X, 0), min(p2.X, width)
	y0, y1 := max(p1.Y, 0), min(p2.Y, height)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			fb.Set(x, y, c)
		}
	}
}

// Line draws from p1 to p2 inclusive with integer Bresenham stepping.
//
// Only the part of the line inside the framebuffer is walked: the step
// range is clipped first and the error term is computed directly at the
// first visible step, so the pixels drawn are the ones a full walk from p1
// would produce. Endpoints outside the int32 range are not drawn.
func Line(fb *framebuffer.Framebuffer, p1, p2 command.Point, c uint32) {
	if !p1.InRange() || !p2.InRange() {
		return
	}
	width, height := fb.Size()
	if width == 0 || height == 0 {
		return
	}
	s := newSegment(p1, p2)
	maj, mnr := int64(width), int64(height)
	if !s.xMajor {
		maj, mnr = mnr, maj
	}
	first, last := clipSteps(0, s.steps, s.major, s.majorStep, maj)
	first, last = clipSteps(first, last, s.minor, s.minorStep, mnr)
	for k := first; k <= last; k++ {
		a, b := s.major(k), s.minor(k)
		if s.xMajor {
			fb.Set(int(a), int(b), c)
		} else {
			fb.Set(int(b), int(a), c)
		}
	}
}

// segment is a Bresenham line in parametric form. Step k in [0, steps]
// always moves one pixel along the major axis; the minor axis has moved
// ceil((k*minorLen - err0) / steps) pixels by then, where err0 = steps/2
// is the initial error term.
type segment struct {
	xMajor     bool
	steps      int64
	minorLen   int64
	err0       int64
	majorStart int64
	minorStart int64
	majorStep  int64
	minorStep  int64
}

func newSegment(p1, p2 command.Point) segment {
	x0, y0 := int64(p1.X), int64(p1.Y)
	dx, dy := abs(int64(p2.X)-x0), abs(int64(p2.Y)-y0)
	sx, sy := int64(1), int64(1)
	if x0 > int64(p2.X) {
		sx = -1
	}
	if y0 > int64(p2.Y) {
		sy = -1
	}
	if dx > dy {
		return segment{xMajor: true, steps: dx, minorLen: dy, err0: dx / 2,
			majorStart: x0, minorStart: y0, majorStep: sx, minorStep: sy}
	}
	return segment{steps: dy, minorLen: dx, err0: dy / 2,
		majorStart: y0, minorStart: x0, majorStep: sy, minorStep: sx}
}

func (s segment) major(k int64) int64 { return s.majorStart + s.majorStep*k }

func (s segment) minor(k int64) int64 {
	if s.steps == 0 {
		return s.minorStart
	}
	// Both factors are below 2^32 for int32 endpoints, so this fits.
	moved := (uint64(k)*uint64(s.minorLen) + uint64(s.steps-1-s.err0)) / uint64(s.steps)
	return s.minorStart + s.minorStep*int64(moved)
}

// clipSteps narrows [first, last] to the steps where at(k) lies in
// [0, limit). at must be monotone in the direction of dir. An empty result
// has last < first.
func clipSteps(first, last int64, at func(int64) int64, dir, limit int64) (int64, int64) {
	if first > last {
		return first, last
	}
	if dir > 0 {
		return search(first, last, func(k int64) bool { return at(k) >= 0 }),
			search(first, last, func(k int64) bool { return at(k) >= limit }) - 1
	}
	return search(first, last, func(k int64) bool { return at(k) < limit }),
		search(first, last, func(k int64) bool { return at(k) < 0 }) - 1
}

// search returns the smallest k in [lo, hi] for which ok is true, or hi+1.
// ok must be false then true over the range.
func search(lo, hi int64, ok func(int64) bool) int64 {
	hi++
	for lo < hi {
		mid := lo + (hi-lo)/2
		if ok(mid) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
