// Package command defines the drawing commands that producer goroutines
// hand to the render goroutine. Every kind is its own value type, so a
// command that reaches the render goroutine is already well formed.
package command

import "math"

type Kind string

const (
	KindSetColor Kind = "set_color"
	KindSetPixel Kind = "set_pixel"
	KindDrawRect Kind = "draw_rect"
	KindDrawLine Kind = "draw_line"
	KindFlush    Kind = "flush"
	KindNewFrame Kind = "new_frame"
)

// IsFrameBoundary reports whether commands of this kind close the
// current frame's batch.
func (k Kind) IsFrameBoundary() bool {
	return k == KindFlush || k == KindNewFrame
}

func (k Kind) String() string { return string(k) }

// Command is one of SetColor, SetPixel, DrawRect, DrawLine, Flush or NewFrame.
type Command interface {
	Kind() Kind
}

type Point struct {
	X, Y int
}

func Pt(x, y int) Point { return Point{X: x, Y: y} }

// InRange reports whether both coordinates fit in an int32.
func (p Point) InRange() bool {
	return p.X >= math.MinInt32 && p.X <= math.MaxInt32 &&
		p.Y >= math.MinInt32 && p.Y <= math.MaxInt32
}

// SetColor replaces the color used by later DrawRect and DrawLine commands.
type SetColor struct {
	Color Color
}

// SetPixel plots its own color and ignores the current color.
type SetPixel struct {
	At    Point
	Color Color
}

// DrawRect fills [From.X, To.X) x [From.Y, To.Y) with the current color.
type DrawRect struct {
	From, To Point
}

// DrawLine draws from From to To, both inclusive, with the current color.
type DrawLine struct {
	From, To Point
}

// Flush clears the framebuffer to black.
type Flush struct{}

// NewFrame marks a frame boundary without touching the framebuffer.
type NewFrame struct{}

func (SetColor) Kind() Kind { return KindSetColor }
func (SetPixel) Kind() Kind { return KindSetPixel }
func (DrawRect) Kind() Kind { return KindDrawRect }
func (DrawLine) Kind() Kind { return KindDrawLine }
func (Flush) Kind() Kind    { return KindFlush }
func (NewFrame) Kind() Kind { return KindNewFrame }
