// Package framebuffer is the render goroutine's in-memory pixel grid.
package framebuffer

import (
	"fmt"
	"image"
	"strings"

	"github.com/rook-computer/drawloop/internal/command"
)

// ResizePolicy decides what happens to drawn content when the extent changes.
type ResizePolicy int

const (
	// Reflow copies old pixels into the new array by linear index, so a
	// width change shifts content between rows.
	Reflow ResizePolicy = iota
	// Preserve copies the overlapping rectangle by coordinate.
	Preserve
)

func (p ResizePolicy) String() string {
	switch p {
	case Reflow:
		return "reflow"
	case Preserve:
		return "preserve"
	default:
		return fmt.Sprintf("ResizePolicy(%d)", int(p))
	}
}

func ParseResizePolicy(s string) (ResizePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reflow":
		return Reflow, nil
	case "preserve":
		return Preserve, nil
	default:
		return Reflow, fmt.Errorf("unknown resize policy %q (want reflow or preserve)", s)
	}
}

// Framebuffer stores packed 0x00RRGGBB pixels row by row. len(pix) is
// always width*height.
type Framebuffer struct {
	width  int
	height int
	pix    []uint32
	policy ResizePolicy
}

func New(width, height int) *Framebuffer {
	width, height = clampExtent(width, height)
	return &Framebuffer{width: width, height: height, pix: make([]uint32, width*height)}
}

func clampExtent(width, height int) (int, int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return width, height
}

func (fb *Framebuffer) SetResizePolicy(p ResizePolicy) { fb.policy = p }

func (fb *Framebuffer) Size() (width, height int) { return fb.width, fb.height }

// Pixels returns the backing slice. Callers must not retain it across Resize.
func (fb *Framebuffer) Pixels() []uint32 { return fb.pix }

func (fb *Framebuffer) inBounds(x, y int) bool {
	return x >= 0 && x < fb.width && y >= 0 && y < fb.height
}

// Set writes c at (x, y). Out of range coordinates are ignored.
func (fb *Framebuffer) Set(x, y int, c uint32) {
	if !fb.inBounds(x, y) {
		return
	}
	fb.pix[y*fb.width+x] = c
}

// At returns the pixel at (x, y), or 0 when out of range.
func (fb *Framebuffer) At(x, y int) uint32 {
	if !fb.inBounds(x, y) {
		return 0
	}
	return fb.pix[y*fb.width+x]
}

func (fb *Framebuffer) Fill(c uint32) {
	for i := range fb.pix {
		fb.pix[i] = c
	}
}

// Resize reallocates to width*height zeroed pixels and carries old content
// over according to the resize policy.
func (fb *Framebuffer) Resize(width, height int) {
	width, height = clampExtent(width, height)
	if width == fb.width && height == fb.height {
		return
	}
	pix := make([]uint32, width*height)
	switch fb.policy {
	case Preserve:
		w := min(width, fb.width)
		h := min(height, fb.height)
		for y := 0; y < h; y++ {
			copy(pix[y*width:y*width+w], fb.pix[y*fb.width:y*fb.width+w])
		}
	default:
		copy(pix, fb.pix)
	}
	fb.pix = pix
	fb.width = width
	fb.height = height
}

// BlitTo copies the overlap of the framebuffer and a dstWidth x dstHeight
// destination pixel for pixel. Destination pixels outside the framebuffer
// are left untouched.
func (fb *Framebuffer) BlitTo(dst []uint32, dstWidth, dstHeight int) {
	w := min(fb.width, dstWidth)
	h := min(fb.height, dstHeight)
	if dstWidth > 0 {
		h = min(h, len(dst)/dstWidth)
	}
	if w <= 0 || h <= 0 {
		return
	}
	for y := 0; y < h; y++ {
		row := dst[y*dstWidth : y*dstWidth+w]
		copy(row, fb.pix[y*fb.width:y*fb.width+w])
	}
}

// Image returns an opaque RGBA copy.
func (fb *Framebuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
	for y := 0; y < fb.height; y++ {
		for x := 0; x < fb.width; x++ {
			img.SetRGBA(x, y, command.Unpack(fb.pix[y*fb.width+x]).RGBA())
		}
	}
	return img
}
