// Package fbdev draws on the Linux console framebuffer. The logical surface
// keeps the window size and is scaled to the device on every present.
package fbdev

import (
	"image"
	"image/color"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/rook-computer/drawloop/internal/command"
	"github.com/rook-computer/drawloop/internal/logging"
	"github.com/rook-computer/drawloop/internal/platform"
)

const (
	DefaultDevice   = "/dev/fb0"
	DefaultInterval = time.Second / 30
)

type Backend struct {
	// Device is the framebuffer device node.
	Device string
	// Interval is the minimum gap between two RedrawRequested events.
	Interval time.Duration
	Logger   logging.Logger
}

func New(device string, interval time.Duration, logger logging.Logger) *Backend {
	if device == "" {
		device = DefaultDevice
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = logging.NoopLogger{}
	}
	return &Backend{Device: device, Interval: interval, Logger: logger}
}

// device is the part of the framebuffer device a surface writes to.
type device interface {
	Bounds() image.Rectangle
	Set(x, y int, c color.Color)
}

// unpack converts width*height packed pixels into dst, which must be at
// least that large.
func unpack(dst *image.RGBA, pix []uint32, width, height int) {
	for y := 0; y < height; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+width*4]
		for x, px := range pix[y*width : (y+1)*width] {
			c := command.Unpack(px)
			row[x*4+0] = c.R
			row[x*4+1] = c.G
			row[x*4+2] = c.B
			row[x*4+3] = 0xFF
		}
	}
}

// blit scales canvas to the device bounds with nearest-neighbour sampling
// and writes every device pixel. scaled is reused between calls.
func blit(dev device, canvas *image.RGBA, scaled *image.RGBA) *image.RGBA {
	bounds := dev.Bounds()
	if bounds.Empty() || canvas.Bounds().Empty() {
		return scaled
	}
	if scaled == nil || scaled.Bounds().Size() != bounds.Size() {
		scaled = image.NewRGBA(image.Rectangle{Max: bounds.Size()})
	}
	xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), canvas, canvas.Bounds(), xdraw.Src, nil)
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			dev.Set(bounds.Min.X+x, bounds.Min.Y+y, scaled.RGBAAt(x, y))
		}
	}
	return scaled
}

// surface is the logical canvas presented onto a device.
type surface struct {
	dev    device
	win    *window
	pix    []uint32
	width  int
	height int
	canvas *image.RGBA
	scaled *image.RGBA
}

func (s *surface) Resize(width, height int) error {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	s.width, s.height = width, height
	s.pix = make([]uint32, width*height)
	s.canvas = image.NewRGBA(image.Rect(0, 0, width, height))
	return nil
}

func (s *surface) Buffer() ([]uint32, error) { return s.pix, nil }

func (s *surface) Present() error {
	if s.win.isClosed() {
		return platform.ErrClosed
	}
	if s.canvas == nil {
		return nil
	}
	unpack(s.canvas, s.pix, s.width, s.height)
	s.scaled = blit(s.dev, s.canvas, s.scaled)
	return nil
}
