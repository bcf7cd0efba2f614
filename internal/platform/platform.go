// Package platform is the boundary to the window system. Backends live in
// subpackages; the render engine only sees these interfaces.
package platform

import "errors"

var (
	ErrClosed      = errors.New("window closed")
	ErrUnsupported = errors.New("backend not supported on this platform")
)

type WindowConfig struct {
	Title  string
	Width  int
	Height int
}

// Backend starts the window system's event loop.
type Backend interface {
	// Run calls fn on the calling goroutine with a live event loop and
	// returns when fn returns. Some window systems require the calling
	// goroutine to stay on one OS thread for the duration.
	Run(fn func(EventLoop) error) error
}

// EventLoop delivers window system events to the goroutine that owns it.
type EventLoop interface {
	// NextEvent blocks until the next event. The first event is Resumed.
	NextEvent() Event
	CreateWindow(cfg WindowConfig) (Window, error)
	CreateSurface(w Window) (Surface, error)
}

type Window interface {
	// Size is the current extent in physical pixels.
	Size() (width, height int)
	// RequestRedraw queues a RedrawRequested event. It never blocks.
	RequestRedraw()
	Close() error
}

// Surface is a presentable buffer of packed 0x00RRGGBB pixels.
type Surface interface {
	Resize(width, height int) error
	// Buffer returns the mutable pixel buffer, width*height long, row major.
	// It is valid until the next Resize or Present.
	Buffer() ([]uint32, error)
	Present() error
}
