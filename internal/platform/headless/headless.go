// Package headless is an in-memory window system. Events are injected with
// Send and every presented frame is kept for inspection.
package headless

import (
	"image"
	"sync"
	"time"

	"github.com/rook-computer/drawloop/internal/command"
	"github.com/rook-computer/drawloop/internal/platform"
)

// DefaultInterval paces redraws at roughly 60 per second.
const DefaultInterval = time.Second / 60

// Frame is a copy of the most recently presented surface.
type Frame struct {
	Pixels   []uint32
	Width    int
	Height   int
	Presents int
}

// At returns the pixel at (x, y), or 0 out of range.
func (f Frame) At(x, y int) uint32 {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return 0
	}
	return f.Pixels[y*f.Width+x]
}

// Image converts the frame to an opaque RGBA image.
func (f Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i, px := range f.Pixels {
		img.SetRGBA(i%f.Width, i/f.Width, command.Unpack(px).RGBA())
	}
	return img
}

type Backend struct {
	// Interval is the minimum gap between two RedrawRequested events.
	Interval time.Duration

	events chan platform.Event

	mu    sync.Mutex
	frame Frame
}

func New(interval time.Duration) *Backend {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Backend{Interval: interval, events: make(chan platform.Event, 64)}
}

// Send injects a window system event such as Resized or CloseRequested.
func (b *Backend) Send(ev platform.Event) {
	b.events <- ev
}

// Frame returns a copy of the last presented frame.
func (b *Backend) Frame() Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	f := b.frame
	f.Pixels = append([]uint32(nil), b.frame.Pixels...)
	return f
}

func (b *Backend) Run(fn func(platform.EventLoop) error) error {
	return fn(&eventLoop{b: b})
}

func (b *Backend) present(pix []uint32, width, height int) {
	b.mu.Lock()
	b.frame.Pixels = append(b.frame.Pixels[:0], pix...)
	b.frame.Width = width
	b.frame.Height = height
	b.frame.Presents++
	b.mu.Unlock()
}

type eventLoop struct {
	b          *Backend
	resumed    bool
	win        *window
	nextRedraw time.Time
}

func (l *eventLoop) NextEvent() platform.Event {
	if !l.resumed {
		l.resumed = true
		return platform.Resumed{}
	}
	select {
	case ev := <-l.b.events:
		return l.observe(ev)
	default:
	}

	var redraw <-chan struct{}
	if l.win != nil {
		redraw = l.win.redraw
	}
	select {
	case ev := <-l.b.events:
		return l.observe(ev)
	case <-redraw:
		if wait := time.Until(l.nextRedraw); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case ev := <-l.b.events:
				timer.Stop()
				l.win.RequestRedraw()
				return l.observe(ev)
			case <-timer.C:
			}
		}
		l.nextRedraw = time.Now().Add(l.b.Interval)
		return platform.RedrawRequested{}
	}
}

func (l *eventLoop) observe(ev platform.Event) platform.Event {
	if r, ok := ev.(platform.Resized); ok && l.win != nil {
		l.win.mu.Lock()
		l.win.width, l.win.height = r.Width, r.Height
		l.win.mu.Unlock()
	}
	return ev
}

func (l *eventLoop) CreateWindow(cfg platform.WindowConfig) (platform.Window, error) {
	l.win = &window{width: cfg.Width, height: cfg.Height, redraw: make(chan struct{}, 1)}
	return l.win, nil
}

func (l *eventLoop) CreateSurface(w platform.Window) (platform.Surface, error) {
	width, height := w.Size()
	return &surface{b: l.b, width: width, height: height, pix: make([]uint32, width*height)}, nil
}

type window struct {
	mu            sync.Mutex
	width, height int
	redraw        chan struct{}
	closed        bool
}

func (w *window) Size() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

func (w *window) RequestRedraw() {
	select {
	case w.redraw <- struct{}{}:
	default:
	}
}

func (w *window) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return platform.ErrClosed
	}
	w.closed = true
	return nil
}

type surface struct {
	b             *Backend
	width, height int
	pix           []uint32
}

func (s *surface) Resize(width, height int) error {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	s.width, s.height = width, height
	s.pix = make([]uint32, width*height)
	return nil
}

func (s *surface) Buffer() ([]uint32, error) { return s.pix, nil }

func (s *surface) Present() error {
	s.b.present(s.pix, s.width, s.height)
	return nil
}
