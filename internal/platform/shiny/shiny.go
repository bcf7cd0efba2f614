// Package shiny opens a desktop window with golang.org/x/exp/shiny and
// presents packed pixels through a shiny buffer.
package shiny

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/rook-computer/drawloop/internal/platform"
)

type Backend struct{}

func New() Backend { return Backend{} }

// Run hands fn an event loop inside driver.Main. On some systems driver.Main
// must be called from the process's main thread.
func (Backend) Run(fn func(platform.EventLoop) error) error {
	var err error
	driver.Main(func(s screen.Screen) {
		err = fn(&eventLoop{screen: s})
	})
	return err
}

type eventLoop struct {
	screen  screen.Screen
	resumed bool
	win     *window
}

func (l *eventLoop) NextEvent() platform.Event {
	if !l.resumed {
		l.resumed = true
		return platform.Resumed{}
	}
	if l.win == nil {
		// Nothing can arrive before a window exists.
		return platform.CloseRequested{}
	}
	for {
		if ev := l.win.translate(l.win.w.NextEvent()); ev != nil {
			return ev
		}
	}
}

func (l *eventLoop) CreateWindow(cfg platform.WindowConfig) (platform.Window, error) {
	w, err := l.screen.NewWindow(&screen.NewWindowOptions{
		Width:  cfg.Width,
		Height: cfg.Height,
		Title:  cfg.Title,
	})
	if err != nil {
		return nil, fmt.Errorf("shiny new window: %w", err)
	}
	l.win = &window{w: w, width: cfg.Width, height: cfg.Height}
	return l.win, nil
}

func (l *eventLoop) CreateSurface(w platform.Window) (platform.Surface, error) {
	win, ok := w.(*window)
	if !ok {
		return nil, fmt.Errorf("shiny surface needs a shiny window, got %T", w)
	}
	return &surface{screen: l.screen, win: win}, nil
}

type window struct {
	w screen.Window

	mu            sync.Mutex
	width, height int

	paintQueued atomic.Bool
	released    atomic.Bool
}

func (w *window) Size() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

// RequestRedraw coalesces: at most one synthetic paint event is queued.
func (w *window) RequestRedraw() {
	if w.released.Load() || !w.paintQueued.CompareAndSwap(false, true) {
		return
	}
	w.w.Send(paint.Event{})
}

func (w *window) Close() error {
	if !w.released.CompareAndSwap(false, true) {
		return platform.ErrClosed
	}
	w.w.Release()
	return nil
}

// translate maps shiny events to platform events; nil means skip.
func (w *window) translate(e interface{}) platform.Event {
	switch e := e.(type) {
	case lifecycle.Event:
		if e.To == lifecycle.StageDead {
			return platform.CloseRequested{}
		}
	case size.Event:
		w.mu.Lock()
		w.width, w.height = e.WidthPx, e.HeightPx
		w.mu.Unlock()
		return platform.Resized{Width: e.WidthPx, Height: e.HeightPx}
	case paint.Event:
		if !e.External {
			w.paintQueued.Store(false)
		}
		return platform.RedrawRequested{}
	case key.Event:
		if e.Direction == key.DirNone {
			return nil
		}
		return platform.KeyInput{
			Code:    uint32(e.Code),
			Label:   keyLabel(e),
			Pressed: e.Direction == key.DirPress,
		}
	}
	return nil
}

func keyLabel(e key.Event) string {
	switch e.Code {
	case key.CodeEscape:
		return platform.KeyEscape
	case key.CodeF4:
		return platform.KeyF4
	}
	if e.Rune > 0 {
		return string(e.Rune)
	}
	return e.Code.String()
}

type surface struct {
	screen screen.Screen
	win    *window
	buf    screen.Buffer
	pix    []uint32
	width  int
	height int
}

func (s *surface) Resize(width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	if s.buf != nil {
		s.buf.Release()
		s.buf = nil
	}
	s.width, s.height = width, height
	s.pix = make([]uint32, width*height)
	if width == 0 || height == 0 {
		return nil
	}
	buf, err := s.screen.NewBuffer(image.Pt(width, height))
	if err != nil {
		return fmt.Errorf("shiny new buffer %dx%d: %w", width, height, err)
	}
	s.buf = buf
	return nil
}

func (s *surface) Buffer() ([]uint32, error) {
	return s.pix, nil
}

func (s *surface) Present() error {
	if s.win.released.Load() {
		return platform.ErrClosed
	}
	if s.buf == nil {
		return nil
	}
	unpackInto(s.buf.RGBA(), s.pix, s.width, s.height)
	s.win.w.Upload(image.Point{}, s.buf, s.buf.Bounds())
	s.win.w.Publish()
	return nil
}

// unpackInto writes width*height packed pixels into dst as opaque RGBA.
func unpackInto(dst *image.RGBA, pix []uint32, width, height int) {
	for y := 0; y < height; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+width*4]
		for x, px := range pix[y*width : (y+1)*width] {
			row[x*4+0] = uint8(px >> 16)
			row[x*4+1] = uint8(px >> 8)
			row[x*4+2] = uint8(px)
			row[x*4+3] = 0xFF
		}
	}
}
