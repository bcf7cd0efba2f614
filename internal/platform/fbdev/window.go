package fbdev

import (
	"sync"
	"time"

	"github.com/rook-computer/drawloop/internal/platform"
)

type window struct {
	mu            sync.Mutex
	width, height int
	closed        bool
	redraw        chan struct{}
}

func newWindow(cfg platform.WindowConfig) *window {
	return &window{width: cfg.Width, height: cfg.Height, redraw: make(chan struct{}, 1)}
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

func (w *window) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// pacer delivers input events as they come and redraws no faster than
// interval.
type pacer struct {
	interval time.Duration
	input    <-chan platform.Event
	win      *window
	resumed  bool
	next     time.Time
}

func (p *pacer) NextEvent() platform.Event {
	if !p.resumed {
		p.resumed = true
		return platform.Resumed{}
	}
	var redraw <-chan struct{}
	if p.win != nil {
		redraw = p.win.redraw
	}
	select {
	case ev := <-p.input:
		return ev
	case <-redraw:
	}
	if wait := time.Until(p.next); wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case ev := <-p.input:
			timer.Stop()
			p.win.RequestRedraw()
			return ev
		case <-timer.C:
		}
	}
	p.next = time.Now().Add(p.interval)
	return platform.RedrawRequested{}
}
