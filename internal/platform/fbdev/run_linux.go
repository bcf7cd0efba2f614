//go:build linux

package fbdev

import (
	"context"
	"fmt"

	fb "github.com/gonutz/framebuffer"

	"github.com/rook-computer/drawloop/internal/platform"
)

// Run opens the framebuffer, switches the console to graphics mode and
// watches evdev keyboards until fn returns.
func (b *Backend) Run(fn func(platform.EventLoop) error) error {
	dev, err := fb.Open(b.Device)
	if err != nil {
		return fmt.Errorf("open framebuffer %s: %w", b.Device, err)
	}
	defer dev.Close()
	bounds := dev.Bounds()
	b.Logger.Infof("fb", "framebuffer open, bounds=%dx%d", bounds.Dx(), bounds.Dy())

	if err := setConsoleMode(kdGraphics); err != nil {
		b.Logger.Errorf("tty", "KD_GRAPHICS failed: %v", err)
	}
	if err := writeConsole(hideCursor); err != nil {
		b.Logger.Errorf("tty", "hide cursor failed: %v", err)
	}
	defer func() {
		if err := setConsoleMode(kdText); err != nil {
			b.Logger.Errorf("tty", "KD_TEXT failed: %v", err)
		}
		if err := writeConsole(showCursor); err != nil {
			b.Logger.Errorf("tty", "show cursor failed: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	input := make(chan platform.Event, 16)
	watchKeyboards(ctx, b.Logger, input)

	return fn(&eventLoop{pacer: pacer{interval: b.Interval, input: input}, dev: dev})
}

type eventLoop struct {
	pacer
	dev device
}

func (l *eventLoop) CreateWindow(cfg platform.WindowConfig) (platform.Window, error) {
	l.win = newWindow(cfg)
	return l.win, nil
}

func (l *eventLoop) CreateSurface(w platform.Window) (platform.Surface, error) {
	win, ok := w.(*window)
	if !ok {
		return nil, fmt.Errorf("fbdev surface needs an fbdev window, got %T", w)
	}
	return &surface{dev: l.dev, win: win}, nil
}
