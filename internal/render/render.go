// Package render runs the render goroutine: it owns the window, the
// surface and the framebuffer, and applies drawing commands one frame at a
// time.
package render

import (
	"errors"
	"fmt"
	"time"

	"github.com/rook-computer/drawloop/internal/framebuffer"
	"github.com/rook-computer/drawloop/internal/logging"
	"github.com/rook-computer/drawloop/internal/platform"
)

var ErrNotStarted = errors.New("render engine not started: call CreateWindow first")

// Phase is the engine lifecycle. It only moves forward.
type Phase int32

const (
	PhaseUninitialized Phase = iota
	PhaseWindowCreated
	PhaseRunning
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseWindowCreated:
		return "window-created"
	case PhaseRunning:
		return "running"
	case PhaseClosed:
		return "closed"
	default:
		return fmt.Sprintf("Phase(%d)", int32(p))
	}
}

// DefaultWindow matches the window the engine opens when no config is given.
var DefaultWindow = platform.WindowConfig{Title: "hello", Width: 640, Height: 480}

type Option func(*Engine)

func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithWindowConfig(cfg platform.WindowConfig) Option {
	return func(e *Engine) { e.windowConfig = cfg }
}

func WithResizePolicy(p framebuffer.ResizePolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithClock replaces time.Now for frame timing.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithHUD draws h over every presented frame.
func WithHUD(h *HUD) Option {
	return func(e *Engine) { e.hud = h }
}

// WithDrainLimit caps how many commands one event loop tick takes from the
// queue, so a flood of commands cannot starve window events. Zero means no cap.
func WithDrainLimit(n int) Option {
	return func(e *Engine) { e.drainLimit = n }
}
