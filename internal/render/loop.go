package render

import (
	"fmt"
	"time"

	"github.com/rook-computer/drawloop/internal/command"
	"github.com/rook-computer/drawloop/internal/framebuffer"
	"github.com/rook-computer/drawloop/internal/platform"
	"github.com/rook-computer/drawloop/internal/processor"
)

// renderer is the state owned by the render goroutine. Nothing here is
// touched from any other goroutine.
type renderer struct {
	e *Engine

	loop           platform.EventLoop
	window         platform.Window
	surface        platform.Surface
	surfaceW       int
	surfaceH       int
	fb             *framebuffer.Framebuffer
	proc           *processor.Processor
	pending        []command.Command
	lastFrame      time.Time
	frames         uint64
	lastHeartbeat  time.Time
	lastErrorLog   time.Time
	suppressedErrs int
}

func (r *renderer) run(loop platform.EventLoop) error {
	r.loop = loop
	for r.e.Phase() != PhaseClosed {
		if err := r.handle(loop.NextEvent()); err != nil {
			return err
		}
		if r.e.Phase() == PhaseRunning {
			r.drain()
		}
	}
	return nil
}

func (r *renderer) handle(ev platform.Event) error {
	if _, ok := ev.(platform.Resumed); ok {
		if r.window != nil {
			return nil
		}
		return r.resume()
	}
	if r.window == nil {
		r.e.logger.Debugf("render", "ignoring %T before window creation", ev)
		return nil
	}
	switch ev := ev.(type) {
	case platform.Resized:
		r.resize(ev.Width, ev.Height)
	case platform.RedrawRequested:
		r.redraw()
	case platform.CloseRequested:
		r.close()
	case platform.KeyInput:
		r.e.logger.Debugf("input", "key %s code=%d pressed=%v", ev.Label, ev.Code, ev.Pressed)
	default:
		r.e.logger.Debugf("render", "unhandled event %T", ev)
	}
	return nil
}

func (r *renderer) resume() error {
	win, err := r.loop.CreateWindow(r.e.windowConfig)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	surface, err := r.loop.CreateSurface(win)
	if err != nil {
		_ = win.Close()
		return fmt.Errorf("create surface: %w", err)
	}
	width, height := win.Size()
	if err := surface.Resize(width, height); err != nil {
		_ = win.Close()
		return fmt.Errorf("size surface to %dx%d: %w", width, height, err)
	}
	r.window = win
	r.surface = surface
	r.surfaceW, r.surfaceH = width, height

	r.fb = framebuffer.New(width, height)
	r.fb.SetResizePolicy(r.e.policy)
	r.proc = processor.New(r.fb, r.e.registry)
	r.proc.Logger = r.e.logger
	r.e.registry.SetDimensions(width, height)
	r.lastFrame = r.e.now()
	r.lastHeartbeat = r.lastFrame
	r.e.setPhase(PhaseWindowCreated)
	r.e.logger.Infof("render", "window %q created, %dx%d", r.e.windowConfig.Title, width, height)

	r.e.setPhase(PhaseRunning)
	r.window.RequestRedraw()
	return nil
}

// drain moves queued commands into the pending batch. A frame boundary
// applies everything accumulated before it; the boundary command itself
// then opens the next batch, so a Flush clears the canvas at the start of
// the following frame.
func (r *renderer) drain() {
	r.e.commands.Drain(r.e.drainLimit, func(cmd command.Command) {
		if cmd.Kind().IsFrameBoundary() {
			r.endFrame()
		}
		r.pending = append(r.pending, cmd)
	})
}

func (r *renderer) endFrame() {
	now := r.e.now()
	dt := now.Sub(r.lastFrame).Seconds()
	if dt < 0 {
		dt = 0
	}
	r.e.registry.SetDeltaTime(dt)

	st := r.proc.Apply(r.pending)
	clear(r.pending)
	r.pending = r.pending[:0]
	r.window.RequestRedraw()
	r.lastFrame = now
	r.frames++

	if now.Sub(r.lastHeartbeat) >= time.Second {
		r.e.logger.Debugf("render", "heartbeat frame=%d dt=%.4fs applied=%d skipped=%d queued=%d",
			r.frames, dt, st.Applied, st.Skipped, r.e.commands.Len())
		r.lastHeartbeat = now
	}
}

func (r *renderer) resize(width, height int) {
	r.fb.Resize(width, height)
	fbW, fbH := r.fb.Size()
	r.e.registry.SetDimensions(fbW, fbH)
	r.e.logger.Infof("render", "resized to %dx%d", fbW, fbH)

	if err := r.surface.Resize(fbW, fbH); err != nil {
		r.reportError("resize surface", err)
		return
	}
	r.surfaceW, r.surfaceH = fbW, fbH
	if err := r.surface.Present(); err != nil {
		r.reportError("present after resize", err)
	}
}

func (r *renderer) redraw() {
	// Keep the redraw cycle going even when this frame fails.
	defer r.window.RequestRedraw()

	buf, err := r.surface.Buffer()
	if err != nil {
		r.reportError("acquire surface buffer", err)
		return
	}
	r.fb.BlitTo(buf, r.surfaceW, r.surfaceH)
	if r.e.hud != nil {
		r.e.hud.Draw(buf, r.surfaceW, r.surfaceH, r.e.registry.Snapshot())
	}
	if err := r.surface.Present(); err != nil {
		r.reportError("present", err)
	}
}

func (r *renderer) close() {
	if err := r.window.Close(); err != nil {
		r.e.logger.Errorf("render", "close window: %v", err)
	}
	r.e.setPhase(PhaseClosed)
	r.e.logger.Infof("render", "window closed")
}

// reportError logs surface failures at most once a second; the frame is
// dropped and rendering continues.
func (r *renderer) reportError(op string, err error) {
	now := r.e.now()
	if !r.lastErrorLog.IsZero() && now.Sub(r.lastErrorLog) < time.Second {
		r.suppressedErrs++
		return
	}
	if r.suppressedErrs > 0 {
		r.e.logger.Errorf("render", "%s: %v (%d similar errors suppressed)", op, err, r.suppressedErrs)
	} else {
		r.e.logger.Errorf("render", "%s: %v", op, err)
	}
	r.lastErrorLog = now
	r.suppressedErrs = 0
}
