package render

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rook-computer/drawloop/internal/command"
	"github.com/rook-computer/drawloop/internal/framebuffer"
	"github.com/rook-computer/drawloop/internal/logging"
	"github.com/rook-computer/drawloop/internal/platform"
	"github.com/rook-computer/drawloop/internal/queue"
	"github.com/rook-computer/drawloop/internal/state"
)

// Engine is the handle producers use to talk to the render goroutine.
// All methods are safe for concurrent use.
type Engine struct {
	backend      platform.Backend
	commands     *queue.Queue[command.Command]
	registry     *state.Registry
	logger       logging.Logger
	windowConfig platform.WindowConfig
	policy       framebuffer.ResizePolicy
	now          func() time.Time
	hud          *HUD
	drainLimit   int

	started atomic.Bool
	phase   atomic.Int32
	done    chan struct{}

	errMu sync.Mutex
	err   error
}

func New(backend platform.Backend, opts ...Option) *Engine {
	e := &Engine{
		backend:      backend,
		commands:     queue.New[command.Command](),
		registry:     state.NewRegistry(),
		logger:       logging.NoopLogger{},
		windowConfig: DefaultWindow,
		now:          time.Now,
		drainLimit:   1 << 16,
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateWindow starts the render goroutine. Only the first call does
// anything; later and concurrent calls return nil.
func (e *Engine) CreateWindow() error {
	if !e.started.CompareAndSwap(false, true) {
		return nil
	}
	go e.run()
	return nil
}

func (e *Engine) run() {
	// Window systems bind their state to the thread that created it.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(e.done)

	r := &renderer{e: e}
	if err := e.backend.Run(r.run); err != nil {
		e.logger.Errorf("render", "render loop stopped: %v", err)
		e.errMu.Lock()
		e.err = err
		e.errMu.Unlock()
	}
	e.setPhase(PhaseClosed)
	e.logger.Infof("render", "render loop exited after %d frames", r.frames)
}

func (e *Engine) Phase() Phase { return Phase(e.phase.Load()) }

func (e *Engine) setPhase(p Phase) { e.phase.Store(int32(p)) }

// Done is closed once the render loop has exited.
func (e *Engine) Done() <-chan struct{} { return e.done }

// Err is the error that stopped the render loop, if any.
func (e *Engine) Err() error {
	e.errMu.Lock()
	defer e.errMu.Unlock()
	return e.err
}

// Wait blocks until the render loop exits or ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	select {
	case <-e.done:
		return e.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit enqueues cmd for the render goroutine. It never blocks.
func (e *Engine) Submit(cmd command.Command) error {
	if !e.started.Load() {
		return ErrNotStarted
	}
	e.commands.Send(cmd)
	return nil
}

func (e *Engine) SetColor(c command.Color) error {
	return e.Submit(command.SetColor{Color: c})
}

func (e *Engine) SetPixel(at command.Point, c command.Color) error {
	if err := checkRange(at); err != nil {
		return err
	}
	return e.Submit(command.SetPixel{At: at, Color: c})
}

func (e *Engine) DrawRect(from, to command.Point) error {
	if err := checkRange(from, to); err != nil {
		return err
	}
	return e.Submit(command.DrawRect{From: from, To: to})
}

func (e *Engine) DrawLine(from, to command.Point) error {
	if err := checkRange(from, to); err != nil {
		return err
	}
	return e.Submit(command.DrawLine{From: from, To: to})
}

func checkRange(pts ...command.Point) error {
	for _, p := range pts {
		if !p.InRange() {
			return fmt.Errorf("%w: %v", command.ErrCoordRange, p)
		}
	}
	return nil
}

// Flush ends the frame; the next frame starts from a cleared canvas.
func (e *Engine) Flush() error { return e.Submit(command.Flush{}) }

// NewFrame ends the frame and keeps the canvas.
func (e *Engine) NewFrame() error { return e.Submit(command.NewFrame{}) }

// DeltaTime is the wall-clock gap in seconds between the last two frame
// boundaries.
func (e *Engine) DeltaTime() (float64, error) {
	if !e.started.Load() {
		return 0, ErrNotStarted
	}
	return e.registry.DeltaTime(), nil
}

func (e *Engine) ScreenDimensions() (state.Dimensions, error) {
	if !e.started.Load() {
		return state.Dimensions{}, ErrNotStarted
	}
	return e.registry.Dimensions(), nil
}

// CurrentColor is the color most recently applied by a SetColor command.
func (e *Engine) CurrentColor() (command.Color, error) {
	if !e.started.Load() {
		return command.Color{}, ErrNotStarted
	}
	return e.registry.Color(), nil
}

// Queued is the approximate number of commands not yet taken by the render
// goroutine.
func (e *Engine) Queued() int {
	n := e.commands.Len()
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

// Sleep pauses the calling goroutine. It has no effect on rendering.
func (e *Engine) Sleep(ms float64) {
	if ms <= 0 {
		return
	}
	time.Sleep(time.Duration(ms * float64(time.Millisecond)))
}
