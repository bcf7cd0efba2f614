package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rook-computer/drawloop/internal/command"
	"github.com/rook-computer/drawloop/internal/config"
	"github.com/rook-computer/drawloop/internal/hostapi"
	"github.com/rook-computer/drawloop/internal/logging"
	"github.com/rook-computer/drawloop/internal/platform"
	"github.com/rook-computer/drawloop/internal/platform/headless"
	"github.com/rook-computer/drawloop/internal/render"
	"github.com/rook-computer/drawloop/internal/script"
)

// App wires the configured backend, the render engine and a producer: a
// script when one is configured, the demo scene otherwise.
type App struct {
	Config  config.Config
	Logger  logging.Logger
	Backend platform.Backend

	engine   *render.Engine
	headless *headless.Backend

	exitOnce atomic.Bool
	exitCh   chan error
}

// New builds the backend and engine described by cfg. cfg must be valid.
func New(cfg config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NoopLogger{}
	}
	backend, err := NewBackend(cfg, logger)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Logger: logger, Backend: backend, exitCh: make(chan error, 1)}
	app.headless, _ = backend.(*headless.Backend)

	opts := []render.Option{
		render.WithLogger(logger),
		render.WithWindowConfig(platform.WindowConfig{Title: cfg.Title, Width: cfg.Width, Height: cfg.Height}),
		render.WithResizePolicy(cfg.Policy()),
	}
	if cfg.HUD {
		hud, err := render.NewHUD(12, command.White)
		if err != nil {
			return nil, err
		}
		opts = append(opts, render.WithHUD(hud))
	}
	app.engine = render.New(backend, opts...)
	return app, nil
}

func (app *App) Engine() *render.Engine { return app.engine }

// Exit requests the app to stop running.
func (app *App) Exit(err error) {
	if !app.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case app.exitCh <- err:
	default:
	}
}

// Start opens the window and runs the producer until the window closes,
// ctx is done or Exit is called.
func (app *App) Start(ctx context.Context) error {
	if err := app.engine.CreateWindow(); err != nil {
		return err
	}
	app.Logger.Infof("app", "backend %s, window %dx%d", app.Config.Backend, app.Config.Width, app.Config.Height)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := app.produce(runCtx)
		switch {
		case err != nil && !errors.Is(err, context.Canceled):
			app.Logger.Errorf("app", "producer: %v", err)
			app.Exit(err)
		case app.headless != nil && runCtx.Err() == nil:
			// Nobody can close a headless window; finish once the last
			// frame is on the surface.
			app.settle(runCtx)
			app.closeHeadless()
		}
	}()

	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case <-app.engine.Done():
		err = app.engine.Err()
	case err = <-app.exitCh:
	}
	cancel()
	wg.Wait()

	if app.headless != nil {
		app.closeHeadless()
	}
	if app.headless != nil && app.Config.Snapshot != "" {
		if serr := WriteSnapshot(app.Config.Snapshot, app.headless.Frame()); serr != nil {
			app.Logger.Errorf("app", "snapshot: %v", serr)
			err = errors.Join(err, serr)
		} else {
			app.Logger.Infof("app", "snapshot written to %s", app.Config.Snapshot)
		}
	}
	return err
}

func (app *App) produce(ctx context.Context) error {
	if app.Config.Script == "" {
		return (&Demo{Engine: app.engine, Logger: app.Logger, Interval: app.Config.FrameInterval.Duration}).Run(ctx)
	}
	runner := &script.Runner{Functions: hostapi.Functions(app.engine), Logger: app.Logger}
	if app.Config.Watch {
		return runner.Watch(ctx, app.Config.Script)
	}
	if err := runner.RunFile(ctx, app.Config.Script); err != nil {
		return fmt.Errorf("script %s: %w", app.Config.Script, err)
	}
	app.Logger.Infof("app", "script %s finished", app.Config.Script)
	return nil
}

// closeHeadless asks the headless window to close and waits briefly for the
// render goroutine to exit.
func (app *App) closeHeadless() {
	if app.engine.Phase() == render.PhaseClosed {
		return
	}
	app.headless.Send(platform.CloseRequested{})
	select {
	case <-app.engine.Done():
	case <-time.After(time.Second):
		app.Logger.Errorf("app", "render loop did not stop")
	}
}

// settle waits until the render goroutine has taken every queued command
// and presented at least one more frame.
func (app *App) settle(ctx context.Context) {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for app.engine.Queued() > 0 {
		select {
		case <-ctx.Done():
			return
		case <-app.engine.Done():
			return
		case <-ticker.C:
		}
	}
	presents := app.headless.Frame().Presents
	for app.headless.Frame().Presents <= presents {
		select {
		case <-ctx.Done():
			return
		case <-app.engine.Done():
			return
		case <-ticker.C:
		}
	}
}
