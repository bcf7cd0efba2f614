package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rook-computer/drawloop/internal/logging"
)

// reloadDelay coalesces the burst of events an editor save produces.
const reloadDelay = 100 * time.Millisecond

// Watch runs the script at path and starts it again from the top each time
// the file changes. A running pass is cancelled before the next one starts.
// Parse and call errors are logged and the watcher waits for the next
// change. Watch returns when ctx is done.
func (r *Runner) Watch(ctx context.Context, path string) error {
	logger := r.Logger
	if logger == nil {
		logger = logging.NoopLogger{}
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	defer w.Close()
	// Editors often replace the file, so watch its directory.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	target := filepath.Clean(path)

	cancelRun := context.CancelFunc(func() {})
	done := make(chan error)
	stopped := make(chan struct{})
	var reload <-chan time.Time
	var timer *time.Timer
	start := func() {
		cancelRun()
		runCtx, cancel := context.WithCancel(ctx)
		cancelRun = cancel
		go func() {
			err := r.RunFile(runCtx, path)
			select {
			case done <- err:
			case <-stopped:
			}
		}()
	}
	start()
	defer func() {
		cancelRun()
		close(stopped)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-done:
			switch {
			case err == nil:
				logger.Infof("script", "%s finished, waiting for changes", path)
			case errors.Is(err, context.Canceled):
			default:
				logger.Errorf("script", "%s: %v", path, err)
			}
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDelay)
			} else {
				timer.Reset(reloadDelay)
			}
			reload = timer.C
		case <-reload:
			reload = nil
			logger.Infof("script", "%s changed, restarting", path)
			start()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Errorf("script", "watch %s: %v", path, err)
		}
	}
}

// RunFile parses and runs the script at path once.
func (r *Runner) RunFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	s, err := Parse(f)
	f.Close()
	if err != nil {
		return err
	}
	return r.Run(ctx, s)
}
