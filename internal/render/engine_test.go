package render

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/drawloop/internal/command"
	"github.com/rook-computer/drawloop/internal/platform"
	"github.com/rook-computer/drawloop/internal/platform/headless"
	"github.com/rook-computer/drawloop/internal/state"
)

func startHeadless(t *testing.T, w, h int) (*Engine, *headless.Backend) {
	t.Helper()
	backend := headless.New(time.Millisecond)
	e := New(backend, WithWindowConfig(platform.WindowConfig{Title: "test", Width: w, Height: h}))
	require.NoError(t, e.CreateWindow())
	t.Cleanup(func() {
		if e.Phase() != PhaseClosed {
			backend.Send(platform.CloseRequested{})
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Wait(ctx)
	})
	return e, backend
}

func TestNotStarted(t *testing.T) {
	e := New(headless.New(time.Millisecond))
	assert.ErrorIs(t, e.Flush(), ErrNotStarted)
	assert.ErrorIs(t, e.SetColor(command.Red), ErrNotStarted)
	_, err := e.DeltaTime()
	assert.ErrorIs(t, err, ErrNotStarted)
	_, err = e.ScreenDimensions()
	assert.ErrorIs(t, err, ErrNotStarted)
	_, err = e.CurrentColor()
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.Equal(t, PhaseUninitialized, e.Phase())
}

func TestCreateWindowIdempotentUnderRace(t *testing.T) {
	e, _ := startHeadless(t, 8, 8)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, e.CreateWindow())
		}()
	}
	wg.Wait()

	assert.Eventually(t, func() bool { return e.Phase() == PhaseRunning }, 2*time.Second, time.Millisecond)
	dims, err := e.ScreenDimensions()
	require.NoError(t, err)
	assert.Equal(t, state.Dimensions{Width: 8, Height: 8}, dims)
}

func TestPresentedFrameMatchesCommands(t *testing.T) {
	e, backend := startHeadless(t, 4, 4)

	require.NoError(t, e.SetColor(command.Red))
	require.NoError(t, e.DrawRect(command.Pt(0, 0), command.Pt(2, 2)))
	require.NoError(t, e.SetPixel(command.Pt(3, 3), command.White))
	require.NoError(t, e.NewFrame())

	red := command.Red.Pack()
	assert.Eventually(t, func() bool {
		f := backend.Frame()
		return f.At(0, 0) == red && f.At(1, 1) == red && f.At(3, 3) == command.White.Pack()
	}, 2*time.Second, time.Millisecond)

	f := backend.Frame()
	assert.Zero(t, f.At(2, 2))
	c, err := e.CurrentColor()
	require.NoError(t, err)
	assert.Equal(t, command.Red, c)
}

func TestConcurrentProducers(t *testing.T) {
	e, backend := startHeadless(t, 16, 16)

	var wg sync.WaitGroup
	for row := 0; row < 16; row++ {
		wg.Add(1)
		go func(row int) {
			defer wg.Done()
			for x := 0; x < 16; x++ {
				assert.NoError(t, e.SetPixel(command.Pt(x, row), command.Color{R: uint8(row), G: uint8(x), B: 1}))
			}
		}(row)
	}
	wg.Wait()
	require.NoError(t, e.NewFrame())

	assert.Eventually(t, func() bool {
		f := backend.Frame()
		for y := 0; y < 16; y++ {
			for x := 0; x < 16; x++ {
				if f.At(x, y) != (command.Color{R: uint8(y), G: uint8(x), B: 1}).Pack() {
					return false
				}
			}
		}
		return true
	}, 2*time.Second, time.Millisecond)
}

func TestDeltaTimeNonNegative(t *testing.T) {
	e, _ := startHeadless(t, 2, 2)
	for i := 0; i < 3; i++ {
		e.Sleep(2)
		require.NoError(t, e.NewFrame())
	}
	assert.Eventually(t, func() bool {
		dt, err := e.DeltaTime()
		return err == nil && dt > 0
	}, 2*time.Second, time.Millisecond)
}

func TestResizeThroughBackend(t *testing.T) {
	e, backend := startHeadless(t, 4, 4)
	assert.Eventually(t, func() bool { return e.Phase() == PhaseRunning }, 2*time.Second, time.Millisecond)

	backend.Send(platform.Resized{Width: 6, Height: 2})
	assert.Eventually(t, func() bool {
		d, _ := e.ScreenDimensions()
		return d == state.Dimensions{Width: 6, Height: 2}
	}, 2*time.Second, time.Millisecond)
	assert.Eventually(t, func() bool {
		f := backend.Frame()
		return f.Width == 6 && f.Height == 2
	}, 2*time.Second, time.Millisecond)
}

func TestCloseEndsLoop(t *testing.T) {
	e, backend := startHeadless(t, 2, 2)
	backend.Send(platform.CloseRequested{})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, e.Wait(ctx))
	assert.Equal(t, PhaseClosed, e.Phase())
	assert.NoError(t, e.Err())

	// Producers still never fail once started.
	assert.NoError(t, e.Flush())
}

func TestSleepNegativeReturns(t *testing.T) {
	e := New(nil)
	start := time.Now()
	e.Sleep(-5)
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestCoordinatesOutsideInt32Rejected(t *testing.T) {
	e, _ := startHeadless(t, 4, 4)
	far := command.Pt(math.MaxInt32+1, 0)
	assert.ErrorIs(t, e.SetPixel(far, command.Red), command.ErrCoordRange)
	assert.ErrorIs(t, e.DrawRect(command.Pt(0, 0), far), command.ErrCoordRange)
	assert.ErrorIs(t, e.DrawLine(command.Pt(math.MinInt, 0), command.Pt(1, 1)), command.ErrCoordRange)
	assert.Zero(t, e.Queued())

	assert.NoError(t, e.DrawLine(command.Pt(math.MinInt32, 0), command.Pt(math.MaxInt32, 1)))
}

func TestQueuedNeverNegative(t *testing.T) {
	e, _ := startHeadless(t, 4, 4)
	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				_ = e.NewFrame()
			}
		}
	}()
	for i := 0; i < 10000; i++ {
		require.GreaterOrEqual(t, e.Queued(), 0)
	}
	close(stop)
	wg.Wait()
}
