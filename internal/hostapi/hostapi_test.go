package hostapi

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/drawloop/internal/command"
	"github.com/rook-computer/drawloop/internal/platform"
	"github.com/rook-computer/drawloop/internal/platform/headless"
	"github.com/rook-computer/drawloop/internal/render"
)

func newEngine(t *testing.T) (*render.Engine, *headless.Backend, map[string]Func) {
	t.Helper()
	backend := headless.New(time.Millisecond)
	e := render.New(backend, render.WithWindowConfig(platform.WindowConfig{Title: "test", Width: 4, Height: 4}))
	t.Cleanup(func() {
		if e.Phase() == render.PhaseUninitialized {
			return
		}
		backend.Send(platform.CloseRequested{})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Wait(ctx)
	})
	return e, backend, Functions(e)
}

func TestNames(t *testing.T) {
	_, _, fns := newEngine(t)
	assert.Equal(t, []string{
		"cos", "create_window", "draw_line", "draw_rect", "flush",
		"get_delta_time", "get_screen_dimensions", "new_frame",
		"set_color", "set_pixel", "sin", "sleep", "tan",
	}, Names(fns))
}

func TestBeforeCreateWindow(t *testing.T) {
	_, _, fns := newEngine(t)
	_, err := fns["flush"]()
	assert.ErrorIs(t, err, render.ErrNotStarted)
	_, err = fns["get_delta_time"]()
	assert.ErrorIs(t, err, render.ErrNotStarted)
	_, err = fns["set_color"]([]any{1, 2, 3})
	assert.ErrorIs(t, err, render.ErrNotStarted)
}

func TestDrawThroughHostFunctions(t *testing.T) {
	e, backend, fns := newEngine(t)
	call := func(name string, args ...any) any {
		t.Helper()
		v, err := fns[name](args...)
		require.NoError(t, err, name)
		return v
	}

	assert.Nil(t, call("create_window"))
	assert.Nil(t, call("create_window"))
	require.Eventually(t, func() bool { return e.Phase() == render.PhaseRunning }, 2*time.Second, time.Millisecond)

	assert.Equal(t, []any{4.0, 4.0}, call("get_screen_dimensions"))

	call("set_color", []any{255, 0, 0})
	call("draw_rect", []any{[]any{0, 0}, []any{2, 2}})
	call("set_pixel", []any{3.0, 3.9, []int{0, 0, 255}})
	call("draw_line", [][]int{{0, 3}, {1, 3}})
	call("new_frame")

	assert.Eventually(t, func() bool {
		f := backend.Frame()
		return f.At(1, 1) == command.Red.Pack() &&
			f.At(3, 3) == 0x0000FF &&
			f.At(0, 3) == command.Red.Pack()
	}, 2*time.Second, time.Millisecond)

	dt := call("get_delta_time")
	assert.IsType(t, float64(0), dt)
}

func TestDecodeErrorsReturned(t *testing.T) {
	_, _, fns := newEngine(t)
	_, err := fns["create_window"]()
	require.NoError(t, err)

	_, err = fns["set_color"]([]any{1, 2})
	assert.ErrorIs(t, err, command.ErrShape)
	assert.ErrorContains(t, err, "set_color:")

	_, err = fns["set_color"]([]any{1, 2, 300})
	assert.ErrorIs(t, err, command.ErrChannelRange)

	_, err = fns["draw_line"]([]any{[]any{0, "a"}, []any{1, 1}})
	assert.ErrorIs(t, err, command.ErrNotNumber)
}

func TestArity(t *testing.T) {
	_, _, fns := newEngine(t)
	cases := map[string][]any{
		"create_window": {1},
		"flush":         {1},
		"set_pixel":     {},
		"draw_rect":     {1, 2},
		"sin":           {},
		"sleep":         {1, 2},
	}
	for name, args := range cases {
		_, err := fns[name](args...)
		assert.ErrorIs(t, err, ErrArity, name)
	}
}

func TestTrig(t *testing.T) {
	_, _, fns := newEngine(t)
	v, err := fns["sin"](math.Pi / 2)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, v, 1e-12)

	v, err = fns["cos"](0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, v, 1e-12)

	v, err = fns["tan"](float32(0))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, v, 1e-12)

	_, err = fns["tan"]("x")
	assert.ErrorIs(t, err, command.ErrNotNumber)
}

func TestSleep(t *testing.T) {
	_, _, fns := newEngine(t)
	start := time.Now()
	_, err := fns["sleep"](5)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}
