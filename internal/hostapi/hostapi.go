// Package hostapi exposes the engine through loosely typed functions, the
// calling convention used by embedding hosts and the script runner.
package hostapi

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/rook-computer/drawloop/internal/command"
	"github.com/rook-computer/drawloop/internal/render"
)

var ErrArity = errors.New("wrong number of arguments")

// Func is one host-callable function. Commands return a nil result.
type Func func(args ...any) (any, error)

// Functions returns the host function table bound to e.
func Functions(e *render.Engine) map[string]Func {
	fns := map[string]Func{
		"create_window": nullary(func() (any, error) {
			return nil, e.CreateWindow()
		}),
		"get_delta_time": nullary(func() (any, error) {
			dt, err := e.DeltaTime()
			if err != nil {
				return nil, err
			}
			return dt, nil
		}),
		"get_screen_dimensions": nullary(func() (any, error) {
			d, err := e.ScreenDimensions()
			if err != nil {
				return nil, err
			}
			return []any{d.Width, d.Height}, nil
		}),
		"sleep": unaryFloat(func(ms float64) (any, error) {
			e.Sleep(ms)
			return nil, nil
		}),
		"sin": unaryFloat(func(x float64) (any, error) { return math.Sin(x), nil }),
		"cos": unaryFloat(func(x float64) (any, error) { return math.Cos(x), nil }),
		"tan": unaryFloat(func(x float64) (any, error) { return math.Tan(x), nil }),
	}
	for _, k := range []command.Kind{command.KindSetColor, command.KindSetPixel, command.KindDrawRect, command.KindDrawLine} {
		fns[string(k)] = submitPayload(e, k)
	}
	for _, k := range []command.Kind{command.KindFlush, command.KindNewFrame} {
		kind := k
		fns[string(k)] = nullary(func() (any, error) {
			cmd, err := command.Decode(string(kind), nil)
			if err != nil {
				return nil, err
			}
			return nil, e.Submit(cmd)
		})
	}
	for name, fn := range fns {
		fns[name] = named(name, fn)
	}
	return fns
}

// named prefixes errors from fn with the function name.
func named(name string, fn Func) Func {
	return func(args ...any) (any, error) {
		v, err := fn(args...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return v, nil
	}
}

// Names lists the functions in fns in sorted order.
func Names(fns map[string]Func) []string {
	names := make([]string, 0, len(fns))
	for name := range fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// submitPayload decodes the single payload argument as a command of kind k.
// Decode errors are returned to the caller and nothing is enqueued.
func submitPayload(e *render.Engine, k command.Kind) Func {
	return func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: want 1, got %d", ErrArity, len(args))
		}
		cmd, err := command.Decode(string(k), args[0])
		if err != nil {
			return nil, err
		}
		return nil, e.Submit(cmd)
	}
}

func nullary(fn func() (any, error)) Func {
	return func(args ...any) (any, error) {
		if len(args) != 0 {
			return nil, fmt.Errorf("%w: want 0, got %d", ErrArity, len(args))
		}
		return fn()
	}
}

func unaryFloat(fn func(float64) (any, error)) Func {
	return func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: want 1, got %d", ErrArity, len(args))
		}
		x, err := command.Float(args[0])
		if err != nil {
			return nil, err
		}
		return fn(x)
	}
}
