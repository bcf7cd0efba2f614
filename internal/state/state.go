// Package state holds the values the render goroutine publishes for other
// goroutines to read.
package state

import (
	"sync"

	"github.com/rook-computer/drawloop/internal/command"
)

type Dimensions struct {
	Width  float64
	Height float64
}

// Snapshot is a copy of every slot. Each field is read under its own
// lock, so two fields may come from different frames.
type Snapshot struct {
	DeltaTime  float64
	Dimensions Dimensions
	Color      command.Color
}

// slot guards a single published value.
type slot[T any] struct {
	mu sync.RWMutex
	v  T
}

func (s *slot[T]) load() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v
}

func (s *slot[T]) store(v T) {
	s.mu.Lock()
	s.v = v
	s.mu.Unlock()
}

// Registry is written only by the render goroutine and read by anyone.
type Registry struct {
	deltaTime  slot[float64]
	dimensions slot[Dimensions]
	color      slot[command.Color]
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) DeltaTime() float64 { return r.deltaTime.load() }

func (r *Registry) SetDeltaTime(seconds float64) { r.deltaTime.store(seconds) }

func (r *Registry) Dimensions() Dimensions { return r.dimensions.load() }

func (r *Registry) SetDimensions(width, height int) {
	r.dimensions.store(Dimensions{Width: float64(width), Height: float64(height)})
}

func (r *Registry) Color() command.Color { return r.color.load() }

func (r *Registry) SetColor(c command.Color) { r.color.store(c) }

func (r *Registry) Snapshot() Snapshot {
	return Snapshot{
		DeltaTime:  r.DeltaTime(),
		Dimensions: r.Dimensions(),
		Color:      r.Color(),
	}
}
