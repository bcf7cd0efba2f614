package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rook-computer/drawloop/internal/command"
)

func TestZeroRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, Snapshot{}, r.Snapshot())
}

func TestSlotsAreIndependent(t *testing.T) {
	r := NewRegistry()
	r.SetDeltaTime(0.016)
	r.SetDimensions(640, 480)
	r.SetColor(command.Red)

	assert.Equal(t, 0.016, r.DeltaTime())
	assert.Equal(t, Dimensions{Width: 640, Height: 480}, r.Dimensions())
	assert.Equal(t, command.Red, r.Color())

	r.SetDeltaTime(0.5)
	assert.Equal(t, Dimensions{Width: 640, Height: 480}, r.Dimensions())
}

// Readers never see a half-written tuple.
func TestDimensionsWrittenWhole(t *testing.T) {
	r := NewRegistry()
	r.SetDimensions(1, 1)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 2; ; i++ {
			select {
			case <-stop:
				return
			default:
				r.SetDimensions(i, i)
			}
		}
	}()

	for i := 0; i < 10000; i++ {
		d := r.Dimensions()
		if d.Width != d.Height {
			close(stop)
			wg.Wait()
			t.Fatalf("torn read: %+v", d)
		}
	}
	close(stop)
	wg.Wait()
}
