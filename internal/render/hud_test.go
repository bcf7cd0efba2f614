package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/drawloop/internal/command"
	"github.com/rook-computer/drawloop/internal/state"
)

func TestHUDText(t *testing.T) {
	h, err := NewHUD(12, command.White)
	require.NoError(t, err)
	snap := state.Snapshot{DeltaTime: 0.0167, Dimensions: state.Dimensions{Width: 640, Height: 480}}
	assert.Equal(t, "dt 16.7ms  640x480", h.Text(snap))
}

func TestHUDDrawsOnlyTopRows(t *testing.T) {
	h, err := NewHUD(12, command.White)
	require.NoError(t, err)

	const w, ht = 200, 60
	buf := make([]uint32, w*ht)
	h.Draw(buf, w, ht, state.Snapshot{DeltaTime: 0.5, Dimensions: state.Dimensions{Width: w, Height: ht}})

	lit := 0
	for y := 0; y < ht; y++ {
		for x := 0; x < w; x++ {
			if buf[y*w+x] != 0 {
				require.Less(t, y, h.lineHeight(), "pixel lit below the status line")
				assert.Equal(t, command.White.Pack(), buf[y*w+x])
				lit++
			}
		}
	}
	assert.Positive(t, lit)
}

func TestHUDTinySurface(t *testing.T) {
	h, err := NewHUD(0, command.White)
	require.NoError(t, err)
	h.Draw(nil, 0, 0, state.Snapshot{})
	buf := make([]uint32, 4)
	h.Draw(buf, 2, 2, state.Snapshot{})
}
