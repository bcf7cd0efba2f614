package script

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/drawloop/internal/hostapi"
)

func TestWatchRestartsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- call: mark\n  args: [1]\n"), 0o644))

	var (
		mu   sync.Mutex
		seen []any
	)
	r := &Runner{Functions: map[string]hostapi.Func{
		"mark": func(args ...any) (any, error) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, args[0])
			return nil, nil
		},
	}}
	last := func() any {
		mu.Lock()
		defer mu.Unlock()
		if len(seen) == 0 {
			return nil
		}
		return seen[len(seen)-1]
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- r.Watch(ctx, path) }()

	require.Eventually(t, func() bool { return last() == 1 }, 5*time.Second, 5*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("- call: mark\n  args: [2]\n"), 0o644))
	assert.Eventually(t, func() bool { return last() == 2 }, 5*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	r := &Runner{}
	err := r.Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "scene.yaml"))
	assert.ErrorContains(t, err, "watch")
}
