package app

import (
	"fmt"
	"image/png"
	"os"

	"github.com/rook-computer/drawloop/internal/platform/headless"
)

// WriteSnapshot encodes f as a PNG file at path.
func WriteSnapshot(path string, f headless.Frame) error {
	if f.Width == 0 || f.Height == 0 {
		return fmt.Errorf("no frame presented")
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(out, f.Image()); err != nil {
		out.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return out.Close()
}
