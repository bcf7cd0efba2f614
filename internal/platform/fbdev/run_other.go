//go:build !linux

package fbdev

import "github.com/rook-computer/drawloop/internal/platform"

func (b *Backend) Run(func(platform.EventLoop) error) error {
	return platform.ErrUnsupported
}
