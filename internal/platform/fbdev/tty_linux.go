//go:build linux

package fbdev

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// KD console modes from linux/kd.h
const (
	kdText     = 0x00
	kdGraphics = 0x01
	kdSetMode  = 0x4B3A
)

const (
	hideCursor = "\x1b[?25l"
	showCursor = "\x1b[?25h"
)

// consolePaths are tried in order: the active VT, then the current console.
var consolePaths = []string{"/dev/tty", "/dev/tty0"}

func setConsoleMode(mode int) error {
	var errs []error
	for _, p := range consolePaths {
		err := ioctlConsole(p, mode)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func ioctlConsole(path string, mode int) error {
	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer unix.Close(fd)
	if err := unix.IoctlSetInt(fd, kdSetMode, mode); err != nil {
		return fmt.Errorf("KDSETMODE %d on %s: %w", mode, path, err)
	}
	return nil
}

func writeConsole(s string) error {
	var errs []error
	for _, p := range consolePaths {
		f, err := os.OpenFile(p, os.O_WRONLY, 0)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		_, err = f.WriteString(s)
		f.Close()
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return fmt.Errorf("write VT: %w", errors.Join(errs...))
}
