//go:build linux

package fbdev

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/rook-computer/drawloop/internal/logging"
	"github.com/rook-computer/drawloop/internal/platform"
)

const (
	evKey = 0x01

	// Linux input-event-codes.h
	keyEsc = 1
	keyF4  = 62
)

// inputEvent is one struct input_event without its timestamp.
type inputEvent struct {
	Type  uint16
	Code  uint16
	Value int32
}

// timevalSize is the size of the timestamp that prefixes every record.
var timevalSize = binary.Size(unix.Timeval{})

// decodeInputEvents splits buf into input_event records. A trailing
// partial record is ignored.
func decodeInputEvents(buf []byte, tvSize int) []inputEvent {
	size := tvSize + 8
	var out []inputEvent
	for off := 0; off+size <= len(buf); off += size {
		rec := buf[off+tvSize : off+size]
		out = append(out, inputEvent{
			Type:  binary.LittleEndian.Uint16(rec[0:2]),
			Code:  binary.LittleEndian.Uint16(rec[2:4]),
			Value: int32(binary.LittleEndian.Uint32(rec[4:8])),
		})
	}
	return out
}

// translateKey maps a key record to platform events. Value 2 is autorepeat
// and is dropped.
func translateKey(ev inputEvent) []platform.Event {
	if ev.Type != evKey || ev.Value > 1 {
		return nil
	}
	key := platform.KeyInput{Code: uint32(ev.Code), Pressed: ev.Value == 1}
	switch ev.Code {
	case keyEsc:
		key.Label = platform.KeyEscape
	case keyF4:
		key.Label = platform.KeyF4
	}
	out := []platform.Event{key}
	if key.Pressed && key.Label != "" {
		out = append(out, platform.CloseRequested{})
	}
	return out
}

// watchKeyboards reads every /dev/input/event* device until ctx is done.
// It is best effort: without input devices it logs and returns.
func watchKeyboards(ctx context.Context, logger logging.Logger, out chan<- platform.Event) {
	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil || len(paths) == 0 {
		logger.Infof("input", "no evdev devices found, Escape/F4 exit disabled")
		return
	}
	for _, p := range paths {
		go watchDevice(ctx, logger, p, out)
	}
}

func watchDevice(ctx context.Context, logger logging.Logger, path string, out chan<- platform.Event) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		logger.Debugf("input", "open %s: %v", path, err)
		return
	}
	f := os.NewFile(uintptr(fd), path)
	defer f.Close()

	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(pollFds, 250); err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		if pollFds[0].Revents&unix.POLLIN == 0 {
			continue
		}

		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}
		for _, rec := range decodeInputEvents(buf[:n], timevalSize) {
			for _, ev := range translateKey(rec) {
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				default:
					logger.Debugf("input", "event queue full, dropping %T", ev)
				}
			}
		}
	}
}
