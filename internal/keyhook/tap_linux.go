//go:build linux

package keyhook

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

// evdev event framing: struct input_event on 64-bit is a 16-byte timeval
// followed by type (u16), code (u16), value (s32).
const eventSize = 24

const (
	evKey = 0x01

	keyLeftShift  = 42
	keyRightShift = 54

	keyDown = 1
	keyUp   = 0
)

// evdevTap reads key events from a /dev/input event device. Opening the
// device requires membership in the input group (or root); a denied open
// is the permission-gate failure surfaced through Interceptor.Start.
type evdevTap struct {
	device string

	fd   int
	done chan struct{}
	wg   sync.WaitGroup
}

// NewTap returns the evdev tap. device may be empty, in which case the
// first keyboard-capable event device is auto-detected.
func NewTap(device string) Tap {
	return &evdevTap{device: device, fd: -1}
}

func (t *evdevTap) Install(fn func(Event)) error {
	path := t.device
	if path == "" {
		var err error
		path, err = detectKeyboard()
		if err != nil {
			return err
		}
	}
	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	t.fd = fd
	t.done = make(chan struct{})
	slog.Debug("reading key events", "device", path)

	t.wg.Add(1)
	go t.readLoop(fn)
	return nil
}

// Remove synchronously disables the tap: the device is closed, the read
// loop unblocks with an error, and Remove returns once it has exited.
func (t *evdevTap) Remove() {
	if t.fd < 0 {
		return
	}
	close(t.done)
	_ = unix.Close(t.fd)
	t.fd = -1
	t.wg.Wait()
}

func (t *evdevTap) readLoop(fn func(Event)) {
	defer t.wg.Done()

	buf := make([]byte, eventSize*64)
	shift := false
	for {
		n, err := unix.Read(t.fd, buf)
		if err != nil || n < eventSize {
			select {
			case <-t.done:
			default:
				slog.Warn("key event read failed", "err", err)
			}
			return
		}
		for off := 0; off+eventSize <= n; off += eventSize {
			typ := binary.LittleEndian.Uint16(buf[off+16:])
			code := binary.LittleEndian.Uint16(buf[off+18:])
			value := int32(binary.LittleEndian.Uint32(buf[off+20:]))
			if typ != evKey {
				continue
			}
			if code == keyLeftShift || code == keyRightShift {
				shift = value != keyUp
				continue
			}
			if value == keyDown {
				fn(Event{Code: code, Shift: shift})
			}
		}
	}
}

// detectKeyboard scans /proc/bus/input/devices for the first handler whose
// event bitmap matches a standard keyboard (EV=120013).
func detectKeyboard() (string, error) {
	f, err := os.Open("/proc/bus/input/devices")
	if err != nil {
		return "", fmt.Errorf("enumerate input devices: %w", err)
	}
	defer f.Close()

	var handler string
	isKeyboard := false
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if isKeyboard && handler != "" {
				return "/dev/input/" + handler, nil
			}
			handler, isKeyboard = "", false
		case strings.HasPrefix(line, "H: Handlers="):
			for _, h := range strings.Fields(strings.TrimPrefix(line, "H: Handlers=")) {
				if strings.HasPrefix(h, "event") {
					handler = h
				}
			}
		case strings.HasPrefix(line, "B: EV="):
			isKeyboard = strings.TrimPrefix(line, "B: EV=") == "120013"
		}
	}
	if isKeyboard && handler != "" {
		return "/dev/input/" + handler, nil
	}
	return "", fmt.Errorf("no keyboard event device found")
}
