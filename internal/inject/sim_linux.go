//go:build linux

package inject

import (
	"encoding/binary"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// uinput ioctls and key codes for the virtual keyboard that backs the
// simulator on Linux.
const (
	uiSetEvBit   = 0x40045564
	uiSetKeyBit  = 0x40045565
	uiDevCreate  = 0x5501
	uiDevDestroy = 0x5502

	evKey = 0x01
	evSyn = 0x00

	keyBackspace = 14
	keyLeftCtrl  = 29
	keyLeftShift = 42
	keyV         = 47
	keyLeft      = 105

	// uinput_user_dev: name[80] + input_id + ff_effects_max + 4×64 abs arrays
	userDevSize = 80 + 8 + 4 + 4*64*4

	// settle pause after device creation so the compositor picks it up
	createSettle = 200 * time.Millisecond
)

var simKeys = []int{keyBackspace, keyLeftCtrl, keyLeftShift, keyV, keyLeft}

// uinputSimulator synthesizes key gestures through a virtual uinput
// keyboard. Creating /dev/uinput requires elevated input permission; a
// denied open is the permission-gate failure.
type uinputSimulator struct {
	fd int
}

// NewSimulator opens /dev/uinput and registers a virtual keyboard exposing
// only the keys the injection sequences need.
func NewSimulator() (Simulator, error) {
	fd, err := unix.Open("/dev/uinput", unix.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open /dev/uinput: %w", err)
	}
	s := &uinputSimulator{fd: fd}

	if err := unix.IoctlSetInt(fd, uiSetEvBit, evKey); err != nil {
		s.close()
		return nil, fmt.Errorf("enable key events: %w", err)
	}
	for _, k := range simKeys {
		if err := unix.IoctlSetInt(fd, uiSetKeyBit, k); err != nil {
			s.close()
			return nil, fmt.Errorf("enable key %d: %w", k, err)
		}
	}

	dev := make([]byte, userDevSize)
	copy(dev, "snipd virtual keyboard")
	if _, err := unix.Write(fd, dev); err != nil {
		s.close()
		return nil, fmt.Errorf("register device: %w", err)
	}
	if err := unix.IoctlSetInt(fd, uiDevCreate, 0); err != nil {
		s.close()
		return nil, fmt.Errorf("create device: %w", err)
	}
	time.Sleep(createSettle)
	return s, nil
}

func (s *uinputSimulator) close() {
	_ = unix.Close(s.fd)
	s.fd = -1
}

// Close destroys the virtual device.
func (s *uinputSimulator) Close() {
	if s.fd >= 0 {
		_ = unix.IoctlSetInt(s.fd, uiDevDestroy, 0)
		s.close()
	}
}

// emit writes one input_event followed by a SYN_REPORT.
func (s *uinputSimulator) emit(typ, code uint16, value int32) error {
	ev := make([]byte, 24)
	binary.LittleEndian.PutUint16(ev[16:], typ)
	binary.LittleEndian.PutUint16(ev[18:], code)
	binary.LittleEndian.PutUint32(ev[20:], uint32(value))
	if _, err := unix.Write(s.fd, ev); err != nil {
		return fmt.Errorf("emit event: %w", err)
	}
	syn := make([]byte, 24)
	binary.LittleEndian.PutUint16(syn[16:], evSyn)
	if _, err := unix.Write(s.fd, syn); err != nil {
		return fmt.Errorf("emit syn: %w", err)
	}
	return nil
}

// tapKey presses and releases code while holding the given modifiers.
func (s *uinputSimulator) tapKey(code uint16, mods ...uint16) error {
	for _, m := range mods {
		if err := s.emit(evKey, m, 1); err != nil {
			return err
		}
	}
	if err := s.emit(evKey, code, 1); err != nil {
		return err
	}
	if err := s.emit(evKey, code, 0); err != nil {
		return err
	}
	for i := len(mods) - 1; i >= 0; i-- {
		if err := s.emit(evKey, mods[i], 0); err != nil {
			return err
		}
	}
	return nil
}

func (s *uinputSimulator) Backspace() error       { return s.tapKey(keyBackspace) }
func (s *uinputSimulator) SelectBackward() error  { return s.tapKey(keyLeft, keyLeftShift) }
func (s *uinputSimulator) DeleteSelection() error { return s.tapKey(keyBackspace) }
func (s *uinputSimulator) Paste() error           { return s.tapKey(keyV, keyLeftCtrl) }
func (s *uinputSimulator) MoveLeft() error        { return s.tapKey(keyLeft) }
