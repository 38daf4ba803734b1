//go:build !linux

package keyhook

import "fmt"

type unsupportedTap struct{}

// NewTap returns a tap whose Install always fails on platforms without a
// key-event source. The daemon keeps running with expansion disabled.
func NewTap(string) Tap { return unsupportedTap{} }

func (unsupportedTap) Install(func(Event)) error {
	return fmt.Errorf("key-event tap not supported on this platform")
}

func (unsupportedTap) Remove() {}
