//go:build !linux

package inject

import "fmt"

// NewSimulator fails on platforms without an input-synthesis primitive.
// The daemon keeps running with expansion disabled.
func NewSimulator() (Simulator, error) {
	return nil, fmt.Errorf("input simulation not supported on this platform")
}
