//go:build !linux && !darwin && !windows

package clip

// New returns the headless stub on platforms without clipboard support.
func New() Backend { return &headlessBackend{} }
