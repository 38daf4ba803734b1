package clip

// headlessBackend is a no-op backend for environments without a display.
// The daemon keeps running so the IPC surface stays available.
type headlessBackend struct{}

func (*headlessBackend) Name() string           { return "headless (no clipboard)" }
func (*headlessBackend) ReadText() []byte       { return nil }
func (*headlessBackend) ReadRich() []Rich       { return nil }
func (*headlessBackend) WriteText([]byte) error { return nil }
func (*headlessBackend) ChangeCount() uint64    { return 0 }
func (*headlessBackend) Close()                 {}
