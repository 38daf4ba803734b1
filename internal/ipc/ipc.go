// Package ipc provides the local socket channel used by CLI sub-commands
// (status, history, snippet) to talk to a running snipd daemon.
//
// The channel is newline-delimited JSON (see internal/wire) over a Unix
// domain socket, or a named pipe on Windows. The daemon listens; CLI
// sub-commands probe for it and fail with a clear error if it is absent.
package ipc

import (
	"net"
	"os"
)

// SocketPath returns the platform-appropriate path for the IPC socket.
//
//   - Linux:   $XDG_RUNTIME_DIR/snipd.sock, falling back to $TMPDIR
//   - macOS:   $TMPDIR/snipd.sock
//   - Windows: \\.\pipe\snipd
//
// Override with $SNIPD_SOCKET on any platform.
func SocketPath() string {
	if s := os.Getenv("SNIPD_SOCKET"); s != "" {
		return s
	}
	return socketPath()
}

// IsRunning reports whether a snipd daemon appears to be listening on the
// IPC socket. It does a cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	c, err := dialIPC(SocketPath())
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates a net.Listener on the IPC socket path, removing any stale
// socket file from a previous (crashed) run first.
func Listen() (net.Listener, error) {
	path := SocketPath()
	_ = os.Remove(path)
	return listenIPC(path)
}

// Dial connects to a running daemon.
func Dial() (net.Conn, error) {
	return dialIPC(SocketPath())
}
