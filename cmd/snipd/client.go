package main

import (
	"fmt"

	"go.klb.dev/snipd/internal/ipc"
	"go.klb.dev/snipd/internal/message"
	"go.klb.dev/snipd/internal/wire"
)

// request performs one IPC round-trip against a running daemon.
func request(msg *message.Message) (*message.Message, error) {
	conn, err := ipc.Dial()
	if err != nil {
		return nil, fmt.Errorf("no snipd daemon running (socket %s): %w", ipc.SocketPath(), err)
	}
	defer conn.Close()

	wc := wire.New(conn)
	if err := wc.WriteMsg(msg); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	resp, err := wc.ReadMsg()
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.Type == message.TypeError {
		return nil, fmt.Errorf("%s", resp.Error)
	}
	return resp, nil
}
