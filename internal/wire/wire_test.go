package wire

import (
	"net"
	"testing"

	"go.klb.dev/snipd/internal/message"
)

func TestRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		wc := New(server)
		msg, err := wc.ReadMsg()
		if err != nil {
			t.Errorf("server ReadMsg() error = %v", err)
			return
		}
		if msg.Type != message.TypeSnippetAdd || msg.Trigger != "!sig" {
			t.Errorf("server got %+v", msg)
		}
		_ = wc.WriteMsg(&message.Message{Type: message.TypeOK, ID: "abc"})
	}()

	wc := New(client)
	if err := wc.WriteMsg(&message.Message{
		Type:    message.TypeSnippetAdd,
		Trigger: "!sig",
		Content: "multi\nline\ncontent",
	}); err != nil {
		t.Fatalf("WriteMsg() error = %v", err)
	}
	resp, err := wc.ReadMsg()
	if err != nil {
		t.Fatalf("ReadMsg() error = %v", err)
	}
	if resp.Type != message.TypeOK || resp.ID != "abc" {
		t.Errorf("response = %+v, want OK/abc", resp)
	}
}

func TestDecodeRejectsMissingType(t *testing.T) {
	if _, err := message.Decode([]byte(`{"id":"x"}`)); err == nil {
		t.Error("Decode accepted a message without a type")
	}
}
