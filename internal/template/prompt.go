package template

import "context"

// Request is a pending user-variable prompt. Whoever owns the UI thread
// receives these, collects the value, and replies on Reply (buffered, one
// value). Closing Reply without a value counts as cancellation.
type Request struct {
	Name    string
	Default string
	Reply   chan string
}

// ChannelPrompter bridges the processing domain to a UI-owning goroutine
// via message passing: each Prompt sends a Request and waits for the reply
// or the context deadline, whichever comes first.
type ChannelPrompter struct {
	Requests chan Request
}

// NewChannelPrompter returns a prompter with a buffered request channel.
func NewChannelPrompter() *ChannelPrompter {
	return &ChannelPrompter{Requests: make(chan Request, 1)}
}

// Prompt implements Prompter.
func (cp *ChannelPrompter) Prompt(ctx context.Context, name, def string) (string, error) {
	req := Request{Name: name, Default: def, Reply: make(chan string, 1)}
	select {
	case cp.Requests <- req:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	select {
	case v, ok := <-req.Reply:
		if !ok {
			return "", context.Canceled
		}
		return v, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
