package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.klb.dev/snipd/internal/message"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show status of the running daemon",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			resp, err := request(&message.Message{Type: message.TypeStatus})
			if err != nil {
				return err
			}
			st := resp.Status
			if st == nil {
				return fmt.Errorf("malformed status response")
			}
			fmt.Printf("snipd %s  up %s\n", st.Version, st.Uptime)
			fmt.Printf("  clipboard: %s\n", st.ClipboardBackend)
			fmt.Printf("  history:   %s (%d entries, %d pinned, cap %d)\n",
				onOff(st.HistoryActive), st.HistoryCount, st.PinnedCount, st.RetentionCap)
			fmt.Printf("  expansion: %s (%d snippets)\n",
				onOff(st.ExpansionActive), st.SnippetCount)
			return nil
		},
	}
}

func onOff(b bool) string {
	if b {
		return "active"
	}
	return "inactive"
}
