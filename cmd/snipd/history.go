package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"go.klb.dev/snipd/internal/message"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and manage clipboard history",
	}
	cmd.AddCommand(newHistoryListCmd(), newHistoryPinCmd(), newHistoryRmCmd())
	return cmd
}

func newHistoryListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List history entries (pinned first, newest first)",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			resp, err := request(&message.Message{Type: message.TypeHistoryList, Limit: limit})
			if err != nil {
				return err
			}
			if len(resp.Entries) == 0 {
				fmt.Println("history is empty")
				return nil
			}
			for _, e := range resp.Entries {
				pin := " "
				if e.Pinned {
					pin = "*"
				}
				fmt.Printf("%s %s  %s  %s\n",
					pin, e.ID, e.Timestamp.Format("2006-01-02 15:04"), oneLine(e.Preview))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "show at most N entries (0 = all)")
	return cmd
}

func newHistoryPinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pin <id>",
		Short: "Toggle an entry's pin status",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			_, err := request(&message.Message{Type: message.TypeHistoryPin, ID: args[0]})
			return err
		},
	}
}

func newHistoryRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an entry and its payload files",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			_, err := request(&message.Message{Type: message.TypeHistoryDelete, ID: args[0]})
			return err
		},
	}
}

// oneLine flattens a preview for terminal display.
func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\n", "⏎")
	const max = 72
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max]) + "…"
	}
	return s
}
