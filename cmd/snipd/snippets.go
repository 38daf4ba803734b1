package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.klb.dev/snipd/internal/message"
)

func newSnippetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snippet",
		Short: "Manage expansion snippets",
	}
	cmd.AddCommand(newSnippetListCmd(), newSnippetAddCmd(), newSnippetRmCmd())
	return cmd
}

func newSnippetListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered snippets",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			resp, err := request(&message.Message{Type: message.TypeSnippetList})
			if err != nil {
				return err
			}
			if len(resp.Snippets) == 0 {
				fmt.Println("no snippets registered")
				return nil
			}
			for _, sn := range resp.Snippets {
				fmt.Printf("%s  %-20s  %s\n", sn.ID, sn.Trigger, oneLine(sn.Content))
			}
			return nil
		},
	}
}

func newSnippetAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <trigger> <content>",
		Short: "Register a new snippet",
		Long: `Registers a snippet. The trigger is 2-20 printable characters and must
be unique (case-insensitive). The content may contain built-in variables
({date}, {time}, {clipboard}, ...), user variables ({name} or {name:default}),
conditionals ({if:cond:true:false}) and one caret marker (|).`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			resp, err := request(&message.Message{
				Type:    message.TypeSnippetAdd,
				Trigger: args[0],
				Content: args[1],
			})
			if err != nil {
				return err
			}
			fmt.Printf("added %s\n", resp.ID)
			return nil
		},
	}
}

func newSnippetRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a snippet",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			_, err := request(&message.Message{Type: message.TypeSnippetDelete, ID: args[0]})
			return err
		},
	}
}
