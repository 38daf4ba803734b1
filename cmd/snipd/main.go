// snipd: clipboard history + keystroke text expansion daemon.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.klb.dev/snipd/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "snipd",
		Short: "Clipboard history and text expansion daemon",
		Long: `snipd records your clipboard history and expands typed snippet
triggers in whatever application has focus.

Run "snipd serve" to start the daemon. Use "snipd history", "snipd snippet"
and "snipd status" to talk to it over the local IPC socket.

Config file search order (first found wins):
  /etc/snipd/snipd.toml
  $HOME/.config/snipd/snipd.toml
  path supplied via --config

All flags can be set via SNIPD_<FLAG> env vars or config-file keys.
See "snipd serve --help" for the full flag reference.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newStatusCmd(),
		newHistoryCmd(),
		newSnippetCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("snipd %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
func resolveLogging(interactive bool, formatStr, levelStr string) {
	format := logging.ParseFormat(formatStr)
	level := logging.ParseLevel(levelStr)
	if levelStr == "" {
		if interactive {
			level = logging.ParseLevel("debug")
		} else {
			level = logging.ParseLevel("info")
		}
	}
	logging.Setup(format, level)
}
