package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bellhop",
		Short: "Headless hotel client runner",
		Long: `Bellhop runs headless game client sessions against a hotel server.

Each configured account gets its own connection: the signed key
exchange, ticket authentication, and a live room presence that can
walk, chat, and answer the server's keepalives. An operational HTTP
endpoint exposes metrics and per-session status.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		runCmd(),
		checkCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
