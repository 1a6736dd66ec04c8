package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/museumstyle/internal/log"
)

// NewRootCmd creates the root command for museumstyle.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "museumstyle",
		Short: "Build a museum dataset styled after each museum's most viewed painting",
		Long: `museumstyle pairs every museum with the most viewed painting it holds,
fetches both images from Wikimedia, renders the museum photo in the style of
the painting and writes the result as a JavaScript dataset for a web page.

Museum and painting records come from a SQL store of Wikipedia pages
(PostgreSQL by default). Parsed records and downloaded images are cached on
disk, so a re-run only does the work that is missing.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	cmd.AddCommand(NewBuildCmd())
	cmd.AddCommand(NewResolveCmd())
	cmd.AddCommand(NewExtractCmd())
	cmd.AddCommand(NewCacheCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the credential-redacting logger for the CLI. Logs go
// to stderr so that stdout carries only command output.
func setupLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	if jsonLogs, err := cmd.Flags().GetBool("log-json"); err == nil && jsonLogs {
		return log.NewJSONLogger(cmd.ErrOrStderr(), verbose)
	}
	return log.NewLogger(cmd.ErrOrStderr(), verbose)
}
