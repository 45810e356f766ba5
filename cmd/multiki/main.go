package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mmcdole/multiki/internal/domain"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err == nil {
		return
	}

	if errors.Is(err, domain.ErrUnreachable) {
		fmt.Fprintln(os.Stderr, "source unreachable:", err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	stop()
	os.Exit(1)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "multiki",
		Short: "Browse and play the multiki.arjlover.net cartoon catalog",
		Long: `Multiki - browse, search, and play Soviet cartoons from the
multiki.arjlover.net catalog directly in your terminal.

The catalog page is cached locally for a day; use "refresh" to fetch it again.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runBrowse,
	}

	// Browse command
	browseCmd := &cobra.Command{
		Use:   "browse",
		Short: "Launch the interactive browser",
		Args:  cobra.NoArgs,
		RunE:  runBrowse,
	}

	// List command (non-interactive listing)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the catalog in plain text",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	listCmd.Flags().String("letter", "", "Only list titles filed under this letter (# for digits)")
	listCmd.Flags().Bool("json", false, "Output JSON")
	listCmd.Flags().Bool("refresh", false, "Fetch the catalog even when the cached copy is fresh")

	// Letters command
	lettersCmd := &cobra.Command{
		Use:   "letters",
		Short: "Show the letter index of the catalog",
		Args:  cobra.NoArgs,
		RunE:  runLetters,
	}

	// Search command
	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search catalog titles",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}
	searchCmd.Flags().Int("limit", 20, "Maximum number of results (0 = unlimited)")
	searchCmd.Flags().Bool("json", false, "Output JSON")

	// Refresh command
	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Discard the cached catalog and fetch it again",
		Args:  cobra.NoArgs,
		RunE:  runRefresh,
	}

	// Play command
	playCmd := &cobra.Command{
		Use:   "play <number|url>",
		Short: "Play a cartoon by its list number or media URL",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlay,
	}

	// Details command
	detailsCmd := &cobra.Command{
		Use:   "details <number|url>",
		Short: "Show detail page information for a cartoon",
		Args:  cobra.ExactArgs(1),
		RunE:  runDetails,
	}
	detailsCmd.Flags().Bool("json", false, "Output JSON")

	rootCmd.AddCommand(browseCmd, listCmd, lettersCmd, searchCmd, refreshCmd, playCmd, detailsCmd)
	return rootCmd
}
