package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mmcdole/multiki/internal/player"
	"github.com/mmcdole/multiki/internal/search"
	"github.com/mmcdole/multiki/internal/tui"
)

func runBrowse(cmd *cobra.Command, args []string) error {
	if !isInteractiveTerminal() {
		return runList(cmd, args)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	model := tui.NewModel(a.svc, a.launcher, a.logger)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

	a.logger.Info("starting TUI")
	if _, err := p.Run(); err != nil {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	letter, _ := cmd.Flags().GetString("letter")
	jsonMode, _ := cmd.Flags().GetBool("json")
	refresh, _ := cmd.Flags().GetBool("refresh")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.svc.GetCatalog(cmd.Context(), refresh)
	if err != nil {
		return err
	}

	records := res.Records
	if letter != "" {
		records = search.FilterByLetter(records, letter)
	}

	if jsonMode {
		return writeJSON(os.Stdout, records)
	}
	if len(res.Records) == 0 {
		fmt.Fprintln(os.Stderr, "catalog is empty: the listing page was not recognized")
		return nil
	}
	// Numbers always refer to positions in the full catalog so "play" accepts them
	writeNumbered(os.Stdout, res.Records, records)
	return nil
}

func runLetters(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.svc.GetCatalog(cmd.Context(), false)
	if err != nil {
		return err
	}
	for _, l := range search.Letters(res.Records) {
		fmt.Printf("%s\t%d\n", l, len(search.FilterByLetter(res.Records, l)))
	}
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	jsonMode, _ := cmd.Flags().GetBool("json")
	query := strings.Join(args, " ")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.svc.GetCatalog(cmd.Context(), false)
	if err != nil {
		return err
	}

	results := search.Search(res.Records, query)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	if jsonMode {
		return writeJSON(os.Stdout, results)
	}
	if len(results) == 0 {
		fmt.Fprintf(os.Stderr, "no matches for %q\n", query)
		return nil
	}
	writeNumbered(os.Stdout, res.Records, results)
	return nil
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.svc.GetCatalog(cmd.Context(), true)
	if err != nil {
		return err
	}

	writeRefreshSummary(os.Stdout, a.svc.SourceURL(), res)
	return nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.svc.GetCatalog(cmd.Context(), false)
	if err != nil {
		return err
	}

	url, ok := player.Resolve(res.Records, args[0])
	if !ok {
		return fmt.Errorf("no catalog entry %q", args[0])
	}
	if err := a.launcher.Launch(url); err != nil {
		return fmt.Errorf("launching player: %w", err)
	}
	fmt.Println("playing", url)
	return nil
}

func runDetails(cmd *cobra.Command, args []string) error {
	jsonMode, _ := cmd.Flags().GetBool("json")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.svc.GetCatalog(cmd.Context(), false)
	if err != nil {
		return err
	}

	record, ok := player.Find(res.Records, args[0])
	if !ok {
		return fmt.Errorf("no catalog entry %q", args[0])
	}

	details := a.svc.FetchDetails(cmd.Context(), record.DetailURL)
	if jsonMode {
		return writeJSON(os.Stdout, detailsJSON(record, details))
	}
	writeDetails(os.Stdout, record, details)
	return nil
}
