package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/multiki/internal/catalog"
	"github.com/mmcdole/multiki/internal/domain"
)

// CatalogService is what the browser needs from the catalog orchestrator
type CatalogService interface {
	GetCatalog(ctx context.Context, force bool) (catalog.Result, error)
	FetchDetails(ctx context.Context, detailURL string) domain.DetailRecord
}

// Launcher hands a media URL to an external player
type Launcher interface {
	Launch(url string) error
}

// Command factories for async operations. The transport bounds every
// request with its own timeout.

// LoadCatalogCmd loads the catalog, bypassing the snapshot when force is set
func LoadCatalogCmd(svc CatalogService, force bool) tea.Cmd {
	return func() tea.Msg {
		res, err := svc.GetCatalog(context.Background(), force)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading catalog"}
		}
		return CatalogLoadedMsg{Result: res, Forced: force}
	}
}

// FetchDetailsCmd loads the detail page for a record
func FetchDetailsCmd(svc CatalogService, detailURL string) tea.Cmd {
	return func() tea.Msg {
		return DetailsLoadedMsg{URL: detailURL, Details: svc.FetchDetails(context.Background(), detailURL)}
	}
}

// PlayCmd launches the record's media URL
func PlayCmd(launcher Launcher, record domain.Record) tea.Cmd {
	return func() tea.Msg {
		if err := launcher.Launch(record.MediaURL); err != nil {
			return ErrMsg{Err: err, Context: "launching player"}
		}
		return PlaybackStartedMsg{Record: record}
	}
}
