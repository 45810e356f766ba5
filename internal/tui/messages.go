package tui

import (
	"github.com/mmcdole/multiki/internal/catalog"
	"github.com/mmcdole/multiki/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// CatalogLoadedMsg signals that the catalog has been loaded
type CatalogLoadedMsg struct {
	Result catalog.Result
	Forced bool
}

// DetailsLoadedMsg carries detail page enrichment for one record
type DetailsLoadedMsg struct {
	URL     string // Record.DetailURL
	Details domain.DetailRecord
}

// PlaybackStartedMsg signals that the player was launched
type PlaybackStartedMsg struct {
	Record domain.Record
}
