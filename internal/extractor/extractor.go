// Package extractor recovers catalog records from listing markup.
//
// Extraction is an exclusive fallback chain: strategies run in priority order
// and the first one that yields at least one valid record wins. Results of
// later strategies are never merged in.
package extractor

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/multiki/internal/domain"
)

// StrategyFunc extracts records from decoded markup. It must not fail; an
// unrecognized page yields no records.
type StrategyFunc func(text string, base *url.URL) []domain.Record

// Strategy is one named extraction algorithm.
type Strategy struct {
	Name string
	Func StrategyFunc
}

// Strategy names
const (
	StrategyTableRow   = "table-row"
	StrategyAnchorPair = "anchor-pair"
	StrategyBareLink   = "bare-link"
)

// DefaultStrategies is the fixed priority order.
var DefaultStrategies = []Strategy{
	{Name: StrategyTableRow, Func: TableRows},
	{Name: StrategyAnchorPair, Func: AnchorPairs},
	{Name: StrategyBareLink, Func: BareLinks},
}

// Extractor runs the strategy chain and normalizes the winner's records.
type Extractor struct {
	strategies []Strategy
	logger     *slog.Logger
}

// New creates an extractor using DefaultStrategies.
func New(logger *slog.Logger) *Extractor {
	return NewWithStrategies(DefaultStrategies, logger)
}

// NewWithStrategies creates an extractor with a custom chain.
func NewWithStrategies(strategies []Strategy, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{strategies: strategies, logger: logger}
}

// Extract returns the records found in text. The result is never nil.
func (e *Extractor) Extract(text, baseURL string) []domain.Record {
	records, _ := e.ExtractWithStrategy(text, baseURL)
	return records
}

// ExtractWithStrategy is Extract that also names the winning strategy,
// "" when nothing was recognized.
func (e *Extractor) ExtractWithStrategy(text, baseURL string) ([]domain.Record, string) {
	base, err := url.Parse(baseURL)
	if err != nil || !base.IsAbs() {
		e.logger.Warn("invalid base URL, nothing extracted", "base", baseURL)
		return []domain.Record{}, ""
	}

	for _, s := range e.strategies {
		records := finalize(s.Func(text, base))
		if len(records) == 0 {
			e.logger.Debug("strategy found nothing", "strategy", s.Name)
			continue
		}
		attachThumbnails(text, base, records)
		e.logger.Debug("strategy matched", "strategy", s.Name, "records", len(records))
		return records, s.Name
	}

	e.logger.Info("no strategy recognized the page", "bytes", len(text))
	return []domain.Record{}, ""
}

// finalize drops records that break the catalog invariants and fills in
// derived fields.
func finalize(records []domain.Record) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		r.Title = cleanText(r.Title)
		if !r.Valid() {
			continue
		}
		if r.Plot == "" {
			r.Plot = BuildPlot(r.Duration, r.Size, r.Resolution)
		}
		out = append(out, r)
	}
	return out
}

func parseDocument(text string) (*goquery.Document, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil, false
	}
	return doc, true
}
