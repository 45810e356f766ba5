package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/multiki/internal/domain"
)

// FilterResult is one Filter match with metadata for highlighting
type FilterResult struct {
	Record         domain.Record
	Index          int   // Position in the source slice
	MatchedIndexes []int // Rune positions in Record.Title that matched
	Score          int   // Higher is better
}

// Index implements sahilm/fuzzy.Source over record titles
type Index struct {
	records     []domain.Record
	lowerTitles []string // Pre-computed lowercase titles
}

// NewIndex pre-computes lowercase titles for repeated filtering.
func NewIndex(records []domain.Record) *Index {
	idx := &Index{records: records, lowerTitles: make([]string, len(records))}
	for i, r := range records {
		idx.lowerTitles[i] = strings.ToLower(r.Title)
	}
	return idx
}

// String returns the lowercase title at index i (implements fuzzy.Source)
func (idx *Index) String(i int) string { return idx.lowerTitles[i] }

// Len returns the number of records (implements fuzzy.Source)
func (idx *Index) Len() int { return len(idx.records) }

// Filter returns the records whose titles contain the query characters in
// order, best first.
func (idx *Index) Filter(query string) []FilterResult {
	if strings.TrimSpace(query) == "" || idx.Len() == 0 {
		return nil
	}

	matches := fuzzy.FindFrom(strings.ToLower(query), idx)

	results := make([]FilterResult, len(matches))
	for i, m := range matches {
		results[i] = FilterResult{
			Record:         idx.records[m.Index],
			Index:          m.Index,
			MatchedIndexes: runeIndexes(m.Str, m.MatchedIndexes),
			Score:          m.Score,
		}
	}
	return results
}

// Filter is NewIndex(records).Filter(query).
func Filter(records []domain.Record, query string) []FilterResult {
	return NewIndex(records).Filter(query)
}

// Search ranks the records whose titles fuzzily contain query, ignoring case
// and diacritics (so "ежик" finds "Ёжик"). Equal ranks keep catalog order.
// An empty query returns nil.
func Search(records []domain.Record, query string) []domain.Record {
	query = strings.TrimSpace(query)
	if query == "" || len(records) == 0 {
		return nil
	}

	titles := make([]string, len(records))
	for i, r := range records {
		titles[i] = r.Title
	}

	ranks := lfuzzy.RankFindNormalizedFold(query, titles)

	// Sort by distance (lower is better)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	results := make([]domain.Record, len(ranks))
	for i, rank := range ranks {
		results[i] = records[rank.OriginalIndex]
	}
	return results
}

// runeIndexes converts byte offsets into s to rune positions.
func runeIndexes(s string, byteIndexes []int) []int {
	if len(byteIndexes) == 0 {
		return nil
	}
	out := make([]int, len(byteIndexes))
	for i, b := range byteIndexes {
		out[i] = utf8.RuneCountInString(s[:b])
	}
	return out
}
