package search

import (
	"sort"
	"strings"
	"unicode"

	"github.com/mmcdole/multiki/internal/domain"
)

// OtherLetter groups titles that start with a digit or no letter at all.
const OtherLetter = "#"

// FirstLetter returns the upper-cased first letter of title, skipping leading
// punctuation and quotes, or OtherLetter.
func FirstLetter(title string) string {
	for _, r := range title {
		switch {
		case unicode.IsLetter(r):
			return string(unicode.ToUpper(r))
		case unicode.IsDigit(r):
			return OtherLetter
		}
	}
	return OtherLetter
}

// FilterByLetter returns the records filed under letter, in catalog order.
// Matching is case-insensitive; the result is never nil.
func FilterByLetter(records []domain.Record, letter string) []domain.Record {
	want := strings.ToUpper(strings.TrimSpace(letter))
	out := make([]domain.Record, 0)
	for _, r := range records {
		if FirstLetter(r.Title) == want {
			out = append(out, r)
		}
	}
	return out
}

// Letters returns the distinct letter groups present in records in display
// order: Cyrillic alphabetically (Ё after Е), then Latin, then OtherLetter.
func Letters(records []domain.Record) []string {
	seen := make(map[string]bool)
	var letters []string
	for _, r := range records {
		l := FirstLetter(r.Title)
		if !seen[l] {
			seen[l] = true
			letters = append(letters, l)
		}
	}

	sort.Slice(letters, func(i, j int) bool {
		gi, ki := letterKey(letters[i])
		gj, kj := letterKey(letters[j])
		if gi != gj {
			return gi < gj
		}
		return ki < kj
	})
	return letters
}

// letterKey returns the display group and the order within it.
func letterKey(letter string) (group int, key int) {
	if letter == OtherLetter {
		return 3, 0
	}
	r := []rune(letter)[0]
	switch {
	case r == 'Ё':
		return 0, int('Е')*2 + 1
	case unicode.Is(unicode.Cyrillic, r):
		return 0, int(r) * 2
	case unicode.Is(unicode.Latin, r):
		return 1, int(r)
	default:
		return 2, int(r)
	}
}
