package extractor

import (
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/encoding/charmap"
)

// titleWords maps transliterated filename tokens to words. It only covers
// filenames actually seen on the source and is not expected to generalize.
var titleWords = map[string]string{
	"reis":   "рейс",
	"masha":  "Маша",
	"medved": "медведь",
}

// genericLabels are anchor texts that say nothing about the item.
var genericLabels = map[string]bool{
	"http":      true,
	"https":     true,
	"ftp":       true,
	"download":  true,
	"скачать":   true,
	"ссылка":    true,
	"link":      true,
	"смотреть":  true,
	"info":      true,
	"подробнее": true,
}

var (
	durationRe   = regexp.MustCompile(`^(?:(\d{1,2}):)?([0-5]?\d):([0-5]\d)$`)
	durationScan = regexp.MustCompile(`\b\d{1,2}:[0-5]\d:[0-5]\d\b`)
	resolutionRe = regexp.MustCompile(`\b(\d{2,5})\s*[xх×]\s*(\d{2,5})\b`)
	digitsRe     = regexp.MustCompile(`^\d+$`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

// resolveURL applies the catalog URL rules: root-relative links resolve
// against base's origin, absolute links pass through unchanged, everything
// else resolves against base.
func resolveURL(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	switch {
	case ref.IsAbs():
		switch strings.ToLower(ref.Scheme) {
		case "http", "https", "ftp":
			return href, true
		}
		return "", false
	case strings.HasPrefix(href, "//"):
		return base.ResolveReference(ref).String(), true
	case strings.HasPrefix(href, "/"):
		origin := &url.URL{Scheme: base.Scheme, Host: base.Host}
		return origin.ResolveReference(ref).String(), true
	default:
		return base.ResolveReference(ref).String(), true
	}
}

// fileName returns the decoded last path segment of a link.
func fileName(link string) string {
	p := link
	if u, err := url.Parse(link); err == nil {
		p = u.EscapedPath()
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return unescapeName(path.Base(p))
}

// unescapeName percent-decodes a filename. Escapes that are not UTF-8 are
// read as windows-1251, which older listings used.
func unescapeName(name string) string {
	decoded, err := url.PathUnescape(name)
	if err != nil {
		return name
	}
	if utf8.ValidString(decoded) {
		return decoded
	}
	if out, err := charmap.Windows1251.NewDecoder().String(decoded); err == nil {
		return out
	}
	return name
}

func stem(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

func isSeparator(r rune) bool {
	switch r {
	case '.', '_', '+', '-', ' ':
		return true
	}
	return false
}

// TitleFromFilename derives a display title from a media link: the file name
// is decoded, its extension dropped, separators become spaces and known
// transliterated tokens are replaced.
func TitleFromFilename(link string) string {
	tokens := strings.FieldsFunc(stem(fileName(link)), isSeparator)
	for i, tok := range tokens {
		if w, ok := titleWords[strings.ToLower(tok)]; ok {
			tokens[i] = w
		}
	}
	return strings.Join(tokens, " ")
}

// cleanText collapses whitespace runs and trims.
func cleanText(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func isGenericLabel(s string) bool {
	return genericLabels[strings.ToLower(strings.Trim(s, " .:»>[]()"))]
}

// NormalizeDuration converts H:MM:SS, HH:MM:SS or MM:SS into HH:MM:SS.
// Anything else yields "".
func NormalizeDuration(s string) string {
	m := durationRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return ""
	}
	h := 0
	if m[1] != "" {
		h, _ = strconv.Atoi(m[1])
	}
	mins, _ := strconv.Atoi(m[2])
	sec, _ := strconv.Atoi(m[3])
	return twoDigits(h) + ":" + twoDigits(mins) + ":" + twoDigits(sec)
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// findDuration returns the first HH:MM:SS-looking run in s, normalized.
func findDuration(s string) string {
	return NormalizeDuration(durationScan.FindString(s))
}

func findResolution(s string) string {
	m := resolutionRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1] + "x" + m[2]
}

// BuildPlot assembles the synopsis shown for a record from its listing metadata.
func BuildPlot(duration, size, resolution string) string {
	var parts []string
	if duration != "" {
		parts = append(parts, "Длительность: "+duration)
	}
	if size != "" {
		if n, err := strconv.ParseUint(size, 10, 64); err == nil {
			parts = append(parts, "Размер: "+humanize.Bytes(n))
		} else {
			parts = append(parts, "Размер: "+size)
		}
	}
	if resolution != "" {
		parts = append(parts, resolution)
	}
	return strings.Join(parts, " · ")
}
