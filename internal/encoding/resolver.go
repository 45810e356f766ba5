// Package encoding turns catalog page bytes of unknown encoding into text.
package encoding

import (
	"bytes"
	"log/slog"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Candidate is one entry of the ordered decode table.
type Candidate struct {
	Name    string
	decode  func(raw []byte) (string, bool)
	charmap *charmap.Charmap // nil for multi-byte encodings
}

// DefaultCandidates is the site's observed order: windows-1251 first, then
// UTF-8, the cp1251 alias, and Latin-1 which accepts any byte sequence.
var DefaultCandidates = []Candidate{
	Charmap("windows-1251", charmap.Windows1251),
	UTF8(),
	Charmap("cp1251", charmap.Windows1251),
	Charmap("iso-8859-1", charmap.ISO8859_1),
}

// Charmap builds a strict single-byte candidate. Decoding fails when any
// byte has no mapping in the code page.
func Charmap(name string, cm *charmap.Charmap) Candidate {
	return Candidate{Name: name, charmap: cm, decode: func(raw []byte) (string, bool) {
		for _, b := range raw {
			if cm.DecodeByte(b) == utf8.RuneError {
				return "", false
			}
		}
		out, err := cm.NewDecoder().Bytes(raw)
		if err != nil {
			return "", false
		}
		return string(out), true
	}}
}

// UTF8 builds a strict UTF-8 candidate.
func UTF8() Candidate {
	return Candidate{Name: "utf-8", decode: func(raw []byte) (string, bool) {
		if !utf8.Valid(raw) {
			return "", false
		}
		return string(raw), true
	}}
}

// Resolver decodes with the first candidate that succeeds strictly.
type Resolver struct {
	candidates []Candidate
	fallback   *charmap.Charmap
	logger     *slog.Logger
}

// NewResolver creates a resolver over candidates; nil means DefaultCandidates.
func NewResolver(candidates []Candidate, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}
	return &Resolver{candidates: candidates, fallback: lossyFallback(candidates), logger: logger}
}

// lossyFallback is the first legacy code page in the table, windows-1251 when
// the table has none.
func lossyFallback(candidates []Candidate) *charmap.Charmap {
	for _, c := range candidates {
		if c.charmap != nil {
			return c.charmap
		}
	}
	return charmap.Windows1251
}

// Decode never fails. degraded reports that every strict candidate failed and
// the text was produced by lossy decoding with the first legacy candidate,
// unmapped bytes becoming U+FFFD.
func (r *Resolver) Decode(raw []byte) (string, bool) {
	text, _, degraded := r.DecodeName(raw)
	return text, degraded
}

// DecodeName is Decode that also reports the winning candidate, "" when degraded.
func (r *Resolver) DecodeName(raw []byte) (text, name string, degraded bool) {
	if text, name, ok := r.decodeStrict(raw); ok {
		r.logger.Debug("decoded page", "encoding", name, "bytes", len(raw))
		return text, name, false
	}

	r.logger.Warn("no encoding decoded cleanly, using lossy fallback", "bytes", len(raw))
	var buf bytes.Buffer
	buf.Grow(len(raw))
	for _, b := range bytes.TrimPrefix(raw, utf8BOM) {
		buf.WriteRune(r.fallback.DecodeByte(b))
	}
	return buf.String(), "", true
}

func (r *Resolver) decodeStrict(raw []byte) (string, string, bool) {
	// A BOM is a declaration, not content.
	if bytes.HasPrefix(raw, utf8BOM) && utf8.Valid(raw) {
		return string(raw[len(utf8BOM):]), "utf-8", true
	}
	for _, c := range r.candidates {
		if text, ok := c.decode(raw); ok {
			return text, c.Name, true
		}
	}
	return "", "", false
}
