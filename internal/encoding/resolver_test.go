package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/encoding/charmap"
)

func cp1251(t *testing.T, s string) []byte {
	t.Helper()
	b, err := charmap.Windows1251.NewEncoder().Bytes([]byte(s))
	if err != nil {
		t.Fatalf("encode %q: %v", s, err)
	}
	return b
}

func TestDecode_Windows1251First(t *testing.T) {
	r := NewResolver(nil, nil)

	text, name, degraded := r.DecodeName(cp1251(t, "Маша и медведь"))
	assert.Equal(t, "Маша и медведь", text)
	assert.Equal(t, "windows-1251", name)
	assert.False(t, degraded)
}

func TestDecode_FallsBackToUTF8(t *testing.T) {
	r := NewResolver(nil, nil)

	// "И" is D0 98 in UTF-8; 0x98 is unmapped in windows-1251.
	raw := []byte("Ишь ты")
	text, name, degraded := r.DecodeName(raw)
	assert.Equal(t, "Ишь ты", text)
	assert.Equal(t, "utf-8", name)
	assert.False(t, degraded)
}

func TestDecode_StripsBOM(t *testing.T) {
	r := NewResolver(nil, nil)

	text, degraded := r.Decode(append([]byte{0xEF, 0xBB, 0xBF}, "<html>рейс</html>"...))
	assert.Equal(t, "<html>рейс</html>", text)
	assert.False(t, degraded)
}

func TestDecode_ASCII(t *testing.T) {
	text, degraded := NewResolver(nil, nil).Decode([]byte(`<a href="x.avi">x</a>`))
	assert.Equal(t, `<a href="x.avi">x</a>`, text)
	assert.False(t, degraded)
}

func TestDecode_LossyFallback(t *testing.T) {
	r := NewResolver([]Candidate{UTF8(), Charmap("windows-1251", charmap.Windows1251)}, nil)

	// Invalid UTF-8 and contains the unmapped windows-1251 byte.
	raw := []byte{0xcc, 0xe0, 0x98, 0xe0}
	text, name, degraded := r.DecodeName(raw)
	assert.True(t, degraded)
	assert.Empty(t, name)
	assert.Equal(t, "Ма�а", text)
}

func TestDecode_LossyFallbackUsesFirstLegacyCandidate(t *testing.T) {
	r := NewResolver([]Candidate{UTF8(), Charmap("windows-1252", charmap.Windows1252), Charmap("windows-1251", charmap.Windows1251)}, nil)

	// 0x81 is unmapped in windows-1252 and 0x98 in windows-1251.
	text, degraded := r.Decode([]byte{0x81, 0xe9, 0x98})
	assert.True(t, degraded)
	assert.Equal(t, "\uFFFDé˜", text)
}

func TestDecode_LossyFallbackWithoutLegacyCandidate(t *testing.T) {
	r := NewResolver([]Candidate{UTF8()}, nil)

	text, degraded := r.Decode([]byte{0xcc, 0xe0})
	assert.True(t, degraded)
	assert.Equal(t, "Ма", text)
}

func TestDecode_CandidateOrderMatters(t *testing.T) {
	raw := cp1251(t, "рейс")

	text, name, _ := NewResolver([]Candidate{Charmap("iso-8859-1", charmap.ISO8859_1)}, nil).DecodeName(raw)
	assert.Equal(t, "iso-8859-1", name)
	assert.NotEqual(t, "рейс", text)
}

func TestDecode_Empty(t *testing.T) {
	text, degraded := NewResolver(nil, nil).Decode(nil)
	assert.Empty(t, text)
	assert.False(t, degraded)
}
