package extractor

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		href string
		want string
		ok   bool
	}{
		{"root relative", "https://site/multiki/", "/multiki/x.avi", "https://site/multiki/x.avi", true},
		{"root relative from deep base", "https://site/a/b/c/", "/x.avi", "https://site/x.avi", true},
		{"document relative", "https://site/multiki/", "x.avi", "https://site/multiki/x.avi", true},
		{"parent relative", "https://site/multiki/new/", "../x.avi", "https://site/multiki/x.avi", true},
		{"absolute unchanged", "https://site/multiki/", "http://other.org/files/x.avi", "http://other.org/files/x.avi", true},
		{"protocol relative", "https://site/multiki/", "//cdn.site/x.avi", "https://cdn.site/x.avi", true},
		{"fragment only", "https://site/multiki/", "#top", "", false},
		{"empty", "https://site/multiki/", "  ", "", false},
		{"javascript", "https://site/multiki/", "javascript:void(0)", "", false},
		{"mailto", "https://site/multiki/", "mailto:a@b.c", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, err := url.Parse(tt.base)
			if err != nil {
				t.Fatalf("parse base: %v", err)
			}
			got, ok := resolveURL(base, tt.href)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTitleFromFilename(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"13.reis.avi", "13 рейс"},
		{"/multiki/masha.avi", "Маша"},
		{"masha_i_medved.mp4", "Маша i медведь"},
		{"http://site/multiki/%D0%95%D0%B6%D0%B8%D0%BA.avi", "Ежик"},
		{"%CC%E0%F8%E0.avi", "Маша"}, // windows-1251 escapes
		{"Kanikuly-Bonifacija.flv", "Kanikuly Bonifacija"},
		{"some+file name.mkv", "some file name"},
		{"noext", "noext"},
		{".avi", ""},
	}

	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			assert.Equal(t, tt.want, TitleFromFilename(tt.link))
		})
	}
}

func TestNormalizeDuration(t *testing.T) {
	tests := map[string]string{
		"00:09:44":  "00:09:44",
		"1:02:03":   "01:02:03",
		"9:44":      "00:09:44",
		"59:59":     "00:59:59",
		" 12:00:00": "12:00:00",
		"00:60:00":  "",
		"abc":       "",
		"":          "",
		"100:00:00": "",
		"640x480":   "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeDuration(in), "input %q", in)
	}
}

func TestBuildPlot(t *testing.T) {
	assert.Equal(t, "", BuildPlot("", "", ""))
	assert.Equal(t, "Длительность: 00:09:44", BuildPlot("00:09:44", "", ""))
	assert.Equal(t, "Размер: 200 MB", BuildPlot("", "200000000", ""))
	assert.Equal(t, "Размер: 1,5 ГБ", BuildPlot("", "1,5 ГБ", ""))
	assert.Equal(t, "Длительность: 00:15:30 · Размер: 200 MB · 720x576", BuildPlot("00:15:30", "200000000", "720x576"))
}

func TestIsGenericLabel(t *testing.T) {
	for _, label := range []string{"http", "HTTP", "Скачать", "download", "[ftp]"} {
		assert.True(t, isGenericLabel(label), label)
	}
	for _, label := range []string{"13 рейс", "Маша и медведь", ""} {
		assert.False(t, isGenericLabel(label), label)
	}
}
