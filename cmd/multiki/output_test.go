package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/multiki/internal/catalog"
	"github.com/mmcdole/multiki/internal/domain"
)

func sampleRecords() []domain.Record {
	return []domain.Record{
		{Title: "13 рейс", MediaURL: "http://s/13.reis.avi", Duration: "00:09:44", Size: "106639360"},
		{Title: "Маша и медведь", MediaURL: "http://s/masha.mp4"},
		{Title: "Малыш и Карлсон", MediaURL: "http://s/malysh.avi", Duration: "00:19:37"},
	}
}

func TestWriteNumbered(t *testing.T) {
	all := sampleRecords()

	var buf bytes.Buffer
	writeNumbered(&buf, all, []domain.Record{all[2], all[1]})

	assert.Equal(t, "3  00:19:37  Малыш и Карлсон\n2  --:--:--  Маша и медведь\n", buf.String())
}

func TestWriteJSON_Records(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, sampleRecords()[:2]))

	var got []recordJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Number)
	assert.Equal(t, ".avi", got[0].Extension)
	assert.Equal(t, ".mp4", got[1].Extension)
	assert.Equal(t, "Маша и медведь", got[1].Title)
	assert.NotContains(t, buf.String(), `&`)
}

func TestWriteJSON_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, []domain.Record{}))
	assert.JSONEq(t, `[]`, buf.String())
}

func TestDetailsJSON_PagePreferred(t *testing.T) {
	r := sampleRecords()[0]
	d := domain.DetailRecord{Duration: "00:09:45", VideoCodec: "XviD"}

	got := detailsJSON(r, d)
	assert.Equal(t, "00:09:45", got.Duration)
	assert.Equal(t, "106639360", got.Size)
	assert.Equal(t, "XviD", got.VideoCodec)
}

func TestWriteRefreshSummary(t *testing.T) {
	tests := []struct {
		name string
		res  catalog.Result
		want string
	}{
		{"table", catalog.Result{Records: sampleRecords(), Strategy: "table-row"}, "fetched 3 records from http://s/multiki/ (strategy: table-row)\n"},
		{"unrecognized", catalog.Result{Records: []domain.Record{}}, "fetched 0 records from http://s/multiki/ (strategy: none)\n"},
		{"degraded", catalog.Result{Records: sampleRecords()[:1], Strategy: "bare-links", Degraded: true}, "fetched 1 records from http://s/multiki/ (strategy: bare-links, lossy decoding)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			writeRefreshSummary(&buf, "http://s/multiki/", tt.res)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriteDetails(t *testing.T) {
	var buf bytes.Buffer
	writeDetails(&buf, sampleRecords()[1], domain.DetailRecord{})

	out := buf.String()
	assert.Contains(t, out, "Title:      Маша и медведь\n")
	assert.Contains(t, out, "URL:        http://s/masha.mp4\n")
	assert.Contains(t, out, "(no detail page information)")
	assert.NotContains(t, out, "Duration:")
}
