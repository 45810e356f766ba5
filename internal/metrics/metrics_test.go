package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRequest(SourceNetwork, 12)
	m.ObserveRequest(SourceCache, 12)
	m.ObserveRequest(SourceCache, 7)
	m.ObserveFetch(time.Second, nil)
	m.ObserveFetch(2*time.Second, errors.New("refused"))
	m.ObserveExtraction("table-row", false)
	m.ObserveExtraction("", true)
	m.SaveFailed()
	m.ObserveDetail(true)
	m.ObserveDetail(false)
	m.ObserveDetail(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(SourceNetwork)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(SourceCache)))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.records))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.strategies.WithLabelValues("table-row")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.strategies.WithLabelValues("none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.degraded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.saveFailures))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.detailRequests.WithLabelValues("empty")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.fetchDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest(SourceCache, 1)
		m.ObserveFetch(time.Second, nil)
		m.ObserveExtraction("bare-link", true)
		m.SaveFailed()
		m.ObserveDetail(true)
	})
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveRequest(SourceNetwork, 3)

	path := filepath.Join(t.TempDir(), "multiki.prom")
	require.NoError(t, WriteTextfile(reg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `multiki_catalog_requests_total{source="network"} 1`), text)
	assert.Contains(t, text, "multiki_catalog_records 3")
}
