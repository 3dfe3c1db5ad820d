package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveDocument("contract", "ready", "contract_claim_based")
	m.ObserveDocument("contract", "ready", "contract_claim_based")
	m.ObserveDocument("unknown", "failed", "")
	m.IncOverride()
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Documents.WithLabelValues("contract", "ready")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Documents.WithLabelValues("unknown", "failed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Reasons.WithLabelValues("contract_claim_based")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Overrides))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Reasons), "empty reason must not create a series")
}

func TestMetrics_StageLatency(t *testing.T) {
	m := New()
	m.ObserveStage(StageClassify, 3*time.Millisecond)
	m.Since(StageTotal, time.Now())

	assert.Equal(t, 2, testutil.CollectAndCount(m.StageLatency))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveDocument("x", "y", "z")
	m.IncOverride()
	m.ObserveCache(true)
	m.ObserveStage(StageLoad, time.Second)
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "never.prom")))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.ObserveDocument("financial", "review", "invoice_minimal_valid")

	path := filepath.Join(t.TempDir(), "certifi.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `certifi_documents_total{family="financial",outcome="review"} 1`)
}

func TestMetrics_PrivateRegistry(t *testing.T) {
	a, b := New(), New()
	a.IncOverride()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Overrides))
}
