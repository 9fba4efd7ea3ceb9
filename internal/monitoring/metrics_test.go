package monitoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.IncrementRequest()
	m.IncrementRequest()
	m.IncrementError()
	m.IncrementEvaluation()
	m.IncrementCacheHit()
	m.IncrementCacheMiss()
	m.IncrementGitHubCalls()
	m.IncrementHuggingFaceCalls()
	m.IncrementLLMCalls()

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats["total_requests"])
	assert.Equal(t, int64(1), stats["error_count"])
	assert.Equal(t, float64(50), stats["error_rate_percent"])
	assert.Equal(t, int64(1), stats["evaluation_count"])
	assert.Equal(t, float64(50), stats["cache_hit_rate_percent"])
	assert.Equal(t, int64(1), stats["github_api_calls"])
	assert.Equal(t, int64(1), stats["huggingface_api_calls"])
	assert.Equal(t, int64(1), stats["llm_api_calls"])
}

func TestMetricsPercentiles(t *testing.T) {
	m := NewMetrics()

	for i := 1; i <= 100; i++ {
		m.RecordResponseTime(time.Duration(i) * time.Millisecond)
	}

	p50 := m.GetPercentileResponseTime(50)
	p95 := m.GetPercentileResponseTime(95)
	p99 := m.GetPercentileResponseTime(99)

	assert.Greater(t, p95, p50)
	assert.GreaterOrEqual(t, p99, p95)
	assert.Equal(t, time.Duration(0), NewMetrics().GetPercentileResponseTime(50))
}

func TestMetricsStatusDistribution(t *testing.T) {
	m := NewMetrics()

	m.RecordRequestByStatus(200)
	m.RecordRequestByStatus(200)
	m.RecordRequestByStatus(429)

	dist := m.GetStatusCodeDistribution()
	assert.Equal(t, int64(2), dist[200])
	assert.Equal(t, int64(1), dist[429])
}

func TestMetricsExternalAPIStats(t *testing.T) {
	m := NewMetrics()

	m.RecordExternalAPIRequest("huggingface", true)
	m.RecordExternalAPIRequest("huggingface", false)
	m.RecordExternalAPIRequest("github", true)

	stats := m.GetExternalAPIStats()
	hf := stats["huggingface"].(map[string]interface{})
	assert.Equal(t, int64(2), hf["requests"])
	assert.Equal(t, int64(1), hf["errors"])
	assert.Equal(t, float64(50), hf["error_rate"])
}

func TestMetricsReset(t *testing.T) {
	m := NewMetrics()

	m.IncrementRequest()
	m.IncrementEvaluation()
	m.RecordRequestByStatus(500)
	m.RecordResponseTime(time.Second)

	m.Reset()

	stats := m.GetStats()
	assert.Equal(t, int64(0), stats["total_requests"])
	assert.Equal(t, int64(0), stats["evaluation_count"])
	assert.Empty(t, m.GetStatusCodeDistribution())
	assert.Equal(t, time.Duration(0), m.GetPercentileResponseTime(50))
}
