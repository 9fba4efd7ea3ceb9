package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/monitoring"
)

func TestHuggingFaceClientRecordsMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"downloads": 12, "lastModified": "2024-01-01T00:00:00Z"}`))
	}))
	t.Cleanup(srv.Close)

	m := monitoring.NewMetrics()
	hf := NewHuggingFaceClient("")
	hf.SetBaseURL(srv.URL)
	hf.SetMetrics(m)
	t.Cleanup(func() { hf.Close() })

	_, err := hf.GetDataset(context.Background(), "squad")
	require.NoError(t, err)

	assert.Equal(t, int64(1), m.HuggingFaceAPICalls)

	stats := m.GetExternalAPIStats()
	hub := stats["huggingface"].(map[string]interface{})
	assert.Equal(t, int64(1), hub["requests"])
	assert.Equal(t, int64(0), hub["errors"])
}

func TestGitHubClientRecordsMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stargazers_count": 42, "forks_count": 7}`))
	}))
	t.Cleanup(srv.Close)

	m := monitoring.NewMetrics()
	gh := NewGitHubClient("")
	gh.SetBaseURLs(srv.URL, srv.URL)
	gh.SetMetrics(m)
	t.Cleanup(func() { gh.Close() })

	stats, err := gh.GetRepo(context.Background(), "google", "bert")
	require.NoError(t, err)
	assert.Equal(t, 42, stats.Stars)

	assert.Equal(t, int64(1), m.GitHubAPICalls)

	apiStats := m.GetExternalAPIStats()
	git := apiStats["github"].(map[string]interface{})
	assert.Equal(t, int64(1), git["requests"])
}

func TestGitHubClientCountsBreakerOpens(t *testing.T) {
	// A closed server guarantees connection refused on every request.
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	m := monitoring.NewMetrics()
	gh := NewGitHubClient("")
	gh.SetBaseURLs(srv.URL, srv.URL)
	gh.SetMetrics(m)
	t.Cleanup(func() { gh.Close() })

	for i := 0; i < 5; i++ {
		_, err := gh.GetRepo(context.Background(), "google", "bert")
		require.Error(t, err)
	}

	assert.Equal(t, int64(1), m.CircuitBreakerOpens)

	apiStats := m.GetExternalAPIStats()
	git := apiStats["github"].(map[string]interface{})
	assert.Equal(t, int64(5), git["errors"])
}

func TestClientsWithoutMetricsStillWork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stargazers_count": 1, "forks_count": 0}`))
	}))
	t.Cleanup(srv.Close)

	gh := NewGitHubClient("")
	gh.SetBaseURLs(srv.URL, srv.URL)
	t.Cleanup(func() { gh.Close() })

	_, err := gh.GetRepo(context.Background(), "google", "bert")
	assert.NoError(t, err)
}
