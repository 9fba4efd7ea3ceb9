package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/locator"
	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/sources"
)

func fullReference() locator.Reference {
	return locator.Reference{
		ModelID:   "google/bert-base",
		DatasetID: "squad",
		CodeOwner: "huggingface",
		CodeRepo:  "transformers",
	}
}

// newTestFetcher spins up one mock server handling both HuggingFace and
// GitHub routes and points both clients at it.
func newTestFetcher(t *testing.T, ref locator.Reference, handler http.Handler) (*Fetcher, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	hf := sources.NewHuggingFaceClient("")
	hf.SetBaseURL(srv.URL)
	t.Cleanup(func() { hf.Close() })

	gh := sources.NewGitHubClient("")
	gh.SetBaseURLs(srv.URL, srv.URL)
	t.Cleanup(func() { gh.Close() })

	return New(context.Background(), ref, hf, gh), srv
}

func TestFetcherReadmeCleaned(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/models/google/bert-base", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"lastModified":"2024-01-01T00:00:00Z","tags":[],"siblings":[]}`)
	})
	mux.HandleFunc("/google/bert-base/raw/main/README.md", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "# BERT\n\n<div>hello</div>\n\nSome **useful** prose.\n\n```python\nprint(\"skipped\")\n```\n")
	})

	f, _ := newTestFetcher(t, fullReference(), mux)

	readme := f.Readme(context.Background(), ReadmeModel)
	assert.Contains(t, readme, "BERT")
	assert.Contains(t, readme, "useful prose")
	assert.NotContains(t, readme, "print")
	assert.NotContains(t, readme, "<div>")
}

func TestFetcherMemoizesRequests(t *testing.T) {
	var readmeHits int64

	mux := http.NewServeMux()
	mux.HandleFunc("/api/models/google/bert-base", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"lastModified":"2024-01-01T00:00:00Z"}`)
	})
	mux.HandleFunc("/google/bert-base/raw/main/README.md", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&readmeHits, 1)
		fmt.Fprint(w, "plain readme text")
	})

	f, _ := newTestFetcher(t, fullReference(), mux)
	ctx := context.Background()

	first := f.RawModelReadme(ctx)
	second := f.RawModelReadme(ctx)
	third := f.RawModelReadme(ctx)

	assert.Equal(t, first, second)
	assert.Equal(t, second, third)
	assert.Equal(t, int64(1), atomic.LoadInt64(&readmeHits), "repeated reads must hit upstream once")
}

func TestFetcherModelSizeFromSiblings(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/models/google/bert-base", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"siblings":[
			{"rfilename":"model.safetensors","size":200000000},
			{"rfilename":"pytorch_model.bin","size":300000000},
			{"rfilename":"tokenizer.json","size":999999999}
		]}`)
	})

	f, _ := newTestFetcher(t, fullReference(), mux)

	sizeGB := f.ModelSizeGB(context.Background())
	assert.InDelta(t, 0.5, sizeGB, 0.001, "only weight files count toward model size")
}

func TestFetcherModelSizeHeadFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/models/google/bert-base", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"siblings":[{"rfilename":"model.safetensors","size":0}]}`)
	})
	mux.HandleFunc("/google/bert-base/resolve/main/model.safetensors", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodHead, r.Method)
		w.Header().Set("Content-Length", "400000000")
		w.WriteHeader(http.StatusOK)
	})

	f, _ := newTestFetcher(t, fullReference(), mux)

	sizeGB := f.ModelSizeGB(context.Background())
	assert.InDelta(t, 0.4, sizeGB, 0.001)
}

func TestFetcherDefaultsOnUpstreamFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	f, _ := newTestFetcher(t, fullReference(), mux)
	ctx := context.Background()

	assert.Equal(t, GithubStats{}, f.GithubStats(ctx))
	assert.Equal(t, 0, f.ContributorCount(ctx))
	assert.Equal(t, int64(0), f.DatasetDownloads(ctx))
	assert.Empty(t, f.Commits(ctx))
	assert.Equal(t, 0.0, f.ModelSizeGB(ctx))
	assert.Equal(t, "", f.Readme(ctx, ReadmeCode))
}

func TestFetcherEmptyReferenceNeverCallsUpstream(t *testing.T) {
	var hits int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		http.NotFound(w, r)
	})

	f, _ := newTestFetcher(t, locator.Reference{}, handler)
	ctx := context.Background()

	assert.Equal(t, "", f.RawModelReadme(ctx))
	assert.Equal(t, "", f.Readme(ctx, ReadmeDataset))
	assert.Equal(t, "", f.Readme(ctx, ReadmeCode))
	assert.Equal(t, GithubStats{}, f.GithubStats(ctx))
	assert.Equal(t, 0, f.ContributorCount(ctx))
	assert.Empty(t, f.ParentModelIDs(ctx))
	assert.Equal(t, int64(0), atomic.LoadInt64(&hits))
}

func TestFetcherGithubStats(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/models/google/bert-base", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})
	mux.HandleFunc("/repos/huggingface/transformers", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"stargazers_count":50000,"forks_count":10000}`)
	})
	mux.HandleFunc("/repos/huggingface/transformers/contributors", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{},{},{},{},{},{},{},{},{},{},{},{}]`)
	})

	f, _ := newTestFetcher(t, fullReference(), mux)
	ctx := context.Background()

	stats := f.GithubStats(ctx)
	assert.Equal(t, 50000, stats.Stars)
	assert.Equal(t, 10000, stats.Forks)
	assert.Equal(t, 12, f.ContributorCount(ctx))
}

func TestFetcherRecentlyModifiedCode(t *testing.T) {
	recent := time.Now().AddDate(0, 0, -10).Format(time.RFC3339)
	old := time.Now().AddDate(0, -10, 0).Format(time.RFC3339)

	tests := []struct {
		name string
		date string
		want bool
	}{
		{"commit last week", recent, true},
		{"commit ten months ago", old, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/api/models/google/bert-base", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{}`)
			})
			mux.HandleFunc("/repos/huggingface/transformers/commits", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(w, `[{"commit":{"message":"update","committer":{"date":"%s"}},"parents":[{}]}]`, tt.date)
			})

			f, _ := newTestFetcher(t, fullReference(), mux)
			assert.Equal(t, tt.want, f.RecentlyModified(context.Background(), ReadmeCode, 180))
		})
	}
}

func TestFetcherParentModelIDs(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/models/google/bert-base", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})
	mux.HandleFunc("/google/bert-base/raw/main/config.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"_name_or_path":"bert-base-uncased","base_model":"google/bert-large","parent_model":"./local/path"}`)
	})

	f, _ := newTestFetcher(t, fullReference(), mux)

	parents := f.ParentModelIDs(context.Background())
	assert.ElementsMatch(t, []string{"bert-base-uncased", "google/bert-large"}, parents)
}

func TestFetcherDatasetDownloads(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/models/google/bert-base", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})
	mux.HandleFunc("/api/datasets/squad", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"downloads":120000,"lastModified":"2024-05-01T00:00:00Z"}`)
	})

	f, _ := newTestFetcher(t, fullReference(), mux)
	assert.Equal(t, int64(120000), f.DatasetDownloads(context.Background()))
}
