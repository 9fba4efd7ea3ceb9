package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/locator"
	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/sources"
)

// GithubStats holds the repository counters consumed by the code quality
// scorers.
type GithubStats struct {
	Stars int `json:"stars"`
	Forks int `json:"forks"`
}

// ReadmeKind selects which of the three linked resources a README accessor
// addresses.
type ReadmeKind string

const (
	ReadmeModel   ReadmeKind = "model"
	ReadmeDataset ReadmeKind = "dataset"
	ReadmeCode    ReadmeKind = "code"
)

// Fetcher is the data facade shared by all scorers of one evaluation. Every
// accessor memoizes its derived result in a request-scoped cache and degrades
// to a safe default on any fetch failure; no accessor ever returns an error.
//
// The cache uses a check-then-set pattern: two scorers racing on the same key
// may both fetch, and the last write wins. The fetched value is idempotent
// within one evaluation, so the double fetch is tolerated instead of locking
// across network calls.
type Fetcher struct {
	ref locator.Reference
	hf  *sources.HuggingFaceClient
	gh  *sources.GitHubClient

	mu    sync.RWMutex
	cache map[string]interface{}
}

// New creates the facade for one evaluation and eagerly warms the primary
// model metadata so all scorers observe the same snapshot.
func New(ctx context.Context, ref locator.Reference, hf *sources.HuggingFaceClient, gh *sources.GitHubClient) *Fetcher {
	f := &Fetcher{
		ref:   ref,
		hf:    hf,
		gh:    gh,
		cache: make(map[string]interface{}),
	}

	if ref.HasModel() {
		f.model(ctx)
	}

	return f
}

// Reference returns the resolved identifiers for this evaluation.
func (f *Fetcher) Reference() locator.Reference {
	return f.ref
}

// HasCodeURL reports whether a GitHub repository is linked.
func (f *Fetcher) HasCodeURL() bool { return f.ref.HasCode() }

// HasDatasetURL reports whether a HuggingFace dataset is linked.
func (f *Fetcher) HasDatasetURL() bool { return f.ref.HasDataset() }

// CachedKeys returns the number of memoized entries. Exposed for tests and
// the evaluation debug log.
func (f *Fetcher) CachedKeys() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.cache)
}

func (f *Fetcher) cached(key string, load func() interface{}) interface{} {
	f.mu.RLock()
	v, ok := f.cache[key]
	f.mu.RUnlock()
	if ok {
		return v
	}

	v = load()

	f.mu.Lock()
	f.cache[key] = v
	f.mu.Unlock()
	return v
}

func (f *Fetcher) model(ctx context.Context) *sources.ModelSnapshot {
	v := f.cached("model_info", func() interface{} {
		if !f.ref.HasModel() {
			return (*sources.ModelSnapshot)(nil)
		}
		snap, err := f.hf.GetModel(ctx, f.ref.ModelID)
		if err != nil {
			slog.Debug("Model metadata unavailable", "model", f.ref.ModelID, "error", err)
			return (*sources.ModelSnapshot)(nil)
		}
		return snap
	})
	return v.(*sources.ModelSnapshot)
}

func (f *Fetcher) dataset(ctx context.Context) *sources.DatasetSnapshot {
	v := f.cached("dataset_info", func() interface{} {
		if !f.ref.HasDataset() {
			return (*sources.DatasetSnapshot)(nil)
		}
		snap, err := f.hf.GetDataset(ctx, f.ref.DatasetID)
		if err != nil {
			slog.Debug("Dataset metadata unavailable", "dataset", f.ref.DatasetID, "error", err)
			return (*sources.DatasetSnapshot)(nil)
		}
		return snap
	})
	return v.(*sources.DatasetSnapshot)
}

// RawModelReadme returns the unprocessed model README, frontmatter and code
// blocks included. The license frontmatter parse and the reproducibility
// indicators need the raw form.
func (f *Fetcher) RawModelReadme(ctx context.Context) string {
	v := f.cached("readme_raw_model", func() interface{} {
		if !f.ref.HasModel() {
			return ""
		}
		raw, err := f.hf.RawFile(ctx, sources.RepoModel, f.ref.ModelID, "README.md")
		if err != nil {
			slog.Debug("Model README unavailable", "model", f.ref.ModelID, "error", err)
			return ""
		}
		return raw
	})
	return v.(string)
}

// Readme returns the cleaned README text for the given resource, or empty on
// any failure. Content is HTML-stripped then markdown-stripped.
func (f *Fetcher) Readme(ctx context.Context, kind ReadmeKind) string {
	v := f.cached("readme_"+string(kind), func() interface{} {
		var raw string
		var err error

		switch kind {
		case ReadmeModel:
			raw = f.RawModelReadme(ctx)
		case ReadmeDataset:
			if !f.ref.HasDataset() {
				return ""
			}
			raw, err = f.hf.RawFile(ctx, sources.RepoDataset, f.ref.DatasetID, "README.md")
		case ReadmeCode:
			if !f.ref.HasCode() {
				return ""
			}
			raw, err = f.gh.RawFile(ctx, f.ref.CodeOwner, f.ref.CodeRepo, "README.md")
		}

		if err != nil {
			slog.Debug("README unavailable", "kind", kind, "error", err)
			return ""
		}
		return CleanReadme(raw)
	})
	return v.(string)
}

// ModelSizeGB sums the sizes of the model's weight files (.bin and
// .safetensors), preferring the Hub's sibling size hints and falling back to
// HEAD requests. Returns 0 when nothing can be sized.
func (f *Fetcher) ModelSizeGB(ctx context.Context) float64 {
	v := f.cached("model_size_gb", func() interface{} {
		snap := f.model(ctx)
		if snap == nil {
			return 0.0
		}

		var totalBytes int64
		for _, sibling := range snap.Siblings {
			if !strings.HasSuffix(sibling.Name, ".bin") && !strings.HasSuffix(sibling.Name, ".safetensors") {
				continue
			}
			if sibling.Size > 0 {
				totalBytes += sibling.Size
				continue
			}
			size, err := f.hf.FileSizeBytes(ctx, f.ref.ModelID, sibling.Name)
			if err != nil {
				slog.Debug("File size unavailable", "file", sibling.Name, "error", err)
				continue
			}
			totalBytes += size
		}

		return float64(totalBytes) / 1e9
	})
	return v.(float64)
}

// GithubStats returns star and fork counts, zero-valued on failure.
func (f *Fetcher) GithubStats(ctx context.Context) GithubStats {
	v := f.cached("github_stats", func() interface{} {
		if !f.ref.HasCode() {
			return GithubStats{}
		}
		stats, err := f.gh.GetRepo(ctx, f.ref.CodeOwner, f.ref.CodeRepo)
		if err != nil {
			slog.Debug("Repo stats unavailable", "repo", f.ref.CodeRepo, "error", err)
			return GithubStats{}
		}
		return GithubStats{Stars: stats.Stars, Forks: stats.Forks}
	})
	return v.(GithubStats)
}

// ContributorCount returns the contributor count, 0 on failure.
func (f *Fetcher) ContributorCount(ctx context.Context) int {
	v := f.cached("contributors", func() interface{} {
		if !f.ref.HasCode() {
			return 0
		}
		count, err := f.gh.CountContributors(ctx, f.ref.CodeOwner, f.ref.CodeRepo)
		if err != nil {
			slog.Debug("Contributor count unavailable", "repo", f.ref.CodeRepo, "error", err)
			return 0
		}
		return count
	})
	return v.(int)
}

// DatasetDownloads returns the dataset download counter, 0 on failure.
func (f *Fetcher) DatasetDownloads(ctx context.Context) int64 {
	v := f.cached("dataset_downloads", func() interface{} {
		snap := f.dataset(ctx)
		if snap == nil {
			return int64(0)
		}
		return snap.Downloads
	})
	return v.(int64)
}

// Commits returns up to the 100 most recent commits of the linked repository,
// nil on failure.
func (f *Fetcher) Commits(ctx context.Context) []sources.Commit {
	v := f.cached("commits", func() interface{} {
		if !f.ref.HasCode() {
			return []sources.Commit(nil)
		}
		commits, err := f.gh.ListCommits(ctx, f.ref.CodeOwner, f.ref.CodeRepo, 100)
		if err != nil {
			slog.Debug("Commits unavailable", "repo", f.ref.CodeRepo, "error", err)
			return []sources.Commit(nil)
		}
		return commits
	})
	return v.([]sources.Commit)
}

// RecentlyModified reports whether the given resource changed within the last
// days. Model recency comes from the metadata snapshot, code recency from the
// newest commit date. False on any failure.
func (f *Fetcher) RecentlyModified(ctx context.Context, kind ReadmeKind, days int) bool {
	v := f.cached(fmt.Sprintf("recent_%s_%d", kind, days), func() interface{} {
		cutoff := time.Now().AddDate(0, 0, -days)

		switch kind {
		case ReadmeModel:
			snap := f.model(ctx)
			return snap != nil && !snap.LastModified.IsZero() && snap.LastModified.After(cutoff)
		case ReadmeCode:
			commits := f.Commits(ctx)
			return len(commits) > 0 && !commits[0].Date.IsZero() && commits[0].Date.After(cutoff)
		default:
			return false
		}
	})
	return v.(bool)
}

// knownModelPrefixes recognizes bare model family names that appear in config
// fields without an org segment.
var knownModelPrefixes = []string{"bert", "gpt", "t5", "llama", "roberta", "distilbert", "albert", "bart"}

type modelConfig struct {
	NameOrPath                string `json:"_name_or_path"`
	BaseModel                 string `json:"base_model"`
	ParentModel               string `json:"parent_model"`
	PretrainedModelNameOrPath string `json:"pretrained_model_name_or_path"`
	ModelNameOrPath           string `json:"model_name_or_path"`
}

// ParentModelIDs scans the model's config.json for lineage hints: fields that
// carry a slash-qualified model id or a recognized model family name. Empty
// on any failure.
func (f *Fetcher) ParentModelIDs(ctx context.Context) []string {
	v := f.cached("parent_models", func() interface{} {
		if !f.ref.HasModel() {
			return []string(nil)
		}
		raw, err := f.hf.RawFile(ctx, sources.RepoModel, f.ref.ModelID, "config.json")
		if err != nil {
			slog.Debug("Model config unavailable", "model", f.ref.ModelID, "error", err)
			return []string(nil)
		}

		cfg, err := parseModelConfig(raw)
		if err != nil {
			slog.Debug("Model config unparseable", "model", f.ref.ModelID, "error", err)
			return []string(nil)
		}

		seen := make(map[string]bool)
		var parents []string
		for _, candidate := range []string{cfg.NameOrPath, cfg.BaseModel, cfg.ParentModel, cfg.PretrainedModelNameOrPath, cfg.ModelNameOrPath} {
			if candidate == "" || candidate == f.ref.ModelID || seen[candidate] {
				continue
			}
			if looksLikeModelID(candidate) {
				seen[candidate] = true
				parents = append(parents, candidate)
			}
		}

		return parents
	})
	return v.([]string)
}

func looksLikeModelID(s string) bool {
	if strings.Contains(s, "/") && !strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "./") {
		return true
	}
	lower := strings.ToLower(s)
	for _, prefix := range knownModelPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
