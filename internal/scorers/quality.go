package scorers

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/fetch"
)

// datasetDocKeywords indicate that a dataset card documents its structure and
// terms of use.
var datasetDocKeywords = []string{"license", "download", "split", "train", "test", "validation"}

// DatasetQuality sums additive evidence from the dataset card: documentation
// length, download popularity and structural keywords. The sum is clamped
// into [0, 1].
type DatasetQuality struct{}

func (DatasetQuality) Name() string { return NameDatasetQuality }

func (DatasetQuality) Calculate(ctx context.Context, f *fetch.Fetcher) Result {
	return run(NameDatasetQuality, 0.0, func() (float64, map[string]float64) {
		if !f.HasDatasetURL() {
			return 0.0, nil
		}

		readme := f.Readme(ctx, fetch.ReadmeDataset)
		score := 0.0

		if fetch.WordCount(readme) >= 820 {
			score += 0.3
		}

		downloads := f.DatasetDownloads(ctx)
		switch {
		case downloads >= 100000:
			score += 0.2
		case downloads >= 50000:
			score += 0.15
		}

		lowered := strings.ToLower(readme)
		for _, keyword := range datasetDocKeywords {
			if strings.Contains(lowered, keyword) {
				score += 0.5
				break
			}
		}

		return clamp01(score), nil
	})
}

// CodeQuality sums additive evidence of repository health: popularity,
// documentation depth and recent maintenance activity.
type CodeQuality struct{}

func (CodeQuality) Name() string { return NameCodeQuality }

func (CodeQuality) Calculate(ctx context.Context, f *fetch.Fetcher) Result {
	return run(NameCodeQuality, 0.0, func() (float64, map[string]float64) {
		if !f.HasCodeURL() {
			return 0.0, nil
		}

		score := 0.0

		stats := f.GithubStats(ctx)
		if stats.Stars >= 10000 {
			score += 0.1
		}
		if stats.Forks >= 5000 {
			score += 0.1
		}

		words := fetch.WordCount(f.Readme(ctx, fetch.ReadmeCode))
		switch {
		case words >= 1700:
			score += 0.3
		case words >= 1000:
			score += 0.2
		}

		if f.RecentlyModified(ctx, fetch.ReadmeCode, 180) {
			score += 0.2
		}

		return clamp01(score), nil
	})
}
