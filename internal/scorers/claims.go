package scorers

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/fetch"
)

// performanceKeywords signal that the project documents measured results.
var performanceKeywords = []string{"accuracy", "benchmark", "perplexity", "performance"}

// PerformanceClaims scores 1.0 when the code README mentions any measured
// performance signal, 0.0 otherwise.
type PerformanceClaims struct{}

func (PerformanceClaims) Name() string { return NamePerformanceClaims }

func (PerformanceClaims) Calculate(ctx context.Context, f *fetch.Fetcher) Result {
	return run(NamePerformanceClaims, 0.0, func() (float64, map[string]float64) {
		readme := strings.ToLower(f.Readme(ctx, fetch.ReadmeCode))
		for _, keyword := range performanceKeywords {
			if strings.Contains(readme, keyword) {
				return 1.0, nil
			}
		}
		return 0.0, nil
	})
}

// DatasetAndCode scores the completeness of the artifact triple: half credit
// for a linked code repository, half for a linked dataset.
type DatasetAndCode struct{}

func (DatasetAndCode) Name() string { return NameDatasetAndCode }

func (DatasetAndCode) Calculate(ctx context.Context, f *fetch.Fetcher) Result {
	return run(NameDatasetAndCode, 0.0, func() (float64, map[string]float64) {
		score := 0.0
		if f.HasCodeURL() {
			score += 0.5
		}
		if f.HasDatasetURL() {
			score += 0.5
		}
		return score, nil
	})
}
