package scorers

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/fetch"
	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/sources"
)

// Reviewedness measures the fraction of recent commits that arrived through a
// pull request. Without a linked code repository the metric is not applicable
// and reports the -1 sentinel so the aggregator can exclude it.
type Reviewedness struct{}

func (Reviewedness) Name() string { return NameReviewedness }

func (Reviewedness) Calculate(ctx context.Context, f *fetch.Fetcher) Result {
	return run(NameReviewedness, NotApplicable, func() (float64, map[string]float64) {
		if !f.HasCodeURL() {
			return NotApplicable, nil
		}

		commits := f.Commits(ctx)
		if len(commits) == 0 {
			return 0.0, nil
		}

		reviewed := 0
		for _, c := range commits {
			if isReviewedCommit(c) {
				reviewed++
			}
		}

		return round2(float64(reviewed) / float64(len(commits))), nil
	})
}

// isReviewedCommit treats merge commits and PR merges as review evidence.
func isReviewedCommit(c sources.Commit) bool {
	if c.Parents > 1 {
		return true
	}
	msg := strings.ToLower(c.Message)
	return strings.Contains(msg, "merge pull request") || strings.Contains(msg, "merge pr")
}
