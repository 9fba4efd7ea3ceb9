package scorers

import (
	"context"

	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/fetch"
)

// LineageResolver looks up previously recorded net scores for parent models.
type LineageResolver interface {
	ParentNetScores(ctx context.Context, parentIDs []string) []float64
}

// TreeScore averages the recorded net scores of the model's declared parents.
// Models with no resolvable lineage score zero.
type TreeScore struct {
	Lineage LineageResolver
}

func (TreeScore) Name() string { return NameTreescore }

func (s TreeScore) Calculate(ctx context.Context, f *fetch.Fetcher) Result {
	return run(NameTreescore, 0.0, func() (float64, map[string]float64) {
		if s.Lineage == nil {
			return 0.0, nil
		}

		parents := f.ParentModelIDs(ctx)
		if len(parents) == 0 {
			return 0.0, nil
		}

		scores := s.Lineage.ParentNetScores(ctx, parents)
		if len(scores) == 0 {
			return 0.0, nil
		}

		sum := 0.0
		for _, v := range scores {
			sum += v
		}
		return round2(sum / float64(len(scores))), nil
	})
}
