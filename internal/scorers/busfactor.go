package scorers

import (
	"context"

	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/fetch"
)

// BusFactor maps the contributor count onto a step function: a project with
// ten or more contributors earns full credit.
type BusFactor struct{}

func (BusFactor) Name() string { return NameBusFactor }

func (BusFactor) Calculate(ctx context.Context, f *fetch.Fetcher) Result {
	return run(NameBusFactor, 0.0, func() (float64, map[string]float64) {
		contributors := f.ContributorCount(ctx)

		switch {
		case contributors >= 10:
			return 1.0, nil
		case contributors >= 7:
			return 0.5, nil
		case contributors >= 5:
			return 0.3, nil
		default:
			return 0.0, nil
		}
	})
}
