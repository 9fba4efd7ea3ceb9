// Package scorers holds the eleven independent metric calculators. Each unit
// is stateless, consumes only the fetch facade, measures its own wall clock
// and never propagates a failure: any internal panic resolves to the unit's
// documented default score.
package scorers

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/fetch"
)

// Metric names, matching the wire-format field names of the evaluation record.
const (
	NameLicense           = "license"
	NameSize              = "size"
	NameRampUp            = "ramp_up"
	NameBusFactor         = "bus_factor"
	NamePerformanceClaims = "performance_claims"
	NameDatasetAndCode    = "dataset_and_code"
	NameDatasetQuality    = "dataset_quality"
	NameCodeQuality       = "code_quality"
	NameReproducibility   = "reproducibility"
	NameReviewedness      = "reviewedness"
	NameTreescore         = "treescore"
)

// NotApplicable is the reviewedness sentinel for "no linked code repository".
// It is semantically distinct from 0.0 and excluded from net-score weighting.
const NotApplicable = -1.0

// Result is the output of one scorer unit. Platforms is populated only by the
// size scorer; for all other units it is nil and Score carries the value.
type Result struct {
	Name      string
	Score     float64
	Platforms map[string]float64
	LatencyMs int64
}

// Scorer is one metric calculation unit.
type Scorer interface {
	Name() string
	Calculate(ctx context.Context, f *fetch.Fetcher) Result
}

// run times a scorer body and converts panics into the default score. The
// fetch layer already absorbs network failures, so anything reaching the
// recover here is a programming error worth logging loudly.
func run(name string, defaultScore float64, body func() (float64, map[string]float64)) Result {
	start := time.Now()

	score := defaultScore
	var platforms map[string]float64

	func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Scorer panicked, using default score", "scorer", name, "panic", r)
				score = defaultScore
				platforms = nil
			}
		}()
		score, platforms = body()
	}()

	return Result{
		Name:      name,
		Score:     score,
		Platforms: platforms,
		LatencyMs: time.Since(start).Milliseconds(),
	}
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
