package scoring

import (
	"context"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/fetch"
	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/llm"
	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/locator"
	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/scorers"
	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/sources"
)

// maxConcurrentScorers bounds concurrent outbound network activity, not CPU.
const maxConcurrentScorers = 4

// reviewednessWeight is pulled out because the -1 sentinel renormalizes the
// weighted sum over the remaining metrics.
const reviewednessWeight = 0.09

// netScoreWeights is the fixed weighting of the eleven metrics; the values
// sum to 1.0.
var netScoreWeights = map[string]float64{
	scorers.NameLicense:           0.15,
	scorers.NameCodeQuality:       0.11,
	scorers.NameDatasetQuality:    0.11,
	scorers.NameReproducibility:   0.10,
	scorers.NameRampUp:            0.09,
	scorers.NameBusFactor:         0.09,
	scorers.NameReviewedness:      reviewednessWeight,
	scorers.NameDatasetAndCode:    0.09,
	scorers.NameSize:              0.07,
	scorers.NamePerformanceClaims: 0.07,
	scorers.NameTreescore:         0.03,
}

// Engine wires the metric suite to its upstream clients and produces one
// Record per model reference.
type Engine struct {
	hf       *sources.HuggingFaceClient
	gh       *sources.GitHubClient
	analyzer *llm.Analyzer
	lineage  scorers.LineageResolver
	suite    []scorers.Scorer
}

// NewEngine builds the engine. analyzer and lineage may be nil; the affected
// scorers degrade to their heuristic or default paths.
func NewEngine(hf *sources.HuggingFaceClient, gh *sources.GitHubClient, analyzer *llm.Analyzer, lineage scorers.LineageResolver) *Engine {
	return &Engine{
		hf:       hf,
		gh:       gh,
		analyzer: analyzer,
		lineage:  lineage,
		suite: []scorers.Scorer{
			scorers.License{},
			scorers.Size{},
			scorers.RampUp{Analyzer: analyzer},
			scorers.BusFactor{},
			scorers.PerformanceClaims{},
			scorers.DatasetAndCode{},
			scorers.DatasetQuality{},
			scorers.CodeQuality{},
			scorers.Reproducibility{Analyzer: analyzer},
			scorers.Reviewedness{},
			scorers.TreeScore{Lineage: lineage},
		},
	}
}

// Evaluate runs all eleven scorers against one reference and aggregates the
// weighted net score. It always returns a complete record: every scorer
// resolves its own failures to a documented default before reaching this
// point.
func (e *Engine) Evaluate(ctx context.Context, ref locator.Reference) Record {
	start := time.Now()

	fetcher := fetch.New(ctx, ref, e.hf, e.gh)

	results := make([]scorers.Result, len(e.suite))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentScorers)
	for i, s := range e.suite {
		g.Go(func() error {
			results[i] = s.Calculate(gctx, fetcher)
			return nil
		})
	}
	// Scorers never return errors; Wait only joins the pool.
	_ = g.Wait()

	byName := make(map[string]scorers.Result, len(results))
	for _, r := range results {
		byName[r.Name] = r
	}

	record := assemble(ref, byName)
	record.NetScore = netScore(byName)
	record.NetScoreLatency = time.Since(start).Milliseconds()

	slog.Info("Evaluation complete",
		"model", record.Name,
		"net_score", record.NetScore,
		"latency_ms", record.NetScoreLatency,
		"cached_keys", fetcher.CachedKeys(),
	)

	return record
}

// netScore computes the weighted sum, reducing size to its worst platform and
// excluding a -1 reviewedness by renormalizing over the applicable weights.
func netScore(byName map[string]scorers.Result) float64 {
	sum := 0.0
	divisor := 1.0

	for name, weight := range netScoreWeights {
		r := byName[name]
		value := r.Score

		if name == scorers.NameReviewedness && value == scorers.NotApplicable {
			divisor -= reviewednessWeight
			continue
		}

		sum += weight * value
	}

	score := sum / divisor
	score = math.Max(0, math.Min(1, score))
	return math.Round(score*100) / 100
}

func assemble(ref locator.Reference, byName map[string]scorers.Result) Record {
	size := byName[scorers.NameSize]

	return Record{
		Name:     ref.ModelName(),
		Category: CategoryModel,

		RampUpTime:        byName[scorers.NameRampUp].Score,
		RampUpTimeLatency: byName[scorers.NameRampUp].LatencyMs,

		BusFactor:        byName[scorers.NameBusFactor].Score,
		BusFactorLatency: byName[scorers.NameBusFactor].LatencyMs,

		PerformanceClaims:        byName[scorers.NamePerformanceClaims].Score,
		PerformanceClaimsLatency: byName[scorers.NamePerformanceClaims].LatencyMs,

		License:        byName[scorers.NameLicense].Score,
		LicenseLatency: byName[scorers.NameLicense].LatencyMs,

		Size: SizeScore{
			RaspberryPi: size.Platforms["raspberry_pi"],
			JetsonNano:  size.Platforms["jetson_nano"],
			DesktopPC:   size.Platforms["desktop_pc"],
			AWSServer:   size.Platforms["aws_server"],
		},
		SizeLatency: size.LatencyMs,

		DatasetAndCode:        byName[scorers.NameDatasetAndCode].Score,
		DatasetAndCodeLatency: byName[scorers.NameDatasetAndCode].LatencyMs,

		DatasetQuality:        byName[scorers.NameDatasetQuality].Score,
		DatasetQualityLatency: byName[scorers.NameDatasetQuality].LatencyMs,

		CodeQuality:        byName[scorers.NameCodeQuality].Score,
		CodeQualityLatency: byName[scorers.NameCodeQuality].LatencyMs,

		Reproducibility:        byName[scorers.NameReproducibility].Score,
		ReproducibilityLatency: byName[scorers.NameReproducibility].LatencyMs,

		Reviewedness:        byName[scorers.NameReviewedness].Score,
		ReviewednessLatency: byName[scorers.NameReviewedness].LatencyMs,

		Treescore:        byName[scorers.NameTreescore].Score,
		TreescoreLatency: byName[scorers.NameTreescore].LatencyMs,
	}
}
