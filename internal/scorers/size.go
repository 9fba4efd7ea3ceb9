package scorers

import (
	"context"

	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/fetch"
)

// PlatformThresholds maps deployment targets to the model size in GB beyond
// which the platform scores zero.
var PlatformThresholds = map[string]float64{
	"raspberry_pi": 0.5,
	"jetson_nano":  1.0,
	"desktop_pc":   6.0,
	"aws_server":   15.0,
}

// Size scores each deployment platform by how much headroom the model leaves
// under the platform's size threshold. An unsized model scores zero on every
// platform.
type Size struct{}

func (Size) Name() string { return NameSize }

func (Size) Calculate(ctx context.Context, f *fetch.Fetcher) Result {
	return run(NameSize, 0.0, func() (float64, map[string]float64) {
		sizeGB := f.ModelSizeGB(ctx)

		platforms := make(map[string]float64, len(PlatformThresholds))
		if sizeGB <= 0 {
			for platform := range PlatformThresholds {
				platforms[platform] = 0.0
			}
			return 0.0, platforms
		}

		min := 1.0
		for platform, threshold := range PlatformThresholds {
			score := round2(clamp01(1 - sizeGB/threshold))
			platforms[platform] = score
			if score < min {
				min = score
			}
		}

		// Score carries the worst-deployment-target value used for weighting.
		return min, platforms
	})
}
