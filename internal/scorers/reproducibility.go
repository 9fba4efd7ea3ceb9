package scorers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/fetch"
	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/llm"
)

// demoSnippets are inline signals that a model card ships runnable demo code.
var demoSnippets = []string{"from transformers", "import torch", "pipeline("}

// Reproducibility checks whether the model card carries demo code that a user
// can run. Static detection of a snippet earns 0.5; an enabled analyzer can
// upgrade that to 1.0 (runs cleanly) or downgrade to 0.0 (broken).
type Reproducibility struct {
	Analyzer *llm.Analyzer
}

func (Reproducibility) Name() string { return NameReproducibility }

func (s Reproducibility) Calculate(ctx context.Context, f *fetch.Fetcher) Result {
	return run(NameReproducibility, 0.0, func() (float64, map[string]float64) {
		readme := f.RawModelReadme(ctx)
		if readme == "" {
			return 0.0, nil
		}

		hasDemo := fetch.HasPythonCodeBlock(readme)
		if !hasDemo {
			lowered := strings.ToLower(readme)
			for _, snippet := range demoSnippets {
				if strings.Contains(lowered, snippet) {
					hasDemo = true
					break
				}
			}
		}
		if !hasDemo {
			return 0.0, nil
		}

		if s.Analyzer.Enabled() {
			if score, err := s.Analyzer.ClassifyReproducibility(ctx, readme); err == nil {
				return score, nil
			} else {
				slog.Debug("LLM reproducibility check unavailable, using static score", "error", err)
			}
		}

		// Demo code is present but unverified.
		return 0.5, nil
	})
}
