package scorers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/fetch"
	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/llm"
)

// rampSectionKeywords are the onboarding section markers searched for in the
// code README.
var rampSectionKeywords = []string{
	"install",
	"installation",
	"usage",
	"example",
	"quickstart",
	"quick start",
	"download",
	"how to use",
}

// rampFillerWords do not count toward a section's meaningful word total.
var rampFillerWords = map[string]bool{
	"more":        true,
	"information": true,
	"see":         true,
	"docs":        true,
}

// rampTargetWords is the word count at which one onboarding section earns
// full credit.
const rampTargetWords = 50

// RampUp rates how quickly a new user can get started from the code README.
// With an analyzer configured the rating is delegated to the LLM; otherwise a
// keyword heuristic averages the substance of each onboarding section.
type RampUp struct {
	Analyzer *llm.Analyzer
}

func (RampUp) Name() string { return NameRampUp }

func (s RampUp) Calculate(ctx context.Context, f *fetch.Fetcher) Result {
	return run(NameRampUp, 0.0, func() (float64, map[string]float64) {
		readme := f.Readme(ctx, fetch.ReadmeCode)
		if readme == "" {
			return 0.0, nil
		}

		if s.Analyzer.Enabled() {
			if score, err := s.Analyzer.RateRampUp(ctx, readme); err == nil {
				return clamp01(score), nil
			} else {
				slog.Debug("LLM ramp-up rating unavailable, using heuristic", "error", err)
			}
		}

		return rampUpHeuristic(readme), nil
	})
}

// rampUpHeuristic scores each onboarding section by the meaningful words
// between its keyword and the next section keyword, normalized by the target
// word count. Sections that are absent contribute zero.
func rampUpHeuristic(readme string) float64 {
	text := strings.ToLower(readme)

	total := 0.0
	for _, keyword := range rampSectionKeywords {
		idx := strings.Index(text, keyword)
		if idx < 0 {
			continue
		}

		section := text[idx+len(keyword):]
		end := len(section)
		for _, other := range rampSectionKeywords {
			if other == keyword {
				continue
			}
			if j := strings.Index(section, other); j >= 0 && j < end {
				end = j
			}
		}

		words := 0
		for _, word := range strings.Fields(section[:end]) {
			if !rampFillerWords[word] {
				words++
			}
		}

		score := float64(words) / rampTargetWords
		if score > 1 {
			score = 1
		}
		total += score
	}

	return total / float64(len(rampSectionKeywords))
}
