// Package llm wraps an OpenAI-compatible chat-completion endpoint used as an
// optional judgment source for the README-quality and reproducibility
// scorers. When no credentials are configured the analyzer is nil and every
// caller silently falls back to its keyword heuristic.
package llm

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/monitoring"
)

// Config holds the externally-configurable completion parameters.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int64
}

// Analyzer is a thin client over the chat completions API. A nil *Analyzer is
// a valid "disabled" analyzer.
type Analyzer struct {
	client  openai.Client
	cfg     Config
	metrics *monitoring.Metrics
}

// NewAnalyzer creates an analyzer, or nil when no API key is configured.
func NewAnalyzer(cfg Config) *Analyzer {
	if cfg.APIKey == "" {
		return nil
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.1
	}
	if cfg.TopP == 0 {
		cfg.TopP = 1.0
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 16
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Analyzer{
		client: openai.NewClient(opts...),
		cfg:    cfg,
	}
}

// Enabled reports whether LLM judgments are available.
func (a *Analyzer) Enabled() bool {
	return a != nil
}

// SetMetrics attaches the application metrics. Safe on a nil analyzer.
func (a *Analyzer) SetMetrics(m *monitoring.Metrics) {
	if a == nil {
		return
	}
	a.metrics = m
}

const rampUpPrompt = `You rate how easy it is for a new user to get started with a project ` +
	`based on its README. Consider installation instructions, usage examples and quickstart ` +
	`guidance. Respond with a single number between 0.0 and 1.0 and nothing else.`

// RateRampUp asks the model to rate onboarding quality of a README in [0,1].
func (a *Analyzer) RateRampUp(ctx context.Context, readme string) (float64, error) {
	out, err := a.complete(ctx, rampUpPrompt, truncate(readme, 8000))
	if err != nil {
		return 0, err
	}

	score, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, fmt.Errorf("llm: unparseable ramp-up rating %q: %w", out, err)
	}
	if score < 0 || score > 1 {
		return 0, fmt.Errorf("llm: ramp-up rating %v out of range", score)
	}

	return score, nil
}

const reproducibilityPrompt = `You judge whether the demo code embedded in a model README ` +
	`would run as written. Answer with exactly one word: "runs" if it would run cleanly, ` +
	`"debug" if it would run after minor fixes, "broken" if it would not run.`

// ClassifyReproducibility maps the model's run/needs-debug/no-run judgment of
// README demo code onto {1.0, 0.5, 0.0}.
func (a *Analyzer) ClassifyReproducibility(ctx context.Context, readme string) (float64, error) {
	out, err := a.complete(ctx, reproducibilityPrompt, truncate(readme, 8000))
	if err != nil {
		return 0, err
	}

	switch {
	case strings.Contains(strings.ToLower(out), "runs"):
		return 1.0, nil
	case strings.Contains(strings.ToLower(out), "debug"):
		return 0.5, nil
	case strings.Contains(strings.ToLower(out), "broken"):
		return 0.0, nil
	default:
		return 0, fmt.Errorf("llm: unrecognized reproducibility verdict %q", out)
	}
}

func (a *Analyzer) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(a.cfg.Temperature),
		TopP:        openai.Float(a.cfg.TopP),
		MaxTokens:   openai.Int(a.cfg.MaxTokens),
	})
	if a.metrics != nil {
		a.metrics.IncrementLLMCalls()
		a.metrics.RecordExternalAPIRequest("llm", err == nil)
	}
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: empty completion")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
