package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/resilience"
)

// RepoStats is the narrow view of GitHub repository data the scorers consume.
type RepoStats struct {
	Stars int
	Forks int
}

// Commit is one commit from the repository history. Parents carries the
// number of parent commits so merge commits can be recognized.
type Commit struct {
	Message string
	Parents int
	Date    time.Time
}

// GitHubClient fetches repository data from the GitHub REST API v3 plus raw
// file content from the main branch.
type GitHubClient struct {
	token   string
	baseURL string
	rawURL  string
	pool    *resilience.Pool
	metrics *monitoring.Metrics
}

// NewGitHubClient creates a GitHub client with its own circuit breaker and
// connection pool.
func NewGitHubClient(token string) *GitHubClient {
	g := &GitHubClient{
		token:   token,
		baseURL: "https://api.github.com",
		rawURL:  "https://raw.githubusercontent.com",
	}

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
		SuccessThreshold: 3,
		OnStateChange:    g.recordBreakerTransition,
	})
	g.pool = resilience.NewPool(resilience.DefaultPoolConfig(), cb)

	return g
}

// SetMetrics attaches the application metrics. Call before serving traffic.
func (g *GitHubClient) SetMetrics(m *monitoring.Metrics) {
	g.metrics = m
}

func (g *GitHubClient) recordBreakerTransition(from, to resilience.CircuitBreakerState) {
	if g.metrics == nil {
		return
	}
	switch to {
	case resilience.StateOpen:
		g.metrics.IncrementCircuitBreakerOpen()
	case resilience.StateClosed:
		g.metrics.IncrementCircuitBreakerClose()
	}
}

// SetBaseURLs overrides the API and raw-content base URLs. Used by tests to
// point the client at a mock server.
func (g *GitHubClient) SetBaseURLs(api, raw string) {
	g.baseURL = api
	g.rawURL = raw
}

type githubRepoResponse struct {
	StargazersCount int `json:"stargazers_count"`
	ForksCount      int `json:"forks_count"`
}

type githubCommitResponse struct {
	Commit struct {
		Message   string `json:"message"`
		Committer struct {
			Date string `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
	Parents []struct {
		SHA string `json:"sha"`
	} `json:"parents"`
}

// GetRepo fetches star and fork counts for a repository.
func (g *GitHubClient) GetRepo(ctx context.Context, owner, repo string) (*RepoStats, error) {
	url := fmt.Sprintf("%s/repos/%s/%s", g.baseURL, owner, repo)

	resp, err := g.request(ctx, http.MethodGet, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repo data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("github API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var raw githubRepoResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode repo data: %w", err)
	}

	return &RepoStats{Stars: raw.StargazersCount, Forks: raw.ForksCount}, nil
}

// CountContributors returns the number of contributors reported by one
// contributors page with per_page=100.
func (g *GitHubClient) CountContributors(ctx context.Context, owner, repo string) (int, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/contributors?per_page=100", g.baseURL, owner, repo)

	resp, err := g.request(ctx, http.MethodGet, url)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch contributors: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("github API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var contributors []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&contributors); err != nil {
		return 0, fmt.Errorf("failed to decode contributors: %w", err)
	}

	return len(contributors), nil
}

// ListCommits fetches up to limit most recent commits from the default branch.
func (g *GitHubClient) ListCommits(ctx context.Context, owner, repo string, limit int) ([]Commit, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	url := fmt.Sprintf("%s/repos/%s/%s/commits?per_page=%d", g.baseURL, owner, repo, limit)

	resp, err := g.request(ctx, http.MethodGet, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch commits: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("github API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var raw []githubCommitResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode commits: %w", err)
	}

	commits := make([]Commit, 0, len(raw))
	for _, rc := range raw {
		commit := Commit{
			Message: rc.Commit.Message,
			Parents: len(rc.Parents),
		}
		if t, err := time.Parse(time.RFC3339, rc.Commit.Committer.Date); err == nil {
			commit.Date = t
		}
		commits = append(commits, commit)
	}

	return commits, nil
}

// RawFile downloads a file from the main branch of a repository.
func (g *GitHubClient) RawFile(ctx context.Context, owner, repo, path string) (string, error) {
	url := fmt.Sprintf("%s/%s/%s/main/%s", g.rawURL, owner, repo, path)

	resp, err := g.request(ctx, http.MethodGet, url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch raw file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github raw file error: status %d for %s", resp.StatusCode, path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read raw file: %w", err)
	}

	return string(body), nil
}

func (g *GitHubClient) request(ctx context.Context, method, url string) (*http.Response, error) {
	headers := map[string]string{
		"Accept":     "application/vnd.github.v3+json",
		"User-Agent": "Model-Trust-o-Meter/1.0",
	}
	if g.token != "" {
		headers["Authorization"] = "Bearer " + g.token
	}

	resp, err := g.pool.Do(ctx, method, url, headers)
	if g.metrics != nil {
		g.metrics.IncrementGitHubCalls()
		g.metrics.RecordExternalAPIRequest("github", err == nil)
	}
	return resp, err
}

// PoolStats returns connection pool statistics
func (g *GitHubClient) PoolStats() map[string]interface{} {
	return g.pool.Stats()
}

// Close closes the connection pool
func (g *GitHubClient) Close() error {
	return g.pool.Close()
}
