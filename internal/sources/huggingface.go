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

// ModelSnapshot is the narrow view of HuggingFace model metadata consumed by
// the scorers. It is fetched at most once per evaluation, so every scorer in
// one evaluation sees the same snapshot.
type ModelSnapshot struct {
	LastModified time.Time
	Tags         []string
	CardData     CardData
	Siblings     []SiblingFile
}

// CardData carries the model-card fields the engine reads.
type CardData struct {
	License string `json:"license"`
}

// SiblingFile is one file in a model repository with its size hint, when the
// Hub reports one.
type SiblingFile struct {
	Name string
	Size int64
}

// DatasetSnapshot is the narrow view of HuggingFace dataset metadata.
type DatasetSnapshot struct {
	Downloads    int64
	LastModified time.Time
}

// RepoType selects which HuggingFace repository namespace a raw-file fetch
// addresses.
type RepoType string

const (
	RepoModel   RepoType = "model"
	RepoDataset RepoType = "dataset"
)

// HuggingFaceClient fetches model and dataset data from the HuggingFace Hub.
type HuggingFaceClient struct {
	token   string
	baseURL string
	pool    *resilience.Pool
	metrics *monitoring.Metrics
}

// NewHuggingFaceClient creates a Hub client with its own circuit breaker and
// connection pool.
func NewHuggingFaceClient(token string) *HuggingFaceClient {
	h := &HuggingFaceClient{
		token:   token,
		baseURL: "https://huggingface.co",
	}

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
		SuccessThreshold: 3,
		OnStateChange:    h.recordBreakerTransition,
	})
	h.pool = resilience.NewPool(resilience.DefaultPoolConfig(), cb)

	return h
}

// SetMetrics attaches the application metrics. Call before serving traffic.
func (h *HuggingFaceClient) SetMetrics(m *monitoring.Metrics) {
	h.metrics = m
}

func (h *HuggingFaceClient) recordBreakerTransition(from, to resilience.CircuitBreakerState) {
	if h.metrics == nil {
		return
	}
	switch to {
	case resilience.StateOpen:
		h.metrics.IncrementCircuitBreakerOpen()
	case resilience.StateClosed:
		h.metrics.IncrementCircuitBreakerClose()
	}
}

// SetBaseURL overrides the Hub base URL. Used by tests to point the client at
// a mock server.
func (h *HuggingFaceClient) SetBaseURL(url string) {
	h.baseURL = url
}

type hubModelResponse struct {
	LastModified string   `json:"lastModified"`
	Tags         []string `json:"tags"`
	CardData     CardData `json:"cardData"`
	Siblings     []struct {
		Rfilename string `json:"rfilename"`
		Size      int64  `json:"size"`
	} `json:"siblings"`
}

type hubDatasetResponse struct {
	Downloads    int64  `json:"downloads"`
	LastModified string `json:"lastModified"`
}

// GetModel fetches model metadata from the Hub API.
func (h *HuggingFaceClient) GetModel(ctx context.Context, modelID string) (*ModelSnapshot, error) {
	url := fmt.Sprintf("%s/api/models/%s", h.baseURL, modelID)

	resp, err := h.request(ctx, http.MethodGet, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch model metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("huggingface API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var raw hubModelResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode model metadata: %w", err)
	}

	snapshot := &ModelSnapshot{
		Tags:     raw.Tags,
		CardData: raw.CardData,
	}
	if t, err := time.Parse(time.RFC3339, raw.LastModified); err == nil {
		snapshot.LastModified = t
	}
	for _, s := range raw.Siblings {
		snapshot.Siblings = append(snapshot.Siblings, SiblingFile{Name: s.Rfilename, Size: s.Size})
	}

	return snapshot, nil
}

// GetDataset fetches dataset metadata from the Hub API.
func (h *HuggingFaceClient) GetDataset(ctx context.Context, datasetID string) (*DatasetSnapshot, error) {
	url := fmt.Sprintf("%s/api/datasets/%s", h.baseURL, datasetID)

	resp, err := h.request(ctx, http.MethodGet, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("huggingface API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var raw hubDatasetResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode dataset metadata: %w", err)
	}

	snapshot := &DatasetSnapshot{Downloads: raw.Downloads}
	if t, err := time.Parse(time.RFC3339, raw.LastModified); err == nil {
		snapshot.LastModified = t
	}

	return snapshot, nil
}

// RawFile downloads a file from the raw endpoint of a model or dataset repo
// on the main branch.
func (h *HuggingFaceClient) RawFile(ctx context.Context, repoType RepoType, id, path string) (string, error) {
	var url string
	switch repoType {
	case RepoDataset:
		url = fmt.Sprintf("%s/datasets/%s/raw/main/%s", h.baseURL, id, path)
	default:
		url = fmt.Sprintf("%s/%s/raw/main/%s", h.baseURL, id, path)
	}

	resp, err := h.request(ctx, http.MethodGet, url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch raw file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("huggingface raw file error: status %d for %s", resp.StatusCode, path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read raw file: %w", err)
	}

	return string(body), nil
}

// FileSizeBytes resolves the size of one model file via a HEAD request
// against the resolve endpoint. Returns 0 when the Hub does not report a
// Content-Length.
func (h *HuggingFaceClient) FileSizeBytes(ctx context.Context, modelID, filename string) (int64, error) {
	url := fmt.Sprintf("%s/%s/resolve/main/%s", h.baseURL, modelID, filename)

	resp, err := h.request(ctx, http.MethodHead, url)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve file size: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("huggingface resolve error: status %d for %s", resp.StatusCode, filename)
	}

	if resp.ContentLength < 0 {
		return 0, nil
	}
	return resp.ContentLength, nil
}

func (h *HuggingFaceClient) request(ctx context.Context, method, url string) (*http.Response, error) {
	headers := map[string]string{
		"User-Agent": "Model-Trust-o-Meter/1.0",
	}
	if h.token != "" {
		headers["Authorization"] = "Bearer " + h.token
	}

	resp, err := h.pool.Do(ctx, method, url, headers)
	if h.metrics != nil {
		h.metrics.IncrementHuggingFaceCalls()
		h.metrics.RecordExternalAPIRequest("huggingface", err == nil)
	}
	return resp, err
}

// PoolStats returns connection pool statistics
func (h *HuggingFaceClient) PoolStats() map[string]interface{} {
	return h.pool.Stats()
}

// Close closes the connection pool
func (h *HuggingFaceClient) Close() error {
	return h.pool.Close()
}
