// Package types holds the request and response shapes of the HTTP API.
package types

// EvaluateRequest is the POST /evaluate payload. Every URL may be empty; the
// engine substitutes documented defaults for whatever is missing.
type EvaluateRequest struct {
	ModelURL   string `json:"model_url"`
	DatasetURL string `json:"dataset_url"`
	CodeURL    string `json:"code_url"`
}

// HealthResponse is the GET /health payload.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Version   string                 `json:"version"`
	Metrics   map[string]interface{} `json:"metrics,omitempty"`
}
