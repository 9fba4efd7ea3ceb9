package locator

import "strings"

// Reference holds the normalized identifiers derived from the three input URLs.
// All fields are derived purely from string parsing; an unrecognizable URL
// leaves the corresponding fields empty rather than producing an error.
type Reference struct {
	ModelID   string `json:"model_id"`
	DatasetID string `json:"dataset_id"`
	CodeOwner string `json:"code_owner"`
	CodeRepo  string `json:"code_repo"`
}

// Parse derives a Reference from raw model, dataset and code URLs. It never fails.
func Parse(modelURL, datasetURL, codeURL string) Reference {
	return Reference{
		ModelID:   parseModelID(modelURL),
		DatasetID: parseDatasetID(datasetURL),
		CodeOwner: parseGithubOwner(codeURL),
		CodeRepo:  parseGithubRepo(codeURL),
	}
}

// HasModel reports whether a HuggingFace model id was resolved.
func (r Reference) HasModel() bool { return r.ModelID != "" }

// HasDataset reports whether a HuggingFace dataset id was resolved.
func (r Reference) HasDataset() bool { return r.DatasetID != "" }

// HasCode reports whether a GitHub owner/repo pair was resolved.
func (r Reference) HasCode() bool { return r.CodeOwner != "" && r.CodeRepo != "" }

// ModelName returns the display name of the model: the last path segment of
// the model id, or empty when no model was resolved.
func (r Reference) ModelName() string {
	if r.ModelID == "" {
		return ""
	}
	parts := strings.Split(r.ModelID, "/")
	return parts[len(parts)-1]
}

func parseModelID(url string) string {
	url = strings.TrimSuffix(strings.TrimSpace(url), "/")
	if url == "" || !strings.Contains(url, "huggingface.co/") || strings.Contains(url, "/datasets/") {
		return ""
	}
	id := url[strings.Index(url, "huggingface.co/")+len("huggingface.co/"):]
	id = strings.TrimSuffix(id, "/tree/main")
	return id
}

func parseDatasetID(url string) string {
	url = strings.TrimSuffix(strings.TrimSpace(url), "/")
	if url == "" || !strings.Contains(url, "huggingface.co/datasets/") {
		return ""
	}
	id := url[strings.Index(url, "huggingface.co/datasets/")+len("huggingface.co/datasets/"):]
	id = strings.TrimSuffix(id, "/tree/main")
	return id
}

// GitHub URLs are valid only when the path carries scheme, host, owner and
// repo, i.e. at least five slash-separated segments.
func parseGithubOwner(url string) string {
	owner, _ := splitGithubURL(url)
	return owner
}

func parseGithubRepo(url string) string {
	_, repo := splitGithubURL(url)
	return repo
}

func splitGithubURL(url string) (string, string) {
	url = strings.TrimSuffix(strings.TrimSpace(url), "/")
	if url == "" || !strings.Contains(url, "github.com") {
		return "", ""
	}
	parts := strings.Split(url, "/")
	if len(parts) < 5 || parts[3] == "" || parts[4] == "" {
		return "", ""
	}
	return parts[3], parts[4]
}
