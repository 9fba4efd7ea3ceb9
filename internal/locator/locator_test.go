package locator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		model    string
		dataset  string
		code     string
		expected Reference
	}{
		{
			name:    "parses full triple",
			model:   "https://huggingface.co/google/gemma-2b",
			dataset: "https://huggingface.co/datasets/squad",
			code:    "https://github.com/huggingface/transformers",
			expected: Reference{
				ModelID:   "google/gemma-2b",
				DatasetID: "squad",
				CodeOwner: "huggingface",
				CodeRepo:  "transformers",
			},
		},
		{
			name:     "all empty inputs yield empty reference",
			expected: Reference{},
		},
		{
			name:     "bare model name without org",
			model:    "https://huggingface.co/bert-base-uncased",
			expected: Reference{ModelID: "bert-base-uncased"},
		},
		{
			name:     "strips trailing slash and tree main",
			model:    "https://huggingface.co/google/gemma-2b/tree/main/",
			expected: Reference{ModelID: "google/gemma-2b"},
		},
		{
			name:     "dataset url is not a model url",
			model:    "https://huggingface.co/datasets/squad",
			expected: Reference{},
		},
		{
			name:     "dataset with org",
			dataset:  "https://huggingface.co/datasets/allenai/c4",
			expected: Reference{DatasetID: "allenai/c4"},
		},
		{
			name:     "github url without repo segment is rejected",
			code:     "https://github.com/huggingface",
			expected: Reference{},
		},
		{
			name:     "github url with trailing slash",
			code:     "https://github.com/pytorch/pytorch/",
			expected: Reference{CodeOwner: "pytorch", CodeRepo: "pytorch"},
		},
		{
			name:     "non huggingface model url is ignored",
			model:    "https://example.com/some/model",
			expected: Reference{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := Parse(tt.model, tt.dataset, tt.code)
			assert.Equal(t, tt.expected, ref)
		})
	}
}

func TestReference_ModelName(t *testing.T) {
	assert.Equal(t, "gemma-2b", Reference{ModelID: "google/gemma-2b"}.ModelName())
	assert.Equal(t, "bert-base-uncased", Reference{ModelID: "bert-base-uncased"}.ModelName())
	assert.Equal(t, "", Reference{}.ModelName())
}

func TestReference_Presence(t *testing.T) {
	ref := Parse("https://huggingface.co/google/gemma-2b", "", "https://github.com/a/b")
	assert.True(t, ref.HasModel())
	assert.False(t, ref.HasDataset())
	assert.True(t, ref.HasCode())
}
