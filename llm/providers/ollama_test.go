package providers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/specdialog/llm"
)

func TestOllamaProvider_BuildURL(t *testing.T) {
	p := &OllamaProvider{}

	tests := []struct {
		name    string
		baseURL string
		want    string
	}{
		{
			name:    "empty uses default",
			baseURL: "",
			want:    "http://localhost:11434/v1/chat/completions",
		},
		{
			name:    "trailing slash trimmed",
			baseURL: "http://example.com/v1/",
			want:    "http://example.com/v1/chat/completions",
		},
		{
			name:    "full path preserved",
			baseURL: "http://example.com/v1/chat/completions",
			want:    "http://example.com/v1/chat/completions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.BuildURL(tt.baseURL))
		})
	}
}

func TestOllamaProvider_BuildRequestBody(t *testing.T) {
	p := &OllamaProvider{}

	body, err := p.BuildRequestBody("llama3.2", []llm.Message{
		{Role: "system", Content: "be terse"},
		{Role: "user", Content: "hello"},
	}, nil, 0)
	require.NoError(t, err)

	var req map[string]any
	require.NoError(t, json.Unmarshal(body, &req))
	assert.Equal(t, "llama3.2", req["model"])
	assert.Len(t, req["messages"], 2)
	assert.NotContains(t, req, "temperature")
	assert.NotContains(t, req, "max_tokens")
}

func TestOllamaProvider_ParseResponse(t *testing.T) {
	p := &OllamaProvider{}

	body := []byte(`{
		"model": "llama3.2",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "hi there"}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 5, "completion_tokens": 3, "total_tokens": 8}
	}`)

	resp, err := p.ParseResponse(body, "llama3.2")
	require.NoError(t, err)
	assert.Equal(t, "hi there", resp.Content)
	assert.Equal(t, 8, resp.Usage.TotalTokens)
	assert.Equal(t, "stop", resp.FinishReason)
}

func TestOllamaProvider_ParseResponseNoChoices(t *testing.T) {
	p := &OllamaProvider{}

	_, err := p.ParseResponse([]byte(`{"model": "llama3.2", "choices": []}`), "llama3.2")
	assert.Error(t, err)
}
