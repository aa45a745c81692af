package providers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/specdialog/llm"
)

func TestAnthropicProvider_BuildURL(t *testing.T) {
	p := &AnthropicProvider{}

	assert.Equal(t, "https://api.anthropic.com/v1/messages", p.BuildURL(""))
	assert.Equal(t, "https://proxy.example.com/v1/messages", p.BuildURL("https://proxy.example.com/"))
}

func TestAnthropicProvider_BuildRequestBody(t *testing.T) {
	p := &AnthropicProvider{}

	body, err := p.BuildRequestBody("claude-sonnet-4-20250514", []llm.Message{
		{Role: "system", Content: "you are a requirements analyst"},
		{Role: "user", Content: "hello"},
	}, nil, 0)
	require.NoError(t, err)

	var req map[string]any
	require.NoError(t, json.Unmarshal(body, &req))

	// System messages move to the dedicated field.
	assert.Equal(t, "you are a requirements analyst", req["system"])
	assert.Len(t, req["messages"], 1)
	assert.Equal(t, float64(4096), req["max_tokens"], "default max_tokens applied")
}

func TestAnthropicProvider_ParseResponse(t *testing.T) {
	p := &AnthropicProvider{}

	body := []byte(`{
		"id": "msg_01",
		"type": "message",
		"role": "assistant",
		"content": [{"type": "text", "text": "Let me ask "}, {"type": "text", "text": "a question."}],
		"model": "claude-sonnet-4-20250514",
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 12, "output_tokens": 6}
	}`)

	resp, err := p.ParseResponse(body, "claude-sonnet-4-20250514")
	require.NoError(t, err)
	assert.Equal(t, "Let me ask a question.", resp.Content)
	assert.Equal(t, 18, resp.Usage.TotalTokens)
	assert.Equal(t, "end_turn", resp.FinishReason)
}
