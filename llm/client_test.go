package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/specdialog/llm"
	_ "github.com/c360studio/specdialog/llm/providers" // Register providers
	"github.com/c360studio/specdialog/model"
)

// fastRetry keeps test backoff negligible.
var fastRetry = llm.RetryConfig{
	MaxAttempts:       3,
	BackoffBase:       time.Millisecond,
	BackoffMultiplier: 1.0,
	MaxBackoff:        time.Millisecond,
}

func openAICompletion(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-123",
		"object":  "chat.completion",
		"created": 1677652288,
		"model":   "test-model",
		"choices": []map[string]any{
			{
				"index": 0,
				"message": map[string]string{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]int{
			"prompt_tokens":     10,
			"completion_tokens": 8,
			"total_tokens":      18,
		},
	}
}

func newTestRegistry(url string) *model.Registry {
	r := model.NewRegistry(
		map[model.Capability]*model.CapabilityConfig{
			model.CapabilityConversing: {Preferred: []string{"test-model"}},
		},
		map[string]*model.EndpointConfig{
			"test-model": {Provider: "ollama", URL: url, Model: "test-model"},
		},
	)
	return r
}

func TestClient_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openAICompletion("Hello! How can I help you?"))
	}))
	defer server.Close()

	client := llm.NewClient(newTestRegistry(server.URL), llm.WithRetryConfig(fastRetry))

	resp, err := client.Complete(context.Background(), llm.Request{
		Capability: "conversing",
		Messages:   []llm.Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello! How can I help you?", resp.Content)
	assert.Equal(t, 18, resp.Usage.TotalTokens)
}

func TestClient_Complete_RetryOnTransientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(openAICompletion("recovered"))
	}))
	defer server.Close()

	client := llm.NewClient(newTestRegistry(server.URL), llm.WithRetryConfig(fastRetry))

	resp, err := client.Complete(context.Background(), llm.Request{
		Capability: "conversing",
		Messages:   []llm.Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.Content)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Complete_NoRetryOnFatalError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := llm.NewClient(newTestRegistry(server.URL), llm.WithRetryConfig(fastRetry))

	_, err := client.Complete(context.Background(), llm.Request{
		Capability: "conversing",
		Messages:   []llm.Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	assert.True(t, llm.IsFatal(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Complete_FallbackChain(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openAICompletion("from fallback"))
	}))
	defer healthy.Close()

	registry := model.NewRegistry(
		map[model.Capability]*model.CapabilityConfig{
			model.CapabilityConversing: {
				Preferred: []string{"primary"},
				Fallback:  []string{"backup"},
			},
		},
		map[string]*model.EndpointConfig{
			"primary": {Provider: "ollama", URL: broken.URL, Model: "primary"},
			"backup":  {Provider: "ollama", URL: healthy.URL, Model: "backup"},
		},
	)

	client := llm.NewClient(registry, llm.WithRetryConfig(fastRetry))

	resp, err := client.Complete(context.Background(), llm.Request{
		Capability: "conversing",
		Messages:   []llm.Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "from fallback", resp.Content)

	// The primary's failures should have tripped its circuit breaker.
	health := registry.GetEndpointHealth("primary")
	require.NotNil(t, health)
	assert.True(t, health.CircuitOpen)
}

func TestClient_Complete_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer server.Close()

	client := llm.NewClient(newTestRegistry(server.URL), llm.WithRetryConfig(fastRetry))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.Complete(ctx, llm.Request{
		Capability: "conversing",
		Messages:   []llm.Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
}

func TestClient_Complete_ValidationErrors(t *testing.T) {
	client := llm.NewClient(newTestRegistry("http://localhost:0"))

	_, err := client.Complete(context.Background(), llm.Request{
		Messages: []llm.Message{{Role: "user", Content: "hi"}},
	})
	assert.Error(t, err, "missing capability")

	_, err = client.Complete(context.Background(), llm.Request{
		Capability: "conversing",
	})
	assert.Error(t, err, "missing messages")
}
