package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intake/internal/config"
	"intake/internal/generator"
	"intake/internal/generator/openai"
)

func newTestGenerator(t *testing.T, serverURL string) *openai.Generator {
	t.Helper()
	g, err := openai.NewGeneratorWithEndpoint(&config.GeneratorProviderConfig{
		Provider:    "openai",
		APIKey:      "sk-test",
		TimeoutSecs: 5,
	}, serverURL)
	require.NoError(t, err)
	return g
}

func TestOpenAIGenerator_Generate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "gpt-4o-mini", reqBody["model"])
		assert.Equal(t, float64(512), reqBody["max_completion_tokens"])

		messages := reqBody["messages"].([]interface{})
		msg := messages[0].(map[string]interface{})
		assert.Equal(t, "user", msg["role"])
		assert.Equal(t, "prompt", msg["content"])

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Yes"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	out, err := newTestGenerator(t, server.URL).Generate(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "Yes", out)
}

func TestOpenAIGenerator_Generate_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "15")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	_, err := newTestGenerator(t, server.URL).Generate(context.Background(), "prompt")

	var rlErr *generator.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "openai", rlErr.Provider)
	assert.Equal(t, 15*time.Second, rlErr.RetryAfter)
}

func TestOpenAIGenerator_Generate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`internal`))
	}))
	defer server.Close()

	_, err := newTestGenerator(t, server.URL).Generate(context.Background(), "prompt")

	assert.ErrorContains(t, err, "status 500")
	var rlErr *generator.RateLimitError
	assert.NotErrorAs(t, err, &rlErr)
}

func TestOpenAIGenerator_Generate_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	_, err := newTestGenerator(t, server.URL).Generate(context.Background(), "prompt")

	assert.ErrorContains(t, err, "no choices")
}

func TestOpenAIGenerator_RequiresAPIKey(t *testing.T) {
	_, err := openai.NewGenerator(&config.GeneratorProviderConfig{Provider: "openai"})

	assert.Error(t, err)
}
