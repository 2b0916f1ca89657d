package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EssayRC/internal/config"
	"EssayRC/internal/domain"
)

func testClient(serverURL string) *GeminiClient {
	return NewGeminiClient(config.GeminiConfig{
		Endpoint:        serverURL,
		Model:           "gemini-test",
		APIKey:          "test-key",
		Temperature:     0.2,
		MaxOutputTokens: 4000,
	}, "system prompt with schema")
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	var captured generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "gemini-test:generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"raw model output"}]}}]}`))
	}))
	defer server.Close()

	client := testClient(server.URL)

	text, err := client.Generate(context.Background(), "the prompt")
	require.NoError(t, err)
	assert.Equal(t, "raw model output", text)

	require.Len(t, captured.Contents, 1)
	assert.Equal(t, "the prompt", captured.Contents[0].Parts[0].Text)
	require.NotNil(t, captured.GenerationConfig)
	assert.Equal(t, 0.2, captured.GenerationConfig.Temperature)
	assert.Equal(t, 4000, captured.GenerationConfig.MaxOutputTokens)
	require.NotNil(t, captured.SystemInstruction)
	assert.Equal(t, "system prompt with schema", captured.SystemInstruction.Parts[0].Text)
}

func TestGenerateNonSuccessStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad prompt"}`))
	}))
	defer server.Close()

	client := testClient(server.URL)

	_, err := client.Generate(context.Background(), "p")
	var gerr *domain.GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, http.StatusBadRequest, gerr.Status)
}

func TestGenerateRateLimited(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := testClient(server.URL)

	_, err := client.Generate(context.Background(), "p")
	var rerr *domain.RateLimitError
	require.ErrorAs(t, err, &rerr)
}

func TestGenerateNoCandidates(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := testClient(server.URL)

	_, err := client.Generate(context.Background(), "p")
	var gerr *domain.GenerationError
	require.ErrorAs(t, err, &gerr)
}

func TestGenerateMisconfigured(t *testing.T) {
	t.Parallel()

	client := NewGeminiClient(config.GeminiConfig{}, "")
	_, err := client.Generate(context.Background(), "p")
	var gerr *domain.GenerationError
	require.ErrorAs(t, err, &gerr)
}
