package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"EssayRC/internal/config"
	"EssayRC/internal/domain"
	"EssayRC/internal/ports"
)

// GeminiClient calls the generateContent REST endpoint. It owns only the
// request shape: prompt, a fixed low sampling temperature, an output
// ceiling and the schema hint in the system instruction. Everything the
// model returns is treated as untrusted text for the parser to validate.
type GeminiClient struct {
	endpoint        string
	model           string
	apiKey          string
	temperature     float64
	maxOutputTokens int
	systemPrompt    string
	httpClient      *http.Client
}

var _ ports.TextGenerator = (*GeminiClient)(nil)

// NewGeminiClient builds a client from configuration.
func NewGeminiClient(cfg config.GeminiConfig, systemPrompt string) *GeminiClient {
	return &GeminiClient{
		endpoint:        strings.TrimSuffix(cfg.Endpoint, "/"),
		model:           cfg.Model,
		apiKey:          cfg.APIKey,
		temperature:     cfg.Temperature,
		maxOutputTokens: cfg.MaxOutputTokens,
		systemPrompt:    systemPrompt,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Model reports the configured model identifier for artifact metadata.
func (c *GeminiClient) Model() string { return c.model }

type generateRequest struct {
	Contents          []content         `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate posts the prompt and returns the raw text of the first
// completion candidate.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" || c.model == "" {
		return "", &domain.GenerationError{Err: fmt.Errorf("gemini client misconfigured")}
	}

	payload := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: &generationConfig{
			Temperature:     c.temperature,
			MaxOutputTokens: c.maxOutputTokens,
		},
	}
	if c.systemPrompt != "" {
		payload.SystemInstruction = &content{Parts: []part{{Text: c.systemPrompt}}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", &domain.GenerationError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.endpoint, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &domain.GenerationError{Err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &domain.GenerationError{Err: fmt.Errorf("send request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &domain.RateLimitError{FetchError: domain.FetchError{URL: c.endpoint, Status: resp.StatusCode}}
	}
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &domain.GenerationError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%s", strings.TrimSpace(string(detail))),
		}
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &domain.GenerationError{Err: fmt.Errorf("decode response: %w", err)}
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", &domain.GenerationError{Err: fmt.Errorf("response has no candidates")}
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
