package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"podforge/internal/logger"
)

// DefaultResearchModel is the Perplexity model used for deep research queries.
const DefaultResearchModel = "sonar-deep-research"

// PerplexityClient implements ResearchProvider using the Perplexity API.
// Deep research completions can run for minutes, so callers control the
// deadline through the request context; the HTTP client itself carries no
// timeout.
type PerplexityClient struct {
	apiKey string
	model  string
	client *http.Client
}

// NewPerplexityClient creates a new Perplexity research client.
func NewPerplexityClient(apiKey, model string) *PerplexityClient {
	if model == "" {
		model = DefaultResearchModel
	}
	return &PerplexityClient{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{},
	}
}

// perplexityRequest mirrors the chat-completions request body.
type perplexityRequest struct {
	Model    string              `json:"model"`
	Messages []perplexityMessage `json:"messages"`
}

type perplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Query submits a single research prompt and returns the response text.
func (p *PerplexityClient) Query(ctx context.Context, prompt string) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("perplexity API key is required")
	}

	requestData := perplexityRequest{
		Model: p.model,
		Messages: []perplexityMessage{
			{Role: "user", Content: prompt},
		},
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.perplexity.ai/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute research request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("research API error %d: %s", resp.StatusCode, string(body))
	}

	var apiResponse struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", fmt.Errorf("failed to parse research response: %w", err)
	}

	if len(apiResponse.Choices) == 0 {
		return "", fmt.Errorf("research API returned no choices")
	}

	logger.Info("Research query completed", "model", p.model, "elapsed", time.Since(started).String())

	return apiResponse.Choices[0].Message.Content, nil
}
