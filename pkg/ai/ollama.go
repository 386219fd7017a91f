package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OllamaService implements EnrichmentService using a local Ollama LLM
type OllamaService struct {
	baseURL string
	model   string
}

// NewOllamaService creates a new Ollama service
func NewOllamaService(baseURL, model string) *OllamaService {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3"
	}
	return &OllamaService{
		baseURL: baseURL,
		model:   model,
	}
}

// SummarizeCafe implements EnrichmentService
func (o *OllamaService) SummarizeCafe(ctx context.Context, cafeText string) (string, error) {
	// Same prompt shape as the Gemini provider for consistent output
	prompt := fmt.Sprintf(`You are a concise café guide editor. Summarize the café below for a discovery app.

RULES:
- At most 2 sentences.
- Mention atmosphere and one standout item if present.
- No marketing fluff, no emoji.

CAFÉ:
%s

SUMMARY:`, cafeText)

	response, err := o.generate(ctx, prompt, 100, 0.3)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response), nil
}

// SuggestTags implements EnrichmentService
func (o *OllamaService) SuggestTags(ctx context.Context, cafeText string) ([]string, error) {
	prompt := fmt.Sprintf(`Classify the café below. Return ONLY a JSON array of 2-5 short lowercase tags, e.g. ["study-friendly","specialty coffee"].

CAFÉ:
%s

JSON OUTPUT:`, cafeText)

	response, err := o.generate(ctx, prompt, 200, 0.2)
	if err != nil {
		return nil, err
	}

	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var tags []string
	if err := json.Unmarshal([]byte(response[start:end+1]), &tags); err != nil {
		return nil, fmt.Errorf("failed to parse tags: %w", err)
	}

	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return cleaned, nil
}

func (o *OllamaService) generate(ctx context.Context, prompt string, numPredict int, temperature float64) (string, error) {
	url := o.baseURL + "/api/generate"

	payload := map[string]interface{}{
		"model":  o.model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": temperature,
			"num_predict": numPredict,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Response string `json:"response"`
		Done     bool   `json:"done"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return result.Response, nil
}
