package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// GeminiService calls the Gemini REST API with a server-held key. Clients never
// see the key; this package is the credential-holding side of the enrichment
// proxy.
type GeminiService struct {
	ApiKey string
}

func NewGeminiService(apiKey string) *GeminiService {
	return &GeminiService{ApiKey: apiKey}
}

// SummarizeCafe produces a short blurb for a café from its raw description and
// review text.
func (g *GeminiService) SummarizeCafe(ctx context.Context, cafeText string) (string, error) {
	prompt := fmt.Sprintf(`You are a concise café guide editor. Summarize the café below for a discovery app.

RULES:
- At most 2 sentences.
- Mention atmosphere and one standout item if present.
- No marketing fluff, no emoji.

CAFÉ:
%s

SUMMARY:`, cafeText)

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// SuggestTags returns category tags for a café (e.g. "study-friendly", "espresso bar")
func (g *GeminiService) SuggestTags(ctx context.Context, cafeText string) ([]string, error) {
	prompt := fmt.Sprintf(`Classify the café below. Return ONLY a JSON array of 2-5 short lowercase tags, e.g. ["study-friendly","specialty coffee"].

CAFÉ:
%s

JSON OUTPUT:`, cafeText)

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return parseTagArray(text)
}

func (g *GeminiService) generate(ctx context.Context, prompt string) (string, error) {
	// gemini-2.5-flash is fast enough for on-demand enrichment
	url := "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent?key=" + g.ApiKey

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini API error: %s", string(respBody))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}

	// Walk candidates[0].content.parts[0].text
	if c, ok := result["candidates"].([]interface{}); ok && len(c) > 0 {
		if cand, ok := c[0].(map[string]interface{}); ok {
			if content, ok := cand["content"].(map[string]interface{}); ok {
				if parts, ok := content["parts"].([]interface{}); ok && len(parts) > 0 {
					if part, ok := parts[0].(map[string]interface{}); ok {
						if text, ok := part["text"].(string); ok {
							return text, nil
						}
					}
				}
			}
		}
	}
	return "", fmt.Errorf("no completion returned")
}

// parseTagArray extracts a JSON string array from model output, tolerating
// surrounding prose and markdown fences.
func parseTagArray(text string) ([]string, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var tags []string
	if err := json.Unmarshal([]byte(text[start:end+1]), &tags); err != nil {
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
