package ai

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"
)

// FallbackService routes between providers:
// - Gemini first (better quality), fallback to Ollama on connection/quota errors
// - Ollama retried when Gemini reports quota exhaustion
type FallbackService struct {
	gemini EnrichmentService
	ollama *OllamaService
}

// NewFallbackService creates a new fallback service with both providers
func NewFallbackService(gemini EnrichmentService, ollama *OllamaService) *FallbackService {
	return &FallbackService{
		gemini: gemini,
		ollama: ollama,
	}
}

// isConnectionError checks if the error is a network/connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if _, ok := err.(net.Error); ok {
		return true
	}

	errStr := strings.ToLower(err.Error())
	connectionIndicators := []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"timeout",
		"dial tcp",
		"eof",
	}

	for _, indicator := range connectionIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

// isQuotaError checks if the error indicates API quota exhaustion (429)
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	quotaIndicators := []string{
		"429",
		"quota",
		"rate limit",
		"too many requests",
		"resource exhausted",
	}

	for _, indicator := range quotaIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

// SummarizeCafe tries Gemini first, falls back to Ollama on connection/quota errors
func (f *FallbackService) SummarizeCafe(ctx context.Context, cafeText string) (string, error) {
	if f.gemini != nil {
		result, err := f.gemini.SummarizeCafe(ctx, cafeText)
		if err == nil {
			return result, nil
		}
		if (isConnectionError(err) || isQuotaError(err)) && f.ollama != nil {
			log.Printf("[AI] Gemini summarization failed: %v, falling back to Ollama", err)
			return f.ollama.SummarizeCafe(ctx, cafeText)
		}
		return "", fmt.Errorf("gemini summarization failed: %w", err)
	}

	if f.ollama != nil {
		return f.ollama.SummarizeCafe(ctx, cafeText)
	}

	return "", fmt.Errorf("no AI provider available for summarization")
}

// SuggestTags tries Gemini first, falls back to Ollama on connection/quota errors
func (f *FallbackService) SuggestTags(ctx context.Context, cafeText string) ([]string, error) {
	if f.gemini != nil {
		result, err := f.gemini.SuggestTags(ctx, cafeText)
		if err == nil {
			return result, nil
		}
		if (isConnectionError(err) || isQuotaError(err)) && f.ollama != nil {
			log.Printf("[AI] Gemini tagging failed: %v, falling back to Ollama", err)
			return f.ollama.SuggestTags(ctx, cafeText)
		}
		return nil, fmt.Errorf("gemini tagging failed: %w", err)
	}

	if f.ollama != nil {
		return f.ollama.SuggestTags(ctx, cafeText)
	}

	return nil, fmt.Errorf("no AI provider available for tagging")
}
