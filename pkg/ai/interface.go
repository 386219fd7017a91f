package ai

import "context"

// EnrichmentService is the interface for AI café enrichment.
// Implement this interface to add new AI providers (Gemini, Ollama, OpenAI, etc.)
type EnrichmentService interface {
	SummarizeCafe(ctx context.Context, cafeText string) (string, error)
	SuggestTags(ctx context.Context, cafeText string) ([]string, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)
