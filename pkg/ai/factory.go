package ai

import "fmt"

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType

	// Ollama config
	OllamaBaseURL string // e.g., "http://localhost:11434"
	OllamaModel   string // e.g., "llama3", "mistral"
}

// NewAnalyzerService creates an AnalyzerService based on the config.
// This is the factory function - switch AI provider by changing config.Provider.
func NewAnalyzerService(cfg Config) (AnalyzerService, error) {
	switch cfg.Provider {
	case ProviderOllama, "":
		ollama := NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel)
		// The static fallback keeps coach analysis usable when the local
		// model is down.
		return NewFallbackService(ollama), nil

	case ProviderNone:
		return NewFallbackService(nil), nil

	default:
		return nil, fmt.Errorf("unknown AI provider: %s", cfg.Provider)
	}
}
