package ai

import "context"

// TaskSuggestion is one AI-proposed task for a student plan.
type TaskSuggestion struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Day         int    `json:"day"`
	Type        string `json:"type"`
}

// AnalyzerService is the interface for AI-driven coaching analysis.
// Implement this interface to add new AI providers (Ollama, OpenAI, etc.)
type AnalyzerService interface {
	AnalyzeProgress(ctx context.Context, summary string) (string, error)
	SuggestTasks(ctx context.Context, summary string) ([]TaskSuggestion, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderOllama ProviderType = "ollama"
	ProviderNone   ProviderType = "none"
)
