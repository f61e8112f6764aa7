package ai

import (
	"context"
	"log"
	"net"
	"strings"
)

// FallbackService routes to the configured provider and degrades to a
// deterministic rule-based report when the provider is unreachable, so the
// analysis endpoint never hard-fails because an LLM is offline.
type FallbackService struct {
	primary AnalyzerService
}

// NewFallbackService wraps a provider; primary may be nil.
func NewFallbackService(primary AnalyzerService) *FallbackService {
	return &FallbackService{primary: primary}
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

// AnalyzeProgress tries the primary provider, falling back to an echo-style
// report built from the summary itself.
func (f *FallbackService) AnalyzeProgress(ctx context.Context, summary string) (string, error) {
	if f.primary != nil {
		result, err := f.primary.AnalyzeProgress(ctx, summary)
		if err == nil {
			return result, nil
		}
		if !isConnectionError(err) {
			return "", err
		}
		log.Printf("[AI] Provider unreachable, using static report: %v", err)
	}

	var b strings.Builder
	b.WriteString("Automatic report (AI provider unavailable).\n")
	for _, line := range strings.Split(summary, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		b.WriteString("- " + line + "\n")
	}
	return b.String(), nil
}

// SuggestTasks tries the primary provider; there is no useful rule-based
// substitute, so connection failures yield an empty suggestion list.
func (f *FallbackService) SuggestTasks(ctx context.Context, summary string) ([]TaskSuggestion, error) {
	if f.primary == nil {
		return nil, nil
	}
	suggestions, err := f.primary.SuggestTasks(ctx, summary)
	if err != nil {
		if isConnectionError(err) {
			log.Printf("[AI] Provider unreachable, no task suggestions: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return suggestions, nil
}
