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

// OllamaService implements AnalyzerService using a local Ollama LLM
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
	return &OllamaService{baseURL: baseURL, model: model}
}

// AnalyzeProgress implements AnalyzerService
func (o *OllamaService) AnalyzeProgress(ctx context.Context, summary string) (string, error) {
	prompt := fmt.Sprintf(`You are a study coach assistant. Analyze the following student progress data and write a short coaching report.

GUIDELINES:
- Start with one sentence on overall trend
- Then list at most 3 concrete observations (task completion, habit streaks, exam scores)
- End with one actionable recommendation
- Plain text, no markdown, at most 8 lines

STUDENT DATA:
%s

REPORT:`, summary)

	return o.generate(ctx, prompt, 300)
}

// SuggestTasks implements AnalyzerService: asks the model for a short JSON
// task plan derived from the progress summary.
func (o *OllamaService) SuggestTasks(ctx context.Context, summary string) ([]TaskSuggestion, error) {
	prompt := fmt.Sprintf(`You are a study coach assistant. Based on the student progress data below, propose up to 5 follow-up tasks.

Respond with ONLY a JSON array, no prose. Each element:
{"title": "...", "description": "...", "day": <1-based day offset>, "type": "todo|video|exam|nutrition|music|other"}

STUDENT DATA:
%s

JSON:`, summary)

	raw, err := o.generate(ctx, prompt, 500)
	if err != nil {
		return nil, err
	}

	// Models wrap JSON in prose or code fences more often than not.
	raw = strings.TrimSpace(raw)
	if start := strings.Index(raw, "["); start >= 0 {
		if end := strings.LastIndex(raw, "]"); end > start {
			raw = raw[start : end+1]
		}
	}

	var suggestions []TaskSuggestion
	if err := json.Unmarshal([]byte(raw), &suggestions); err != nil {
		return nil, fmt.Errorf("failed to parse task suggestions: %w", err)
	}
	return suggestions, nil
}

func (o *OllamaService) generate(ctx context.Context, prompt string, numPredict int) (string, error) {
	url := o.baseURL + "/api/generate"

	payload := map[string]interface{}{
		"model":  o.model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": 0.3,
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
