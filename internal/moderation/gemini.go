package moderation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

const geminiName = "Gemini"

const geminiPrompt = "Moderate the following forum text.\n" +
	"Return ONLY a JSON object like:\n" +
	"{ \"safe\": true/false, \"reason\": \"text\", \"categories\": [] }\n\n" +
	"TEXT: "

// GeminiConfig configures the Gemini adapter. BaseURL and APIVersion are
// optional overrides of the SDK defaults.
type GeminiConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	APIVersion string
	Breaker    BreakerConfig
}

// GeminiProvider asks a Gemini model to classify forum text.
type GeminiProvider struct {
	model   string
	client  *genai.Client
	breaker *breaker
}

type geminiAnswer struct {
	Safe       *bool    `json:"safe"`
	Reason     *string  `json:"reason"`
	Categories []string `json:"categories"`
}

var errEmptyAnswer = errors.New("empty model answer")

// NewGeminiProvider builds the adapter. A missing API key is not an error
// here: every call then answers with a fail-closed verdict.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	p := &GeminiProvider{
		model:   cfg.Model,
		breaker: newBreaker("gemini", cfg.Breaker),
	}
	if cfg.APIKey == "" {
		return p, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    cfg.BaseURL,
			APIVersion: cfg.APIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	p.client = client
	return p, nil
}

func (p *GeminiProvider) Name() string { return geminiName }

func (p *GeminiProvider) Moderate(ctx context.Context, text string) RawResult {
	if p.client == nil {
		fallbacksTotal.WithLabelValues(geminiName, modeFailClosed).Inc()
		return Pair{Safe: false, Reason: "Gemini API key missing."}
	}
	if p.model == "" {
		fallbacksTotal.WithLabelValues(geminiName, modeFailClosed).Inc()
		return Pair{Safe: false, Reason: "Gemini model not configured."}
	}

	var answer geminiAnswer
	err := p.breaker.Execute(func() error {
		var callErr error
		answer, callErr = p.classify(ctx, text)
		return callErr
	})
	if err != nil {
		slog.Warn("gemini moderation unavailable", "provider", geminiName, "error", err)
		fallbacksTotal.WithLabelValues(geminiName, modeFailOpen).Inc()
		return Pair{Safe: true, Reason: unavailableReason(geminiName)}
	}

	safe := true
	if answer.Safe != nil {
		safe = *answer.Safe
	}
	reason := "No explanation"
	if answer.Reason != nil && *answer.Reason != "" {
		reason = *answer.Reason
	}
	return Triple{
		Safe:       safe,
		Reason:     "Gemini: " + reason,
		Categories: answer.Categories,
	}
}

func (p *GeminiProvider) classify(ctx context.Context, text string) (geminiAnswer, error) {
	var answer geminiAnswer

	result, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(geminiPrompt+text), nil)
	if err != nil {
		return answer, fmt.Errorf("generate content: %w", err)
	}

	raw := result.Text()
	if raw == "" {
		return answer, errEmptyAnswer
	}

	body, err := ExtractJSON(raw)
	if err != nil {
		return answer, err
	}
	if err := json.Unmarshal([]byte(body), &answer); err != nil {
		return answer, fmt.Errorf("decode model answer: %w", err)
	}
	return answer, nil
}

func unavailableReason(provider string) string {
	return provider + " unavailable (fallback allowed)."
}
