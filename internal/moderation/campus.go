package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const campusName = "Campus AI"

// Category labels from the campus service that always block.
var campusHarmKeywords = []string{"self-harm", "self harm", "suicide", "violence", "harm"}

// CampusConfig configures the campus moderation service adapter.
type CampusConfig struct {
	BaseURL string
	Timeout time.Duration
	Breaker BreakerConfig
}

// CampusProvider calls the campus moderation service (POST /generate/).
type CampusProvider struct {
	endpoint string
	client   *http.Client
	breaker  *breaker
}

type campusRequest struct {
	Prompt string `json:"prompt"`
}

type campusResponse struct {
	Safety     string   `json:"safety"`
	Categories []string `json:"categories"`
}

func NewCampusProvider(cfg CampusConfig) *CampusProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	var endpoint string
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		endpoint = base + "/generate/"
	}

	return &CampusProvider{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		breaker:  newBreaker("campus", cfg.Breaker),
	}
}

func (p *CampusProvider) Name() string { return campusName }

func (p *CampusProvider) Moderate(ctx context.Context, text string) RawResult {
	if p.endpoint == "" {
		fallbacksTotal.WithLabelValues(campusName, modeFailClosed).Inc()
		return Pair{Safe: false, Reason: "Campus AI endpoint not configured."}
	}

	var resp campusResponse
	err := p.breaker.Execute(func() error {
		var callErr error
		resp, callErr = p.call(ctx, text)
		return callErr
	})
	if err != nil {
		slog.Warn("campus moderation unavailable", "provider", campusName, "error", err)
		fallbacksTotal.WithLabelValues(campusName, modeFailOpen).Inc()
		return Pair{Safe: true, Reason: unavailableReason(campusName)}
	}

	safety := strings.ToLower(resp.Safety)
	if safety == "" {
		safety = "safe"
	}
	matched := matchHarmCategories(resp.Categories)

	if safety == "unsafe" {
		reason := "Campus AI flagged content as unsafe."
		if len(matched) > 0 {
			reason += " Categories: " + strings.Join(matched, ", ") + "."
		}
		return Triple{Safe: false, Reason: reason, Categories: matched}
	}
	if len(matched) > 0 {
		return Triple{
			Safe:       false,
			Reason:     "Campus AI detected harmful content: " + strings.Join(matched, ", "),
			Categories: matched,
		}
	}
	return Pair{Safe: true, Reason: "Campus AI cleared the content as safe."}
}

func (p *CampusProvider) call(ctx context.Context, text string) (campusResponse, error) {
	var out campusResponse

	payload, err := json.Marshal(campusRequest{Prompt: text})
	if err != nil {
		return out, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return out, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return out, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return out, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

func matchHarmCategories(categories []string) []string {
	var matched []string
	for _, c := range categories {
		c = strings.ToLower(c)
		for _, kw := range campusHarmKeywords {
			if strings.Contains(c, kw) {
				matched = append(matched, c)
				break
			}
		}
	}
	return matched
}
