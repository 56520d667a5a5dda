package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/config"
)

const defaultGateTimeout = 10 * time.Second

// Gate is the single entry point forum code uses to vet user text.
// It holds exactly one provider, chosen at construction.
type Gate struct {
	provider Provider
	timeout  time.Duration
}

func NewGate(provider Provider, timeout time.Duration) *Gate {
	if timeout <= 0 {
		timeout = defaultGateTimeout
	}
	return &Gate{provider: provider, timeout: timeout}
}

// NewGateFromConfig selects the provider named by cfg.ModerationProvider.
func NewGateFromConfig(ctx context.Context, cfg *config.Config) (*Gate, error) {
	provider, err := NewProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewGate(provider, cfg.ModerationTimeout), nil
}

// NewProvider builds the adapter for the configured provider id.
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	breakerCfg := BreakerConfig{
		MaxFailures: cfg.BreakerMaxFailures,
		Cooldown:    cfg.BreakerCooldown,
	}

	switch cfg.ModerationProvider {
	case config.ProviderGemini:
		p, err := NewGeminiProvider(ctx, GeminiConfig{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiModel,
			BaseURL:    cfg.GeminiBaseURL,
			APIVersion: cfg.GeminiAPIVersion,
			Breaker:    breakerCfg,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.ProviderCampus:
		return NewCampusProvider(CampusConfig{
			BaseURL: cfg.CampusModerationURL,
			Timeout: cfg.CampusModerationTimeout,
			Breaker: breakerCfg,
		}), nil
	default:
		return nil, fmt.Errorf("unknown moderation provider %q", cfg.ModerationProvider)
	}
}

func (g *Gate) ProviderName() string {
	return g.provider.Name()
}

// IsContentSafe runs one bounded provider call and normalizes the answer.
func (g *Gate) IsContentSafe(ctx context.Context, text string) Verdict {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	verdict := Normalize(g.provider.Moderate(ctx, text))
	elapsed := time.Since(start)

	name := g.provider.Name()
	checksTotal.WithLabelValues(name, outcome(verdict)).Inc()
	checkDuration.WithLabelValues(name).Observe(elapsed.Seconds())

	slog.Info("moderation verdict",
		"provider", name,
		"safe", verdict.Safe,
		"reason", verdict.Reason,
		"categories", verdict.Categories,
		"latency_ms", float64(elapsed.Microseconds())/1000,
	)
	return verdict
}
