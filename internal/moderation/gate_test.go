package moderation_test

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/moderation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	result moderation.RawResult
	calls  int
	texts  []string
	wait   bool
	hadDL  bool
}

func (s *stubProvider) Name() string { return "Stub" }

func (s *stubProvider) Moderate(ctx context.Context, text string) moderation.RawResult {
	s.calls++
	s.texts = append(s.texts, text)
	_, s.hadDL = ctx.Deadline()
	if s.wait {
		<-ctx.Done()
		return moderation.Pair{Safe: true, Reason: "Stub unavailable (fallback allowed)."}
	}
	return s.result
}

func TestGate_IsContentSafe(t *testing.T) {
	t.Run("Normalizes the provider answer", func(t *testing.T) {
		stub := &stubProvider{result: moderation.Triple{Safe: false, Reason: "bad", Categories: []string{"Threat"}}}
		gate := moderation.NewGate(stub, time.Second)

		v := gate.IsContentSafe(context.Background(), "text")

		assert.Equal(t, moderation.Verdict{Safe: false, Reason: "bad", Categories: []string{"threat"}}, v)
		assert.Equal(t, 1, stub.calls)
		assert.Equal(t, []string{"text"}, stub.texts)
	})

	t.Run("Nil answer is allowed by default", func(t *testing.T) {
		gate := moderation.NewGate(&stubProvider{}, time.Second)

		v := gate.IsContentSafe(context.Background(), "text")

		assert.True(t, v.Safe)
		assert.NotEmpty(t, v.Reason)
	})

	t.Run("Every call is bounded by the gate timeout", func(t *testing.T) {
		stub := &stubProvider{wait: true}
		gate := moderation.NewGate(stub, 20*time.Millisecond)

		start := time.Now()
		v := gate.IsContentSafe(context.Background(), "text")

		assert.True(t, stub.hadDL)
		assert.Less(t, time.Since(start), time.Second)
		assert.True(t, v.Safe)
	})
}

func TestNewGateFromConfig(t *testing.T) {
	base := func(provider string) *config.Config {
		return &config.Config{
			ModerationProvider:  provider,
			ModerationTimeout:   time.Second,
			GeminiModel:         "gemini-2.5-flash",
			CampusModerationURL: "http://cmsai:8000",
		}
	}

	t.Run("Selects Gemini", func(t *testing.T) {
		gate, err := moderation.NewGateFromConfig(context.Background(), base(config.ProviderGemini))

		require.NoError(t, err)
		assert.Equal(t, "Gemini", gate.ProviderName())
	})

	t.Run("Gemini without key blocks", func(t *testing.T) {
		gate, err := moderation.NewGateFromConfig(context.Background(), base(config.ProviderGemini))
		require.NoError(t, err)

		v := gate.IsContentSafe(context.Background(), "hello")

		assert.False(t, v.Safe)
		assert.Equal(t, "Gemini API key missing.", v.Reason)
	})

	t.Run("Selects campus service", func(t *testing.T) {
		gate, err := moderation.NewGateFromConfig(context.Background(), base(config.ProviderCampus))

		require.NoError(t, err)
		assert.Equal(t, "Campus AI", gate.ProviderName())
	})

	t.Run("Rejects unknown provider", func(t *testing.T) {
		_, err := moderation.NewGateFromConfig(context.Background(), base("professor"))

		assert.Error(t, err)
	})
}
