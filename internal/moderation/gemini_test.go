package moderation_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/moderation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// geminiServer answers generateContent calls with modelText as the first
// candidate part.
func geminiServer(t *testing.T, status int, modelText string, hits *int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "gemini-2.5-flash:generateContent"), r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error": {"code": 503, "message": "overloaded", "status": "UNAVAILABLE"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []interface{}{
				map[string]interface{}{
					"content": map[string]interface{}{
						"role":  "model",
						"parts": []interface{}{map[string]interface{}{"text": modelText}},
					},
				},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func newGemini(t *testing.T, baseURL, apiKey string) *moderation.GeminiProvider {
	t.Helper()
	p, err := moderation.NewGeminiProvider(context.Background(), moderation.GeminiConfig{
		APIKey:     apiKey,
		Model:      "gemini-2.5-flash",
		BaseURL:    baseURL,
		APIVersion: "v1",
	})
	require.NoError(t, err)
	return p
}

func TestGeminiProvider_Moderate(t *testing.T) {
	t.Run("Fenced answer with categories", func(t *testing.T) {
		server := geminiServer(t, http.StatusOK,
			"```json\n{\"safe\": false, \"reason\": \"x\", \"categories\": [\"violence\"]}\n```", nil)
		p := newGemini(t, server.URL, "test-key")

		raw := p.Moderate(context.Background(), "I want to commit suicide")

		require.IsType(t, moderation.Triple{}, raw)
		v := moderation.Normalize(raw)
		assert.False(t, v.Safe)
		assert.Equal(t, "Gemini: x", v.Reason)
		assert.Equal(t, []string{"violence"}, v.Categories)
		assert.Equal(t, "violence", v.PrimaryCategory("I want to commit suicide"))
	})

	t.Run("Safe answer wrapped in prose", func(t *testing.T) {
		server := geminiServer(t, http.StatusOK,
			"Here is the result: {\"safe\": true, \"reason\": \"Friendly greeting\", \"categories\": []}", nil)
		p := newGemini(t, server.URL, "test-key")

		v := moderation.Normalize(p.Moderate(context.Background(), "hello"))

		assert.True(t, v.Safe)
		assert.Equal(t, "Gemini: Friendly greeting", v.Reason)
	})

	t.Run("Absent fields use defaults", func(t *testing.T) {
		server := geminiServer(t, http.StatusOK, "{}", nil)
		p := newGemini(t, server.URL, "test-key")

		v := moderation.Normalize(p.Moderate(context.Background(), "hello"))

		assert.True(t, v.Safe)
		assert.Equal(t, "Gemini: No explanation", v.Reason)
	})

	t.Run("Missing API key fails closed without a call", func(t *testing.T) {
		var hits int32
		server := geminiServer(t, http.StatusOK, "{\"safe\": true}", &hits)
		p := newGemini(t, server.URL, "")

		raw := p.Moderate(context.Background(), "hello")

		assert.Equal(t, moderation.Pair{Safe: false, Reason: "Gemini API key missing."}, raw)
		assert.Zero(t, atomic.LoadInt32(&hits))
	})

	t.Run("Provider error fails open", func(t *testing.T) {
		server := geminiServer(t, http.StatusServiceUnavailable, "", nil)
		p := newGemini(t, server.URL, "test-key")

		raw := p.Moderate(context.Background(), "hello")

		assert.Equal(t, moderation.Pair{Safe: true, Reason: "Gemini unavailable (fallback allowed)."}, raw)
	})

	t.Run("Unparseable answer fails open", func(t *testing.T) {
		server := geminiServer(t, http.StatusOK, "I am unable to classify this text.", nil)
		p := newGemini(t, server.URL, "test-key")

		raw := p.Moderate(context.Background(), "hello")

		assert.Equal(t, moderation.Pair{Safe: true, Reason: "Gemini unavailable (fallback allowed)."}, raw)
	})

	t.Run("Broken JSON fails open", func(t *testing.T) {
		server := geminiServer(t, http.StatusOK, "{\"safe\": fals", nil)
		p := newGemini(t, server.URL, "test-key")

		v := moderation.Normalize(p.Moderate(context.Background(), "hello"))

		assert.True(t, v.Safe)
		assert.Equal(t, "Gemini unavailable (fallback allowed).", v.Reason)
	})

	t.Run("Unreachable endpoint fails open", func(t *testing.T) {
		server := geminiServer(t, http.StatusOK, "{}", nil)
		url := server.URL
		server.Close()
		p := newGemini(t, url, "test-key")

		v := moderation.Normalize(p.Moderate(context.Background(), "hello"))

		assert.True(t, v.Safe)
		assert.Equal(t, "Gemini unavailable (fallback allowed).", v.Reason)
	})
}
