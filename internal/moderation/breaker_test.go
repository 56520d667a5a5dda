package moderation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
)

func TestCampusProvider_BreakerOpens(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewCampusProvider(CampusConfig{
		BaseURL: server.URL,
		Breaker: BreakerConfig{MaxFailures: 2, Cooldown: time.Minute},
	})

	for i := 0; i < 2; i++ {
		assert.Equal(t, Pair{Safe: true, Reason: "Campus AI unavailable (fallback allowed)."}, p.Moderate(context.Background(), "x"))
	}
	assert.Equal(t, gobreaker.StateOpen, p.breaker.State())

	// Open breaker short-circuits to the same fail-open answer.
	assert.Equal(t, Pair{Safe: true, Reason: "Campus AI unavailable (fallback allowed)."}, p.Moderate(context.Background(), "x"))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestBreaker_IgnoresCallerCancellation(t *testing.T) {
	b := newBreaker("test", BreakerConfig{MaxFailures: 1, Cooldown: time.Minute})

	err := b.Execute(func() error { return context.Canceled })

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}
