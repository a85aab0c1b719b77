package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notefeed/internal/notes"
)

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("allows up to max requests in one window", func(t *testing.T) {
		rl := NewRateLimiter(3, time.Minute)

		for i := 0; i < 3; i++ {
			ok, _ := rl.Allow("10.0.0.1")
			assert.True(t, ok, "request %d should pass", i+1)
		}

		ok, retryAfter := rl.Allow("10.0.0.1")
		assert.False(t, ok)
		assert.Greater(t, retryAfter, 0)
	})

	t.Run("clients are tracked independently", func(t *testing.T) {
		rl := NewRateLimiter(1, time.Minute)

		ok, _ := rl.Allow("10.0.0.1")
		require.True(t, ok)
		ok, _ = rl.Allow("10.0.0.1")
		require.False(t, ok)

		ok, _ = rl.Allow("10.0.0.2")
		assert.True(t, ok)
	})

	t.Run("window expiry resets the count", func(t *testing.T) {
		rl := NewRateLimiter(1, 20*time.Millisecond)

		ok, _ := rl.Allow("10.0.0.1")
		require.True(t, ok)
		ok, _ = rl.Allow("10.0.0.1")
		require.False(t, ok)

		time.Sleep(30 * time.Millisecond)

		ok, _ = rl.Allow("10.0.0.1")
		assert.True(t, ok)
	})
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
		req.RemoteAddr = "10.0.0.1:50000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do().Code)
	assert.Equal(t, http.StatusOK, do().Code)

	rec := do()
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var env notes.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Greater(t, env.RetryAfter, 0)
	assert.Contains(t, env.Message, "Too many requests")
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mw("outer"), mw("inner"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
