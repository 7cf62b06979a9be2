package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"capirelay/pkg/logger"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingHandler(calls *atomic.Int32, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = fmt.Fprintf(w, `{"call":%d}`, n)
	})
}

func postWithKey(key string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/v1/process-event", strings.NewReader(`{}`))
	if key != "" {
		r.Header.Set(DefaultIdempotencyHeader, key)
	}
	return r
}

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisIdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	m, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(m.Close)

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() {
		if cerr := client.Close(); cerr != nil {
			t.Logf("redis close: %v", cerr)
		}
	})
	return NewRedisIdempotencyStore(client, ttl), m
}

func stores(t *testing.T) map[string]IdempotencyStore {
	mem := NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(mem.Stop)
	rs, _ := newRedisStore(t, time.Minute)
	return map[string]IdempotencyStore{"memory": mem, "redis": rs}
}

func TestIdempotency_ReplaysSuccessfulResponse(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var calls atomic.Int32
			h := Idempotency(store, "", logger.Discard())(countingHandler(&calls, http.StatusOK))

			first := httptest.NewRecorder()
			h.ServeHTTP(first, postWithKey("abc"))
			second := httptest.NewRecorder()
			h.ServeHTTP(second, postWithKey("abc"))

			assert.Equal(t, int32(1), calls.Load())
			assert.Equal(t, http.StatusOK, second.Code)
			assert.Equal(t, first.Body.String(), second.Body.String())
			assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
		})
	}
}

func TestIdempotency_FailuresAreNotCached(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var calls atomic.Int32
			h := Idempotency(store, "", logger.Discard())(countingHandler(&calls, http.StatusBadGateway))

			h.ServeHTTP(httptest.NewRecorder(), postWithKey("retry-me"))
			h.ServeHTTP(httptest.NewRecorder(), postWithKey("retry-me"))

			assert.Equal(t, int32(2), calls.Load())
		})
	}
}

func TestIdempotency_NoKeyPassesThrough(t *testing.T) {
	var calls atomic.Int32
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()
	h := Idempotency(store, "", logger.Discard())(countingHandler(&calls, http.StatusOK))

	h.ServeHTTP(httptest.NewRecorder(), postWithKey(""))
	h.ServeHTTP(httptest.NewRecorder(), postWithKey(""))

	assert.Equal(t, int32(2), calls.Load())
}

func TestIdempotency_InFlightKeyConflicts(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ok, err := store.Reserve(context.Background(), scopedIdempotencyKey("", "busy"))
			require.NoError(t, err)
			require.True(t, ok)

			var calls atomic.Int32
			h := Idempotency(store, "", logger.Discard())(countingHandler(&calls, http.StatusOK))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, postWithKey("busy"))

			assert.Equal(t, http.StatusConflict, rec.Code)
			assert.Equal(t, int32(0), calls.Load())
		})
	}
}

func TestIdempotency_KeyIsScopedByDestination(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var calls atomic.Int32
			h := Idempotency(store, "", logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(http.StatusOK)
				_, _ = fmt.Fprintf(w, `{"pixel":%q}`, DestinationKey(r))
			}))

			send := func(pixel string) *httptest.ResponseRecorder {
				r := postWithKey("k1")
				r.Header.Set(HeaderDestinationID, pixel)
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, r)
				return rec
			}

			a := send("A")
			b := send("B")

			assert.Equal(t, int32(2), calls.Load())
			assert.JSONEq(t, `{"pixel":"A"}`, a.Body.String())
			assert.JSONEq(t, `{"pixel":"B"}`, b.Body.String())

			again := send("A")
			assert.Equal(t, int32(2), calls.Load())
			assert.JSONEq(t, `{"pixel":"A"}`, again.Body.String())
		})
	}
}

func TestInMemoryIdempotencyStore_Expiry(t *testing.T) {
	store := NewInMemoryIdempotencyStore(10 * time.Millisecond)
	defer store.Stop()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", &CachedResponse{StatusCode: http.StatusOK}))
	_, found, _ := store.Get(ctx, "k")
	assert.True(t, found)

	time.Sleep(20 * time.Millisecond)

	_, found, _ = store.Get(ctx, "k")
	assert.False(t, found)
}

func TestRedisIdempotencyStore_RoundTripAndTTL(t *testing.T) {
	store, m := newRedisStore(t, time.Minute)
	ctx := context.Background()

	resp := &CachedResponse{
		StatusCode: http.StatusOK,
		Headers:    http.Header{"Content-Type": {"application/json"}},
		Body:       []byte(`{"status":"success"}`),
	}
	require.NoError(t, store.Set(ctx, "k1", resp))

	got, found, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, resp.Body, got.Body)
	assert.Equal(t, "application/json", got.Headers.Get("Content-Type"))

	m.FastForward(2 * time.Minute)

	_, found, err = store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisIdempotencyStore_ReleaseKeepsCompletedResponse(t *testing.T) {
	store, _ := newRedisStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "done", &CachedResponse{StatusCode: http.StatusOK}))
	require.NoError(t, store.Release(ctx, "done"))

	_, found, err := store.Get(ctx, "done")
	require.NoError(t, err)
	assert.True(t, found)

	ok, err := store.Reserve(ctx, "pending")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, store.Release(ctx, "pending"))

	ok, err = store.Reserve(ctx, "pending")
	require.NoError(t, err)
	assert.True(t, ok, "released key should be reservable again")
}
