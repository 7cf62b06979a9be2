package middleware

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	apperrors "capirelay/pkg/errors"
	"capirelay/pkg/logger"
)

const DefaultIdempotencyHeader = "Idempotency-Key"

// IdempotencyStore keeps successful responses per key. Reserve claims a key
// while its first request is in flight so concurrent retries are refused
// instead of forwarded twice.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*CachedResponse, bool, error)
	Reserve(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
	Set(ctx context.Context, key string, response *CachedResponse) error
	Stop() // Stop cleanup goroutines and release resources
}

type CachedResponse struct {
	StatusCode int         `json:"status_code"`
	Headers    http.Header `json:"headers"`
	Body       []byte      `json:"body"`
	CreatedAt  time.Time   `json:"created_at"`
}

type memoryEntry struct {
	response   *CachedResponse
	reservedAt time.Time
}

type InMemoryIdempotencyStore struct {
	mu       sync.Mutex
	store    map[string]*memoryEntry
	ttl      time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		store:  make(map[string]*memoryEntry),
		ttl:    ttl,
		stopCh: make(chan struct{}),
	}

	go store.cleanup()

	return store
}

func (s *InMemoryIdempotencyStore) expired(e *memoryEntry, now time.Time) bool {
	if e.response != nil {
		return now.Sub(e.response.CreatedAt) > s.ttl
	}
	return now.Sub(e.reservedAt) > s.ttl
}

func (s *InMemoryIdempotencyStore) Get(_ context.Context, key string) (*CachedResponse, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.store[key]
	if !exists {
		return nil, false, nil
	}
	if s.expired(entry, time.Now()) {
		delete(s.store, key)
		return nil, false, nil
	}
	if entry.response == nil {
		return nil, false, nil
	}
	return entry.response, true, nil
}

func (s *InMemoryIdempotencyStore) Reserve(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if entry, exists := s.store[key]; exists && !s.expired(entry, now) {
		return false, nil
	}
	s.store[key] = &memoryEntry{reservedAt: now}
	return true, nil
}

func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, exists := s.store[key]; exists && entry.response == nil {
		delete(s.store, key)
	}
	return nil
}

func (s *InMemoryIdempotencyStore) Set(_ context.Context, key string, response *CachedResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	response.CreatedAt = time.Now()
	s.store[key] = &memoryEntry{response: response}
	return nil
}

func (s *InMemoryIdempotencyStore) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			now := time.Now()
			for key, entry := range s.store {
				if s.expired(entry, now) {
					delete(s.store, key)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}

func (s *InMemoryIdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

type responseCapture struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (rc *responseCapture) WriteHeader(statusCode int) {
	rc.statusCode = statusCode
	rc.ResponseWriter.WriteHeader(statusCode)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

// scopedIdempotencyKey namespaces a client key by destination so the same key
// sent to two pixels is forwarded to each.
func scopedIdempotencyKey(destination, key string) string {
	return destination + ":" + key
}

// Idempotency replays the cached response for a repeated key on the same
// destination. Store failures are logged and the request proceeds without
// idempotency.
func Idempotency(store IdempotencyStore, headerName string, log *logger.Logger) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = DefaultIdempotencyHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := r.Header.Get(headerName)
			if clientKey == "" || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			key := scopedIdempotencyKey(DestinationKey(r), clientKey)

			ctx := r.Context()
			requestID := RequestIDFromContext(ctx)

			cached, found, err := store.Get(ctx, key)
			if err != nil {
				log.Error("Idempotency lookup failed", "request_id", requestID, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if found {
				log.Info("Replaying cached response", "request_id", requestID, "idempotency_key", clientKey, "destination_id", DestinationKey(r))
				replayCachedResponse(w, cached)
				return
			}

			reserved, err := store.Reserve(ctx, key)
			if err != nil {
				log.Error("Idempotency reservation failed", "request_id", requestID, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !reserved {
				_ = apperrors.WriteError(w, apperrors.Conflict("A request with this Idempotency-Key is already in progress"))
				return
			}

			capture := captureResponse(w)
			next.ServeHTTP(capture, r)

			// The request context may already be done; bookkeeping must still happen.
			storeCtx := context.WithoutCancel(ctx)
			if shouldCacheResponse(capture.statusCode) {
				err = store.Set(storeCtx, key, &CachedResponse{
					StatusCode: capture.statusCode,
					Headers:    w.Header().Clone(),
					Body:       capture.body.Bytes(),
				})
			} else {
				err = store.Release(storeCtx, key)
			}
			if err != nil {
				log.Error("Idempotency bookkeeping failed", "request_id", requestID, "error", err)
			}
		})
	}
}

func replayCachedResponse(w http.ResponseWriter, cached *CachedResponse) {
	for key, values := range cached.Headers {
		w.Header().Del(key)
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}

func captureResponse(w http.ResponseWriter) *responseCapture {
	return &responseCapture{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
		body:           &bytes.Buffer{},
	}
}

func shouldCacheResponse(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
