package middleware

import (
	"net/http"
	"sync"
	"time"

	"hyrra/pkg/logger"
)

// HeaderRequesterID carries the caller's member id. The gateway in front of
// the service sets it after authentication.
const HeaderRequesterID = "X-Requester-ID"

type RequesterExtractor func(r *http.Request) string

// RequesterRateLimiter throttles per co-owner rather than per connection, so
// one eager client hammering retries cannot starve the rest of the household.
type RequesterRateLimiter struct {
	mu        sync.RWMutex
	requests  map[string][]time.Time
	limit     int
	window    time.Duration
	extractor RequesterExtractor
	log       *logger.Logger
	stopCh    chan struct{}
}

func NewRequesterRateLimiter(limit int, window time.Duration, extractor RequesterExtractor, log *logger.Logger) *RequesterRateLimiter {
	limiter := &RequesterRateLimiter{
		requests:  make(map[string][]time.Time),
		limit:     limit,
		window:    window,
		extractor: extractor,
		log:       log,
		stopCh:    make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *RequesterRateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for requester, timestamps := range rl.requests {
				if len(timestamps) == 0 || time.Since(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, requester)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RequesterRateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *RequesterRateLimiter) Allow(requester string) bool {
	if requester == "" {
		return true
	}

	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	validTimestamps := make([]time.Time, 0)
	for _, ts := range rl.requests[requester] {
		if now.Sub(ts) < rl.window {
			validTimestamps = append(validTimestamps, ts)
		}
	}

	if len(validTimestamps) >= rl.limit {
		rl.requests[requester] = validTimestamps
		return false
	}

	rl.requests[requester] = append(validTimestamps, now)
	return true
}

func RequesterRateLimit(limiter *RequesterRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requester := extractRequester(r, limiter.extractor)

			if requester == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(requester) {
				rejectRateLimited(w, limiter.log, r, requester)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractRequester(r *http.Request, extractor RequesterExtractor) string {
	if extractor == nil {
		return r.Header.Get(HeaderRequesterID)
	}
	return extractor(r)
}

func rejectRateLimited(w http.ResponseWriter, log *logger.Logger, r *http.Request, requester string) {
	requestID := ""
	if rid := r.Context().Value(RequestIDKey); rid != nil {
		if id, ok := rid.(string); ok {
			requestID = id
		}
	}

	log.Warn("Rate limit exceeded",
		"request_id", requestID,
		"requester_id", requester,
		"path", r.URL.Path,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"Rate limit exceeded"}`))
}

func DefaultRequesterExtractor(r *http.Request) string {
	return r.Header.Get(HeaderRequesterID)
}
