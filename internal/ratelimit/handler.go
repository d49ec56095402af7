package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// CooldownStrategy defines how long a provider is left alone after it
// signals a rate limit. Searches are never retried automatically; the
// cooldown only tells the user when a new submission is likely to succeed.
type CooldownStrategy struct {
	Intervals []time.Duration // indexed by consecutive rate-limit count
}

// DefaultCooldownStrategy returns the default escalating cooldown
func DefaultCooldownStrategy() *CooldownStrategy {
	return &CooldownStrategy{
		Intervals: []time.Duration{
			30 * time.Second,
			1 * time.Minute,
			2 * time.Minute,
			5 * time.Minute, // every later occurrence
		},
	}
}

// RateLimitEvent represents a rate limit occurrence
type RateLimitEvent struct {
	Timestamp   time.Time `json:"timestamp" ts_type:"string"`
	Provider    string    `json:"provider"`   // catalog host
	StatusCode  int       `json:"statusCode"` // HTTP status code (429, 503, 509)
	Occurrence  int       `json:"occurrence"` // consecutive rate limits (0 = first)
	NextRetryAt time.Time `json:"nextRetryAt" ts_type:"string"`
	Message     string    `json:"message"` // User-friendly message
}

// Handler tracks rate limit state per provider
type Handler struct {
	mu          sync.RWMutex
	rateLimited map[string]*RateLimitEvent // provider -> current rate limit state
	strategy    *CooldownStrategy
	onRateLimit func(event RateLimitEvent)
	onRecovered func(provider string)
	log         zerolog.Logger
	now         func() time.Time
}

// NewHandler creates a new rate limit handler
func NewHandler(strategy *CooldownStrategy, log zerolog.Logger) *Handler {
	if strategy == nil || len(strategy.Intervals) == 0 {
		strategy = DefaultCooldownStrategy()
	}

	return &Handler{
		rateLimited: make(map[string]*RateLimitEvent),
		strategy:    strategy,
		log:         log.With().Str("component", "ratelimit").Logger(),
		now:         time.Now,
	}
}

// SetOnRateLimit sets the callback for rate limit events
func (h *Handler) SetOnRateLimit(callback func(event RateLimitEvent)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRateLimit = callback
}

// SetOnRecovered sets the callback for recovery from rate limit
func (h *Handler) SetOnRecovered(callback func(provider string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRecovered = callback
}

// IsRateLimited checks if a provider is still inside its cooldown window
func (h *Handler) IsRateLimited(provider string) bool {
	_, limited := h.Check(provider)
	return limited
}

// Check returns the active rate limit event for provider, if any
func (h *Handler) Check(provider string) (RateLimitEvent, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	event, exists := h.rateLimited[provider]
	if !exists || !h.now().Before(event.NextRetryAt) {
		return RateLimitEvent{}, false
	}
	return *event, true
}

// CheckResponse analyzes an HTTP response for rate limit indicators
func (h *Handler) CheckResponse(provider string, resp *http.Response) bool {
	isRateLimited := resp.StatusCode == http.StatusTooManyRequests ||
		resp.StatusCode == http.StatusServiceUnavailable ||
		resp.StatusCode == 509 // Bandwidth Limit Exceeded

	if !isRateLimited {
		h.checkRecovery(provider)
		return false
	}

	h.recordRateLimit(provider, resp.StatusCode, retryAfter(resp, h.now()))
	return true
}

// recordRateLimit records a rate limit event and its cooldown
func (h *Handler) recordRateLimit(provider string, statusCode int, hinted time.Duration) {
	h.mu.Lock()

	occurrence := 0
	if existing, exists := h.rateLimited[provider]; exists {
		occurrence = existing.Occurrence + 1
	}

	interval := hinted
	if interval <= 0 {
		if occurrence < len(h.strategy.Intervals) {
			interval = h.strategy.Intervals[occurrence]
		} else {
			// Use last interval for all subsequent occurrences
			interval = h.strategy.Intervals[len(h.strategy.Intervals)-1]
		}
	}

	now := h.now()
	event := RateLimitEvent{
		Timestamp:   now,
		Provider:    provider,
		StatusCode:  statusCode,
		Occurrence:  occurrence,
		NextRetryAt: now.Add(interval),
		Message:     buildMessage(statusCode, occurrence, interval),
	}
	h.rateLimited[provider] = &event
	callback := h.onRateLimit
	h.mu.Unlock()

	h.log.Warn().
		Str("provider", provider).
		Int("status", statusCode).
		Int("occurrence", occurrence).
		Time("next_retry_at", event.NextRetryAt).
		Msg("catalog rate limited")

	if callback != nil {
		callback(event)
	}
}

// checkRecovery clears the rate limit after a successful response
func (h *Handler) checkRecovery(provider string) {
	h.mu.Lock()
	_, exists := h.rateLimited[provider]
	if exists {
		delete(h.rateLimited, provider)
	}
	callback := h.onRecovered
	h.mu.Unlock()

	if exists {
		h.log.Info().Str("provider", provider).Msg("catalog rate limit cleared")
		if callback != nil {
			callback(provider)
		}
	}
}

// ManualRetry lets the user skip the remaining cooldown
func (h *Handler) ManualRetry(provider string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.rateLimited[provider]; !exists {
		return
	}

	h.log.Info().Str("provider", provider).Msg("manual retry requested")
	delete(h.rateLimited, provider)
}

// GetCurrentState returns the current rate limit state for a provider
func (h *Handler) GetCurrentState(provider string) *RateLimitEvent {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if event, exists := h.rateLimited[provider]; exists {
		// Return a copy
		eventCopy := *event
		return &eventCopy
	}
	return nil
}

// retryAfter reads a Retry-After header given in seconds or as an HTTP date
func retryAfter(resp *http.Response, now time.Time) time.Duration {
	value := resp.Header.Get("Retry-After")
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}

// buildMessage creates a user-friendly message
func buildMessage(statusCode int, occurrence int, wait time.Duration) string {
	if occurrence == 0 {
		return fmt.Sprintf(
			"The imagery catalog is limiting requests (HTTP %d). "+
				"Wait %s before searching again.",
			statusCode, wait.Round(time.Second))
	}
	return fmt.Sprintf(
		"The imagery catalog is still limiting requests (%d times in a row). "+
			"Wait %s before searching again.",
		occurrence+1, wait.Round(time.Second))
}
