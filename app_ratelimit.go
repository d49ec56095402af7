package main

import (
	"scene-finder/internal/ratelimit"
)

// Rate Limit Management Functions (Wails-exported)

// ManualRetryRateLimit lets the user search again before the cooldown ends
func (a *App) ManualRetryRateLimit() {
	a.rateLimiter.ManualRetry(a.catalogProvider())
}

// GetRateLimitStatus returns the current rate limit state of the catalog
func (a *App) GetRateLimitStatus() *ratelimit.RateLimitEvent {
	return a.rateLimiter.GetCurrentState(a.catalogProvider())
}

// IsRateLimited checks if the catalog is currently in cooldown
func (a *App) IsRateLimited() bool {
	return a.rateLimiter.IsRateLimited(a.catalogProvider())
}

func (a *App) catalogProvider() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.catalog.Provider()
}
