package common

import (
	"time"

	"golang.org/x/time/rate"
)

// NewRateLimiter converts a per-minute request budget into a token bucket.
// A non-positive budget means no limit.
func NewRateLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}
