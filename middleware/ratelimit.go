package middleware

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// BetRateLimiter throttles bet placement per user.
type BetRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewBetRateLimiter allows perMinute bets per user, with a small burst.
func NewBetRateLimiter(perMinute int) *BetRateLimiter {
	if perMinute <= 0 {
		perMinute = 30
	}
	return &BetRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    5,
	}
}

// Allow reports whether the named user may place another bet now.
func (l *BetRateLimiter) Allow(username string) bool {
	l.mu.Lock()
	limiter, ok := l.limiters[username]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[username] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow()
}

// Check returns an HTTPError when the user is over the limit.
func (l *BetRateLimiter) Check(username string) *HTTPError {
	if !l.Allow(username) {
		return &HTTPError{
			StatusCode: http.StatusTooManyRequests,
			Message:    "Too many bets, slow down",
		}
	}
	return nil
}
