// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"

	"golang.org/x/time/rate"

	"github.com/vechain/rewards/cache"
)

// maxTrackedClients bounds the number of per-client limiters kept.
const maxTrackedClients = 4096

// RateLimiter hands out one token bucket per client ip.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *cache.LRU[*rate.Limiter]
	limit    rate.Limit
	burst    int
}

// NewRateLimiter allows perSecond requests per client with the given burst.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	limiters, err := cache.NewLRU[*rate.Limiter](maxTrackedClients)
	if err != nil {
		panic(err) // size is positive
	}
	return &RateLimiter{
		limiters: limiters,
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (rl *RateLimiter) limiter(client string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters.Get(client)
	if !ok {
		l = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters.Add(client, l)
	}
	return l
}

// Allow reports whether client may make a request now. If not, it also
// returns the number of seconds to wait.
func (rl *RateLimiter) Allow(client string) (bool, int) {
	r := rl.limiter(client).Reserve()
	if !r.OK() {
		return false, 1
	}
	if delay := r.Delay(); delay > 0 {
		r.Cancel()
		secs := int(delay.Seconds())
		if secs < 1 {
			secs = 1
		}
		return false, secs
	}
	return true, 0
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitMiddleware rejects requests over the client's allowance with 429.
func RateLimitMiddleware(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, retryAfter := rl.Allow(clientIP(r))
			if !ok {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{"message": "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
