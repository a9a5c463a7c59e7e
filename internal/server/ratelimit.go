package server

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"

	"connectrpc.com/connect"
	"golang.org/x/time/rate"

	"github.com/at-ishikawa/vocabox/internal/study"
)

var errRateLimited = errors.New("rate limit exceeded")

// RateLimiter keeps one token bucket per client.
type RateLimiter struct {
	mu     sync.RWMutex
	limits map[string]*rate.Limiter
	limit  rate.Limit
	burst  int
}

// NewRateLimiter creates a rate limiter allowing requestsPerSecond with the given burst per client.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limits: make(map[string]*rate.Limiter),
		limit:  rate.Limit(requestsPerSecond),
		burst:  burst,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.RLock()
	limiter, ok := rl.limits[key]
	rl.mu.RUnlock()
	if ok {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if limiter, ok := rl.limits[key]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(rl.limit, rl.burst)
	rl.limits[key] = limiter
	return limiter
}

// Allow reports whether a request of the client may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// NewRateLimitInterceptor rejects requests over the limit of their user with CodeResourceExhausted.
// It runs after authentication; requests failing it are limited per remote host by NewAuthInterceptor.
func NewRateLimitInterceptor(limiter *RateLimiter) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			userID, ok := UserIDFromContext(ctx)
			if !ok {
				return nil, connect.NewError(connect.CodeUnauthenticated, study.ErrNotAuthenticated)
			}
			if !limiter.Allow(userKey(userID)) {
				return nil, connect.NewError(connect.CodeResourceExhausted, errRateLimited)
			}
			return next(ctx, req)
		}
	}
}

func userKey(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}

func peerKey(peer connect.Peer) string {
	host, _, err := net.SplitHostPort(peer.Addr)
	if err != nil {
		return "addr:" + peer.Addr
	}
	return "addr:" + host
}
