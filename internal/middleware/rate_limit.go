package middleware

import (
	"net"
	"net/http"
	"os"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

const (
	requestsPerSecond = 10
	requestBurst      = 30
)

// ipLimiters holds one limiter per remote address. The webhook's only
// legitimate high-volume caller is the gateway, which is trusted.
type ipLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	trusted  map[string]bool
}

func newIPLimiters() *ipLimiters {
	trusted := map[string]bool{"127.0.0.1": true, "::1": true}
	for _, ip := range strings.Split(os.Getenv("TRIBUNE_TRUSTED_IPS"), ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			trusted[ip] = true
		}
	}
	return &ipLimiters{
		limiters: make(map[string]*rate.Limiter),
		trusted:  trusted,
	}
}

func (l *ipLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists := l.limiters[ip]; exists {
		return limiter
	}
	limiter := rate.NewLimiter(requestsPerSecond, requestBurst)
	l.limiters[ip] = limiter
	return limiter
}

var defaultIPLimiters = newIPLimiters()

// RateLimitMiddleware throttles untrusted callers per remote IP. The
// gateway and any address in TRIBUNE_TRUSTED_IPS bypass the limit.
func RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, _ := net.SplitHostPort(r.RemoteAddr)
		if defaultIPLimiters.trusted[ip] {
			next.ServeHTTP(w, r)
			return
		}

		if !defaultIPLimiters.get(ip).Allow() {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
