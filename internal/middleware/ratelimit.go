package middleware

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// visitor is one remote host's token bucket plus the last time it took a
// token, so idle buckets can be swept.
type visitor struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// RateLimit enforces the per-client request budget configured through
// RATE_LIMIT_RPS and RATE_LIMIT_BURST. Buckets are keyed by the
// connection's remote host; forwarding headers are not consulted, a
// spoofed X-Forwarded-For must not mint a fresh bucket. Rejected requests
// get the console's JSON error envelope and a Retry-After hint.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	var (
		mu       sync.Mutex
		visitors = make(map[string]*visitor)
	)

	take := func(host string) bool {
		mu.Lock()
		defer mu.Unlock()
		v, ok := visitors[host]
		if !ok {
			v = &visitor{bucket: rate.NewLimiter(rate.Limit(rps), burst)}
			visitors[host] = v
		}
		v.lastSeen = time.Now()
		return v.bucket.Allow()
	}

	go func() {
		for range time.Tick(5 * time.Minute) {
			mu.Lock()
			for host, v := range visitors {
				if time.Since(v.lastSeen) > 10*time.Minute {
					delete(visitors, host)
				}
			}
			mu.Unlock()
		}
	}()

	retryAfter := 1
	if rps > 0 && rps < 1 {
		retryAfter = int(math.Ceil(1 / rps))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !take(remoteHost(r)) {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(struct {
					Error string `json:"error"`
					Code  int    `json:"code"`
				}{"too many requests", http.StatusTooManyRequests})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// remoteHost strips the port from the connection's remote address.
func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
