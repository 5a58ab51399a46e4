package http

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/couchcryptid/cistern-configurator/internal/observability"
)

const (
	// limiterIdleTTL is how long a client's bucket survives without requests.
	limiterIdleTTL = 10 * time.Minute
	// limiterSweepEvery is the minimum gap between idle-bucket scans.
	limiterSweepEvery = time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

// rateLimiter keeps one token bucket per client IP and drops buckets that
// have been idle for limiterIdleTTL.
type rateLimiter struct {
	limiters  sync.Map // ip -> *clientLimiter
	lastSweep atomic.Int64
	rate      rate.Limit
	burst     int
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// newRateLimiter returns a limiter; a non-positive rps disables limiting.
func newRateLimiter(rps float64, burst int, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *rateLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	l := &rateLimiter{
		rate:    limit,
		burst:   max(burst, 1),
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
	l.lastSweep.Store(clock.Now().UnixNano())
	return l
}

func (l *rateLimiter) limiterFor(ip string) *rate.Limiter {
	now := l.clock.Now()
	l.sweep(now)

	v, ok := l.limiters.Load(ip)
	if !ok {
		c := &clientLimiter{limiter: rate.NewLimiter(l.rate, l.burst)}
		c.lastSeen.Store(now.UnixNano())
		v, _ = l.limiters.LoadOrStore(ip, c)
	}
	c := v.(*clientLimiter)
	c.lastSeen.Store(now.UnixNano())
	return c.limiter
}

// sweep deletes idle buckets at most once per limiterSweepEvery.
func (l *rateLimiter) sweep(now time.Time) {
	last := l.lastSweep.Load()
	if now.UnixNano()-last < int64(limiterSweepEvery) {
		return
	}
	if !l.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}

	cutoff := now.Add(-limiterIdleTTL).UnixNano()
	l.limiters.Range(func(k, v any) bool {
		if v.(*clientLimiter).lastSeen.Load() < cutoff {
			l.limiters.Delete(k)
		}
		return true
	})
}

func (l *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !l.limiterFor(ip).Allow() {
			l.metrics.RateLimitRejection.Inc()
			l.logger.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
			sharedobs.WriteJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
