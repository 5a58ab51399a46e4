package http

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/cistern-configurator/internal/observability"
)

func newTestLimiter(clock clockwork.Clock) *rateLimiter {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newRateLimiter(1, 1, clock, logger, observability.NewMetricsForTesting())
}

func trackedIPs(l *rateLimiter) []string {
	var ips []string
	l.limiters.Range(func(k, _ any) bool {
		ips = append(ips, k.(string))
		return true
	})
	return ips
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := newTestLimiter(clock)

	l.limiterFor("192.0.2.1")
	clock.Advance(limiterIdleTTL + time.Minute)
	l.limiterFor("192.0.2.2")

	assert.Equal(t, []string{"192.0.2.2"}, trackedIPs(l))
}

func TestRateLimiter_KeepsActiveClients(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := newTestLimiter(clock)

	l.limiterFor("192.0.2.1")
	clock.Advance(limiterIdleTTL / 2)
	l.limiterFor("192.0.2.1")
	clock.Advance(limiterIdleTTL/2 + time.Minute)
	l.limiterFor("192.0.2.2")

	assert.ElementsMatch(t, []string{"192.0.2.1", "192.0.2.2"}, trackedIPs(l))
}

func TestRateLimiter_SameBucketWhileActive(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := newTestLimiter(clock)

	first := l.limiterFor("192.0.2.1")
	clock.Advance(2 * limiterSweepEvery)

	assert.Same(t, first, l.limiterFor("192.0.2.1"))
}
