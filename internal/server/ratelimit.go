package server

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter keeps one token bucket per client IP
type ipLimiter struct {
	perMinute int

	mu      sync.Mutex
	entries map[string]*ipEntry
}

// newIPLimiter allows perMinute attempts per IP with an equal burst.
// perMinute <= 0 disables limiting.
func newIPLimiter(perMinute int) *ipLimiter {
	return &ipLimiter{perMinute: perMinute, entries: make(map[string]*ipEntry)}
}

func (l *ipLimiter) Allow(ip string, now time.Time) bool {
	if l.perMinute <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[ip]
	if !ok {
		e = &ipEntry{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMinute)), l.perMinute)}
		l.entries[ip] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// Prune forgets IPs not seen since cutoff and returns how many were removed
func (l *ipLimiter) Prune(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for ip, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, ip)
			removed++
		}
	}
	return removed
}
