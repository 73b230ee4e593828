/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"golang.org/x/time/rate"
)

const (
	// limiterCleanupThreshold is the map size at which stale entries are pruned.
	limiterCleanupThreshold = 500
	limiterMaxIdle          = 10 * time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter hands out one token bucket per client address.
type ipLimiter struct {
	mu    sync.Mutex
	ips   map[string]*limiterEntry
	limit rate.Limit
	burst int
}

func newIPLimiter(r rate.Limit, b int) *ipLimiter {
	return &ipLimiter{
		ips:   make(map[string]*limiterEntry),
		limit: r,
		burst: b,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()

	if len(l.ips) > limiterCleanupThreshold {
		cutoff := now.Add(-limiterMaxIdle)
		for k, e := range l.ips {
			if e.lastSeen.Before(cutoff) {
				delete(l.ips, k)
			}
		}
	}

	e, ok := l.ips[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.ips[ip] = e
	}
	e.lastSeen = now

	return e.limiter.AllowN(now, 1)
}

// clientHost is realIP without the port.
func clientHost(r *http.Request) string {
	addr := realIP(r)

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

// rateLimited wraps next so that each client address is held to l. A nil
// limiter disables limiting.
func rateLimited(l *ipLimiter, next httprouter.Handle) httprouter.Handle {
	if l == nil {
		return next
	}

	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		if !l.allow(clientHost(r)) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}

		next(w, r, p)
	}
}
