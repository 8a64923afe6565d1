package httpserver

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// maxTrackedClients bounds the limiter map.
	maxTrackedClients = 10000
	// idleClientTTL is how long an unused bucket survives a sweep.
	idleClientTTL = 10 * time.Minute
)

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client address. When the map is
// full, idle buckets are swept first and the least recently seen bucket is
// evicted only if none are idle.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	rate    rate.Limit
	burst   int
	trusted []netip.Prefix
	now     func() time.Time
}

// NewRateLimiter builds a limiter. trustedProxies holds IPs or CIDRs of
// peers allowed to name the client through X-Forwarded-For.
func NewRateLimiter(perSecond float64, burst int, trustedProxies []string) (*RateLimiter, error) {
	if burst <= 0 {
		burst = 1
	}
	trusted := make([]netip.Prefix, 0, len(trustedProxies))
	for _, raw := range trustedProxies {
		prefix, err := parseProxy(raw)
		if err != nil {
			return nil, err
		}
		trusted = append(trusted, prefix)
	}
	return &RateLimiter{
		clients: make(map[string]*clientBucket),
		rate:    rate.Limit(perSecond),
		burst:   burst,
		trusted: trusted,
		now:     time.Now,
	}, nil
}

func parseProxy(raw string) (netip.Prefix, error) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "/") {
		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			return netip.Prefix{}, fmt.Errorf("trusted proxy %q: %w", raw, err)
		}
		return prefix.Masked(), nil
	}
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("trusted proxy %q: %w", raw, err)
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	now := rl.now()
	bucket, ok := rl.clients[key]
	if !ok {
		if len(rl.clients) >= maxTrackedClients {
			rl.evictLocked(now)
		}
		bucket = &clientBucket{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.clients[key] = bucket
	}
	bucket.lastSeen = now
	rl.mu.Unlock()
	return bucket.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) evictLocked(now time.Time) {
	for key, bucket := range rl.clients {
		if now.Sub(bucket.lastSeen) > idleClientTTL {
			delete(rl.clients, key)
		}
	}
	if len(rl.clients) < maxTrackedClients {
		return
	}
	var oldestKey string
	var oldest time.Time
	for key, bucket := range rl.clients {
		if oldestKey == "" || bucket.lastSeen.Before(oldest) {
			oldestKey, oldest = key, bucket.lastSeen
		}
	}
	delete(rl.clients, oldestKey)
}

func (rl *RateLimiter) tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// clientKey is the peer address, or the right-most X-Forwarded-For hop that
// is not a trusted proxy when the peer itself is trusted.
func (rl *RateLimiter) clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	peer, err := netip.ParseAddr(host)
	if err != nil || !rl.isTrusted(peer) {
		return host
	}

	var hops []string
	for _, header := range r.Header.Values("X-Forwarded-For") {
		hops = append(hops, strings.Split(header, ",")...)
	}
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		addr, err := netip.ParseAddr(hop)
		if err != nil {
			// A malformed hop ends the trusted chain.
			return host
		}
		if !rl.isTrusted(addr) {
			return addr.Unmap().String()
		}
	}
	return host
}

func (rl *RateLimiter) isTrusted(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, prefix := range rl.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
