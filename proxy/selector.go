// Package proxy rotates outbound search requests across a pool of HTTP
// proxies.
package proxy

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Strategy selects an endpoint for each request.
type Strategy string

// Selection strategies.
const (
	RoundRobin Strategy = "round_robin"
	Random     Strategy = "random"
	Sticky     Strategy = "sticky"
)

// ErrEmptyPool is returned when a pool has no endpoints.
var ErrEmptyPool = errors.New("proxy pool has no endpoints")

// Pool holds proxy endpoints and rotation state.
// Thread-safe for concurrent access.
type Pool struct {
	strategy  Strategy
	endpoints []*url.URL
	stickyTTL time.Duration
	now       func() time.Time

	mu        sync.Mutex
	rrIndex   int64
	stickyMap map[string]stickyEntry
}

type stickyEntry struct {
	endpointIdx int
	expiresAt   time.Time
}

// NewPool parses endpoints and creates a pool. An empty strategy means
// round-robin. A stickyTTL of zero keeps sticky assignments forever.
func NewPool(endpoints []string, strategy Strategy, stickyTTL time.Duration) (*Pool, error) {
	if len(endpoints) == 0 {
		return nil, ErrEmptyPool
	}
	switch strategy {
	case "":
		strategy = RoundRobin
	case RoundRobin, Random, Sticky:
	default:
		return nil, fmt.Errorf("unknown strategy %q", strategy)
	}
	if stickyTTL < 0 {
		return nil, fmt.Errorf("sticky ttl must be >= 0, got %s", stickyTTL)
	}

	p := &Pool{
		strategy:  strategy,
		stickyTTL: stickyTTL,
		now:       time.Now,
		stickyMap: make(map[string]stickyEntry),
	}
	for i, raw := range endpoints {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("endpoint %d: %w", i, err)
		}
		switch u.Scheme {
		case "http", "https", "socks5":
		default:
			return nil, fmt.Errorf("endpoint %d: unsupported scheme %q", i, u.Scheme)
		}
		if u.Host == "" {
			return nil, fmt.Errorf("endpoint %d: missing host", i)
		}
		p.endpoints = append(p.endpoints, u)
	}
	return p, nil
}

// Strategy returns the pool's selection strategy.
func (p *Pool) Strategy() Strategy {
	return p.strategy
}

// Len returns the number of endpoints.
func (p *Pool) Len() int {
	return len(p.endpoints)
}

// Select returns the endpoint for key. Only sticky selection uses key;
// it must be non-empty in that case.
func (p *Pool) Select(key string) (*url.URL, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var idx int
	var err error
	switch p.strategy {
	case RoundRobin:
		idx = int(p.rrIndex % int64(len(p.endpoints)))
		p.rrIndex++
	case Random:
		idx, err = p.selectRandom()
	case Sticky:
		idx, err = p.selectSticky(key)
	}
	if err != nil {
		return nil, err
	}

	u := *p.endpoints[idx]
	return &u, nil
}

func (p *Pool) selectRandom() (int, error) {
	n := len(p.endpoints)
	if n == 1 {
		return 0, nil
	}
	bigIdx, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("random selection failed: %w", err)
	}
	return int(bigIdx.Int64()), nil
}

func (p *Pool) selectSticky(key string) (int, error) {
	if key == "" {
		return 0, errors.New("sticky selection requires a key")
	}

	now := p.now()
	p.sweepExpired(now)
	if entry, ok := p.stickyMap[key]; ok {
		return entry.endpointIdx, nil
	}

	idx, err := p.selectRandom()
	if err != nil {
		return 0, err
	}
	entry := stickyEntry{endpointIdx: idx}
	if p.stickyTTL > 0 {
		entry.expiresAt = now.Add(p.stickyTTL)
	}
	p.stickyMap[key] = entry
	return idx, nil
}

// sweepExpired drops sticky assignments whose TTL has passed, so the map
// only holds live keys. Callers hold mu.
func (p *Pool) sweepExpired(now time.Time) {
	for key, entry := range p.stickyMap {
		if !entry.expiresAt.IsZero() && !entry.expiresAt.After(now) {
			delete(p.stickyMap, key)
		}
	}
}

// ProxyFunc returns a function for http.Transport.Proxy. Sticky pools key
// on sessionKey when set, otherwise on the request host.
func (p *Pool) ProxyFunc(sessionKey string) func(*http.Request) (*url.URL, error) {
	return func(req *http.Request) (*url.URL, error) {
		key := sessionKey
		if key == "" {
			key = req.URL.Host
		}
		return p.Select(key)
	}
}

// Transport returns a clone of the default transport that routes every
// request through the pool.
func (p *Pool) Transport(sessionKey string) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.Proxy = p.ProxyFunc(sessionKey)
	return t
}
