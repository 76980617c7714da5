package proxy

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

var testEndpoints = []string{
	"http://p1.example.com:8080",
	"http://p2.example.com:8080",
	"http://p3.example.com:8080",
}

func TestPool_RoundRobin(t *testing.T) {
	p, err := NewPool(testEndpoints, RoundRobin, 0)
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}

	expected := []string{
		"p1.example.com:8080",
		"p2.example.com:8080",
		"p3.example.com:8080",
		"p1.example.com:8080",
		"p2.example.com:8080",
		"p3.example.com:8080",
	}
	for i, exp := range expected {
		u, err := p.Select("")
		if err != nil {
			t.Fatalf("Select failed: %v", err)
		}
		if u.Host != exp {
			t.Errorf("hosts[%d] = %q, want %q", i, u.Host, exp)
		}
	}
}

func TestPool_DefaultStrategy(t *testing.T) {
	p, err := NewPool(testEndpoints, "", 0)
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}
	if p.Strategy() != RoundRobin {
		t.Errorf("Strategy() = %q, want %q", p.Strategy(), RoundRobin)
	}
	if p.Len() != 3 {
		t.Errorf("Len() = %d, want 3", p.Len())
	}
}

func TestPool_Random(t *testing.T) {
	p, err := NewPool(testEndpoints, Random, 0)
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}

	valid := map[string]bool{
		"p1.example.com:8080": true,
		"p2.example.com:8080": true,
		"p3.example.com:8080": true,
	}
	for range 50 {
		u, err := p.Select("")
		if err != nil {
			t.Fatalf("Select failed: %v", err)
		}
		if !valid[u.Host] {
			t.Errorf("unexpected host %q", u.Host)
		}
	}
}

func TestPool_RandomSingleEndpoint(t *testing.T) {
	p, err := NewPool(testEndpoints[:1], Random, 0)
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}
	u, err := p.Select("")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if u.Host != "p1.example.com:8080" {
		t.Errorf("host = %q, want p1.example.com:8080", u.Host)
	}
}

func TestPool_Sticky(t *testing.T) {
	p, err := NewPool(testEndpoints, Sticky, 0)
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}

	first, err := p.Select("session-1")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	for range 10 {
		u, err := p.Select("session-1")
		if err != nil {
			t.Fatalf("Select failed: %v", err)
		}
		if u.Host != first.Host {
			t.Errorf("sticky host = %q, want %q", u.Host, first.Host)
		}
	}
}

func TestPool_StickyRequiresKey(t *testing.T) {
	p, err := NewPool(testEndpoints, Sticky, 0)
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}
	if _, err := p.Select(""); err == nil {
		t.Error("expected error for empty sticky key")
	}
}

func TestPool_StickyTTL(t *testing.T) {
	p, err := NewPool(testEndpoints, Sticky, time.Minute)
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	if _, err := p.Select("k"); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(p.stickyMap) != 1 {
		t.Fatalf("sticky entries = %d, want 1", len(p.stickyMap))
	}

	now = now.Add(30 * time.Second)
	if _, err := p.Select("other"); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if _, ok := p.stickyMap["k"]; !ok || len(p.stickyMap) != 2 {
		t.Errorf("sticky entries after 30s = %v, want k and other", p.stickyMap)
	}

	now = now.Add(time.Minute)
	if _, err := p.Select("fresh"); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if _, ok := p.stickyMap["k"]; ok {
		t.Error("expired key k still assigned")
	}
	if _, ok := p.stickyMap["other"]; ok {
		t.Error("expired key other still assigned")
	}
	if len(p.stickyMap) != 1 {
		t.Errorf("sticky entries after expiry = %d, want 1", len(p.stickyMap))
	}
}

func TestPool_SelectReturnsCopy(t *testing.T) {
	p, err := NewPool(testEndpoints[:1], RoundRobin, 0)
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}
	u, _ := p.Select("")
	u.Host = "mutated"

	again, _ := p.Select("")
	if again.Host != "p1.example.com:8080" {
		t.Errorf("host = %q, pool endpoint was mutated", again.Host)
	}
}

func TestNewPool_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		endpoints []string
		strategy  Strategy
		ttl       time.Duration
	}{
		{"empty", nil, RoundRobin, 0},
		{"unknown strategy", testEndpoints, "weighted", 0},
		{"negative ttl", testEndpoints, Sticky, -time.Second},
		{"bad scheme", []string{"ftp://p1.example.com"}, RoundRobin, 0},
		{"missing host", []string{"http://"}, RoundRobin, 0},
		{"unparseable", []string{"http://[::1"}, RoundRobin, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewPool(tt.endpoints, tt.strategy, tt.ttl); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewPool_EmptyIsSentinel(t *testing.T) {
	_, err := NewPool(nil, RoundRobin, 0)
	if !errors.Is(err, ErrEmptyPool) {
		t.Errorf("err = %v, want ErrEmptyPool", err)
	}
}

func TestPool_ProxyFunc(t *testing.T) {
	p, err := NewPool(testEndpoints, Sticky, 0)
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "https://you.com/api/streamingSearch", nil)

	byHost := p.ProxyFunc("")
	first, err := byHost(req)
	if err != nil {
		t.Fatalf("proxy func failed: %v", err)
	}
	if _, ok := p.stickyMap["you.com"]; !ok {
		t.Error("expected sticky entry keyed by request host")
	}
	second, _ := byHost(req)
	if first.Host != second.Host {
		t.Errorf("host changed: %q then %q", first.Host, second.Host)
	}

	if _, err := p.ProxyFunc("session-1")(req); err != nil {
		t.Fatalf("proxy func failed: %v", err)
	}
	if _, ok := p.stickyMap["session-1"]; !ok {
		t.Error("expected sticky entry keyed by session")
	}
}

func TestPool_Transport(t *testing.T) {
	p, err := NewPool(testEndpoints, RoundRobin, 0)
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}
	tr := p.Transport("")
	if tr.Proxy == nil {
		t.Fatal("transport has no proxy func")
	}
	req := httptest.NewRequest(http.MethodGet, "https://you.com/", nil)
	u, err := tr.Proxy(req)
	if err != nil {
		t.Fatalf("Proxy failed: %v", err)
	}
	if u.Host != "p1.example.com:8080" {
		t.Errorf("proxy = %q, want p1.example.com:8080", u.Host)
	}
}

func TestPool_Concurrent(t *testing.T) {
	p, err := NewPool(testEndpoints, RoundRobin, 0)
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}

	var wg sync.WaitGroup
	for range 30 {
		wg.Go(func() {
			if _, err := p.Select(""); err != nil {
				t.Errorf("Select failed: %v", err)
			}
		})
	}
	wg.Wait()

	if p.rrIndex != 30 {
		t.Errorf("rrIndex = %d, want 30", p.rrIndex)
	}
}
