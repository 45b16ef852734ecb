package polygon

import (
	"context"
	"errors"
	"sync"
	"time"
)

// KeyCooldown is the free-tier spacing between requests on one key (5 req/min).
const KeyCooldown = 12 * time.Second

// KeyStats is the usage of one API key.
type KeyStats struct {
	Prefix   string
	Requests int64
	LastUsed time.Time
}

type keyState struct {
	key      string
	readyAt  time.Time
	lastUsed time.Time
	requests int64
}

// KeyPool hands out API keys round-robin, spacing requests on the same key by cooldown.
// Safe for concurrent use.
type KeyPool struct {
	mu       sync.Mutex
	keys     []keyState
	next     int
	cooldown time.Duration
}

// NewKeyPool creates a pool. A zero cooldown disables rate limiting.
func NewKeyPool(apiKeys []string, cooldown time.Duration) (*KeyPool, error) {
	if len(apiKeys) == 0 {
		return nil, errors.New("at least one API key is required")
	}
	keys := make([]keyState, len(apiKeys))
	for i, k := range apiKeys {
		keys[i] = keyState{key: k}
	}
	return &KeyPool{keys: keys, cooldown: cooldown}, nil
}

// Acquire reserves the key that becomes free first and waits until it may be used.
// Ties go to the next key in round-robin order.
func (p *KeyPool) Acquire(ctx context.Context) (string, error) {
	p.mu.Lock()
	best := p.next
	for i := 1; i < len(p.keys); i++ {
		j := (p.next + i) % len(p.keys)
		if p.keys[j].readyAt.Before(p.keys[best].readyAt) {
			best = j
		}
	}
	k := &p.keys[best]
	now := time.Now()
	useAt := now
	if k.readyAt.After(now) {
		useAt = k.readyAt
	}
	k.readyAt = useAt.Add(p.cooldown)
	k.lastUsed = useAt
	k.requests++
	p.next = (best + 1) % len(p.keys)
	key := k.key
	p.mu.Unlock()

	wait := useAt.Sub(now)
	if wait <= 0 {
		return key, nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-t.C:
		return key, nil
	}
}

// Stats returns per-key usage with keys masked.
func (p *KeyPool) Stats() []KeyStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]KeyStats, len(p.keys))
	for i, k := range p.keys {
		out[i] = KeyStats{Prefix: maskKey(k.key), Requests: k.requests, LastUsed: k.lastUsed}
	}
	return out
}

// maskKey keeps the first 8 characters of a key for logs.
func maskKey(k string) string {
	if len(k) > 8 {
		return k[:8] + "..."
	}
	return k
}
