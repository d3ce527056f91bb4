// Package revocation tracks session tokens that were explicitly invalidated
// before their natural expiry. Membership is monotonic: a revoked token is
// never un-revoked during the lifetime of a registry.
package revocation

import (
	"sync"

	"github.com/khanghh/phishsoc/internal/metrics"
)

type Registry interface {
	Revoke(token string)
	IsRevoked(token string) bool
}

// MemoryRegistry is a process local set of revoked tokens.
type MemoryRegistry struct {
	mu      sync.RWMutex
	revoked map[string]struct{}
}

// Revoke marks token as revoked. Any string is accepted and repeated calls
// are no-ops.
func (r *MemoryRegistry) Revoke(token string) {
	r.mu.Lock()
	_, seen := r.revoked[token]
	r.revoked[token] = struct{}{}
	r.mu.Unlock()
	if !seen {
		metrics.TokensRevoked.Inc()
	}
}

func (r *MemoryRegistry) IsRevoked(token string) bool {
	r.mu.RLock()
	_, ok := r.revoked[token]
	r.mu.RUnlock()
	return ok
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		revoked: make(map[string]struct{}),
	}
}
