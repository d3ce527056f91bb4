package revocation

import (
	"context"
	"log/slog"
	"time"

	"github.com/khanghh/phishsoc/internal/common"
	"github.com/khanghh/phishsoc/internal/store"
	"github.com/khanghh/phishsoc/params"
)

const backendTimeout = 2 * time.Second

// Entry is the persisted form of a revocation. Tokens are stored by keyed
// hash only.
type Entry struct {
	RevokedAt int64 `redis:"revoked_at"`
}

// StoreRegistry is a MemoryRegistry with a durable write-through backend so
// revocations survive restarts and are shared between instances.
type StoreRegistry struct {
	local   *MemoryRegistry
	backend store.Store[Entry]
	hashKey []byte
	ttl     time.Duration
	now     func() time.Time
}

type StoreOption func(*StoreRegistry)

// WithEntryTTL expires backend entries after ttl. It should not be shorter
// than the token lifetime.
func WithEntryTTL(ttl time.Duration) StoreOption {
	return func(r *StoreRegistry) {
		r.ttl = ttl
	}
}

func (r *StoreRegistry) entryKey(token string) string {
	return common.CalculateHash(r.hashKey, token)
}

// Revoke records the revocation locally first, so it takes effect even when
// the backend write fails.
func (r *StoreRegistry) Revoke(token string) {
	r.local.Revoke(token)

	ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
	defer cancel()
	entry := Entry{RevokedAt: r.now().UnixMilli()}
	var err error
	if r.ttl > 0 {
		err = r.backend.Set(ctx, r.entryKey(token), entry, r.ttl)
	} else {
		err = r.backend.Save(ctx, r.entryKey(token), entry)
	}
	if err != nil {
		slog.Error("Failed to persist token revocation", "error", err)
	}
}

// IsRevoked answers from the local set and falls back to the backend on a
// miss. A backend failure is treated as revoked.
func (r *StoreRegistry) IsRevoked(token string) bool {
	if r.local.IsRevoked(token) {
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
	defer cancel()
	exists, err := r.backend.Exists(ctx, r.entryKey(token))
	if err != nil {
		slog.Error("Revocation lookup failed, rejecting token", "error", err)
		return true
	}
	if exists {
		r.local.mu.Lock()
		r.local.revoked[token] = struct{}{}
		r.local.mu.Unlock()
	}
	return exists
}

func NewStoreRegistry(storage store.Storage, hashKey []byte, opts ...StoreOption) *StoreRegistry {
	r := &StoreRegistry{
		local:   NewMemoryRegistry(),
		backend: store.New[Entry](storage, params.RevocationKeyPrefix),
		hashKey: hashKey,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
