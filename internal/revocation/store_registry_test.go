package revocation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeStorage struct {
	mu      sync.Mutex
	data    map[string]Entry
	failGet bool
	failSet bool
	lastTTL time.Duration
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{data: map[string]Entry{}}
}

func (f *fakeStorage) Set(ctx context.Context, key string, val any, expiresIn time.Duration) error {
	f.mu.Lock()
	f.lastTTL = expiresIn
	f.mu.Unlock()
	return f.Save(ctx, key, val)
}

func (f *fakeStorage) Save(ctx context.Context, key string, val any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet {
		return errors.New("backend down")
	}
	f.data[key] = val.(Entry)
	return nil
}

func (f *fakeStorage) Exists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		return false, errors.New("backend down")
	}
	_, ok := f.data[key]
	return ok, nil
}

var hashKey = []byte("revocation-hash-key")

func TestStoreRegistryPersistsHashedKeys(t *testing.T) {
	backend := newFakeStorage()
	r := NewStoreRegistry(backend, hashKey)

	r.Revoke("secret-token")
	if !r.IsRevoked("secret-token") {
		t.Fatal("expected token to be revoked")
	}
	if len(backend.data) != 1 {
		t.Fatalf("expected one persisted entry, got %d", len(backend.data))
	}
	for key := range backend.data {
		if !strings.HasPrefix(key, "r:") {
			t.Fatalf("expected key prefix r:, got %s", key)
		}
		if strings.Contains(key, "secret-token") {
			t.Fatal("raw token must not be used as storage key")
		}
	}
}

func TestStoreRegistrySurvivesRestart(t *testing.T) {
	backend := newFakeStorage()
	NewStoreRegistry(backend, hashKey).Revoke("tok")

	restarted := NewStoreRegistry(backend, hashKey)
	if !restarted.IsRevoked("tok") {
		t.Fatal("expected revocation to be loaded from the backend")
	}
	if !restarted.local.IsRevoked("tok") {
		t.Fatal("expected positive backend hit to be cached locally")
	}
	if restarted.IsRevoked("other") {
		t.Fatal("unexpected revocation for unknown token")
	}
	for _, entry := range backend.data {
		if entry.RevokedAt == 0 {
			t.Fatal("expected revocation time to be persisted")
		}
	}
}

func TestStoreRegistryBackendFailures(t *testing.T) {
	backend := newFakeStorage()
	backend.failSet = true
	r := NewStoreRegistry(backend, hashKey)

	r.Revoke("tok")
	if !r.IsRevoked("tok") {
		t.Fatal("local revocation must hold when the backend write fails")
	}

	backend.failSet = false
	backend.failGet = true
	if !r.IsRevoked("unknown") {
		t.Fatal("lookup must fail closed when the backend is unavailable")
	}
}

func TestStoreRegistryEntryTTL(t *testing.T) {
	backend := newFakeStorage()
	NewStoreRegistry(backend, hashKey, WithEntryTTL(24*time.Hour)).Revoke("tok")
	if backend.lastTTL != 24*time.Hour {
		t.Fatalf("expected entry ttl of 24h, got %v", backend.lastTTL)
	}

	backend = newFakeStorage()
	NewStoreRegistry(backend, hashKey).Revoke("tok")
	if backend.lastTTL != 0 || len(backend.data) != 1 {
		t.Fatalf("expected entry saved without ttl, got %v", backend.lastTTL)
	}
}
