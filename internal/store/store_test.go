package store

import (
	"context"
	"testing"
	"time"
)

type mapStorage struct {
	data map[string]any
	ttl  map[string]time.Duration
}

func newMapStorage() *mapStorage {
	return &mapStorage{data: map[string]any{}, ttl: map[string]time.Duration{}}
}

func (m *mapStorage) Set(ctx context.Context, key string, val any, expiresIn time.Duration) error {
	m.data[key] = val
	m.ttl[key] = expiresIn
	return nil
}

func (m *mapStorage) Save(ctx context.Context, key string, val any) error {
	m.data[key] = val
	return nil
}

func (m *mapStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

type record struct {
	Name string `redis:"name"`
}

func TestStoreAppliesKeyPrefix(t *testing.T) {
	ctx := context.Background()
	backend := newMapStorage()
	s := New[record](backend, "x:")

	if err := s.Set(ctx, "k1", record{Name: "one"}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, ok := backend.data["x:k1"].(record); !ok || got.Name != "one" {
		t.Fatalf("expected prefixed record in backend, got %v", backend.data)
	}
	if backend.ttl["x:k1"] != time.Minute {
		t.Fatalf("expected ttl to be forwarded, got %v", backend.ttl["x:k1"])
	}

	if err := s.Save(ctx, "k2", record{Name: "two"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, ok := backend.ttl["x:k2"]; ok {
		t.Fatal("Save must not set a ttl")
	}

	for key, want := range map[string]bool{"k1": true, "k2": true, "x:k1": false, "k3": false} {
		exists, err := s.Exists(ctx, key)
		if err != nil || exists != want {
			t.Fatalf("Exists(%s) = %v, %v; want %v", key, exists, err, want)
		}
	}
}

func TestStorageWithEmptyPrefixReturnsUnderlying(t *testing.T) {
	backend := newMapStorage()
	if StorageWithPrefix(backend, "") != Storage(backend) {
		t.Fatal("expected underlying storage for empty prefix")
	}
}
