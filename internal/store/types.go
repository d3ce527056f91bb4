package store

import (
	"context"
	"time"
)

// Storage is a key/value backend where every value is a flat record of fields.
type Storage interface {
	Set(ctx context.Context, key string, val any, expiresIn time.Duration) error
	Save(ctx context.Context, key string, val any) error
	Exists(ctx context.Context, key string) (bool, error)
}

type Store[T any] interface {
	Set(ctx context.Context, key string, val T, expiresIn time.Duration) error
	Save(ctx context.Context, key string, val T) error
	Exists(ctx context.Context, key string) (bool, error)
}
