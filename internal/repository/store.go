package repository

import "context"

// Store is the key-value persistence contract. Each collection lives under one
// key as a JSON blob and is replaced wholesale on write; there is no
// optimistic-concurrency check, so two processes writing the same key clobber
// each other (last write wins).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
