package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"golang-portfolio/pkg/logger"
)

// collection reads and writes one JSON array stored under key.
type collection[T any] struct {
	store Store
	key   string
	log   *logger.Logger
}

func newCollection[T any](store Store, key string, log *logger.Logger) collection[T] {
	return collection[T]{store: store, key: key, log: log}
}

// GetAll returns the stored items. A blob that fails to parse is logged and
// treated as an empty collection; the next write replaces it.
func (c collection[T]) GetAll(ctx context.Context) ([]T, error) {
	raw, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		return nil, err
	}
	if !ok || len(raw) == 0 {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		c.log.ErrorContext(ctx, "Failed to parse stored collection, treating as empty",
			logger.StringField("key", c.key),
			logger.ErrorField(err),
		)
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c collection[T]) ReplaceAll(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", c.key, err)
	}
	return c.store.Set(ctx, c.key, raw)
}
