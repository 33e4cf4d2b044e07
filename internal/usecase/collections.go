package usecase

import "context"

// appendCapped appends item to the slice stored under key and trims the head
// so the collection never exceeds cap entries. Returns how many entries were
// evicted. Read-modify-write; last writer wins for these bounded collections.
func appendCapped[T any](ctx context.Context, kv KV, key string, item T, limit int) (int, error) {
	var items []T
	if _, err := kv.Get(ctx, key, &items); err != nil {
		return 0, err
	}
	items = append(items, item)
	evicted := 0
	if limit > 0 && len(items) > limit {
		evicted = len(items) - limit
		items = items[evicted:]
	}
	if err := kv.Set(ctx, key, items); err != nil {
		return 0, err
	}
	return evicted, nil
}

// replaceByID overwrites the entry matching id in the slice stored under key,
// or appends it (capped) when the original has already been evicted.
func replaceByID[T any](ctx context.Context, kv KV, key string, id func(T) string, want string, item T, limit int) error {
	var items []T
	if _, err := kv.Get(ctx, key, &items); err != nil {
		return err
	}
	found := false
	for i := range items {
		if id(items[i]) == want {
			items[i] = item
			found = true
			break
		}
	}
	if !found {
		items = append(items, item)
		if limit > 0 && len(items) > limit {
			items = items[len(items)-limit:]
		}
	}
	return kv.Set(ctx, key, items)
}

// readAll loads the slice stored under key, returning an empty slice for
// absent keys.
func readAll[T any](ctx context.Context, kv KV, key string) ([]T, error) {
	var items []T
	if _, err := kv.Get(ctx, key, &items); err != nil {
		return nil, err
	}
	return items, nil
}
