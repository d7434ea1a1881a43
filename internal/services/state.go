package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/adanyl0v/go-task-tracker/internal/storage"
)

// readState decodes the JSON value stored under key. The boolean is
// false when the key is absent. Undecodable text yields ErrCorruptState.
func readState[T any](ctx context.Context, store storage.Storage, key string) (T, bool, error) {
	var value T

	text, ok, err := store.Get(ctx, key)
	if err != nil {
		return value, false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	if !ok {
		return value, false, nil
	}

	err = json.Unmarshal([]byte(text), &value)
	if err != nil {
		var zero T
		return zero, true, fmt.Errorf("%w: key %q: %w", ErrCorruptState, key, err)
	}
	return value, true, nil
}

func writeState(ctx context.Context, store storage.Storage, key string, value any) error {
	text, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %q: %w", key, err)
	}

	err = store.Set(ctx, key, string(text))
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}
