package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	sessionout "trackboard/internal/modules/session/port/out"
	"trackboard/internal/platform/logging"
)

// JSONStore serializes values onto a KVStore.
type JSONStore struct {
	kv     sessionout.KVStore
	logger *slog.Logger
}

func NewJSONStore(kv sessionout.KVStore, logger *slog.Logger) *JSONStore {
	if logger == nil {
		logger = logging.Discard()
	}
	return &JSONStore{kv: kv, logger: logger}
}

func (s *JSONStore) Put(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.kv.Put(ctx, key, string(payload)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Get decodes key into dst and reports whether a value was found. Stored data
// that fails to parse is logged and reported as absent; dst must then be
// ignored by the caller.
func (s *JSONStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.Warn("discarding malformed stored value", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

func (s *JSONStore) Delete(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
