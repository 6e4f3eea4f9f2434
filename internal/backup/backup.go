// Package backup exports the shopping list and trip history as a single
// passphrase-sealed blob and restores it.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/grocerycalc/internal/codec"
	"github.com/dukerupert/grocerycalc/internal/storage"
)

const formatVersion = 1

var (
	ErrUnsupportedVersion = errors.New("unsupported backup version")

	// ErrInvalidBackup is returned when a backup opens but its contents do
	// not decode.
	ErrInvalidBackup = errors.New("invalid backup")
)

// envelope is the sealed payload. Each key holds the blob store value as
// stored, so a backup restores byte for byte.
type envelope struct {
	Version      int       `json:"version"`
	ExportedAt   time.Time `json:"exported_at"`
	CurrentItems string    `json:"current_items,omitempty"`
	History      string    `json:"history,omitempty"`
}

// Export reads both keys from kv and seals them with passphrase. Absent keys
// are exported as absent.
func Export(ctx context.Context, kv storage.Store, passphrase string) ([]byte, error) {
	items, err := get(ctx, kv, storage.KeyCurrentItems)
	if err != nil {
		return nil, err
	}
	history, err := get(ctx, kv, storage.KeyHistory)
	if err != nil {
		return nil, err
	}

	plaintext, err := json.Marshal(envelope{
		Version:      formatVersion,
		ExportedAt:   time.Now().UTC(),
		CurrentItems: items,
		History:      history,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal backup: %w", err)
	}
	return Seal(plaintext, passphrase)
}

// Import opens data with passphrase, checks both payloads decode, then
// replaces both keys in kv. Nothing is written unless every check passes.
func Import(ctx context.Context, kv storage.Store, data []byte, passphrase string) error {
	plaintext, err := Open(data, passphrase)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(plaintext, &env); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBackup, err)
	}
	if env.Version != formatVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	if env.CurrentItems != "" {
		if _, err := codec.UnmarshalItems(env.CurrentItems); err != nil {
			return fmt.Errorf("%w: current items: %w", ErrInvalidBackup, err)
		}
	}
	if env.History != "" {
		if _, err := codec.UnmarshalTrips(env.History); err != nil {
			return fmt.Errorf("%w: history: %w", ErrInvalidBackup, err)
		}
	}

	if err := kv.Remove(ctx, storage.KeyCurrentItems, storage.KeyHistory); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	if env.CurrentItems != "" {
		if err := kv.Set(ctx, storage.KeyCurrentItems, env.CurrentItems); err != nil {
			return fmt.Errorf("restore current items: %w", err)
		}
	}
	if env.History != "" {
		if err := kv.Set(ctx, storage.KeyHistory, env.History); err != nil {
			return fmt.Errorf("restore history: %w", err)
		}
	}
	return nil
}

func get(ctx context.Context, kv storage.Store, key string) (string, error) {
	v, err := kv.Get(ctx, key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return v, nil
}
