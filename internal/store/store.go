// Package store holds the document collection backends for contacts.
//
// Every backend keys records by name, lists them in ascending name order and
// treats deletion of a missing key as success.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/engine"
)

// Backend is a contact store with lifecycle hooks.
type Backend interface {
	engine.ContactStore
	engine.Renamer

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// Open builds the backend selected by settings.
func Open(ctx context.Context, s config.StoreSettings) (Backend, error) {
	var (
		b   Backend
		err error
	)

	switch s.Backend {
	case config.StoreMemory, "":
		b = NewMemory()
	case config.StoreSQLite:
		b, err = OpenSQLite(ctx, s.SQLitePath)
	case config.StoreRedis:
		b, err = OpenRedis(ctx, s.RedisURL, s.RedisPassword, s.RedisKey)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrStoreUnsupported, s.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrStoreOpen, err)
	}

	slog.Info(config.MsgStoreOpened,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyBackend, s.Backend)
	return b, nil
}
