package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/engine"
	"github.com/tartampluch/go-contacts/internal/store"
)

const seedBook = "BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Alice\r\nTEL:5551234567\r\nEND:VCARD\r\n"

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed"+config.ExtVCF)
	require.NoError(t, os.WriteFile(path, []byte(seedBook), config.FilePermUserRW))
	return path
}

func TestSeed(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty store is seeded", func(t *testing.T) {
		st := store.NewMemory()
		require.NoError(t, seed(ctx, st, writeSeed(t)))

		rec, err := st.Get(ctx, "Alice")
		require.NoError(t, err)
		assert.Equal(t, "(555) 123-4567", rec.Phone)
	})

	t.Run("Populated store is left alone", func(t *testing.T) {
		st := store.NewMemory()
		require.NoError(t, st.Upsert(ctx, engine.ContactRecord{Name: "Bob", Phone: "(555) 999-8888"}))
		require.NoError(t, seed(ctx, st, writeSeed(t)))

		_, err := st.Get(ctx, "Alice")
		assert.ErrorIs(t, err, engine.ErrNotFound)
	})

	t.Run("No path is a no-op", func(t *testing.T) {
		assert.NoError(t, seed(ctx, store.NewMemory(), ""))
	})

	t.Run("Missing file fails", func(t *testing.T) {
		err := seed(ctx, store.NewMemory(), filepath.Join(t.TempDir(), "missing.vcf"))
		assert.ErrorContains(t, err, config.ErrSeed)
	})
}
