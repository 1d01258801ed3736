package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/engine"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const (
	sqliteDriver = "sqlite"
	memoryDSN    = ":memory:"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLite stores contacts in a single table keyed by name.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies pending migrations.
// Pass ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path != memoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), config.DirPermUserRWX); err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrCreateDir, err)
		}
	}

	db, err := sql.Open(sqliteDriver, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrSQLiteOpen, err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:" coherent.
	db.SetMaxOpenConns(1)

	pragmas := []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"}
	if path != memoryDSN {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", config.ErrSQLiteOpen, err)
		}
	}

	s := &SQLite{db: db}
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err == nil {
		err = s.migrate(ctx, sub)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrSQLiteMigrate, err)
	}
	return s, nil
}

// migrate runs every .sql file not yet recorded in schema_migrations, in name order.
func (s *SQLite) migrate(ctx context.Context, files fs.FS) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename   TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return err
	}

	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	applied := make(map[string]bool)
	rows, err := s.db.QueryContext(ctx, "SELECT filename FROM schema_migrations")
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		applied[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, name := range names {
		if applied[name] {
			continue
		}
		body, err := fs.ReadFile(files, name)
		if err != nil {
			return err
		}
		err = s.withTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, string(body)); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			_, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name)
			return err
		})
		if err != nil {
			return err
		}
		slog.Info(config.MsgMigration, config.LogKeyComponent, config.CompStore, config.LogKeyFile, name)
	}
	return nil
}

// withTx commits when fn returns nil and rolls back otherwise, including on panic.
func (s *SQLite) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrTxBegin, err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrTxCommit, err)
	}
	return nil
}

func (s *SQLite) List(ctx context.Context) ([]engine.ContactRecord, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, phone FROM contacts ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []engine.ContactRecord{}
	for rows.Next() {
		var rec engine.ContactRecord
		if err := rows.Scan(&rec.Name, &rec.Phone); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLite) Get(ctx context.Context, name string) (engine.ContactRecord, error) {
	rec := engine.ContactRecord{Name: name}
	err := s.db.QueryRowContext(ctx, "SELECT phone FROM contacts WHERE name = ?", name).Scan(&rec.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.ContactRecord{}, engine.ErrNotFound
	}
	if err != nil {
		return engine.ContactRecord{}, err
	}
	return rec, nil
}

func (s *SQLite) Upsert(ctx context.Context, rec engine.ContactRecord) error {
	return upsertRow(ctx, s.db, rec)
}

func (s *SQLite) Delete(ctx context.Context, name string) error {
	return deleteRow(ctx, s.db, name)
}

// Rename deletes the old row and writes the new one in one transaction.
func (s *SQLite) Rename(ctx context.Context, oldName string, rec engine.ContactRecord) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := deleteRow(ctx, tx, oldName); err != nil {
			return err
		}
		return upsertRow(ctx, tx, rec)
	})
}

func (s *SQLite) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLite) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreClose, err)
	}
	return nil
}

func upsertRow(ctx context.Context, q querier, rec engine.ContactRecord) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO contacts (name, phone) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET phone = excluded.phone, updated_at = CURRENT_TIMESTAMP`,
		rec.Name, rec.Phone)
	return err
}

func deleteRow(ctx context.Context, q querier, name string) error {
	_, err := q.ExecContext(ctx, "DELETE FROM contacts WHERE name = ?", name)
	return err
}
