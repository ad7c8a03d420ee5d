package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"companion-cli/internal/model"

	_ "modernc.org/sqlite"
)

// SchemaVersion is bumped with every migration added to migrate.
const SchemaVersion = 1

// Store is the local inbox: a single sqlite file holding captured items.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the sqlite inbox at path.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store: missing sqlite path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the overlay write while `companion inbox` reads; busy_timeout avoids
	// "database is locked" when two processes race.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	_ = os.Chmod(path, 0o600)
	return &Store{db: db, path: path}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			status TEXT NOT NULL,
			kind TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			metadata_json TEXT NOT NULL,
			delegated INTEGER NOT NULL DEFAULT 0,
			created_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_items_status_created ON items(status, created_at_unixms);`,
		`CREATE INDEX IF NOT EXISTS idx_items_delegated ON items(delegated);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	_, err := db.ExecContext(ctx, `INSERT OR REPLACE INTO meta(k, v) VALUES('schema_version', ?)`, fmt.Sprint(SchemaVersion))
	return err
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Insert stores it. Inserting the same id twice is an error.
func (s *Store) Insert(ctx context.Context, it model.Item) error {
	meta, err := json.Marshal(it.Metadata)
	if err != nil {
		return err
	}
	delegated := 0
	if it.Metadata.Delegated {
		delegated = 1
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO items(id, content, status, kind, owner_id, metadata_json, delegated, created_at_unixms)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID, it.Content, string(it.Status), string(it.Kind), it.OwnerID, string(meta), delegated, it.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("store: insert item %s: %w", it.ID, err)
	}
	return nil
}

type ListFilter struct {
	Status        model.Status
	DelegatedOnly bool
	// Limit caps the result; zero means no cap.
	Limit int
}

// List returns items newest first.
func (s *Store) List(ctx context.Context, f ListFilter) ([]model.Item, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.DelegatedOnly {
		where = append(where, "delegated = 1")
	}
	q := `SELECT id, content, status, kind, owner_id, metadata_json, created_at_unixms FROM items`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at_unixms DESC, id DESC"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Item
	for rows.Next() {
		var (
			it       model.Item
			status   string
			kind     string
			metaJSON string
			created  int64
		)
		if err := rows.Scan(&it.ID, &it.Content, &status, &kind, &it.OwnerID, &metaJSON, &created); err != nil {
			return nil, err
		}
		it.Status = model.Status(status)
		it.Kind = model.Kind(kind)
		if err := json.Unmarshal([]byte(metaJSON), &it.Metadata); err != nil {
			return nil, fmt.Errorf("store: decode metadata of %s: %w", it.ID, err)
		}
		it.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n)
	return n, err
}
