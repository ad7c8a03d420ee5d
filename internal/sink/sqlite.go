package sink

import (
	"context"

	"companion-cli/internal/model"
	"companion-cli/internal/store"
)

// SQLite writes items to the local inbox database.
type SQLite struct {
	st *store.Store
}

func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	st, err := store.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return &SQLite{st: st}, nil
}

func (s *SQLite) Submit(ctx context.Context, it model.Item) error {
	return s.st.Insert(ctx, it)
}

func (s *SQLite) Close() error { return s.st.Close() }
