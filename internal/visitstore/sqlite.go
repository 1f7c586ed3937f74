package visitstore

import (
	"context"

	"github.com/BernardRegaspi/portfolio/internal/db"
	"github.com/BernardRegaspi/portfolio/internal/preloader"
)

// SQLite keeps flags in the visit_flags table.
type SQLite struct {
	db *db.DB
}

// NewSQLite uses an already migrated database. Closing the backend does not
// close the database; its owner does.
func NewSQLite(d *db.DB) *SQLite {
	return &SQLite{db: d}
}

func (s *SQLite) Scope(sessionID string) preloader.Storage {
	if sessionID == "" {
		return emptySession()
	}
	return sqliteScope{db: s.db, id: sessionID}
}

func (s *SQLite) Close() error { return nil }

type sqliteScope struct {
	db *db.DB
	id string
}

func (s sqliteScope) Get(ctx context.Context, key string) (string, bool, error) {
	return s.db.GetFlag(ctx, s.id, key)
}

func (s sqliteScope) Set(ctx context.Context, key, value string) error {
	return s.db.SetFlag(ctx, s.id, key, value)
}

func (s sqliteScope) Delete(ctx context.Context, key string) error {
	return s.db.DeleteFlag(ctx, s.id, key)
}
