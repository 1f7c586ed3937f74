package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetFlag reads one visit flag of a session.
func (d *DB) GetFlag(ctx context.Context, session, key string) (string, bool, error) {
	var v string
	err := d.QueryRowContext(ctx,
		`SELECT value FROM visit_flags WHERE session_id = ? AND key = ?`, session, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading flag %s: %w", key, err)
	}
	return v, true, nil
}

// SetFlag writes one visit flag of a session.
func (d *DB) SetFlag(ctx context.Context, session, key, value string) error {
	_, err := d.ExecContext(ctx, `
		INSERT INTO visit_flags (session_id, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, session, key, value, stamp(time.Now()))
	if err != nil {
		return fmt.Errorf("writing flag %s: %w", key, err)
	}
	return nil
}

// DeleteFlag removes one visit flag of a session.
func (d *DB) DeleteFlag(ctx context.Context, session, key string) error {
	_, err := d.ExecContext(ctx, `DELETE FROM visit_flags WHERE session_id = ? AND key = ?`, session, key)
	if err != nil {
		return fmt.Errorf("deleting flag %s: %w", key, err)
	}
	return nil
}

// PurgeFlags drops flags not written since the cutoff.
func (d *DB) PurgeFlags(ctx context.Context, before time.Time) (int64, error) {
	res, err := d.ExecContext(ctx, `DELETE FROM visit_flags WHERE updated_at < ?`, stamp(before))
	if err != nil {
		return 0, fmt.Errorf("purging visit flags: %w", err)
	}
	return res.RowsAffected()
}
