package db

import (
	"context"
	"fmt"
	"time"
)

// ContactMessage is a contact form submission and its delivery outcome.
type ContactMessage struct {
	ID        int64     `json:"id"`
	Source    string    `json:"source"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Delivered bool      `json:"delivered"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveMessage stores a submission and returns its id.
func (d *DB) SaveMessage(ctx context.Context, m ContactMessage) (int64, error) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	res, err := d.ExecContext(ctx, `
		INSERT INTO contact_messages (source, name, email, subject, message, delivered, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, m.Source, m.Name, m.Email, m.Subject, m.Message, m.Delivered, m.Error, stamp(m.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("saving contact message: %w", err)
	}
	return res.LastInsertId()
}

// Messages returns the most recent submissions, newest first.
func (d *DB) Messages(ctx context.Context, limit int) ([]ContactMessage, error) {
	rows, err := d.QueryContext(ctx, `
		SELECT id, source, name, email, subject, message, delivered, error, created_at
		FROM contact_messages
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying contact messages: %w", err)
	}
	defer rows.Close()

	var out []ContactMessage
	for rows.Next() {
		var m ContactMessage
		if err := rows.Scan(&m.ID, &m.Source, &m.Name, &m.Email, &m.Subject, &m.Message, &m.Delivered, &m.Error, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning contact message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteMessage removes a submission. It reports whether a row existed.
func (d *DB) DeleteMessage(ctx context.Context, id int64) (bool, error) {
	res, err := d.ExecContext(ctx, `DELETE FROM contact_messages WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting contact message %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
