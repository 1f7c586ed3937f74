package db

import (
	"context"
	"fmt"
	"time"
)

// Visitor is one tracked page view. The client IP is only ever stored hashed.
type Visitor struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// RecordVisit stores a page view. A zero timestamp means now.
func (d *DB) RecordVisit(ctx context.Context, v Visitor) error {
	if v.Timestamp.IsZero() {
		v.Timestamp = time.Now()
	}
	_, err := d.ExecContext(ctx, `
		INSERT INTO visitors (hashed_ip, user_agent, path, timestamp)
		VALUES (?, ?, ?, ?)
	`, v.HashedIP, v.UserAgent, v.Path, stamp(v.Timestamp))
	if err != nil {
		return fmt.Errorf("recording visitor: %w", err)
	}
	return nil
}

// Visitors returns the most recent page views, newest first.
func (d *DB) Visitors(ctx context.Context, limit int) ([]Visitor, error) {
	rows, err := d.QueryContext(ctx, `
		SELECT id, hashed_ip, user_agent, path, timestamp
		FROM visitors
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying visitors: %w", err)
	}
	defer rows.Close()

	var out []Visitor
	for rows.Next() {
		var v Visitor
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &v.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning visitor: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// CleanupVisitors deletes page views older than the cutoff and reports how many went.
func (d *DB) CleanupVisitors(ctx context.Context, before time.Time) (int64, error) {
	res, err := d.ExecContext(ctx, `DELETE FROM visitors WHERE timestamp < ?`, stamp(before))
	if err != nil {
		return 0, fmt.Errorf("cleaning up visitors: %w", err)
	}
	return res.RowsAffected()
}

// PathCount is the number of views of one path.
type PathCount struct {
	Path  string `json:"path"`
	Views int64  `json:"views"`
}

// Stats summarises visitors and contact messages for the admin dashboard.
type Stats struct {
	TotalVisitors     int64       `json:"total_visitors"`
	UniqueVisitors    int64       `json:"unique_visitors"`
	VisitorsToday     int64       `json:"visitors_today"`
	VisitorsThisWeek  int64       `json:"visitors_this_week"`
	TotalMessages     int64       `json:"total_messages"`
	DeliveredMessages int64       `json:"delivered_messages"`
	TopPaths          []PathCount `json:"top_paths"`
	RecentVisitors    []Visitor   `json:"recent_visitors"`
}

// Stats computes dashboard statistics relative to now.
func (d *DB) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	s := &Stats{}
	dayStart := time.Date(now.UTC().Year(), now.UTC().Month(), now.UTC().Day(), 0, 0, 0, 0, time.UTC)

	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&s.TotalVisitors, `SELECT COUNT(*) FROM visitors`, nil},
		{&s.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil},
		{&s.VisitorsToday, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{stamp(dayStart)}},
		{&s.VisitorsThisWeek, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{stamp(now.Add(-7 * 24 * time.Hour))}},
		{&s.TotalMessages, `SELECT COUNT(*) FROM contact_messages`, nil},
		{&s.DeliveredMessages, `SELECT COUNT(*) FROM contact_messages WHERE delivered = 1`, nil},
	}
	for _, c := range counts {
		if err := d.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("computing stats: %w", err)
		}
	}

	rows, err := d.QueryContext(ctx, `
		SELECT path, COUNT(*) AS views
		FROM visitors
		GROUP BY path
		ORDER BY views DESC, path ASC
		LIMIT 10
	`)
	if err != nil {
		return nil, fmt.Errorf("querying top paths: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var pc PathCount
		if err := rows.Scan(&pc.Path, &pc.Views); err != nil {
			return nil, fmt.Errorf("scanning top path: %w", err)
		}
		s.TopPaths = append(s.TopPaths, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.RecentVisitors, err = d.Visitors(ctx, 50)
	if err != nil {
		return nil, err
	}
	return s, nil
}
