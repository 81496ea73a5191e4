package storage

import (
	"context"
	"fmt"
	"time"

	"punch/internal/client/model"
)

// AddWaitlistEntry records entry unless its email is already present.
// It reports whether a new row was written.
func (s *Store) AddWaitlistEntry(ctx context.Context, entry model.WaitlistEntry) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO waitlist_entries (email, created_at) VALUES (?, ?) ON CONFLICT(email) DO NOTHING`,
		entry.Email, entry.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return false, fmt.Errorf("failed to insert waitlist entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n == 1, nil
}

func (s *Store) ListWaitlistEntries(ctx context.Context) ([]model.WaitlistEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT email, created_at FROM waitlist_entries ORDER BY created_at, email`)
	if err != nil {
		return nil, fmt.Errorf("failed to select waitlist entries: %w", err)
	}
	defer rows.Close()

	var result []model.WaitlistEntry
	for rows.Next() {
		var (
			entry     model.WaitlistEntry
			createdAt string
		)
		if err := rows.Scan(&entry.Email, &createdAt); err != nil {
			return nil, err
		}
		if entry.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse waitlist created_at: %w", err)
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
