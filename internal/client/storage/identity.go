package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"punch/internal/client/model"
)

// GetIdentity returns ErrNotFound when nobody is signed in.
func (s *Store) GetIdentity(ctx context.Context) (*model.Identity, error) {
	var (
		identity  model.Identity
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, name, token, created_at FROM identity WHERE id = 1`).
		Scan(&identity.UserID, &identity.Name, &identity.Token, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select identity: %w", err)
	}
	identity.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse identity created_at: %w", err)
	}
	return &identity, nil
}

// SaveIdentity replaces the current identity.
func (s *Store) SaveIdentity(ctx context.Context, identity *model.Identity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO identity (id, user_id, name, token, created_at) VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			name = excluded.name,
			token = excluded.token,
			created_at = excluded.created_at`,
		identity.UserID, identity.Name, identity.Token, identity.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to save identity: %w", err)
	}
	return nil
}

// DeleteIdentity signs out. Transcripts are left in place.
func (s *Store) DeleteIdentity(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM identity WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to delete identity: %w", err)
	}
	return nil
}
