package storage

import (
	"context"
	"fmt"

	"punch/internal/client/model"
)

// LoadTranscript returns the messages saved for userID in order. An
// unknown user has an empty transcript.
func (s *Store) LoadTranscript(ctx context.Context, userID string) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, content, timestamp FROM transcript_messages WHERE user_id = ? ORDER BY seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select transcript: %w", err)
	}
	defer rows.Close()

	var result []model.Message
	for rows.Next() {
		var (
			item model.Message
			role string
		)
		if err := rows.Scan(&item.ID, &role, &item.Content, &item.Timestamp); err != nil {
			return nil, err
		}
		item.Role = model.Role(role)
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SaveTranscript replaces the stored transcript for userID with messages.
func (s *Store) SaveTranscript(ctx context.Context, userID string, messages []model.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transcript tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transcript_messages WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear transcript: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transcript_messages (user_id, seq, id, role, content, timestamp) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare transcript insert: %w", err)
	}
	defer stmt.Close()

	for i, m := range messages {
		if _, err := stmt.ExecContext(ctx, userID, i, m.ID, string(m.Role), m.Content, m.Timestamp); err != nil {
			return fmt.Errorf("failed to insert transcript message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transcript: %w", err)
	}
	return nil
}

func (s *Store) DeleteTranscript(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM transcript_messages WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete transcript: %w", err)
	}
	return nil
}
