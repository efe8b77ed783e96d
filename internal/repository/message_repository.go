package repository

import (
	"context"
	"fmt"
	"time"

	"support-be/internal/domain"
	"support-be/pkg/database"
)

type PostgresMessageRepository struct {
	db *database.PostgresDB
}

func NewPostgresMessageRepository(db *database.PostgresDB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

// ListBySession retrieves message projections for a session, oldest first
func (r *PostgresMessageRepository) ListBySession(ctx context.Context, sessionID string) ([]*domain.ChatMessage, error) {
	query := `
		SELECT id, session_id, COALESCE(user_id, ''), created_at, escalated
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list session messages: %w", err)
	}
	defer rows.Close()

	var messages []*domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.UserID, &msg.CreatedAt, &msg.Escalated); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read session messages: %w", err)
	}

	return messages, nil
}

// CountSince counts messages created at or after the given instant
func (r *PostgresMessageRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM chat_messages WHERE created_at >= $1`

	if err := r.db.Pool.QueryRow(ctx, query, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count messages since %s: %w", since.Format(time.RFC3339), err)
	}
	return count, nil
}

// DistinctCounts derives session and user counts by scanning raw messages
func (r *PostgresMessageRepository) DistinctCounts(ctx context.Context) (int64, int64, error) {
	var sessions, users int64
	query := `
		SELECT COUNT(DISTINCT session_id),
		       COUNT(DISTINCT user_id) FILTER (WHERE user_id IS NOT NULL AND user_id <> '')
		FROM chat_messages
	`

	if err := r.db.Pool.QueryRow(ctx, query).Scan(&sessions, &users); err != nil {
		return 0, 0, fmt.Errorf("failed to count distinct sessions and users: %w", err)
	}
	return sessions, users, nil
}

// MarkEscalated flags a single message as escalated
func (r *PostgresMessageRepository) MarkEscalated(ctx context.Context, messageID string) error {
	query := `UPDATE chat_messages SET escalated = TRUE WHERE id = $1`

	if _, err := r.db.Pool.Exec(ctx, query, messageID); err != nil {
		return fmt.Errorf("failed to mark message escalated: %w", err)
	}
	return nil
}
