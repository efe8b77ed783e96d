package repository

import (
	"context"
	"fmt"

	"support-be/internal/domain"
	"support-be/pkg/database"
)

type PostgresSessionRepository struct {
	db *database.PostgresDB
}

func NewPostgresSessionRepository(db *database.PostgresDB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

// ApplyEscalation merge-writes the escalation projection onto the session
// summary. The upsert only touches escalation columns, so unrelated fields
// written by other paths survive.
func (r *PostgresSessionRepository) ApplyEscalation(ctx context.Context, sessionID, userID string, patch domain.SessionEscalationPatch) error {
	query := `
		INSERT INTO chat_sessions (session_id, user_id, is_escalated, escalation_status, escalated_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (session_id) DO UPDATE SET
			is_escalated      = EXCLUDED.is_escalated,
			escalation_status = EXCLUDED.escalation_status,
			escalated_at      = EXCLUDED.escalated_at,
			updated_at        = NOW()
	`

	_, err := r.db.Pool.Exec(ctx, query,
		sessionID,
		userID,
		patch.IsEscalated,
		patch.EscalationStatus,
		patch.EscalatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to apply escalation to session: %w", err)
	}
	return nil
}

// Count returns the total number of session summaries
func (r *PostgresSessionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM chat_sessions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

// CountDistinctUsers counts distinct non-empty session owners
func (r *PostgresSessionRepository) CountDistinctUsers(ctx context.Context) (int64, error) {
	var count int64
	query := `
		SELECT COUNT(DISTINCT user_id)
		FROM chat_sessions
		WHERE user_id IS NOT NULL AND user_id <> ''
	`
	if err := r.db.Pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count distinct users: %w", err)
	}
	return count, nil
}
