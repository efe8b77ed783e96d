package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"support-be/internal/domain"
	"support-be/pkg/database"
)

type PostgresEscalationRepository struct {
	db *database.PostgresDB
}

func NewPostgresEscalationRepository(db *database.PostgresDB) *PostgresEscalationRepository {
	return &PostgresEscalationRepository{db: db}
}

// GetBySession retrieves the escalation record for a session
func (r *PostgresEscalationRepository) GetBySession(ctx context.Context, sessionID string) (*domain.Escalation, error) {
	var esc domain.Escalation
	query := `
		SELECT id, session_id, user_id, user_email, user_name, status, escalated_at
		FROM escalations
		WHERE session_id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, sessionID).Scan(
		&esc.ID,
		&esc.SessionID,
		&esc.UserID,
		&esc.UserEmail,
		&esc.UserName,
		&esc.Status,
		&esc.EscalatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get escalation: %w", err)
	}

	return &esc, nil
}

// CreateIfAbsent inserts the escalation unless the session already has one.
// ON CONFLICT DO NOTHING makes the create-or-read race-free: under concurrent
// escalations of one session exactly one insert wins and the losers read the
// surviving row.
func (r *PostgresEscalationRepository) CreateIfAbsent(ctx context.Context, esc *domain.Escalation) (*domain.Escalation, bool, error) {
	query := `
		INSERT INTO escalations (id, session_id, user_id, user_email, user_name, status, escalated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id) DO NOTHING
		RETURNING id
	`

	var insertedID string
	err := r.db.Pool.QueryRow(ctx, query,
		esc.ID,
		esc.SessionID,
		esc.UserID,
		esc.UserEmail,
		esc.UserName,
		esc.Status,
		esc.EscalatedAt,
	).Scan(&insertedID)

	if err == nil {
		return esc, true, nil
	}
	if err != pgx.ErrNoRows {
		return nil, false, fmt.Errorf("failed to create escalation: %w", err)
	}

	// Lost the race or the record predates this request: read the survivor
	existing, err := r.GetBySession(ctx, esc.SessionID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("escalation for session %s vanished after conflict", esc.SessionID)
	}
	return existing, false, nil
}

// Count returns the total number of escalation records
func (r *PostgresEscalationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM escalations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count escalations: %w", err)
	}
	return count, nil
}

// CountByStatus counts escalations in the given status
func (r *PostgresEscalationRepository) CountByStatus(ctx context.Context, status domain.EscalationStatus) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM escalations WHERE status = $1`
	if err := r.db.Pool.QueryRow(ctx, query, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count escalations by status: %w", err)
	}
	return count, nil
}

// List retrieves escalations for the back-office view, newest first
func (r *PostgresEscalationRepository) List(ctx context.Context, filter domain.EscalationFilter) ([]*domain.Escalation, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT id, session_id, user_id, user_email, user_name, status, escalated_at
		FROM escalations
		WHERE ($1 = '' OR status = $1)
		ORDER BY escalated_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, string(filter.Status), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list escalations: %w", err)
	}
	defer rows.Close()

	var escalations []*domain.Escalation
	for rows.Next() {
		var esc domain.Escalation
		if err := rows.Scan(&esc.ID, &esc.SessionID, &esc.UserID, &esc.UserEmail, &esc.UserName, &esc.Status, &esc.EscalatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan escalation: %w", err)
		}
		escalations = append(escalations, &esc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read escalations: %w", err)
	}

	return escalations, nil
}
