package repository

import (
	"context"
	"fmt"

	"flashdeck/internal/models"
)

type StudySessionRepo struct {
	pool DB
}

func NewStudySessionRepo(pool DB) *StudySessionRepo {
	return &StudySessionRepo{pool: pool}
}

// Create records the notes a batch of cards was generated from.
func (r *StudySessionRepo) Create(ctx context.Context, s *models.StudySession) error {
	query := `INSERT INTO study_sessions (session_name, original_text)
		VALUES ($1, $2) RETURNING id, created_at`

	if err := r.pool.QueryRow(ctx, query, s.SessionName, s.OriginalText).Scan(&s.ID, &s.CreatedAt); err != nil {
		return fmt.Errorf("insert study session: %w", err)
	}
	return nil
}
