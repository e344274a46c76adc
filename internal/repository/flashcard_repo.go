package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"flashdeck/internal/models"
)

// DB is the subset of pgxpool.Pool the repositories need.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type FlashcardRepo struct {
	pool DB
}

func NewFlashcardRepo(pool DB) *FlashcardRepo {
	return &FlashcardRepo{pool: pool}
}

// Create inserts c and fills in its id and created_at.
func (r *FlashcardRepo) Create(ctx context.Context, c *models.Flashcard) error {
	if c.Difficulty == "" {
		c.Difficulty = models.DifficultyMedium
	}

	query := `INSERT INTO flashcards (question, answer, topic, difficulty)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at`

	if err := r.pool.QueryRow(ctx, query,
		c.Question, c.Answer, c.Topic, string(c.Difficulty),
	).Scan(&c.ID, &c.CreatedAt); err != nil {
		return fmt.Errorf("insert flashcard: %w", err)
	}
	return nil
}

// List returns every card, or only those whose topic equals topic when it is
// non-empty, newest first.
func (r *FlashcardRepo) List(ctx context.Context, topic string) ([]models.Flashcard, error) {
	query := `SELECT id, question, answer, COALESCE(topic, ''), COALESCE(difficulty, 'medium'), created_at
		FROM flashcards`
	var args []any
	if topic != "" {
		query += ` WHERE topic = $1`
		args = append(args, topic)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query flashcards: %w", err)
	}
	defer rows.Close()

	cards := []models.Flashcard{}
	for rows.Next() {
		var c models.Flashcard
		var difficulty string
		if err := rows.Scan(&c.ID, &c.Question, &c.Answer, &c.Topic, &difficulty, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan flashcard: %w", err)
		}
		c.Difficulty = models.Difficulty(difficulty)
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flashcards: %w", err)
	}
	return cards, nil
}
