// Package cache holds GET /get_flashcards results between generations.
package cache

import (
	"context"
	"time"

	"flashdeck/internal/models"
)

// DefaultTTL bounds how long a listing is served without touching Postgres.
const DefaultTTL = 5 * time.Minute

// FlashcardCache stores card listings keyed by topic filter ("" = all).
// Invalidate drops every listing; it runs after each successful generation.
type FlashcardCache interface {
	Get(ctx context.Context, topic string) ([]models.Flashcard, bool)
	Set(ctx context.Context, topic string, cards []models.Flashcard)
	Invalidate(ctx context.Context) error
}
