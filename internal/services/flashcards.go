package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"flashdeck/internal/cache"
	"flashdeck/internal/models"
)

// ValidationError is a caller mistake; handlers map it to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var ErrNoText = &ValidationError{Message: "No text provided"}

type FlashcardRepository interface {
	Create(ctx context.Context, c *models.Flashcard) error
	List(ctx context.Context, topic string) ([]models.Flashcard, error)
}

type StudySessionRepository interface {
	Create(ctx context.Context, s *models.StudySession) error
}

type Generator interface {
	Generate(ctx context.Context, text string) []models.Flashcard
}

type FlashcardService struct {
	cards    FlashcardRepository
	sessions StudySessionRepository
	gen      Generator
	cache    cache.FlashcardCache
	log      *zap.Logger
}

func NewFlashcardService(
	cards FlashcardRepository,
	sessions StudySessionRepository,
	gen Generator,
	listings cache.FlashcardCache,
	log *zap.Logger,
) *FlashcardService {
	return &FlashcardService{
		cards:    cards,
		sessions: sessions,
		gen:      gen,
		cache:    listings,
		log:      log,
	}
}

// Generate creates cards from text, stores each one, and records the notes as
// a study session. A card that fails to save is left out of the response; a
// study session that fails to save leaves SessionID zero.
func (s *FlashcardService) Generate(ctx context.Context, text, topic string) (*models.GenerateFlashcardsResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoText
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = models.DefaultTopic
	}

	generated := s.gen.Generate(ctx, text)

	saved := make([]models.Flashcard, 0, len(generated))
	for _, card := range generated {
		card.Topic = topic
		if !card.Difficulty.Valid() {
			card.Difficulty = models.DifficultyMedium
		}
		if err := s.cards.Create(ctx, &card); err != nil {
			s.log.Error("failed to save flashcard", zap.String("topic", topic), zap.Error(err))
			continue
		}
		card.CreatedAt = nil
		saved = append(saved, card)
	}

	session := &models.StudySession{
		SessionName:  "Session - " + topic,
		OriginalText: text,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		s.log.Error("failed to save study session", zap.String("topic", topic), zap.Error(err))
		session.ID = 0
	}

	if len(saved) > 0 {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn("failed to invalidate flashcard cache", zap.Error(err))
		}
	}

	s.log.Info("flashcards generated",
		zap.String("topic", topic),
		zap.Int("generated", len(generated)),
		zap.Int("saved", len(saved)),
		zap.Int64("session_id", session.ID))

	return &models.GenerateFlashcardsResponse{
		Success:    true,
		Flashcards: saved,
		SessionID:  session.ID,
	}, nil
}

// List returns stored cards newest first, optionally restricted to one topic.
func (s *FlashcardService) List(ctx context.Context, topic string) ([]models.Flashcard, error) {
	if cards, ok := s.cache.Get(ctx, topic); ok {
		return cards, nil
	}
	cards, err := s.cards.List(ctx, topic)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, topic, cards)
	return cards, nil
}
