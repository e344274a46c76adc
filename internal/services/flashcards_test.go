package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flashdeck/internal/cache"
	"flashdeck/internal/models"
)

type memoryRepo struct {
	cards   []models.Flashcard
	failOn  string
	listErr error
	lists   int
}

func (r *memoryRepo) Create(ctx context.Context, c *models.Flashcard) error {
	if c.Question == r.failOn {
		return errors.New("insert failed")
	}
	now := time.Now()
	c.ID = int64(len(r.cards) + 1)
	c.CreatedAt = &now
	r.cards = append(r.cards, *c)
	return nil
}

func (r *memoryRepo) List(ctx context.Context, topic string) ([]models.Flashcard, error) {
	r.lists++
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.Flashcard
	for i := len(r.cards) - 1; i >= 0; i-- {
		if topic == "" || r.cards[i].Topic == topic {
			out = append(out, r.cards[i])
		}
	}
	return out, nil
}

type memorySessions struct {
	saved []models.StudySession
	err   error
}

func (s *memorySessions) Create(ctx context.Context, st *models.StudySession) error {
	if s.err != nil {
		return s.err
	}
	st.ID = int64(len(s.saved) + 1)
	s.saved = append(s.saved, *st)
	return nil
}

type fixedGenerator []models.Flashcard

func (g fixedGenerator) Generate(ctx context.Context, text string) []models.Flashcard {
	return append([]models.Flashcard(nil), g...)
}

func newService(repo *memoryRepo, sessions *memorySessions, gen Generator) *FlashcardService {
	return NewFlashcardService(repo, sessions, gen, cache.NewMemory(time.Minute), zap.NewNop())
}

func TestGenerate_RejectsBlankText(t *testing.T) {
	svc := newService(&memoryRepo{}, &memorySessions{}, fixedGenerator{})

	for _, text := range []string{"", "   \n\t"} {
		_, err := svc.Generate(context.Background(), text, "Biology")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "No text provided", verr.Message)
	}
}

func TestGenerate_SavesCardsAndSession(t *testing.T) {
	repo := &memoryRepo{}
	sessions := &memorySessions{}
	svc := newService(repo, sessions, fixedGenerator{
		{Question: "Q1", Answer: "A1"},
		{Question: "Q2", Answer: "A2", Difficulty: models.DifficultyHard},
	})

	resp, err := svc.Generate(context.Background(), "some notes", "")
	require.NoError(t, err)

	assert.True(t, resp.Success)
	require.Len(t, resp.Flashcards, 2)
	assert.Equal(t, int64(1), resp.Flashcards[0].ID)
	assert.Equal(t, models.DefaultTopic, resp.Flashcards[0].Topic)
	assert.Equal(t, models.DifficultyMedium, resp.Flashcards[0].Difficulty)
	assert.Equal(t, models.DifficultyHard, resp.Flashcards[1].Difficulty)
	assert.Nil(t, resp.Flashcards[0].CreatedAt)

	require.Len(t, sessions.saved, 1)
	assert.Equal(t, "Session - General", sessions.saved[0].SessionName)
	assert.Equal(t, "some notes", sessions.saved[0].OriginalText)
	assert.Equal(t, int64(1), resp.SessionID)
}

func TestGenerate_SkipsCardsThatFailToSave(t *testing.T) {
	repo := &memoryRepo{failOn: "bad"}
	svc := newService(repo, &memorySessions{}, fixedGenerator{
		{Question: "good", Answer: "a"},
		{Question: "bad", Answer: "a"},
	})

	resp, err := svc.Generate(context.Background(), "notes", "Physics")
	require.NoError(t, err)
	require.Len(t, resp.Flashcards, 1)
	assert.Equal(t, "good", resp.Flashcards[0].Question)
}

func TestGenerate_SessionFailureStillSucceeds(t *testing.T) {
	svc := newService(&memoryRepo{}, &memorySessions{err: errors.New("down")}, fixedGenerator{
		{Question: "Q", Answer: "A"},
	})

	resp, err := svc.Generate(context.Background(), "notes", "Physics")
	require.NoError(t, err)
	assert.Zero(t, resp.SessionID)
	assert.Len(t, resp.Flashcards, 1)
}

func TestGenerate_NoCardsIsEmptyList(t *testing.T) {
	svc := newService(&memoryRepo{}, &memorySessions{}, fixedGenerator{})

	resp, err := svc.Generate(context.Background(), "short", "Physics")
	require.NoError(t, err)
	assert.NotNil(t, resp.Flashcards)
	assert.Empty(t, resp.Flashcards)
}

func TestList_CachesUntilNextGeneration(t *testing.T) {
	ctx := context.Background()
	repo := &memoryRepo{}
	svc := newService(repo, &memorySessions{}, fixedGenerator{{Question: "Q", Answer: "A"}})

	_, err := svc.Generate(ctx, "notes", "Biology")
	require.NoError(t, err)

	first, err := svc.List(ctx, "")
	require.NoError(t, err)
	_, err = svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, first, 1)
	assert.Equal(t, 1, repo.lists)

	_, err = svc.Generate(ctx, "more notes", "Physics")
	require.NoError(t, err)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.lists)
	require.Len(t, all, 2)
	assert.Equal(t, "Physics", all[0].Topic)

	bio, err := svc.List(ctx, "Biology")
	require.NoError(t, err)
	require.Len(t, bio, 1)
}

func TestList_PropagatesStorageErrors(t *testing.T) {
	svc := newService(&memoryRepo{listErr: errors.New("db down")}, &memorySessions{}, fixedGenerator{})

	_, err := svc.List(context.Background(), "")
	assert.Error(t, err)
}
