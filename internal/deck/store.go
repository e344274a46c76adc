// Package deck holds the viewer's working set of flashcards: the ordered deck,
// the position of the card being viewed and whether it is showing its answer.
package deck

import (
	"errors"
	"math/rand/v2"

	"flashdeck/internal/models"
)

// ErrEmptyDeck is returned by Shuffle when there is nothing to shuffle.
var ErrEmptyDeck = errors.New("no flashcards to shuffle")

// Store is a pure in-memory state holder. It is not safe for concurrent use;
// the session controller serialises every call.
type Store struct {
	cards    []models.Flashcard
	index    int
	flipped  bool
	rng      *rand.Rand
	onChange func()
}

type Option func(*Store)

// WithRand makes shuffling deterministic, mostly for tests.
func WithRand(r *rand.Rand) Option {
	return func(s *Store) { s.rng = r }
}

func NewStore(opts ...Option) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers the callback fired after every mutation.
func (s *Store) OnChange(fn func()) {
	s.onChange = fn
}

func (s *Store) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// Replace swaps in a new deck wholesale and rewinds to its first card.
func (s *Store) Replace(cards []models.Flashcard) {
	s.cards = make([]models.Flashcard, len(cards))
	copy(s.cards, cards)
	s.index = 0
	s.flipped = false
	s.changed()
}

func (s *Store) Next() {
	if len(s.cards) == 0 {
		return
	}
	s.index = (s.index + 1) % len(s.cards)
	s.flipped = false
	s.changed()
}

func (s *Store) Previous() {
	if len(s.cards) == 0 {
		return
	}
	if s.index == 0 {
		s.index = len(s.cards) - 1
	} else {
		s.index--
	}
	s.flipped = false
	s.changed()
}

// Shuffle applies a Fisher-Yates permutation in place and rewinds to the
// first card. An empty deck is left untouched and ErrEmptyDeck is returned.
func (s *Store) Shuffle() error {
	if len(s.cards) == 0 {
		return ErrEmptyDeck
	}
	for i := len(s.cards) - 1; i > 0; i-- {
		j := s.intN(i + 1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
	s.index = 0
	s.flipped = false
	s.changed()
	return nil
}

func (s *Store) intN(n int) int {
	if s.rng != nil {
		return s.rng.IntN(n)
	}
	return rand.IntN(n)
}

// Reset returns to the first card without touching deck order.
func (s *Store) Reset() {
	s.index = 0
	s.flipped = false
	s.changed()
}

func (s *Store) ToggleFlip() {
	s.flipped = !s.flipped
	s.changed()
}

// Jump moves to position i. Out-of-range positions are ignored.
func (s *Store) Jump(i int) bool {
	if i < 0 || i >= len(s.cards) {
		return false
	}
	s.index = i
	s.flipped = false
	s.changed()
	return true
}

// Current returns the card being viewed, or false when the deck is empty.
func (s *Store) Current() (models.Flashcard, bool) {
	if len(s.cards) == 0 {
		return models.Flashcard{}, false
	}
	return s.cards[s.index], true
}

// Index returns the current position; ok is false when the deck is empty and
// the position is undefined.
func (s *Store) Index() (idx int, ok bool) {
	if len(s.cards) == 0 {
		return 0, false
	}
	return s.index, true
}

func (s *Store) Flipped() bool { return s.flipped }

func (s *Store) Len() int { return len(s.cards) }

// Cards returns a copy of the deck in its current order.
func (s *Store) Cards() []models.Flashcard {
	out := make([]models.Flashcard, len(s.cards))
	copy(out, s.cards)
	return out
}
