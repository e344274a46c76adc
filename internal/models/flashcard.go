package models

import (
	"strings"
	"time"
)

// DefaultTopic is used for cards that arrive without a topic.
const DefaultTopic = "General"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulty levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Flashcard is immutable once received. The service provides no stable id to
// the viewer, so lookups use the (topic, question) pair.
type Flashcard struct {
	ID         int64      `json:"id,omitempty"`
	Question   string     `json:"question"`
	Answer     string     `json:"answer"`
	Topic      string     `json:"topic"`
	Difficulty Difficulty `json:"difficulty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

// TopicOrDefault returns the card's topic, or DefaultTopic when it is blank.
func (c Flashcard) TopicOrDefault() string {
	if strings.TrimSpace(c.Topic) == "" {
		return DefaultTopic
	}
	return c.Topic
}

// WithDefaults fills in a missing difficulty. The topic is kept as received so
// that callers can still tell "no topic" apart from "General".
func (c Flashcard) WithDefaults() Flashcard {
	if !c.Difficulty.Valid() {
		c.Difficulty = DifficultyMedium
	}
	return c
}

// SameCard reports whether two cards share the (topic, question) identity.
func (c Flashcard) SameCard(other Flashcard) bool {
	return c.TopicOrDefault() == other.TopicOrDefault() && c.Question == other.Question
}

type GenerateFlashcardsRequest struct {
	Text  string `json:"text"`
	Topic string `json:"topic"`
}

type GenerateFlashcardsResponse struct {
	Success    bool        `json:"success"`
	Flashcards []Flashcard `json:"flashcards"`
	SessionID  int64       `json:"session_id,omitempty"`
	Error      string      `json:"error,omitempty"`
}

type GetFlashcardsResponse struct {
	Flashcards []Flashcard `json:"flashcards"`
	Error      string      `json:"error,omitempty"`
}
