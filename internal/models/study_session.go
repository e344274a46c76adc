package models

import "time"

// StudySession records the notes a batch of flashcards was generated from.
type StudySession struct {
	ID           int64     `json:"id"`
	SessionName  string    `json:"session_name"`
	OriginalText string    `json:"original_text"`
	CreatedAt    time.Time `json:"created_at"`
}
