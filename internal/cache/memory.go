package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"flashdeck/internal/models"
)

// Memory is the in-process cache used when REDIS_URL is not configured.
type Memory struct {
	c *gocache.Cache
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{c: gocache.New(ttl, 2*ttl)}
}

func (m *Memory) Get(_ context.Context, topic string) ([]models.Flashcard, bool) {
	v, ok := m.c.Get(listingKey(topic))
	if !ok {
		return nil, false
	}
	cards, ok := v.([]models.Flashcard)
	if !ok {
		return nil, false
	}
	return append([]models.Flashcard(nil), cards...), true
}

func (m *Memory) Set(_ context.Context, topic string, cards []models.Flashcard) {
	m.c.SetDefault(listingKey(topic), append([]models.Flashcard{}, cards...))
}

func (m *Memory) Invalidate(context.Context) error {
	m.c.Flush()
	return nil
}

func listingKey(topic string) string {
	return "topic:" + topic
}
