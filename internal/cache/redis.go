package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"flashdeck/internal/models"
)

const versionKey = "flashcards:version"

// Redis keys listings under a generation counter. Invalidate bumps the
// counter, so stale listings are never read again and age out via TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration, log *zap.Logger) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl, log: log}
}

func (r *Redis) key(ctx context.Context, topic string) (string, error) {
	version, err := r.client.Get(ctx, versionKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return fmt.Sprintf("flashcards:v%d:%s", version, listingKey(topic)), nil
}

func (r *Redis) Get(ctx context.Context, topic string) ([]models.Flashcard, bool) {
	key, err := r.key(ctx, topic)
	if err != nil {
		r.log.Warn("cache version lookup failed", zap.Error(err))
		return nil, false
	}
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var cards []models.Flashcard
	if err := json.Unmarshal(data, &cards); err != nil {
		r.log.Warn("cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return cards, true
}

func (r *Redis) Set(ctx context.Context, topic string, cards []models.Flashcard) {
	key, err := r.key(ctx, topic)
	if err != nil {
		r.log.Warn("cache version lookup failed", zap.Error(err))
		return
	}
	data, err := json.Marshal(cards)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *Redis) Invalidate(ctx context.Context) error {
	if err := r.client.Incr(ctx, versionKey).Err(); err != nil {
		return fmt.Errorf("bump cache version: %w", err)
	}
	return nil
}
