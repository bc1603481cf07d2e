package rediscache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/EpsilonIndustries21/sentiment/internal/domain/entity"
	"github.com/EpsilonIndustries21/sentiment/internal/domain/repository"
)

const keyPrefix = "sentiment:prediction:"

type predictionCache struct {
	client *redis.Client
}

// NewPredictionCache creates a Redis-backed prediction cache
func NewPredictionCache(client *redis.Client) repository.PredictionCache {
	return &predictionCache{client: client}
}

// cacheKey hashes the text so arbitrary input never reaches the key space
func cacheKey(fingerprint, cleanedText string) string {
	sum := sha256.Sum256([]byte(cleanedText))
	return keyPrefix + fingerprint + ":" + hex.EncodeToString(sum[:])
}

func (c *predictionCache) Get(ctx context.Context, fingerprint, cleanedText string) (*entity.Scores, error) {
	data, err := c.client.Get(ctx, cacheKey(fingerprint, cleanedText)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var scores entity.Scores
	if err := json.Unmarshal(data, &scores); err != nil {
		return nil, fmt.Errorf("failed to decode cached scores: %w", err)
	}
	return &scores, nil
}

func (c *predictionCache) Set(ctx context.Context, fingerprint, cleanedText string, scores *entity.Scores, ttl time.Duration) error {
	data, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("failed to encode scores: %w", err)
	}
	return c.client.Set(ctx, cacheKey(fingerprint, cleanedText), data, ttl).Err()
}

func (c *predictionCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
