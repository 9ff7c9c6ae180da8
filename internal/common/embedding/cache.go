package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"solar-advisor/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

// CachedEmbedder memoizes vectors in Redis. Cache errors never fail a call.
type CachedEmbedder struct {
	next   Embedder
	rdb    redis.Cmdable
	model  string
	ttl    time.Duration
	logger logger.Logger
}

var _ Embedder = (*CachedEmbedder)(nil)

func NewCachedEmbedder(next Embedder, rdb redis.Cmdable, model string, ttl time.Duration, log logger.Logger) *CachedEmbedder {
	return &CachedEmbedder{next: next, rdb: rdb, model: model, ttl: ttl, logger: log}
}

// CacheKey is embedding:<model>:<sha256(text)>.
func CacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return "embedding:" + model + ":" + hex.EncodeToString(sum[:])
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := CacheKey(c.model, text)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var vec []float32
		if jsonErr := json.Unmarshal(raw, &vec); jsonErr == nil && len(vec) > 0 {
			return vec, nil
		}
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("embedding cache read failed", map[string]interface{}{"error": err.Error()})
	}

	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(vec); err == nil {
		if err := c.rdb.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			c.logger.Warn("embedding cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return vec, nil
}
