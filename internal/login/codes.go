package login

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const codeKeyPrefix = "auth:code:"

// CodeStore keeps one pending verification code per email in Redis.
type CodeStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewCodeStore(rdb redis.Cmdable, ttl time.Duration) *CodeStore {
	return &CodeStore{rdb: rdb, ttl: ttl}
}

func codeKey(email string) string {
	return codeKeyPrefix + strings.ToLower(strings.TrimSpace(email))
}

// Save replaces any pending code for email.
func (s *CodeStore) Save(ctx context.Context, email, code string) error {
	if err := s.rdb.Set(ctx, codeKey(email), code, s.ttl).Err(); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}
	return nil
}

// Consume reports whether code is the pending, unexpired code for email and
// deletes it on success. A wrong code leaves the pending one in place.
func (s *CodeStore) Consume(ctx context.Context, email, code string) (bool, error) {
	key := codeKey(email)
	stored, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load verification code: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return false, nil
	}
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return false, fmt.Errorf("delete verification code: %w", err)
	}
	return true, nil
}

// GenerateCode returns a random numeric code of exactly length digits with no
// leading zero.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		length = 4
	}
	low := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length-1)), nil)
	span := new(big.Int).Sub(new(big.Int).Mul(low, big.NewInt(10)), low)
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return n.Add(n, low).String(), nil
}
