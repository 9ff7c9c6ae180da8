package login

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisStore(t *testing.T) (*CodeStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewCodeStore(rdb, 2*time.Minute), mr
}

func TestCodeStore_Consume(t *testing.T) {
	ctx := context.Background()

	t.Run("valid code is single use", func(t *testing.T) {
		store, mr := newMiniredisStore(t)
		require.NoError(t, store.Save(ctx, "Jane@Example.com", "4821"))
		assert.Equal(t, 2*time.Minute, mr.TTL("auth:code:jane@example.com"))

		ok, err := store.Consume(ctx, "jane@example.com", "4821")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Consume(ctx, "jane@example.com", "4821")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("wrong code keeps pending code", func(t *testing.T) {
		store, _ := newMiniredisStore(t)
		require.NoError(t, store.Save(ctx, "jane@example.com", "4821"))

		ok, err := store.Consume(ctx, "jane@example.com", "1111")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = store.Consume(ctx, "jane@example.com", "4821")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("expired code", func(t *testing.T) {
		store, mr := newMiniredisStore(t)
		require.NoError(t, store.Save(ctx, "jane@example.com", "4821"))
		mr.FastForward(2*time.Minute + time.Second)

		ok, err := store.Consume(ctx, "jane@example.com", "4821")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("new code replaces old", func(t *testing.T) {
		store, _ := newMiniredisStore(t)
		require.NoError(t, store.Save(ctx, "jane@example.com", "4821"))
		require.NoError(t, store.Save(ctx, "jane@example.com", "9034"))

		ok, _ := store.Consume(ctx, "jane@example.com", "4821")
		assert.False(t, ok)
		ok, _ = store.Consume(ctx, "jane@example.com", "9034")
		assert.True(t, ok)
	})
}

func TestCodeStore_RedisErrors(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	store := NewCodeStore(rdb, time.Minute)

	mock.ExpectSet("auth:code:jane@example.com", "4821", time.Minute).SetErr(errors.New("connection refused"))
	assert.Error(t, store.Save(context.Background(), "jane@example.com", "4821"))

	mock.ExpectGet("auth:code:jane@example.com").SetErr(errors.New("connection refused"))
	_, err := store.Consume(context.Background(), "jane@example.com", "4821")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateCode(4)
		require.NoError(t, err)
		require.Len(t, code, 4)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1000)
		assert.LessOrEqual(t, n, 9999)
	}

	code, err := GenerateCode(0)
	require.NoError(t, err)
	assert.Len(t, code, 4)
}
