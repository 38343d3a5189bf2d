package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/paymo-paybot/internal/cache"
)

func TestKey(t *testing.T) {
	k := cache.Key("api-key-1")
	assert.Len(t, k, len("paymo:me:")+16)
	assert.Equal(t, k, cache.Key("api-key-1"), "key is stable")
	assert.NotEqual(t, k, cache.Key("api-key-2"))
	assert.NotContains(t, k, "api-key-1")
}

// fakeRedis serves Get and Set from a map; other commands are not used.
type fakeRedis struct {
	redis.Cmdable
	vals   map[string]string
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{vals: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.vals[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.vals[key] = value.(string)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func TestUserIDsMiss(t *testing.T) {
	ids := cache.NewUserIDs(newFakeRedis(), time.Hour)

	id, found, err := ids.Get(context.Background(), "paymo:me:abc")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, id)
}

func TestUserIDsSetThenGet(t *testing.T) {
	rdb := newFakeRedis()
	ids := cache.NewUserIDs(rdb, 24*time.Hour)

	require.NoError(t, ids.Set(context.Background(), "paymo:me:abc", 42))
	assert.Equal(t, "42", rdb.vals["paymo:me:abc"])
	assert.Equal(t, 24*time.Hour, rdb.ttls["paymo:me:abc"])

	id, found, err := ids.Get(context.Background(), "paymo:me:abc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(42), id)
}

func TestUserIDsCorruptValue(t *testing.T) {
	rdb := newFakeRedis()
	rdb.vals["paymo:me:abc"] = "forty-two"

	_, found, err := cache.NewUserIDs(rdb, time.Hour).Get(context.Background(), "paymo:me:abc")
	assert.Error(t, err)
	assert.False(t, found)
	assert.Contains(t, err.Error(), "forty-two")
}

func TestUserIDsBackendErrors(t *testing.T) {
	rdb := newFakeRedis()
	rdb.getErr = errors.New("connection refused")
	rdb.setErr = errors.New("READONLY")
	ids := cache.NewUserIDs(rdb, time.Hour)

	_, found, err := ids.Get(context.Background(), "k")
	assert.ErrorIs(t, err, rdb.getErr)
	assert.False(t, found)

	err = ids.Set(context.Background(), "k", 1)
	assert.ErrorIs(t, err, rdb.setErr)
}
