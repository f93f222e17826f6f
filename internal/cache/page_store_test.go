package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestMemoryStore_TTL(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(IndexPageKey, []byte("<html>1</html>"), 20*time.Second))

	got, err := s.Get(IndexPageKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("<html>1</html>"), got)

	now = now.Add(19 * time.Second)
	got, _ = s.Get(IndexPageKey)
	assert.NotNil(t, got)

	now = now.Add(time.Second)
	got, err = s.Get(IndexPageKey)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore_ResetAndDelete(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Set("a", []byte("1"), 0))
	require.NoError(t, s.Set("b", []byte("2"), time.Minute))

	require.NoError(t, s.Delete("a"))
	got, _ := s.Get("a")
	assert.Nil(t, got)

	require.NoError(t, s.Reset())
	got, _ = s.Get("b")
	assert.Nil(t, got)
	assert.Equal(t, "memory", s.Kind())
}

func TestMemoryStore_CopiesValue(t *testing.T) {
	s := NewMemoryStore()
	buf := []byte("abc")
	require.NoError(t, s.Set("k", buf, 0))
	buf[0] = 'z'

	got, _ := s.Get("k")
	assert.Equal(t, []byte("abc"), got)
}

func TestRedisStore_TTL(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	s := NewRedisStore(rdb, PageKeyPrefix)

	require.NoError(t, s.Set(IndexPageKey, []byte("page"), 20*time.Second))
	assert.True(t, mr.Exists("page:index_page"))

	got, err := s.Get(IndexPageKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("page"), got)

	mr.FastForward(21 * time.Second)
	got, err = s.Get(IndexPageKey)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStore_ResetOnlyTouchesPrefix(t *testing.T) {
	_, rdb := newMiniRedis(t)
	ctx := context.Background()
	s := NewRedisStore(rdb, PageKeyPrefix)

	for _, k := range []string{"index_page_GET", "index_page_GET_body", "other"} {
		require.NoError(t, s.Set(k, []byte("x"), time.Minute))
	}
	require.NoError(t, rdb.Set(ctx, "blacklist:abc", "1", time.Minute).Err())

	require.NoError(t, s.Reset())

	keys, err := rdb.Keys(ctx, "page:*").Result()
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Equal(t, int64(1), rdb.Exists(ctx, "blacklist:abc").Val())
}

func TestRedisStore_DeleteAndMissing(t *testing.T) {
	_, rdb := newMiniRedis(t)
	s := NewRedisStore(rdb, PageKeyPrefix)

	got, err := s.Get("nope")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Set("k", []byte("v"), 0))
	require.NoError(t, s.Delete("k"))
	got, _ = s.Get("k")
	assert.Nil(t, got)
	assert.NoError(t, s.Close())
}

func TestNewPageStore_SelectsBackend(t *testing.T) {
	assert.Equal(t, "memory", NewPageStore(nil).Kind())

	_, rdb := newMiniRedis(t)
	assert.Equal(t, "redis", NewPageStore(rdb).Kind())
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb := Connect(mr.Addr())
	require.NotNil(t, rdb)
	_ = rdb.Close()

	rdb = Connect("redis://" + mr.Addr() + "/0")
	require.NotNil(t, rdb)
	_ = rdb.Close()

	assert.Nil(t, Connect("redis://%zz"))
}
