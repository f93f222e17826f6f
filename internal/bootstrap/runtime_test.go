package bootstrap

import (
	"testing"

	"inkwell/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntimeClose(t *testing.T) {
	mr := miniredis.RunT(t)
	db := testutil.NewSQLiteDB(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	rt := &Runtime{DB: db, Redis: rdb}
	rt.Close()

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Error(t, sqlDB.Ping())
	assert.ErrorIs(t, rdb.Ping(t.Context()).Err(), redis.ErrClosed)
}

func TestRuntimeClose_WithoutRedis(t *testing.T) {
	rt := &Runtime{DB: testutil.NewSQLiteDB(t)}
	assert.NotPanics(t, rt.Close)
}
