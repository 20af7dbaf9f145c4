package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Cleanup(func() { SetClient(nil) })

	InitRedis(mr.Addr())
	require.NotNil(t, GetClient())
	assert.NoError(t, GetClient().Set(context.Background(), "k", "v", 0).Err())

	InitRedis("redis://" + mr.Addr() + "/0")
	assert.NotNil(t, GetClient())
}

func TestInitRedis_Unavailable(t *testing.T) {
	t.Cleanup(func() { SetClient(nil) })

	InitRedis("")
	assert.Nil(t, GetClient())

	InitRedis("redis://%zz")
	assert.Nil(t, GetClient())

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	InitRedis(addr)
	assert.Nil(t, GetClient())
}

func TestNewClient_MetricsHookPassesThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewClient(mr.Addr())
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	_, err = c.Get(context.Background(), "missing").Result()
	assert.Error(t, err)
	mr.SetError("boom")
	assert.Error(t, c.Ping(context.Background()).Err())
}
