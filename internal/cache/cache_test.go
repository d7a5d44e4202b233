package cache

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	type input struct {
		Weight float64 `json:"weight"`
	}

	a, err := Key("cost", input{Weight: 10})
	require.NoError(t, err)
	b, err := Key("cost", input{Weight: 10})
	require.NoError(t, err)
	assert.Equal(t, a, b, "same input must give the same key")

	c, err := Key("cost", input{Weight: 11})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	d, err := Key("nutrition", input{Weight: 10})
	require.NoError(t, err)
	assert.NotEqual(t, a, d, "procedure is part of the key")
	assert.Contains(t, d, "nutrition:")

	_, err = Key("bad", make(chan int))
	assert.Error(t, err)
}

func TestLRU(t *testing.T) {
	ctx := context.Background()
	c, err := NewLRU(2)
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "a", []byte("1")))
	require.NoError(t, c.Set(ctx, "b", []byte("2")))

	v, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	// "b" is now least recently used
	require.NoError(t, c.Set(ctx, "c", []byte("3")))
	_, ok, err = c.Get(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())

	_, err = NewLRU(0)
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	require.NoError(t, c.Set(context.Background(), "k", []byte("v")))
	_, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisReportsConnectionErrors(t *testing.T) {
	// Grab a free port and close it so nothing is listening there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	r := NewRedis(addr, "petvend:", time.Minute)
	t.Cleanup(func() { _ = r.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	v, ok, err := r.Get(ctx, "cost:abc")
	require.Error(t, err, "an unreachable server is not a cache miss")
	assert.False(t, ok)
	assert.Nil(t, v)
	assert.Contains(t, err.Error(), "cost:abc")
}
