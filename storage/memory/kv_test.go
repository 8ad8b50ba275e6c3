package memorystore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKV_SetGetDel(t *testing.T) {
	kv := NewKV()
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, kv.Set(ctx, "k", []byte("v"), 0))
	b, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), b)

	require.NoError(t, kv.Del(ctx, "k"))
	_, ok, err = kv.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestKV_TTLExpiry(t *testing.T) {
	kv := NewKV()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "short", []byte("v"), 10*time.Millisecond))
	_, ok, err := kv.Get(ctx, "short")
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	_, ok, err = kv.Get(ctx, "short")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestKV_OverwriteReplacesValueAndTTL(t *testing.T) {
	kv := NewKV()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", []byte("old"), 10*time.Millisecond))
	require.NoError(t, kv.Set(ctx, "k", []byte("new"), 0))

	time.Sleep(20 * time.Millisecond)
	b, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("new"), b)
}

func TestKV_ValueIsCopied(t *testing.T) {
	kv := NewKV()
	ctx := context.Background()

	src := []byte("abc")
	require.NoError(t, kv.Set(ctx, "k", src, 0))
	src[0] = 'x'

	b, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("abc"), b)
}
