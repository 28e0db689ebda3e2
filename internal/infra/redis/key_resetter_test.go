package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyResetter_DeletesOnlyPrefix(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	require.NoError(t, client.Set(ctx, "ratelimit:login:ip:127.0.0.1", "11", 0))
	require.NoError(t, client.Set(ctx, "ratelimit:login:ip:10.0.0.1", "3", 0))
	require.NoError(t, client.Set(ctx, "session:abc", "{}", 0))

	require.NoError(t, NewKeyResetter(client, "ratelimit:login").Reset(ctx))

	_, err := client.Get(ctx, "ratelimit:login:ip:127.0.0.1")
	require.Error(t, err)
	_, err = client.Get(ctx, "ratelimit:login:ip:10.0.0.1")
	require.Error(t, err)
	got, err := client.Get(ctx, "session:abc")
	require.NoError(t, err)
	require.Equal(t, "{}", got)
}

func TestKeyResetter_PropagatesErrors(t *testing.T) {
	client := newFakeClient()
	client.err = errors.New("redis down")

	err := NewKeyResetter(client, "ratelimit:login").Reset(context.Background())
	require.ErrorIs(t, err, client.err)
}
