package redis

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noobLue/fullstack5pw/internal/domain/account"
)

func TestSessionStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	store := NewSessionStore(client)
	now := time.Now()
	store.now = func() time.Time { return now }

	sess := &account.Session{
		TokenHash: "sha256:abc",
		AccountID: uuid.New(),
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, store.Create(ctx, sess))
	require.Equal(t, time.Hour, client.ttls["session:sha256:abc"])

	got, err := store.Get(ctx, "sha256:abc")
	require.NoError(t, err)
	require.Equal(t, sess.AccountID, got.AccountID)

	require.NoError(t, store.Delete(ctx, "sha256:abc"))
	require.ErrorIs(t, store.Delete(ctx, "sha256:abc"), account.ErrNoSuchSession)
	_, err = store.Get(ctx, "sha256:abc")
	require.ErrorIs(t, err, account.ErrNoSuchSession)
}

func TestSessionStore_RejectsExpired(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(newFakeClient())
	now := time.Now()
	store.now = func() time.Time { return now }

	err := store.Create(ctx, &account.Session{TokenHash: "x", ExpiresAt: now.Add(-time.Second)})
	require.Error(t, err)

	require.NoError(t, store.Create(ctx, &account.Session{TokenHash: "y", ExpiresAt: now.Add(time.Minute)}))
	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = store.Get(ctx, "y")
	require.ErrorIs(t, err, account.ErrNoSuchSession)
}

func TestSessionStore_Reset(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	store := NewSessionStore(client)
	require.NoError(t, client.Set(ctx, "blogs:gen", "4", 0))

	for _, h := range []string{"a", "b"} {
		require.NoError(t, store.Create(ctx, &account.Session{TokenHash: h, AccountID: uuid.New()}))
	}
	require.NoError(t, store.Reset(ctx))

	_, err := store.Get(ctx, "a")
	require.ErrorIs(t, err, account.ErrNoSuchSession)
	_, err = client.Get(ctx, "blogs:gen")
	require.NoError(t, err)
}
