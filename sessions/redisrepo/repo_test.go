package redisrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-auth-frontdoor/sessions"
	"github.com/jrsteele09/go-auth-frontdoor/sessions/redisrepo"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisRepo(t *testing.T) (*redisrepo.Repo, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return redisrepo.New(rdb, "test", time.Minute), mr
}

func TestRedisRepo_MissingIsEmpty(t *testing.T) {
	repo, _ := newRedisRepo(t)

	rec, err := repo.Get(context.Background(), "browser-1")

	require.NoError(t, err)
	require.True(t, rec.Empty())
}

func TestRedisRepo_PutGet(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "browser-1", sessions.Record{SessionCredential: "S1"}))

	rec, err := repo.Get(ctx, "browser-1")
	require.NoError(t, err)
	require.Equal(t, sessions.Record{SessionCredential: "S1"}, rec)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	require.NotContains(t, keys[0], "browser-1", "browser ids are hashed before use as keys")
	require.Contains(t, keys[0], "test:browser:")
}

func TestRedisRepo_PutReplacesWholeRecord(t *testing.T) {
	repo, _ := newRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "browser-1", sessions.Record{IntermediateCredential: "IST1"}))
	require.NoError(t, repo.Put(ctx, "browser-1", sessions.Record{SessionCredential: "S1"}))

	rec, err := repo.Get(ctx, "browser-1")
	require.NoError(t, err)
	require.Equal(t, sessions.Record{SessionCredential: "S1"}, rec, "the intermediate credential must not survive a replace")
}

func TestRedisRepo_EmptyRecordDeletes(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "browser-1", sessions.Record{SessionCredential: "S1"}))
	require.NoError(t, repo.Put(ctx, "browser-1", sessions.Record{}))

	require.Empty(t, mr.Keys())
}

func TestRedisRepo_SlidingExpiry(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "browser-1", sessions.Record{SessionCredential: "S1"}))

	mr.FastForward(50 * time.Second)
	rec, err := repo.Get(ctx, "browser-1")
	require.NoError(t, err)
	require.Equal(t, "S1", rec.SessionCredential)

	mr.FastForward(50 * time.Second)
	rec, err = repo.Get(ctx, "browser-1")
	require.NoError(t, err)
	require.Equal(t, "S1", rec.SessionCredential, "the previous read extended the TTL")

	mr.FastForward(61 * time.Second)
	rec, err = repo.Get(ctx, "browser-1")
	require.NoError(t, err)
	require.True(t, rec.Empty())
}

func TestRedisRepo_Delete(t *testing.T) {
	repo, _ := newRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "browser-1", sessions.Record{SessionCredential: "S1"}))
	require.NoError(t, repo.Delete(ctx, "browser-1"))
	require.NoError(t, repo.Delete(ctx, "browser-1"))

	rec, err := repo.Get(ctx, "browser-1")
	require.NoError(t, err)
	require.True(t, rec.Empty())
}

func TestRedisRepo_Unavailable(t *testing.T) {
	repo, mr := newRedisRepo(t)
	mr.Close()

	_, err := repo.Get(context.Background(), "browser-1")
	require.ErrorIs(t, err, redisrepo.ErrRedisUnavailable)
}
