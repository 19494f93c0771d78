package session

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStore(client, ""),
		"file":   fs,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			defer store.Close()

			sess, err := New("u-1", "ana@example.com", time.Hour)
			require.NoError(t, err)
			require.NoError(t, store.Set(ctx, sess))

			got, err := store.Get(ctx, sess.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "u-1", got.UserID)
			assert.Equal(t, "ana@example.com", got.Email)

			require.NoError(t, store.Delete(ctx, sess.ID))
			got, err = store.Get(ctx, sess.ID)
			require.NoError(t, err)
			assert.Nil(t, got)

			assert.NoError(t, store.Delete(ctx, "never-existed"))
		})
	}
}

func TestStoreUnknownToken(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			got, err := store.Get(context.Background(), "../../etc/passwd")
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestExpiredSession(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sess := &Session{ID: "old", UserID: "u", ExpiresAt: time.Now().Add(-time.Minute)}
			require.NoError(t, store.Set(ctx, sess))

			got, err := store.Get(ctx, "old")
			assert.Nil(t, got)
			if name == "redis" {
				// never written: the key would have no lifetime left
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrExpired)

			// the first read removes it
			got, err = store.Get(ctx, "old")
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestRedisStoreExpiredRecord(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	store := NewRedisStore(client, "gb:session:")

	// a key that outlives its session, e.g. written by an instance with a
	// skewed clock
	data, err := json.Marshal(&Session{ID: "old", UserID: "u", ExpiresAt: time.Now().Add(-time.Minute)})
	require.NoError(t, err)
	require.NoError(t, mr.Set("gb:session:old", string(data)))

	got, err := store.Get(context.Background(), "old")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestRedisStoreUsesKeyTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	store := NewRedisStore(client, "gb:session:")

	sess, err := New("u-1", "a@b.c", time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), sess))

	key := "gb:session:" + sess.ID
	assert.True(t, mr.Exists(key))
	assert.InDelta(t, time.Hour.Seconds(), mr.TTL(key).Seconds(), 5)
}

func TestMemoryStoreCleanup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Set(ctx, &Session{ID: "old", ExpiresAt: time.Now().Add(-time.Second)})
	_ = store.Set(ctx, &Session{ID: "new", ExpiresAt: time.Now().Add(time.Hour)})

	require.NoError(t, store.Cleanup(ctx))
	assert.Equal(t, 1, store.Len())
}

func TestFileStoreCleanup(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	// write an expired session directly; Set accepts it
	require.NoError(t, store.Set(ctx, &Session{ID: "old", ExpiresAt: time.Now().Add(-time.Second)}))
	require.NoError(t, store.Set(ctx, &Session{ID: "new", ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, store.Cleanup(ctx))

	entries, err := os.ReadDir(store.Path())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGenerateIDIsUnique(t *testing.T) {
	a, err := GenerateID()
	require.NoError(t, err)
	b, err := GenerateID()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 43)
}
