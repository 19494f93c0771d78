package storage

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreTests exercises any Store implementation. The mongo integration
// test calls it too.
func runStoreTests(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("create and find user", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		u := &User{Email: "  Ana@Example.com ", Name: "Ana", PasswordHash: "x"}
		require.NoError(t, s.CreateUser(ctx, u))
		assert.NotEmpty(t, u.ID)
		assert.Equal(t, "ana@example.com", u.Email)
		assert.False(t, u.CreatedAt.IsZero())

		byEmail, err := s.UserByEmail(ctx, "ANA@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)
		assert.Equal(t, "x", byEmail.PasswordHash)

		byID, err := s.UserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ana", byID.Name)
	})

	t.Run("duplicate email", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.CreateUser(ctx, &User{Email: "dup@example.com"}))
		err := s.CreateUser(ctx, &User{Email: "DUP@example.com"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("unknown user", func(t *testing.T) {
		s := newStore(t)
		_, err := s.UserByEmail(context.Background(), "nobody@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.UserByID(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("save upserts one graph per user", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.LoadGraph(ctx, "u1")
		assert.ErrorIs(t, err, ErrNotFound)

		first, err := s.SaveGraph(ctx, &StoredGraph{
			UserID: "u1",
			Name:   "Plan A",
			Nodes:  json.RawMessage(`[{"id":"a","position":{"x":1,"y":2}}]`),
			Edges:  json.RawMessage(`[]`),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, first.ID)

		second, err := s.SaveGraph(ctx, &StoredGraph{
			UserID: "u1",
			Name:   "Plan B",
			Nodes:  json.RawMessage(`[{"id":"b"}]`),
			Edges:  json.RawMessage(`[]`),
		})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.WithinDuration(t, first.CreatedAt, second.CreatedAt, time.Millisecond)
		assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))

		loaded, err := s.LoadGraph(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "Plan B", loaded.Name)
		assert.JSONEq(t, `[{"id":"b"}]`, string(loaded.Nodes))

		_, err = s.LoadGraph(ctx, "u2")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("editor fields survive", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		nodes := `[{"id":"a","type":"course","position":{"x":10,"y":20},"data":{"period":1}}]`
		_, err := s.SaveGraph(ctx, &StoredGraph{UserID: "u", Nodes: json.RawMessage(nodes), Edges: json.RawMessage(`[]`)})
		require.NoError(t, err)
		loaded, err := s.LoadGraph(ctx, "u")
		require.NoError(t, err)
		assert.JSONEq(t, nodes, string(loaded.Nodes))
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) Store { return NewMemoryStore() })
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	nodes := json.RawMessage(`[1]`)
	_, err := s.SaveGraph(ctx, &StoredGraph{UserID: "u", Nodes: nodes})
	require.NoError(t, err)
	nodes[1] = '2'

	loaded, err := s.LoadGraph(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, "[1]", string(loaded.Nodes))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@b.c", NormalizeEmail(" A@B.C\n"))
}
