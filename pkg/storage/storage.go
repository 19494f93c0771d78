// Package storage persists users and their saved curriculum graphs.
//
// A user owns at most one saved graph; saving again replaces it. The graph
// is kept as the JSON the editor sent (nodes and edges verbatim), so editor
// fields the layout engine ignores survive a save/load round trip.
//
// Two backends implement [Store]: [MemoryStore] for development and tests,
// and [MongoStore] for deployments.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a user or graph does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when registering an email that is taken.
	ErrDuplicate = errors.New("already exists")
)

// User is a registered account.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	Name         string    `json:"name" bson:"name"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// StoredGraph is a user's saved curriculum.
type StoredGraph struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Name      string          `json:"graph_name"`
	Nodes     json.RawMessage `json:"nodes"`
	Edges     json.RawMessage `json:"edges"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// UserStore manages accounts.
type UserStore interface {
	// CreateUser inserts u, assigning ID and CreatedAt when empty.
	// Returns ErrDuplicate if the email is registered already.
	CreateUser(ctx context.Context, u *User) error

	// UserByEmail looks a user up by normalized email.
	UserByEmail(ctx context.Context, email string) (*User, error)

	// UserByID looks a user up by ID.
	UserByID(ctx context.Context, id string) (*User, error)
}

// GraphStore manages saved graphs.
type GraphStore interface {
	// SaveGraph creates or replaces the user's graph.
	SaveGraph(ctx context.Context, g *StoredGraph) (*StoredGraph, error)

	// LoadGraph returns the user's graph or ErrNotFound.
	LoadGraph(ctx context.Context, userID string) (*StoredGraph, error)
}

// Store combines both stores over one backend.
type Store interface {
	UserStore
	GraphStore
	Close(ctx context.Context) error
}

// NormalizeEmail lowercases and trims an address so lookups are case
// insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
