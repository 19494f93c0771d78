package storage

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps users and graphs in maps.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]User // by ID
	byEmail map[string]string
	graphs  map[string]StoredGraph // by user ID
	now     func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]User),
		byEmail: make(map[string]string),
		graphs:  make(map[string]StoredGraph),
		now:     time.Now,
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.Email = NormalizeEmail(u.Email)
	if _, taken := s.byEmail[u.Email]; taken {
		return ErrDuplicate
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now().UTC()
	}
	s.users[u.ID] = *u
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *MemoryStore) UserByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *MemoryStore) UserByID(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) SaveGraph(ctx context.Context, g *StoredGraph) (*StoredGraph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	saved := *g
	saved.Nodes = slices.Clone(g.Nodes)
	saved.Edges = slices.Clone(g.Edges)
	saved.UpdatedAt = now
	if prev, ok := s.graphs[g.UserID]; ok {
		saved.ID = prev.ID
		saved.CreatedAt = prev.CreatedAt
	} else {
		saved.ID = uuid.NewString()
		saved.CreatedAt = now
	}
	s.graphs[g.UserID] = saved
	return &saved, nil
}

func (s *MemoryStore) LoadGraph(ctx context.Context, userID string) (*StoredGraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.graphs[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &g, nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
