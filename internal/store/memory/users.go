// Package memory provides the in-process UserStore used in dev and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/burnick/demoapp-sub000/internal/store"
	"github.com/google/uuid"
)

type Store struct {
	mu      sync.RWMutex
	byID    map[string]*store.User
	byEmail map[string]string // lowercased email -> id
	now     func() time.Time
}

func New() *Store {
	return &Store{
		byID:    make(map[string]*store.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (s *Store) Create(ctx context.Context, u *store.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(u.Email))
	if _, exists := s.byEmail[email]; exists {
		return store.ErrConflict
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := s.now().UTC()
	u.Email = email
	u.CreatedAt = now
	u.UpdatedAt = now

	cp := *u
	s.byID[u.ID] = &cp
	s.byEmail[email] = u.ID
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *Store) List(ctx context.Context, limit, offset int) ([]*store.User, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*store.User, 0, len(s.byID))
	for _, u := range s.byID {
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	total := len(all)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []*store.User{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], total, nil
}

func (s *Store) Update(ctx context.Context, u *store.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.byID[u.ID]
	if !ok {
		return store.ErrNotFound
	}

	email := strings.ToLower(strings.TrimSpace(u.Email))
	if email != old.Email {
		if _, taken := s.byEmail[email]; taken {
			return store.ErrConflict
		}
		delete(s.byEmail, old.Email)
		s.byEmail[email] = u.ID
	}

	u.Email = email
	u.CreatedAt = old.CreatedAt
	u.UpdatedAt = s.now().UTC()
	cp := *u
	s.byID[u.ID] = &cp
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	delete(s.byEmail, u.Email)
	delete(s.byID, id)
	return nil
}
