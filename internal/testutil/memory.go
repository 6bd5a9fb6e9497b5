package testutil

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/secondbrain/secondbrain/internal/model"
	"github.com/secondbrain/secondbrain/internal/repository"
)

// ============================================================================
// In-memory credential store
// ============================================================================

// MemoryUsers is an in-memory credential store with the same error
// contract as repository.UserRepository.
type MemoryUsers struct {
	mu      sync.Mutex
	byID    map[string]*model.User
	byEmail map[string]string

	// Err, when set, is returned by every method.
	Err error
	// Lookups counts UserExists calls.
	Lookups int
}

// NewMemoryUsers creates an empty MemoryUsers.
func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]string),
	}
}

func (m *MemoryUsers) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, exists := m.byEmail[user.Email]; exists {
		return repository.ErrEmailExists
	}
	u := *user
	m.byID[u.ID] = &u
	m.byEmail[u.Email] = u.ID
	return nil
}

func (m *MemoryUsers) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	id, ok := m.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	u := *m.byID[id]
	return &u, nil
}

func (m *MemoryUsers) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	user, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (m *MemoryUsers) UserExists(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Lookups++
	if m.Err != nil {
		return false, m.Err
	}
	_, ok := m.byID[id]
	return ok, nil
}

// Delete removes a user, leaving any tokens issued to it dangling.
func (m *MemoryUsers) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		delete(m.byEmail, u.Email)
		delete(m.byID, id)
	}
}

// ============================================================================
// In-memory owner-scoped store
// ============================================================================

// memoryKind tells a MemoryStore how to read and change one entity kind.
type memoryKind[T any] struct {
	id        func(*T) string
	owner     func(*T) string
	listKey   func(*T) time.Time
	updatedAt func(*T) time.Time
	text      func(*T) []string
	apply     func(*T, string, any) error
	touch     func(*T, time.Time)
}

// MemoryStore is an in-memory equivalent of repository.Scoped. Every
// method is filtered by owner exactly like the SQL version.
type MemoryStore[T any] struct {
	mu   sync.Mutex
	rows map[string]*T
	kind memoryKind[T]

	// Err, when set, is returned by every method.
	Err error
}

func newMemoryStore[T any](kind memoryKind[T]) *MemoryStore[T] {
	return &MemoryStore[T]{rows: make(map[string]*T), kind: kind}
}

// NewMemoryNotes creates an empty in-memory note store.
func NewMemoryNotes() *MemoryStore[model.Note] {
	return newMemoryStore(memoryKind[model.Note]{
		id:        func(n *model.Note) string { return n.ID },
		owner:     func(n *model.Note) string { return n.OwnerID },
		listKey:   func(n *model.Note) time.Time { return n.UpdatedAt },
		updatedAt: func(n *model.Note) time.Time { return n.UpdatedAt },
		text:      func(n *model.Note) []string { return []string{n.Title, n.Content} },
		apply: func(n *model.Note, col string, v any) error {
			switch col {
			case "title":
				n.Title = v.(string)
			case "content":
				n.Content = v.(string)
			default:
				return fmt.Errorf("%w: %s", repository.ErrUnknownColumn, col)
			}
			return nil
		},
		touch: func(n *model.Note, at time.Time) { n.UpdatedAt = at },
	})
}

// NewMemoryLinks creates an empty in-memory link store.
func NewMemoryLinks() *MemoryStore[model.Link] {
	return newMemoryStore(memoryKind[model.Link]{
		id:        func(l *model.Link) string { return l.ID },
		owner:     func(l *model.Link) string { return l.OwnerID },
		listKey:   func(l *model.Link) time.Time { return l.CreatedAt },
		updatedAt: func(l *model.Link) time.Time { return l.UpdatedAt },
		text:      func(l *model.Link) []string { return []string{l.Title, l.URL} },
		apply: func(l *model.Link, col string, v any) error {
			switch col {
			case "title":
				l.Title = v.(string)
			case "url":
				l.URL = v.(string)
			default:
				return fmt.Errorf("%w: %s", repository.ErrUnknownColumn, col)
			}
			return nil
		},
		touch: func(l *model.Link, at time.Time) { l.UpdatedAt = at },
	})
}

// NewMemoryTasks creates an empty in-memory task store.
func NewMemoryTasks() *MemoryStore[model.Task] {
	return newMemoryStore(memoryKind[model.Task]{
		id:        func(t *model.Task) string { return t.ID },
		owner:     func(t *model.Task) string { return t.OwnerID },
		listKey:   func(t *model.Task) time.Time { return t.CreatedAt },
		updatedAt: func(t *model.Task) time.Time { return t.UpdatedAt },
		text: func(t *model.Task) []string {
			if t.Description == nil {
				return []string{t.Title}
			}
			return []string{t.Title, *t.Description}
		},
		apply: func(t *model.Task, col string, v any) error {
			switch col {
			case "title":
				t.Title = v.(string)
			case "completed":
				t.Completed = v.(bool)
			case "description":
				t.Description = clonePtr(v.(*string))
			case "due_date":
				t.DueDate = clonePtr(v.(*time.Time))
			default:
				return fmt.Errorf("%w: %s", repository.ErrUnknownColumn, col)
			}
			return nil
		},
		touch: func(t *model.Task, at time.Time) { t.UpdatedAt = at },
	})
}

func clonePtr[V any](p *V) *V {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Create stores a copy of entity.
func (s *MemoryStore[T]) Create(_ context.Context, entity *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if s.kind.owner(entity) == "" {
		return repository.ErrMissingOwner
	}
	e := *entity
	s.rows[s.kind.id(&e)] = &e
	return nil
}

// Get returns a copy of the entity if ownerID owns it.
func (s *MemoryStore[T]) Get(_ context.Context, ownerID, id string) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	row, ok := s.owned(ownerID, id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	e := *row
	return &e, nil
}

// List returns ownerID's entities newest first. A limit of 0 returns all.
func (s *MemoryStore[T]) List(_ context.Context, ownerID string, limit int) ([]*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := s.collect(ownerID, func(*T) bool { return true }, s.kind.listKey)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Count returns how many entities ownerID has.
func (s *MemoryStore[T]) Count(_ context.Context, ownerID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	var n int64
	for _, row := range s.rows {
		if s.kind.owner(row) == ownerID {
			n++
		}
	}
	return n, nil
}

// Search matches q case-insensitively against the kind's text fields.
func (s *MemoryStore[T]) Search(_ context.Context, ownerID, q string) ([]*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	needle := strings.ToLower(q)
	match := func(row *T) bool {
		return slices.ContainsFunc(s.kind.text(row), func(field string) bool {
			return strings.Contains(strings.ToLower(field), needle)
		})
	}
	return s.collect(ownerID, match, s.kind.updatedAt), nil
}

// Update applies changes if ownerID owns the entity.
func (s *MemoryStore[T]) Update(_ context.Context, ownerID, id string, changes repository.Changes, at time.Time) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	row, ok := s.owned(ownerID, id)
	if !ok {
		return nil, repository.ErrNotFound
	}

	updated := *row
	for col, v := range changes {
		if err := s.kind.apply(&updated, col, v); err != nil {
			return nil, err
		}
	}
	s.kind.touch(&updated, at)
	s.rows[id] = &updated

	e := updated
	return &e, nil
}

// Delete removes the entity if ownerID owns it.
func (s *MemoryStore[T]) Delete(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.owned(ownerID, id); !ok {
		return repository.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

// Len returns the number of stored entities across all owners.
func (s *MemoryStore[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *MemoryStore[T]) owned(ownerID, id string) (*T, bool) {
	row, ok := s.rows[id]
	if !ok || s.kind.owner(row) != ownerID {
		return nil, false
	}
	return row, true
}

func (s *MemoryStore[T]) collect(ownerID string, keep func(*T) bool, key func(*T) time.Time) []*T {
	out := make([]*T, 0)
	for _, row := range s.rows {
		if s.kind.owner(row) == ownerID && keep(row) {
			e := *row
			out = append(out, &e)
		}
	}
	slices.SortFunc(out, func(a, b *T) int {
		if c := key(b).Compare(key(a)); c != 0 {
			return c
		}
		return cmp.Compare(s.kind.id(b), s.kind.id(a))
	})
	return out
}
