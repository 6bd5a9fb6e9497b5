package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/secondbrain/secondbrain/internal/auth"
	domainerrors "github.com/secondbrain/secondbrain/internal/errors"
	"github.com/secondbrain/secondbrain/internal/metrics"
	"github.com/secondbrain/secondbrain/internal/repository"
	"github.com/secondbrain/secondbrain/internal/validation"
)

// Kind describes one entity kind to ResourceService. C is the create
// input and P the partial update input.
type Kind[T, C, P any] struct {
	// Name is the metric label, e.g. "note".
	Name string
	// Label is used in client messages, e.g. "Note".
	Label string
	// Build constructs a new entity from validated input.
	Build func(ownerID, id string, in C, now Clock) *T
	// Changes converts a patch into column changes. Omitted fields are left out.
	Changes func(in P) repository.Changes
}

// ResourceService implements create, list, get, update and delete for one
// entity kind. Every call is scoped to the caller's identity.
type ResourceService[T, C, P any] struct {
	store     Store[T]
	kind      Kind[T, C, P]
	validator *validation.Validator
	metrics   metrics.Recorder
	now       Clock
}

// NewResourceService creates a ResourceService.
func NewResourceService[T, C, P any](store Store[T], kind Kind[T, C, P], v *validation.Validator, recorder metrics.Recorder) *ResourceService[T, C, P] {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if v == nil {
		v = validation.New()
	}
	return &ResourceService[T, C, P]{
		store:     store,
		kind:      kind,
		validator: v,
		metrics:   recorder,
		now:       systemClock,
	}
}

// WithClock replaces the time source.
func (s *ResourceService[T, C, P]) WithClock(now Clock) *ResourceService[T, C, P] {
	s.now = now
	return s
}

// Name returns the kind's metric name.
func (s *ResourceService[T, C, P]) Name() string {
	return s.kind.Name
}

// Label returns the kind's display label.
func (s *ResourceService[T, C, P]) Label() string {
	return s.kind.Label
}

// Create validates in and stores a new entity owned by the caller.
func (s *ResourceService[T, C, P]) Create(ctx context.Context, identity auth.Identity, in C) (*T, error) {
	ownerID, err := requireIdentity(identity)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	entity := s.kind.Build(ownerID, newID(), in, s.now)
	if err := s.store.Create(ctx, entity); err != nil {
		return nil, domainerrors.Internal(fmt.Errorf("create %s: %w", s.kind.Name, err))
	}

	s.metrics.IncEntityCreated(s.kind.Name)
	return entity, nil
}

// List returns all of the caller's entities in the kind's recency order.
func (s *ResourceService[T, C, P]) List(ctx context.Context, identity auth.Identity) ([]*T, error) {
	ownerID, err := requireIdentity(identity)
	if err != nil {
		return nil, err
	}

	entities, err := s.store.List(ctx, ownerID, 0)
	if err != nil {
		return nil, domainerrors.Internal(fmt.Errorf("list %s: %w", s.kind.Name, err))
	}
	return entities, nil
}

// Get returns one of the caller's entities.
func (s *ResourceService[T, C, P]) Get(ctx context.Context, identity auth.Identity, id string) (*T, error) {
	ownerID, id, err := s.target(identity, id)
	if err != nil {
		return nil, err
	}

	entity, err := s.store.Get(ctx, ownerID, id)
	if err != nil {
		return nil, s.mapStoreErr("get", err)
	}
	return entity, nil
}

// Update applies the supplied fields of in to the caller's entity and
// refreshes updatedAt. An entity the caller does not own is NotFound.
func (s *ResourceService[T, C, P]) Update(ctx context.Context, identity auth.Identity, id string, in P) (*T, error) {
	ownerID, id, err := s.target(identity, id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	entity, err := s.store.Update(ctx, ownerID, id, s.kind.Changes(in), s.now())
	if err != nil {
		return nil, s.mapStoreErr("update", err)
	}

	s.metrics.IncEntityUpdated(s.kind.Name)
	return entity, nil
}

// Delete removes the caller's entity. An entity the caller does not own is NotFound.
func (s *ResourceService[T, C, P]) Delete(ctx context.Context, identity auth.Identity, id string) error {
	ownerID, id, err := s.target(identity, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, ownerID, id); err != nil {
		return s.mapStoreErr("delete", err)
	}

	s.metrics.IncEntityDeleted(s.kind.Name)
	return nil
}

func (s *ResourceService[T, C, P]) target(identity auth.Identity, id string) (string, string, error) {
	ownerID, err := requireIdentity(identity)
	if err != nil {
		return "", "", err
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return "", "", domainerrors.InvalidInputWithDetails("validation failed", map[string]string{"id": "is required"})
	}
	// No stored id can hold such bytes, and Postgres rejects them outright.
	if !validation.IsText(id) {
		return "", "", domainerrors.NotFoundf("%s not found", s.kind.Label)
	}
	return ownerID, id, nil
}

func (s *ResourceService[T, C, P]) mapStoreErr(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domainerrors.NotFoundf("%s not found", s.kind.Label)
	}
	return domainerrors.Internal(fmt.Errorf("%s %s: %w", op, s.kind.Name, err))
}
