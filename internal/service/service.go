// Package service provides business logic for the application.
package service

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/secondbrain/secondbrain/internal/auth"
	domainerrors "github.com/secondbrain/secondbrain/internal/errors"
	"github.com/secondbrain/secondbrain/internal/model"
	"github.com/secondbrain/secondbrain/internal/repository"
)

// Store is an owner-scoped entity store. repository.Scoped implements it.
type Store[T any] interface {
	Create(ctx context.Context, entity *T) error
	Get(ctx context.Context, ownerID, id string) (*T, error)
	List(ctx context.Context, ownerID string, limit int) ([]*T, error)
	Count(ctx context.Context, ownerID string) (int64, error)
	Search(ctx context.Context, ownerID, query string) ([]*T, error)
	Update(ctx context.Context, ownerID, id string, changes repository.Changes, at time.Time) (*T, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// UserStore persists registered identities. repository.UserRepository implements it.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UserExists(ctx context.Context, id string) (bool, error)
}

// Clock returns the current time. Tests inject a fixed one.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

func newID() string {
	return ulid.Make().String()
}

// requireIdentity rejects calls made without a verified identity.
func requireIdentity(identity auth.Identity) (string, error) {
	if identity.IsZero() {
		return "", domainerrors.Unauthenticated("authentication required")
	}
	return identity.UserID(), nil
}

// Compile-time checks that the Postgres repositories satisfy the stores.
var (
	_ Store[model.Note] = (*repository.Scoped[model.Note])(nil)
	_ Store[model.Link] = (*repository.Scoped[model.Link])(nil)
	_ Store[model.Task] = (*repository.Scoped[model.Task])(nil)
	_ UserStore         = (*repository.UserRepository)(nil)
)
