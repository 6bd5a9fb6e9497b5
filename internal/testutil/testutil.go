package testutil

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/secondbrain/secondbrain/internal/auth"
	"github.com/secondbrain/secondbrain/internal/model"
	"github.com/secondbrain/secondbrain/internal/repository"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// NewIntegrationRepository connects to DATABASE_URL, takes the DB lock and
// resets the schema. Everything is released when the test ends.
func NewIntegrationRepository(t *testing.T) (context.Context, *repository.Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := RequireEnv(t, "DATABASE_URL")

	repo, err := repository.New(ctx, dbURL, repository.PoolOptions{})
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := repository.Reset(ctx, dbURL); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, repo
}

// ============================================================================
// Identities and tokens
// ============================================================================

// NewTokenCodec creates a token codec with a fresh random key.
func NewTokenCodec(t testing.TB) *auth.TokenCodec {
	t.Helper()
	codec, err := auth.NewTokenCodec(paseto.NewV4SymmetricKey().ExportHex(), time.Hour)
	if err != nil {
		t.Fatalf("create token codec: %v", err)
	}
	return codec
}

type existsLookup struct{}

func (existsLookup) UserExists(context.Context, string) (bool, error) { return true, nil }

// Identity returns a verified identity for userID by running a real token
// through the gate.
func Identity(t testing.TB, userID string) auth.Identity {
	t.Helper()
	codec := NewTokenCodec(t)

	token, err := codec.Issue(userID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	id, err := auth.NewGate(codec, existsLookup{}).Authenticate(context.Background(), auth.BearerScheme+" "+token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	return id
}

// ============================================================================
// Test Data Factories
// ============================================================================

var seq atomic.Int64

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), seq.Add(1))
}

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, seq.Add(1))
}

// NewTestUser creates a user with a real password verifier for password.
func NewTestUser(t testing.TB, email, password string) *model.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &model.User{
		ID:           UniqueID("user"),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
}

// NewTestNote creates a note owned by ownerID.
func NewTestNote(t testing.TB, ownerID, title, content string) *model.Note {
	t.Helper()
	now := time.Now().UTC()
	return &model.Note{
		ID:        UniqueID("note"),
		OwnerID:   ownerID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestLink creates a link owned by ownerID.
func NewTestLink(t testing.TB, ownerID, title, url string) *model.Link {
	t.Helper()
	now := time.Now().UTC()
	return &model.Link{
		ID:        UniqueID("link"),
		OwnerID:   ownerID,
		Title:     title,
		URL:       url,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestTask creates an open task owned by ownerID.
func NewTestTask(t testing.TB, ownerID, title string) *model.Task {
	t.Helper()
	now := time.Now().UTC()
	return &model.Task{
		ID:        UniqueID("task"),
		OwnerID:   ownerID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
