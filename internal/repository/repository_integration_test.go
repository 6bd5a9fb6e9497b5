//go:build integration

package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secondbrain/secondbrain/internal/model"
	"github.com/secondbrain/secondbrain/internal/repository"
	"github.com/secondbrain/secondbrain/internal/testutil"
)

func createUser(t *testing.T, ctx context.Context, repo *repository.Repository) *model.User {
	t.Helper()
	user := testutil.NewTestUser(t, testutil.UniqueEmail("user"), "password")
	require.NoError(t, repo.Users.CreateUser(ctx, user))
	return user
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	ctx, repo := testutil.NewIntegrationRepository(t)

	user := createUser(t, ctx, repo)

	byEmail, err := repo.Users.GetUserByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, user.PasswordHash, byEmail.PasswordHash)

	byID, err := repo.Users.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)

	exists, err := repo.Users.UserExists(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Users.UserExists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.Users.GetUserByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_EmailIsCaseSensitive(t *testing.T) {
	ctx, repo := testutil.NewIntegrationRepository(t)

	require.NoError(t, repo.Users.CreateUser(ctx, testutil.NewTestUser(t, "Alice@example.com", "pw")))

	_, err := repo.Users.GetUserByEmail(ctx, "alice@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_ConcurrentDuplicateEmail(t *testing.T) {
	ctx, repo := testutil.NewIntegrationRepository(t)

	const attempts = 8
	users := make([]*model.User, attempts)
	for i := range users {
		users[i] = testutil.NewTestUser(t, "race@example.com", "pw")
	}

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Users.CreateUser(ctx, users[i])
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, repository.ErrEmailExists):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, dup)
}

func TestScoped_NoteLifecycle(t *testing.T) {
	ctx, repo := testutil.NewIntegrationRepository(t)
	owner := createUser(t, ctx, repo)

	note := testutil.NewTestNote(t, owner.ID, "Ideas", "first draft")
	require.NoError(t, repo.Notes.Create(ctx, note))

	got, err := repo.Notes.Get(ctx, owner.ID, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ideas", got.Title)
	assert.Equal(t, owner.ID, got.OwnerID)

	at := time.Now().UTC().Add(time.Minute).Truncate(time.Microsecond)
	updated, err := repo.Notes.Update(ctx, owner.ID, note.ID, repository.Changes{"content": "second draft"}, at)
	require.NoError(t, err)
	assert.Equal(t, "Ideas", updated.Title)
	assert.Equal(t, "second draft", updated.Content)
	assert.True(t, at.Equal(updated.UpdatedAt))

	count, err := repo.Notes.Count(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.Notes.Delete(ctx, owner.ID, note.ID))
	assert.ErrorIs(t, repo.Notes.Delete(ctx, owner.ID, note.ID), repository.ErrNotFound)

	_, err = repo.Notes.Get(ctx, owner.ID, note.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestScoped_EmptyUpdateRefreshesTimestamp(t *testing.T) {
	ctx, repo := testutil.NewIntegrationRepository(t)
	owner := createUser(t, ctx, repo)

	note := testutil.NewTestNote(t, owner.ID, "Ideas", "draft")
	require.NoError(t, repo.Notes.Create(ctx, note))

	at := time.Now().UTC().Add(time.Hour).Truncate(time.Microsecond)
	updated, err := repo.Notes.Update(ctx, owner.ID, note.ID, repository.Changes{}, at)
	require.NoError(t, err)
	assert.True(t, at.Equal(updated.UpdatedAt))
	assert.Equal(t, "draft", updated.Content)
}

func TestScoped_OwnerIsolation(t *testing.T) {
	ctx, repo := testutil.NewIntegrationRepository(t)
	alice := createUser(t, ctx, repo)
	bob := createUser(t, ctx, repo)

	link := testutil.NewTestLink(t, alice.ID, "Go", "https://go.dev")
	require.NoError(t, repo.Links.Create(ctx, link))

	_, err := repo.Links.Get(ctx, bob.ID, link.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.Links.Update(ctx, bob.ID, link.ID, repository.Changes{"title": "mine"}, time.Now())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.ErrorIs(t, repo.Links.Delete(ctx, bob.ID, link.ID), repository.ErrNotFound)

	bobs, err := repo.Links.List(ctx, bob.ID, 0)
	require.NoError(t, err)
	assert.NotNil(t, bobs)
	assert.Empty(t, bobs)

	found, err := repo.Links.Search(ctx, bob.ID, "go")
	require.NoError(t, err)
	assert.Empty(t, found)

	still, err := repo.Links.Get(ctx, alice.ID, link.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go", still.Title)
}

func TestScoped_ListOrderAndLimit(t *testing.T) {
	ctx, repo := testutil.NewIntegrationRepository(t)
	owner := createUser(t, ctx, repo)

	base := time.Now().UTC().Truncate(time.Microsecond)
	var ids []string
	for i := range 5 {
		task := testutil.NewTestTask(t, owner.ID, "task")
		task.CreatedAt = base.Add(time.Duration(i) * time.Second)
		task.UpdatedAt = task.CreatedAt
		require.NoError(t, repo.Tasks.Create(ctx, task))
		ids = append(ids, task.ID)
	}

	latest, err := repo.Tasks.List(ctx, owner.ID, 3)
	require.NoError(t, err)
	require.Len(t, latest, 3)
	assert.Equal(t, ids[4], latest[0].ID)
	assert.Equal(t, ids[3], latest[1].ID)
	assert.Equal(t, ids[2], latest[2].ID)

	all, err := repo.Tasks.List(ctx, owner.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestScoped_NotesListByUpdatedAt(t *testing.T) {
	ctx, repo := testutil.NewIntegrationRepository(t)
	owner := createUser(t, ctx, repo)

	older := testutil.NewTestNote(t, owner.ID, "older", "x")
	newer := testutil.NewTestNote(t, owner.ID, "newer", "x")
	newer.CreatedAt = older.CreatedAt.Add(time.Second)
	newer.UpdatedAt = newer.CreatedAt
	require.NoError(t, repo.Notes.Create(ctx, older))
	require.NoError(t, repo.Notes.Create(ctx, newer))

	_, err := repo.Notes.Update(ctx, owner.ID, older.ID, repository.Changes{"title": "edited"}, newer.UpdatedAt.Add(time.Minute))
	require.NoError(t, err)

	notes, err := repo.Notes.List(ctx, owner.ID, 0)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, older.ID, notes[0].ID)
}

func TestScoped_TaskNullableFields(t *testing.T) {
	ctx, repo := testutil.NewIntegrationRepository(t)
	owner := createUser(t, ctx, repo)

	task := testutil.NewTestTask(t, owner.ID, "Pay rent")
	desc := "monthly"
	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	task.Description = &desc
	task.DueDate = &due
	require.NoError(t, repo.Tasks.Create(ctx, task))

	got, err := repo.Tasks.Get(ctx, owner.ID, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Description)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))

	toggled, err := repo.Tasks.Update(ctx, owner.ID, task.ID, repository.Changes{"completed": true}, time.Now())
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	assert.Equal(t, "monthly", *toggled.Description)

	cleared, err := repo.Tasks.Update(ctx, owner.ID, task.ID, repository.Changes{
		"description": (*string)(nil),
		"due_date":    (*time.Time)(nil),
	}, time.Now())
	require.NoError(t, err)
	assert.Nil(t, cleared.Description)
	assert.Nil(t, cleared.DueDate)
	assert.True(t, cleared.Completed)
}

func TestScoped_SearchMatchesAndEscapes(t *testing.T) {
	ctx, repo := testutil.NewIntegrationRepository(t)
	owner := createUser(t, ctx, repo)

	require.NoError(t, repo.Notes.Create(ctx, testutil.NewTestNote(t, owner.ID, "Groceries", "milk, eggs")))
	require.NoError(t, repo.Notes.Create(ctx, testutil.NewTestNote(t, owner.ID, "Discount", "100% off")))
	require.NoError(t, repo.Notes.Create(ctx, testutil.NewTestNote(t, owner.ID, "Budget", "100 dollars")))

	task := testutil.NewTestTask(t, owner.ID, "Errands")
	desc := "pick up GROCERIES"
	task.Description = &desc
	require.NoError(t, repo.Tasks.Create(ctx, task))

	notes, err := repo.Notes.Search(ctx, owner.ID, "grocer")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Groceries", notes[0].Title)

	tasks, err := repo.Tasks.Search(ctx, owner.ID, "groceries")
	require.NoError(t, err)
	require.Len(t, tasks, 1, "description-only match")

	percent, err := repo.Notes.Search(ctx, owner.ID, "100%")
	require.NoError(t, err)
	require.Len(t, percent, 1, "%% must match literally")
	assert.Equal(t, "Discount", percent[0].Title)

	underscore, err := repo.Notes.Search(ctx, owner.ID, "_")
	require.NoError(t, err)
	assert.Empty(t, underscore)
}

func TestScoped_CascadeOnUserDelete(t *testing.T) {
	ctx, repo := testutil.NewIntegrationRepository(t)
	owner := createUser(t, ctx, repo)

	require.NoError(t, repo.Notes.Create(ctx, testutil.NewTestNote(t, owner.ID, "a", "b")))

	_, err := repo.Pool().Exec(ctx, `DELETE FROM users WHERE id = $1`, owner.ID)
	require.NoError(t, err)

	count, err := repo.Notes.Count(ctx, owner.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMigrate_IsIdempotent(t *testing.T) {
	ctx, _ := testutil.NewIntegrationRepository(t)

	applied, err := repository.Migrate(ctx, testutil.RequireEnv(t, "DATABASE_URL"))
	require.NoError(t, err)
	assert.Empty(t, applied)
}
