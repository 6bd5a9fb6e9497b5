package service

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/secondbrain/secondbrain/internal/auth"
	domainerrors "github.com/secondbrain/secondbrain/internal/errors"
	"github.com/secondbrain/secondbrain/internal/metrics"
	"github.com/secondbrain/secondbrain/internal/model"
	"github.com/secondbrain/secondbrain/internal/validation"
)

// SearchResults holds matches per kind. The sets are not ranked against
// each other.
type SearchResults struct {
	Notes []*model.Note
	Links []*model.Link
	Tasks []*model.Task
}

// SearchService runs free-text search across all entity kinds.
type SearchService struct {
	notes   Store[model.Note]
	links   Store[model.Link]
	tasks   Store[model.Task]
	metrics metrics.Recorder
}

// NewSearchService creates a new SearchService.
func NewSearchService(notes Store[model.Note], links Store[model.Link], tasks Store[model.Task], recorder metrics.Recorder) *SearchService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &SearchService{notes: notes, links: links, tasks: tasks, metrics: recorder}
}

// Search matches query as a case-insensitive substring: title or content
// for notes, title or url for links, title or description for tasks.
func (s *SearchService) Search(ctx context.Context, identity auth.Identity, query string) (*SearchResults, error) {
	ownerID, err := requireIdentity(identity)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(query) == "" {
		return nil, domainerrors.InvalidInputWithDetails("validation failed", map[string]string{"q": "is required"})
	}

	out := SearchResults{Notes: []*model.Note{}, Links: []*model.Link{}, Tasks: []*model.Task{}}
	if !validation.IsText(query) {
		return &out, nil
	}

	start := time.Now()
	defer func() { s.metrics.ObserveSearchDuration(time.Since(start)) }()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		out.Notes, err = s.notes.Search(ctx, ownerID, query)
		return wrap("search notes", err)
	})
	g.Go(func() (err error) {
		out.Links, err = s.links.Search(ctx, ownerID, query)
		return wrap("search links", err)
	})
	g.Go(func() (err error) {
		out.Tasks, err = s.tasks.Search(ctx, ownerID, query)
		return wrap("search tasks", err)
	})

	if err := g.Wait(); err != nil {
		return nil, domainerrors.Internal(err)
	}

	out.Notes = nonNil(out.Notes)
	out.Links = nonNil(out.Links)
	out.Tasks = nonNil(out.Tasks)
	return &out, nil
}
