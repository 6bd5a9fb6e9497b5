package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/secondbrain/secondbrain/internal/auth"
	domainerrors "github.com/secondbrain/secondbrain/internal/errors"
	"github.com/secondbrain/secondbrain/internal/metrics"
	"github.com/secondbrain/secondbrain/internal/model"
)

// LatestLimit is how many recent entities of each kind the overview carries.
const LatestLimit = 3

// Counts holds per-kind totals.
type Counts struct {
	Notes int64
	Links int64
	Tasks int64
}

// Latest holds the most recent entities of each kind.
type Latest struct {
	Notes []*model.Note
	Links []*model.Link
	Tasks []*model.Task
}

// Overview is the caller's dashboard summary.
type Overview struct {
	Counts Counts
	Latest Latest
}

// OverviewService assembles the dashboard summary.
type OverviewService struct {
	notes   Store[model.Note]
	links   Store[model.Link]
	tasks   Store[model.Task]
	metrics metrics.Recorder
}

// NewOverviewService creates a new OverviewService.
func NewOverviewService(notes Store[model.Note], links Store[model.Link], tasks Store[model.Task], recorder metrics.Recorder) *OverviewService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &OverviewService{notes: notes, links: links, tasks: tasks, metrics: recorder}
}

// Overview runs the three counts and three latest queries concurrently.
// Any failing query fails the whole call; no partial result is returned.
func (s *OverviewService) Overview(ctx context.Context, identity auth.Identity) (*Overview, error) {
	ownerID, err := requireIdentity(identity)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { s.metrics.ObserveOverviewDuration(time.Since(start)) }()

	var out Overview
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		out.Counts.Notes, err = s.notes.Count(ctx, ownerID)
		return wrap("count notes", err)
	})
	g.Go(func() (err error) {
		out.Counts.Links, err = s.links.Count(ctx, ownerID)
		return wrap("count links", err)
	})
	g.Go(func() (err error) {
		out.Counts.Tasks, err = s.tasks.Count(ctx, ownerID)
		return wrap("count tasks", err)
	})
	g.Go(func() (err error) {
		out.Latest.Notes, err = s.notes.List(ctx, ownerID, LatestLimit)
		return wrap("latest notes", err)
	})
	g.Go(func() (err error) {
		out.Latest.Links, err = s.links.List(ctx, ownerID, LatestLimit)
		return wrap("latest links", err)
	})
	g.Go(func() (err error) {
		out.Latest.Tasks, err = s.tasks.List(ctx, ownerID, LatestLimit)
		return wrap("latest tasks", err)
	})

	if err := g.Wait(); err != nil {
		return nil, domainerrors.Internal(err)
	}

	out.Latest.Notes = nonNil(out.Latest.Notes)
	out.Latest.Links = nonNil(out.Latest.Links)
	out.Latest.Tasks = nonNil(out.Latest.Tasks)
	return &out, nil
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nonNil[T any](s []*T) []*T {
	if s == nil {
		return []*T{}
	}
	return s
}
