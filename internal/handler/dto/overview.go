package dto

import (
	"time"

	"github.com/secondbrain/secondbrain/internal/model"
	"github.com/secondbrain/secondbrain/internal/service"
)

// CountsResponse holds per-kind totals.
type CountsResponse struct {
	Notes int64 `json:"notes"`
	Links int64 `json:"links"`
	Tasks int64 `json:"tasks"`
}

// EntitiesResponse holds entities of every kind. Empty kinds are [] not null.
type EntitiesResponse struct {
	Notes []*model.Note  `json:"notes"`
	Links []*model.Link  `json:"links"`
	Tasks []TaskResponse `json:"tasks"`
}

// OverviewResponse is the dashboard summary.
type OverviewResponse struct {
	Counts CountsResponse   `json:"counts"`
	Latest EntitiesResponse `json:"latest"`
}

// SearchResponse holds per-kind search matches.
type SearchResponse = EntitiesResponse

// ToOverviewResponse converts an overview to a response DTO.
func ToOverviewResponse(o *service.Overview, now time.Time) OverviewResponse {
	return OverviewResponse{
		Counts: CountsResponse{
			Notes: o.Counts.Notes,
			Links: o.Counts.Links,
			Tasks: o.Counts.Tasks,
		},
		Latest: toEntities(o.Latest.Notes, o.Latest.Links, o.Latest.Tasks, now),
	}
}

// ToSearchResponse converts search results to a response DTO.
func ToSearchResponse(r *service.SearchResults, now time.Time) SearchResponse {
	return toEntities(r.Notes, r.Links, r.Tasks, now)
}

func toEntities(notes []*model.Note, links []*model.Link, tasks []*model.Task, now time.Time) EntitiesResponse {
	if notes == nil {
		notes = []*model.Note{}
	}
	if links == nil {
		links = []*model.Link{}
	}
	return EntitiesResponse{
		Notes: notes,
		Links: links,
		Tasks: ToTaskResponses(tasks, now),
	}
}
