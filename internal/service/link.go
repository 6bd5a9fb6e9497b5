package service

import (
	"github.com/secondbrain/secondbrain/internal/metrics"
	"github.com/secondbrain/secondbrain/internal/model"
	"github.com/secondbrain/secondbrain/internal/repository"
	"github.com/secondbrain/secondbrain/internal/validation"
)

// CreateLinkInput defines input for creating a link.
type CreateLinkInput struct {
	Title string `json:"title" validate:"required,notblank,text"`
	URL   string `json:"url" validate:"required,notblank,text"`
}

// UpdateLinkInput defines a partial link update. Nil fields are left untouched.
type UpdateLinkInput struct {
	Title *string `json:"title" validate:"omitnil,text"`
	URL   *string `json:"url" validate:"omitnil,text"`
}

// LinkService manages the caller's links.
type LinkService = ResourceService[model.Link, CreateLinkInput, UpdateLinkInput]

// LinkKind describes links to ResourceService.
var LinkKind = Kind[model.Link, CreateLinkInput, UpdateLinkInput]{
	Name:  metrics.KindLink,
	Label: "Link",
	Build: func(ownerID, id string, in CreateLinkInput, now Clock) *model.Link {
		at := now()
		return &model.Link{
			ID:        id,
			OwnerID:   ownerID,
			Title:     in.Title,
			URL:       in.URL,
			CreatedAt: at,
			UpdatedAt: at,
		}
	},
	Changes: func(in UpdateLinkInput) repository.Changes {
		changes := repository.Changes{}
		if in.Title != nil {
			changes["title"] = *in.Title
		}
		if in.URL != nil {
			changes["url"] = *in.URL
		}
		return changes
	},
}

// NewLinkService creates a LinkService.
func NewLinkService(store Store[model.Link], v *validation.Validator, recorder metrics.Recorder) *LinkService {
	return NewResourceService(store, LinkKind, v, recorder)
}
