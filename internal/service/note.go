package service

import (
	"github.com/secondbrain/secondbrain/internal/metrics"
	"github.com/secondbrain/secondbrain/internal/model"
	"github.com/secondbrain/secondbrain/internal/repository"
	"github.com/secondbrain/secondbrain/internal/validation"
)

// CreateNoteInput defines input for creating a note.
type CreateNoteInput struct {
	Title   string `json:"title" validate:"required,notblank,text"`
	Content string `json:"content" validate:"required,notblank,text"`
}

// UpdateNoteInput defines a partial note update. Nil fields are left untouched.
type UpdateNoteInput struct {
	Title   *string `json:"title" validate:"omitnil,text"`
	Content *string `json:"content" validate:"omitnil,text"`
}

// NoteService manages the caller's notes.
type NoteService = ResourceService[model.Note, CreateNoteInput, UpdateNoteInput]

// NoteKind describes notes to ResourceService.
var NoteKind = Kind[model.Note, CreateNoteInput, UpdateNoteInput]{
	Name:  metrics.KindNote,
	Label: "Note",
	Build: func(ownerID, id string, in CreateNoteInput, now Clock) *model.Note {
		at := now()
		return &model.Note{
			ID:        id,
			OwnerID:   ownerID,
			Title:     in.Title,
			Content:   in.Content,
			CreatedAt: at,
			UpdatedAt: at,
		}
	},
	Changes: func(in UpdateNoteInput) repository.Changes {
		changes := repository.Changes{}
		if in.Title != nil {
			changes["title"] = *in.Title
		}
		if in.Content != nil {
			changes["content"] = *in.Content
		}
		return changes
	},
}

// NewNoteService creates a NoteService.
func NewNoteService(store Store[model.Note], v *validation.Validator, recorder metrics.Recorder) *NoteService {
	return NewResourceService(store, NoteKind, v, recorder)
}
