package dto

import "github.com/secondbrain/secondbrain/internal/service"

// CreateNoteRequest represents the request body for creating a note.
type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Input converts the request to service input.
func (r CreateNoteRequest) Input() service.CreateNoteInput {
	return service.CreateNoteInput{Title: r.Title, Content: r.Content}
}

// UpdateNoteRequest represents the request body for updating a note.
// Omitted fields are left untouched.
type UpdateNoteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// Input converts the request to service input.
func (r UpdateNoteRequest) Input() service.UpdateNoteInput {
	return service.UpdateNoteInput{Title: r.Title, Content: r.Content}
}
