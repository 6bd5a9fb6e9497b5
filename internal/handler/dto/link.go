package dto

import "github.com/secondbrain/secondbrain/internal/service"

// CreateLinkRequest represents the request body for saving a link.
type CreateLinkRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Input converts the request to service input.
func (r CreateLinkRequest) Input() service.CreateLinkInput {
	return service.CreateLinkInput{Title: r.Title, URL: r.URL}
}

// UpdateLinkRequest represents the request body for updating a link.
type UpdateLinkRequest struct {
	Title *string `json:"title"`
	URL   *string `json:"url"`
}

// Input converts the request to service input.
func (r UpdateLinkRequest) Input() service.UpdateLinkInput {
	return service.UpdateLinkInput{Title: r.Title, URL: r.URL}
}
