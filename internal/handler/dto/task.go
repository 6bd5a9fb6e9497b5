package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/secondbrain/secondbrain/internal/model"
	"github.com/secondbrain/secondbrain/internal/service"
)

// dateOnly is the layout browsers send from <input type="date">.
const dateOnly = "2006-01-02"

// Date is a due date accepted as RFC 3339, as a calendar date (midnight
// UTC), or as an empty string meaning "no date".
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("dueDate must be a string: %w", err)
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}

	for _, layout := range []string{time.RFC3339Nano, dateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("dueDate %q is not a date", s)
}

func (d *Date) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// CreateTaskRequest represents the request body for creating a task.
type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
	DueDate     *Date   `json:"dueDate"`
}

// Input converts the request to service input.
func (r CreateTaskRequest) Input() service.CreateTaskInput {
	return service.CreateTaskInput{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		DueDate:     r.DueDate.ptr(),
	}
}

// UpdateTaskRequest represents the request body for updating a task.
// An explicit null (or empty dueDate) clears description and dueDate.
type UpdateTaskRequest struct {
	Title       *string                `json:"title"`
	Description model.Optional[string] `json:"description"`
	Completed   *bool                  `json:"completed"`
	DueDate     model.Optional[Date]   `json:"dueDate"`
}

// Input converts the request to service input.
func (r UpdateTaskRequest) Input() service.UpdateTaskInput {
	in := service.UpdateTaskInput{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
	}
	if r.DueDate.Set {
		if due := r.DueDate.Value.ptr(); due != nil && !r.DueDate.Null {
			in.DueDate = model.Some(*due)
		} else {
			in.DueDate = model.Null[time.Time]()
		}
	}
	return in
}

// TaskResponse is a task in API responses.
type TaskResponse struct {
	*model.Task
	Overdue bool `json:"overdue"`
}

// ToTaskResponse converts a task model to a response DTO as of now.
func ToTaskResponse(t *model.Task, now time.Time) TaskResponse {
	return TaskResponse{Task: t, Overdue: t.IsOverdue(now)}
}

// ToTaskResponses converts tasks to response DTOs. The result is never nil.
func ToTaskResponses(tasks []*model.Task, now time.Time) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, ToTaskResponse(t, now))
	}
	return out
}
