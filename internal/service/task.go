package service

import (
	"time"

	"github.com/secondbrain/secondbrain/internal/metrics"
	"github.com/secondbrain/secondbrain/internal/model"
	"github.com/secondbrain/secondbrain/internal/repository"
	"github.com/secondbrain/secondbrain/internal/validation"
)

// CreateTaskInput defines input for creating a task.
type CreateTaskInput struct {
	Title       string     `json:"title" validate:"required,notblank,text"`
	Description *string    `json:"description" validate:"omitnil,text"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"dueDate"`
}

// UpdateTaskInput defines a partial task update. Description and DueDate
// distinguish omission (untouched) from explicit null (cleared).
type UpdateTaskInput struct {
	Title       *string                   `json:"title" validate:"omitnil,text"`
	Description model.Optional[string]    `json:"description" validate:"text"`
	Completed   *bool                     `json:"completed"`
	DueDate     model.Optional[time.Time] `json:"dueDate"`
}

// TaskService manages the caller's tasks.
type TaskService = ResourceService[model.Task, CreateTaskInput, UpdateTaskInput]

// TaskKind describes tasks to ResourceService.
var TaskKind = Kind[model.Task, CreateTaskInput, UpdateTaskInput]{
	Name:  metrics.KindTask,
	Label: "Task",
	Build: func(ownerID, id string, in CreateTaskInput, now Clock) *model.Task {
		at := now()
		return &model.Task{
			ID:          id,
			OwnerID:     ownerID,
			Title:       in.Title,
			Description: in.Description,
			Completed:   in.Completed,
			DueDate:     utcPtr(in.DueDate),
			CreatedAt:   at,
			UpdatedAt:   at,
		}
	},
	Changes: func(in UpdateTaskInput) repository.Changes {
		changes := repository.Changes{}
		if in.Title != nil {
			changes["title"] = *in.Title
		}
		if in.Completed != nil {
			changes["completed"] = *in.Completed
		}
		if in.Description.Set {
			changes["description"] = in.Description.Ptr()
		}
		if in.DueDate.Set {
			changes["due_date"] = utcPtr(in.DueDate.Ptr())
		}
		return changes
	},
}

// NewTaskService creates a TaskService.
func NewTaskService(store Store[model.Task], v *validation.Validator, recorder metrics.Recorder) *TaskService {
	return NewResourceService(store, TaskKind, v, recorder)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
