package repository

import "github.com/secondbrain/secondbrain/internal/model"

// TaskSchema maps model.Task onto the tasks table. Description and
// due_date are nullable.
var TaskSchema = Schema[model.Task]{
	Table: "tasks",
	Columns: []string{
		"id", "owner_id", "title", "description", "completed", "due_date",
		"created_at", "updated_at",
	},
	ListOrder:     "created_at",
	SearchColumns: []string{"title", "description"},
	Updatable:     []string{"title", "description", "completed", "due_date"},
	Scan: func(row Scanner) (*model.Task, error) {
		var t model.Task
		err := row.Scan(
			&t.ID,
			&t.OwnerID,
			&t.Title,
			&t.Description,
			&t.Completed,
			&t.DueDate,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		return &t, err
	},
	Values: func(t *model.Task) []any {
		return []any{
			t.ID, t.OwnerID, t.Title, t.Description, t.Completed, t.DueDate,
			t.CreatedAt, t.UpdatedAt,
		}
	},
	OwnerOf: func(t *model.Task) string { return t.OwnerID },
}
