package repository

import "github.com/secondbrain/secondbrain/internal/model"

// NoteSchema maps model.Note onto the notes table. Notes list by last edit.
var NoteSchema = Schema[model.Note]{
	Table:         "notes",
	Columns:       []string{"id", "owner_id", "title", "content", "created_at", "updated_at"},
	ListOrder:     "updated_at",
	SearchColumns: []string{"title", "content"},
	Updatable:     []string{"title", "content"},
	Scan: func(row Scanner) (*model.Note, error) {
		var n model.Note
		err := row.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)
		return &n, err
	},
	Values: func(n *model.Note) []any {
		return []any{n.ID, n.OwnerID, n.Title, n.Content, n.CreatedAt, n.UpdatedAt}
	},
	OwnerOf: func(n *model.Note) string { return n.OwnerID },
}
