package repository

import "github.com/secondbrain/secondbrain/internal/model"

// LinkSchema maps model.Link onto the links table.
var LinkSchema = Schema[model.Link]{
	Table:         "links",
	Columns:       []string{"id", "owner_id", "title", "url", "created_at", "updated_at"},
	ListOrder:     "created_at",
	SearchColumns: []string{"title", "url"},
	Updatable:     []string{"title", "url"},
	Scan: func(row Scanner) (*model.Link, error) {
		var l model.Link
		err := row.Scan(&l.ID, &l.OwnerID, &l.Title, &l.URL, &l.CreatedAt, &l.UpdatedAt)
		return &l, err
	},
	Values: func(l *model.Link) []any {
		return []any{l.ID, l.OwnerID, l.Title, l.URL, l.CreatedAt, l.UpdatedAt}
	},
	OwnerOf: func(l *model.Link) string { return l.OwnerID },
}
