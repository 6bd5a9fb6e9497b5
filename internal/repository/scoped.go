package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
)

// Common errors for owner-scoped operations.
var (
	// ErrNotFound means no row with that id is owned by the caller. A row
	// owned by someone else is reported the same way.
	ErrNotFound = errors.New("not found")
	// ErrMissingOwner is returned when creating a row without an owner.
	ErrMissingOwner = errors.New("entity has no owner")
	// ErrUnknownColumn is returned when a change names a non-updatable column.
	ErrUnknownColumn = errors.New("column is not updatable")
)

// Scanner is satisfied by both pgx.Row and pgx.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Schema describes how an entity kind maps onto its table.
type Schema[T any] struct {
	// Table is the table name.
	Table string
	// Columns is the select/insert column list. It must contain id, owner_id,
	// created_at and updated_at.
	Columns []string
	// ListOrder is the recency column lists are sorted by, newest first.
	ListOrder string
	// SearchColumns are matched case-insensitively by Search.
	SearchColumns []string
	// Updatable lists the columns Update may change besides updated_at.
	Updatable []string

	Scan    func(row Scanner) (*T, error)
	Values  func(entity *T) []any
	OwnerOf func(entity *T) string
}

// Changes maps column names to new values for a partial update.
// A nil value writes SQL NULL.
type Changes map[string]any

// Scoped is a repository whose every statement is filtered by owner_id.
type Scoped[T any] struct {
	db     DBTX
	schema Schema[T]

	selectList string
	table      string
}

// NewScoped creates an owner-scoped repository for schema.
func NewScoped[T any](db DBTX, schema Schema[T]) *Scoped[T] {
	quoted := make([]string, len(schema.Columns))
	for i, c := range schema.Columns {
		quoted[i] = pq.QuoteIdentifier(c)
	}

	return &Scoped[T]{
		db:         db,
		schema:     schema,
		selectList: strings.Join(quoted, ", "),
		table:      pq.QuoteIdentifier(schema.Table),
	}
}

// Create inserts entity. The owner must already be stamped on it.
func (s *Scoped[T]) Create(ctx context.Context, entity *T) error {
	if s.schema.OwnerOf(entity) == "" {
		return ErrMissingOwner
	}

	placeholders := make([]string, len(s.schema.Columns))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.table, s.selectList, strings.Join(placeholders, ", "))

	if _, err := s.db.Exec(ctx, query, s.schema.Values(entity)...); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.schema.Table, err)
	}

	return nil
}

// Get returns the entity with id owned by ownerID.
func (s *Scoped[T]) Get(ctx context.Context, ownerID, id string) (*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1 AND owner_id = $2", s.selectList, s.table)

	entity, err := s.schema.Scan(s.db.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", s.schema.Table, err)
	}

	return entity, nil
}

// List returns entities owned by ownerID, newest first by the schema's
// list order. A limit of 0 returns all of them.
func (s *Scoped[T]) List(ctx context.Context, ownerID string, limit int) ([]*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE owner_id = $1 ORDER BY %s DESC, id DESC",
		s.selectList, s.table, pq.QuoteIdentifier(s.schema.ListOrder))
	args := []any{ownerID}

	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	return s.queryAll(ctx, query, args...)
}

// Count returns how many entities ownerID has.
func (s *Scoped[T]) Count(ctx context.Context, ownerID string) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE owner_id = $1", s.table)

	var n int64
	if err := s.db.QueryRow(ctx, query, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", s.schema.Table, err)
	}

	return n, nil
}

// Search returns entities owned by ownerID where any search column contains
// q, ignoring case. Results are ordered by updated_at, newest first.
func (s *Scoped[T]) Search(ctx context.Context, ownerID, q string) ([]*T, error) {
	conds := make([]string, len(s.schema.SearchColumns))
	for i, c := range s.schema.SearchColumns {
		conds[i] = fmt.Sprintf(`%s ILIKE $2 ESCAPE '\'`, pq.QuoteIdentifier(c))
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE owner_id = $1 AND (%s) ORDER BY updated_at DESC, id DESC",
		s.selectList, s.table, strings.Join(conds, " OR "))

	return s.queryAll(ctx, query, ownerID, ContainsPattern(q))
}

// Update applies changes to the row matching both id and ownerID in a
// single statement and returns the updated entity. updated_at is always set.
func (s *Scoped[T]) Update(ctx context.Context, ownerID, id string, changes Changes, at time.Time) (*T, error) {
	columns := make([]string, 0, len(changes))
	for c := range changes {
		if !slices.Contains(s.schema.Updatable, c) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, c)
		}
		columns = append(columns, c)
	}
	slices.Sort(columns)

	sets := []string{"updated_at = $3"}
	args := []any{id, ownerID, at}
	for _, c := range columns {
		args = append(args, changes[c])
		sets = append(sets, fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(c), len(args)))
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $1 AND owner_id = $2 RETURNING %s",
		s.table, strings.Join(sets, ", "), s.selectList)

	entity, err := s.schema.Scan(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update %s: %w", s.schema.Table, err)
	}

	return entity, nil
}

// Delete removes the row matching both id and ownerID.
func (s *Scoped[T]) Delete(ctx context.Context, ownerID, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1 AND owner_id = $2", s.table)

	result, err := s.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", s.schema.Table, err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Scoped[T]) queryAll(ctx context.Context, query string, args ...any) ([]*T, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.schema.Table, err)
	}
	defer rows.Close()

	entities := make([]*T, 0)
	for rows.Next() {
		entity, err := s.schema.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", s.schema.Table, err)
		}
		entities = append(entities, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", s.schema.Table, err)
	}

	return entities, nil
}

// ContainsPattern builds an ILIKE pattern matching q anywhere, with LIKE
// wildcards in q taken literally.
func ContainsPattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}
