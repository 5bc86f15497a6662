package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	apperrors "didathing/internal/platform/errors"
)

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Mapper binds a record type to the columns of one collection.
type Mapper[T any] struct {
	// Columns lists the non-key columns, in the order Values returns them.
	Columns []string
	Values  func(T) []any
	// Scan reads a row of "id" followed by Columns.
	Scan    func(Scanner) (T, error)
	Key     func(T) int64
	WithKey func(T, int64) T
}

// Collection is a keyed record set with secondary-index lookups.
type Collection[T any] struct {
	db         *DB
	name       string
	def        collectionDef
	mapper     Mapper[T]
	selectCols string // "id, col1, col2..."
}

func NewCollection[T any](db *DB, name string, mapper Mapper[T]) (*Collection[T], error) {
	def, ok := collections[name]
	if !ok {
		return nil, fmt.Errorf("unknown collection %q: %w", name, apperrors.ErrStorage)
	}
	if len(mapper.Columns) == 0 || mapper.Values == nil || mapper.Scan == nil || mapper.Key == nil || mapper.WithKey == nil {
		return nil, fmt.Errorf("incomplete mapper for collection %q", name)
	}
	return &Collection[T]{
		db:         db,
		name:       name,
		def:        def,
		mapper:     mapper,
		selectCols: "id, " + strings.Join(mapper.Columns, ", "),
	}, nil
}

// Name is the collection name used in atomic-unit scopes.
func (c *Collection[T]) Name() string {
	return c.name
}

// Add inserts record and returns it with its assigned key.
func (c *Collection[T]) Add(ctx context.Context, record T) (T, error) {
	var zero T
	q, err := c.db.conn(ctx, c.name)
	if err != nil {
		return zero, err
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(c.mapper.Columns)), ", ")
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", c.def.table, strings.Join(c.mapper.Columns, ", "), placeholders)
	res, err := q.ExecContext(ctx, stmt, c.mapper.Values(record)...)
	if err != nil {
		return zero, storageErr("add "+c.name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return zero, storageErr("read "+c.name+" key", err)
	}
	return c.mapper.WithKey(record, id), nil
}

// Get returns the record stored under id, or ErrNotFound.
func (c *Collection[T]) Get(ctx context.Context, id int64) (T, error) {
	var zero T
	q, err := c.db.conn(ctx, c.name)
	if err != nil {
		return zero, err
	}
	row := q.QueryRowContext(ctx, fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", c.selectCols, c.def.table), id)
	record, err := c.mapper.Scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, fmt.Errorf("%s %d: %w", c.name, id, apperrors.ErrNotFound)
		}
		return zero, storageErr("get "+c.name, err)
	}
	return record, nil
}

// GetAll returns every record in key order.
func (c *Collection[T]) GetAll(ctx context.Context) ([]T, error) {
	return c.query(ctx, "get all "+c.name, fmt.Sprintf("SELECT %s FROM %s ORDER BY id", c.selectCols, c.def.table))
}

// GetAllByIndex returns the records whose index key equals key, ordered by
// index key and then by primary key (insertion order for equal keys).
func (c *Collection[T]) GetAllByIndex(ctx context.Context, index string, key ...any) ([]T, error) {
	cols, ok := c.def.indexes[index]
	if !ok {
		return nil, fmt.Errorf("collection %q has no index %q: %w", c.name, index, apperrors.ErrStorage)
	}
	if len(key) != len(cols) {
		return nil, fmt.Errorf("index %s.%s takes %d key parts, got %d: %w", c.name, index, len(cols), len(key), apperrors.ErrStorage)
	}
	where := make([]string, 0, len(cols))
	for _, col := range cols {
		where = append(where, col+" = ?")
	}
	stmt := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s, id",
		c.selectCols, c.def.table, strings.Join(where, " AND "), strings.Join(cols, ", "))
	return c.query(ctx, "get "+c.name+" by "+index, stmt, key...)
}

// Put fully replaces the stored record with the same key. A missing key is
// ErrNotFound; Put never creates records.
func (c *Collection[T]) Put(ctx context.Context, record T) error {
	q, err := c.db.conn(ctx, c.name)
	if err != nil {
		return err
	}
	sets := make([]string, 0, len(c.mapper.Columns))
	for _, col := range c.mapper.Columns {
		sets = append(sets, col+" = ?")
	}
	id := c.mapper.Key(record)
	args := append(c.mapper.Values(record), id)
	res, err := q.ExecContext(ctx, fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", c.def.table, strings.Join(sets, ", ")), args...)
	if err != nil {
		return storageErr("put "+c.name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("put "+c.name, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", c.name, id, apperrors.ErrNotFound)
	}
	return nil
}

// Delete removes the record stored under id. Deleting a missing key succeeds.
func (c *Collection[T]) Delete(ctx context.Context, id int64) error {
	q, err := c.db.conn(ctx, c.name)
	if err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", c.def.table), id); err != nil {
		return storageErr("delete "+c.name, err)
	}
	return nil
}

func (c *Collection[T]) query(ctx context.Context, op, stmt string, args ...any) ([]T, error) {
	q, err := c.db.conn(ctx, c.name)
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		record, err := c.mapper.Scan(rows)
		if err != nil {
			return nil, storageErr(op, err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return out, nil
}
