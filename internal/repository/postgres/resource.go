// Package postgres implements the generic resource repository. One repo type
// serves every resource in the catalog; the descriptor supplies the table
// name and column schema, and all user-supplied values are bound as
// parameters, never interpolated.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignite/marketing-console/internal/domain"
)

const uniqueViolation = "23505"

// ResourceRepo executes parameterized CRUD queries for one resource.
type ResourceRepo struct {
	db   *sqlx.DB
	desc *domain.Descriptor
}

// NewResourceRepo creates a repository bound to a descriptor.
func NewResourceRepo(db *sqlx.DB, desc *domain.Descriptor) *ResourceRepo {
	return &ResourceRepo{db: db, desc: desc}
}

// selectColumns returns the full column list for reads, including the
// server-managed columns.
func (r *ResourceRepo) selectColumns() []string {
	cols := []string{"id"}
	if r.desc.Owned {
		cols = append(cols, "created_by")
	}
	cols = append(cols, r.desc.ColumnKeys()...)
	cols = append(cols, "created_at", "updated_at")
	return cols
}

// List returns records matching the filters, newest first. Filter keys are
// checked against the descriptor's allow-list; unknown keys are rejected so
// a caller bug cannot widen the query surface.
func (r *ResourceRepo) List(ctx context.Context, filters map[string]string, limit, offset int) ([]domain.Record, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	allowed := r.desc.Filterable()
	where := []string{}
	args := []any{}
	idx := 1
	for key, val := range filters {
		if _, ok := allowed[key]; !ok {
			return nil, 0, fmt.Errorf("column %q is not filterable", key)
		}
		where = append(where, fmt.Sprintf("%s = $%d", key, idx))
		args = append(args, val)
		idx++
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQ := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", r.desc.Table, clause)
	if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.desc.Table, err)
	}

	q := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		strings.Join(r.selectColumns(), ", "), r.desc.Table, clause, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.desc.Table, err)
	}
	defer rows.Close()

	out := []domain.Record{}
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan %s: %w", r.desc.Table, err)
		}
		out = append(out, rec)
	}
	return out, total, rows.Err()
}

// GetByID returns one record or domain.ErrNotFound.
func (r *ResourceRepo) GetByID(ctx context.Context, id string) (domain.Record, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1",
		strings.Join(r.selectColumns(), ", "), r.desc.Table)
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", r.desc.Table, err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get %s: %w", r.desc.Table, err)
		}
		return nil, domain.ErrNotFound
	}
	rec, err := r.scanRecord(rows)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", r.desc.Table, err)
	}
	return rec, nil
}

// Insert writes a new row with a generated id and timestamps and returns the
// stored record.
func (r *ResourceRepo) Insert(ctx context.Context, rec domain.Record, createdBy string) (domain.Record, error) {
	id, err := r.insertWith(ctx, r.db, rec, createdBy)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// InsertTx writes a new row inside an existing transaction and returns the
// generated id. Used by the CSV importer.
func (r *ResourceRepo) InsertTx(ctx context.Context, tx *sqlx.Tx, rec domain.Record, createdBy string) (string, error) {
	return r.insertWith(ctx, tx, rec, createdBy)
}

func (r *ResourceRepo) insertWith(ctx context.Context, q sqlx.ExtContext, rec domain.Record, createdBy string) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	cols := []string{"id"}
	args := []any{id}
	if r.desc.Owned {
		cols = append(cols, "created_by")
		args = append(args, nullString(createdBy))
	}
	for _, col := range r.desc.Columns {
		v, ok := rec[col.Key]
		if !ok || v == nil {
			continue
		}
		cols = append(cols, col.Key)
		args = append(args, toDBValue(col, v))
	}
	cols = append(cols, "created_at", "updated_at")
	args = append(args, now, now)

	marks := make([]string, len(args))
	for i := range args {
		marks[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		r.desc.Table, strings.Join(cols, ", "), strings.Join(marks, ", "))

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return "", &domain.DuplicateError{Field: r.desc.BusinessID}
		}
		return "", fmt.Errorf("insert %s: %w", r.desc.Table, err)
	}
	return id, nil
}

// Update applies the given schema fields to an existing row using a dynamic
// SET clause and returns the stored record. Fields not present keep their
// prior value.
func (r *ResourceRepo) Update(ctx context.Context, id string, fields domain.Record) (domain.Record, error) {
	sets := []string{}
	args := []any{}
	idx := 1
	for _, col := range r.desc.Columns {
		v, ok := fields[col.Key]
		if !ok {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", col.Key, idx))
		if v == nil {
			args = append(args, nil)
		} else {
			args = append(args, toDBValue(col, v))
		}
		idx++
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	sets = append(sets, fmt.Sprintf("updated_at = $%d", idx))
	args = append(args, time.Now().UTC())
	idx++

	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		r.desc.Table, strings.Join(sets, ", "), idx)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &domain.DuplicateError{Field: r.desc.BusinessID}
		}
		return nil, fmt.Errorf("update %s: %w", r.desc.Table, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a row permanently.
func (r *ResourceRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.desc.Table), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.desc.Table, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanRecord reads the current row into a Record using typed scan targets
// derived from the column schema.
func (r *ResourceRepo) scanRecord(rows *sql.Rows) (domain.Record, error) {
	schema := r.desc.Columns

	var id string
	var createdBy sql.NullString
	var createdAt, updatedAt time.Time

	targets := []any{&id}
	if r.desc.Owned {
		targets = append(targets, &createdBy)
	}

	holders := make([]any, len(schema))
	for i, col := range schema {
		switch col.Type {
		case domain.TypeInteger:
			holders[i] = &sql.NullInt64{}
		case domain.TypeNumber:
			holders[i] = &sql.NullFloat64{}
		case domain.TypeBoolean:
			holders[i] = &sql.NullBool{}
		case domain.TypeDate:
			holders[i] = &sql.NullTime{}
		default:
			holders[i] = &sql.NullString{}
		}
		targets = append(targets, holders[i])
	}
	targets = append(targets, &createdAt, &updatedAt)

	if err := rows.Scan(targets...); err != nil {
		return nil, err
	}

	rec := domain.Record{"id": id}
	if r.desc.Owned && createdBy.Valid {
		rec["created_by"] = createdBy.String
	}
	for i, col := range schema {
		switch h := holders[i].(type) {
		case *sql.NullInt64:
			if h.Valid {
				rec[col.Key] = h.Int64
			}
		case *sql.NullFloat64:
			if h.Valid {
				rec[col.Key] = h.Float64
			}
		case *sql.NullBool:
			if h.Valid {
				rec[col.Key] = h.Bool
			}
		case *sql.NullTime:
			if h.Valid {
				rec[col.Key] = h.Time.Format("2006-01-02")
			}
		case *sql.NullString:
			if h.Valid {
				rec[col.Key] = h.String
			}
		}
	}
	rec["created_at"] = createdAt.UTC().Format(time.RFC3339)
	rec["updated_at"] = updatedAt.UTC().Format(time.RFC3339)
	return rec, nil
}

func toDBValue(col domain.Column, v any) any {
	switch col.Type {
	case domain.TypeInteger:
		if n, ok := v.(float64); ok {
			return int64(n)
		}
	case domain.TypeNumber:
		if n, ok := v.(int64); ok {
			return float64(n)
		}
	}
	return v
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == uniqueViolation
	}
	return false
}
