// Package audit persists immutable before/after records of every mutation.
// Writes happen after the business transaction commits and are best-effort:
// a failed audit write is logged operationally but never fails the request.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ignite/marketing-console/internal/domain"
)

// Actions recorded in the audit log.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Entry is one row of the audit_log table.
type Entry struct {
	ID        string    `db:"id" json:"id"`
	ActorID   string    `db:"actor_id" json:"actor_id"`
	TableName string    `db:"table_name" json:"table_name"`
	RecordID  string    `db:"record_id" json:"record_id"`
	Action    string    `db:"action" json:"action"`
	OldState  []byte    `db:"old_state" json:"old_state,omitempty"`
	NewState  []byte    `db:"new_state" json:"new_state,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Logger writes audit entries to PostgreSQL.
type Logger struct {
	db  *sqlx.DB
	log *zap.Logger
}

// NewLogger creates an audit logger.
func NewLogger(db *sqlx.DB, log *zap.Logger) *Logger {
	return &Logger{db: db, log: log}
}

// LogCreate records a create with the new state snapshot.
func (l *Logger) LogCreate(ctx context.Context, actorID, table, recordID string, newState domain.Record) {
	l.write(ctx, actorID, table, recordID, ActionCreate, nil, newState)
}

// LogUpdate records an update with both snapshots.
func (l *Logger) LogUpdate(ctx context.Context, actorID, table, recordID string, oldState, newState domain.Record) {
	l.write(ctx, actorID, table, recordID, ActionUpdate, oldState, newState)
}

// LogDelete records a delete with the old state snapshot.
func (l *Logger) LogDelete(ctx context.Context, actorID, table, recordID string, oldState domain.Record) {
	l.write(ctx, actorID, table, recordID, ActionDelete, oldState, nil)
}

func (l *Logger) write(ctx context.Context, actorID, table, recordID, action string, oldState, newState domain.Record) {
	entry := Entry{
		ID:        uuid.New().String(),
		ActorID:   actorID,
		TableName: table,
		RecordID:  recordID,
		Action:    action,
		CreatedAt: time.Now().UTC(),
	}
	entry.OldState = marshal(l.log, oldState)
	entry.NewState = marshal(l.log, newState)

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, actor_id, table_name, record_id, action, old_state, new_state, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, entry.ID, entry.ActorID, entry.TableName, entry.RecordID, entry.Action,
		nullBytes(entry.OldState), nullBytes(entry.NewState), entry.CreatedAt)
	if err != nil {
		l.log.Warn("audit write failed",
			zap.String("table", table),
			zap.String("record_id", recordID),
			zap.String("action", action),
			zap.Error(err))
	}
}

// Recent returns the newest audit entries, newest first.
func (l *Logger) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var entries []Entry
	err := l.db.SelectContext(ctx, &entries, `
		SELECT id, actor_id, table_name, record_id, action,
		       COALESCE(old_state, '{}'::jsonb) AS old_state,
		       COALESCE(new_state, '{}'::jsonb) AS new_state,
		       created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func marshal(log *zap.Logger, rec domain.Record) []byte {
	if rec == nil {
		return nil
	}
	b, err := json.Marshal(rec)
	if err != nil {
		log.Warn("audit snapshot marshal failed", zap.Error(err))
		return nil
	}
	return b
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
