package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ignite/marketing-console/internal/domain"
)

func newMock(t *testing.T) (*Logger, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewLogger(sqlx.NewDb(db, "postgres"), zap.NewNop()), mock
}

func TestLogCreate(t *testing.T) {
	logger, mock := newMock(t)

	mock.ExpectExec("INSERT INTO audit_log").
		WithArgs(sqlmock.AnyArg(), "user-1", "coupons", "rec-1", ActionCreate,
			[]byte(`{"coupon_code":"SAVE10"}`), nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	logger.LogCreate(context.Background(), "user-1", "coupons", "rec-1",
		domain.Record{"coupon_code": "SAVE10"})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogUpdateCarriesBothSnapshots(t *testing.T) {
	logger, mock := newMock(t)

	mock.ExpectExec("INSERT INTO audit_log").
		WithArgs(sqlmock.AnyArg(), "user-1", "websites", "rec-2", ActionUpdate,
			[]byte(`{"page_count":10}`), []byte(`{"page_count":12}`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	logger.LogUpdate(context.Background(), "user-1", "websites", "rec-2",
		domain.Record{"page_count": 10}, domain.Record{"page_count": 12})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteFailureIsSwallowed(t *testing.T) {
	logger, mock := newMock(t)

	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnError(errors.New("connection reset"))

	// Must not panic or surface the error.
	logger.LogDelete(context.Background(), "user-1", "coupons", "rec-3",
		domain.Record{"coupon_code": "GONE"})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecent(t *testing.T) {
	logger, mock := newMock(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "actor_id", "table_name", "record_id", "action", "old_state", "new_state", "created_at"}).
		AddRow("a-2", "user-1", "coupons", "rec-9", ActionDelete, []byte(`{"x":1}`), []byte(`{}`), now).
		AddRow("a-1", "user-2", "blogs", "rec-8", ActionCreate, []byte(`{}`), []byte(`{"y":2}`), now.Add(-time.Minute))

	mock.ExpectQuery("SELECT id, actor_id, table_name").
		WithArgs(2).
		WillReturnRows(rows)

	entries, err := logger.Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a-2", entries[0].ID)
	assert.Equal(t, ActionDelete, entries[0].Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentClampsLimit(t *testing.T) {
	logger, mock := newMock(t)

	mock.ExpectQuery("SELECT id, actor_id, table_name").
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows([]string{"id", "actor_id", "table_name", "record_id", "action", "old_state", "new_state", "created_at"}))

	_, err := logger.Recent(context.Background(), -5)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
