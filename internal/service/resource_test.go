package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ignite/marketing-console/internal/audit"
	"github.com/ignite/marketing-console/internal/catalog"
	"github.com/ignite/marketing-console/internal/domain"
	"github.com/ignite/marketing-console/internal/permission"
	"github.com/ignite/marketing-console/internal/repository/postgres"
)

var (
	admin   = &domain.Actor{ID: "user-admin", Name: "Admin", Role: permission.RoleAdmin}
	manager = &domain.Actor{ID: "user-mgr", Name: "Manager", Role: permission.RoleManager}
	editor  = &domain.Actor{ID: "user-ed", Name: "Editor", Role: permission.RoleEditor}
	viewer  = &domain.Actor{ID: "user-view", Name: "Viewer", Role: permission.RoleViewer}
)

func newService(t *testing.T, resource string) (*ResourceService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "postgres")
	desc, ok := catalog.Get(resource)
	require.True(t, ok)
	log := zap.NewNop()
	repo := postgres.NewResourceRepo(sqlxDB, desc)
	return NewResourceService(desc, repo, audit.NewLogger(sqlxDB, log), log), mock
}

var couponSelectColumns = []string{
	"id", "created_by", "coupon_code", "discount_amount", "usage_limit",
	"redemption_count", "issued_date", "expiry_date", "status", "stackable",
	"campaign_source", "applicable_items", "remarks", "created_at", "updated_at",
}

func couponRow(id, owner, code string, limit, count int64, expiry time.Time, status string) *sqlmock.Rows {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(couponSelectColumns).
		AddRow(id, owner, code, 10.0, limit, count,
			time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), expiry, status,
			false, nil, nil, nil, now, now)
}

var farFuture = time.Date(2099, 12, 31, 0, 0, 0, 0, time.UTC)

func TestCreateDeniedWithoutCapability(t *testing.T) {
	svc, mock := newService(t, "coupons")

	_, err := svc.Create(context.Background(), viewer, domain.Record{"coupon_code": "SAVE10"})
	var perm *domain.PermissionError
	require.ErrorAs(t, err, &perm)
	assert.Equal(t, "COUPON_CREATE", perm.Capability)

	// Denied before any query ran.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateNormalizesAndComputesStatus(t *testing.T) {
	svc, mock := newService(t, "coupons")

	// Lowercase code is canonicalized and the lifecycle evaluator overrides
	// the client status: the expiry date is already past.
	mock.ExpectExec("INSERT INTO coupons").
		WithArgs(sqlmock.AnyArg(), "user-mgr", "SPRING21", 5.0, int64(10), int64(0),
			"2021-01-01", "2021-06-30", "expired", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, created_by, coupon_code").
		WillReturnRows(couponRow("c-1", "user-mgr", "SPRING21", 10, 0,
			time.Date(2021, 6, 30, 0, 0, 0, 0, time.UTC), "expired"))
	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec, err := svc.Create(context.Background(), manager, domain.Record{
		"coupon_code":     "spring21",
		"discount_amount": 5.0,
		"usage_limit":     float64(10),
		"issued_date":     "2021-01-01",
		"expiry_date":     "2021-06-30",
		"status":          "active",
	})
	require.NoError(t, err)
	assert.Equal(t, "c-1", rec["id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateValidationFailureHasNoSideEffect(t *testing.T) {
	svc, mock := newService(t, "coupons")

	_, err := svc.Create(context.Background(), manager, domain.Record{
		"coupon_code": "SAVE10",
		// discount_amount, usage_limit, and the dates are missing.
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields["discount_amount"])
	assert.Equal(t, "is required", verr.Fields["usage_limit"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateValidatesMergedRecord(t *testing.T) {
	svc, mock := newService(t, "coupons")

	// Stored coupon has 3 redemptions; lowering the limit below that must be
	// rejected even though the partial body alone looks fine.
	mock.ExpectQuery("SELECT id, created_by, coupon_code").
		WithArgs("c-1").
		WillReturnRows(couponRow("c-1", "user-mgr", "SAVE10", 10, 3, farFuture, "active"))

	_, err := svc.Update(context.Background(), manager, "c-1", domain.Record{
		"usage_limit": float64(2),
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "cannot exceed usage_limit", verr.Fields["redemption_count"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRecomputesStatus(t *testing.T) {
	svc, mock := newService(t, "coupons")

	mock.ExpectQuery("SELECT id, created_by, coupon_code").
		WithArgs("c-1").
		WillReturnRows(couponRow("c-1", "user-mgr", "SAVE10", 10, 3, farFuture, "active"))
	// Limit drops to exactly the redemption count: the written fields carry
	// the recomputed depleted status although the client never sent one.
	mock.ExpectExec("UPDATE coupons SET").
		WithArgs("SAVE10", int64(3), "depleted", sqlmock.AnyArg(), "c-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, created_by, coupon_code").
		WithArgs("c-1").
		WillReturnRows(couponRow("c-1", "user-mgr", "SAVE10", 3, 3, farFuture, "depleted"))
	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec, err := svc.Update(context.Background(), manager, "c-1", domain.Record{
		"usage_limit": float64(3),
	})
	require.NoError(t, err)
	assert.Equal(t, "depleted", rec["status"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateNonOwnerEditorForbidden(t *testing.T) {
	svc, mock := newService(t, "coupons")

	mock.ExpectQuery("SELECT id, created_by, coupon_code").
		WithArgs("c-1").
		WillReturnRows(couponRow("c-1", "user-mgr", "SAVE10", 10, 0, farFuture, "active"))

	_, err := svc.Update(context.Background(), editor, "c-1", domain.Record{"remarks": "mine now"})
	var perm *domain.PermissionError
	require.ErrorAs(t, err, &perm)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByOwner(t *testing.T) {
	svc, mock := newService(t, "coupons")

	// Editors lack COUPON_DELETE but may delete their own records.
	mock.ExpectQuery("SELECT id, created_by, coupon_code").
		WithArgs("c-2").
		WillReturnRows(couponRow("c-2", "user-ed", "MINE99", 10, 0, farFuture, "active"))
	mock.ExpectExec("DELETE FROM coupons").
		WithArgs("c-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.Delete(context.Background(), editor, "c-2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMissingRecord(t *testing.T) {
	svc, mock := newService(t, "coupons")

	mock.ExpectQuery("SELECT id, created_by, coupon_code").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(couponSelectColumns))

	_, err := svc.Get(context.Background(), admin, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPublicResourceSkipsCapabilityGate(t *testing.T) {
	svc, mock := newService(t, "blogs")

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT id, blog_id").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	// No actor at all: blogs carry no created_by and are open.
	_, total, err := svc.List(context.Background(), nil, nil, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
