package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ignite/marketing-console/internal/audit"
	"github.com/ignite/marketing-console/internal/catalog"
	"github.com/ignite/marketing-console/internal/csvcodec"
	"github.com/ignite/marketing-console/internal/domain"
	"github.com/ignite/marketing-console/internal/permission"
	"github.com/ignite/marketing-console/internal/validation"
)

// RowError reports one skipped CSV row. Row numbers are file line numbers,
// so the first data row is row 2 (the header is row 1).
type RowError struct {
	Row    int               `json:"row"`
	Errors map[string]string `json:"errors"`
}

// ImportSummary is the result of a bulk CSV import.
type ImportSummary struct {
	Imported int        `json:"imported"`
	Total    int        `json:"total"`
	Errors   []RowError `json:"errors,omitempty"`
}

// ImportService runs bulk CSV import and export for the supported workflows.
// All inserts of one request share a single transaction: row validation
// failures are soft (skipped and reported), infrastructure failures roll the
// whole batch back.
type ImportService struct {
	db       *sqlx.DB
	services map[string]*ResourceService
	audit    *audit.Logger
	log      *zap.Logger
}

// NewImportService wires the importer over the per-resource services.
func NewImportService(db *sqlx.DB, services map[string]*ResourceService, auditLog *audit.Logger, log *zap.Logger) *ImportService {
	return &ImportService{db: db, services: services, audit: auditLog, log: log}
}

func (s *ImportService) resolve(workflow string) (*ResourceService, error) {
	name, ok := catalog.ImportWorkflows[workflow]
	if !ok {
		return nil, &domain.ValidationError{Fields: map[string]string{
			"workflow": fmt.Sprintf("must be one of seo, websites, coupons; got %q", workflow),
		}}
	}
	rs, ok := s.services[name]
	if !ok {
		return nil, fmt.Errorf("no service registered for workflow %q", workflow)
	}
	return rs, nil
}

// Import parses csvData and inserts every valid row. Invalid rows (including
// duplicate business ids) are skipped, counted, and reported with their file
// line number.
func (s *ImportService) Import(ctx context.Context, actor *domain.Actor, workflow, csvData string) (*ImportSummary, error) {
	rs, err := s.resolve(workflow)
	if err != nil {
		return nil, err
	}

	cap := permission.Capability(rs.desc.Capability, permission.VerbCreate)
	if actor == nil || !permission.Has(actor.Role, cap) {
		return nil, &domain.PermissionError{Capability: cap}
	}

	rows, err := csvcodec.Decode(csvData, rs.desc.Columns)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin import transaction: %w", err)
	}
	defer tx.Rollback()

	summary := &ImportSummary{Total: len(rows)}
	var created []struct {
		id  string
		rec domain.Record
	}

	for i, rec := range rows {
		lineNo := i + 2 // header is line 1

		rs.normalizeForWrite(rec)
		if res := validation.Validate(rs.desc, rec); !res.Valid {
			summary.Errors = append(summary.Errors, RowError{Row: lineNo, Errors: res.Errors})
			continue
		}

		// A failed INSERT aborts a Postgres transaction, so each row gets a
		// savepoint to keep duplicate violations soft.
		if _, err := tx.ExecContext(ctx, "SAVEPOINT import_row"); err != nil {
			return nil, fmt.Errorf("savepoint: %w", err)
		}
		id, err := rs.repo.InsertTx(ctx, tx, rec, actor.ID)
		if err != nil {
			var dup *domain.DuplicateError
			if errors.As(err, &dup) {
				if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT import_row"); rbErr != nil {
					return nil, fmt.Errorf("rollback savepoint: %w", rbErr)
				}
				summary.Errors = append(summary.Errors, RowError{Row: lineNo, Errors: map[string]string{
					rs.desc.BusinessID: "already exists",
				}})
				continue
			}
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT import_row"); err != nil {
			return nil, fmt.Errorf("release savepoint: %w", err)
		}

		summary.Imported++
		created = append(created, struct {
			id  string
			rec domain.Record
		}{id, rec})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import transaction: %w", err)
	}

	for _, c := range created {
		s.audit.LogCreate(ctx, actor.ID, rs.desc.Table, c.id, c.rec)
	}
	s.log.Info("csv import finished",
		zap.String("workflow", workflow),
		zap.Int("imported", summary.Imported),
		zap.Int("total", summary.Total),
		zap.Int("skipped", len(summary.Errors)))
	return summary, nil
}

// Export renders every record of the workflow's resource as CSV text.
func (s *ImportService) Export(ctx context.Context, actor *domain.Actor, workflow string) (string, error) {
	rs, err := s.resolve(workflow)
	if err != nil {
		return "", err
	}

	cap := permission.Capability(rs.desc.Capability, permission.VerbRead)
	if actor == nil || !permission.Has(actor.Role, cap) {
		return "", &domain.PermissionError{Capability: cap}
	}

	const page = 200
	var all []domain.Record
	for offset := 0; ; offset += page {
		batch, total, err := rs.repo.List(ctx, nil, page, offset)
		if err != nil {
			return "", err
		}
		all = append(all, batch...)
		if len(all) >= total || len(batch) == 0 {
			break
		}
	}

	return csvcodec.Encode(all, rs.desc.Columns)
}
