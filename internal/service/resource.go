// Package service implements the CRUD workflows shared by every resource:
// permission gate, merge, validation, query execution, derived-state
// recomputation, and audit logging — in that order. Permission failures are
// checked before anything else so an unauthorized request has no side effect.
package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ignite/marketing-console/internal/audit"
	"github.com/ignite/marketing-console/internal/domain"
	"github.com/ignite/marketing-console/internal/lifecycle"
	"github.com/ignite/marketing-console/internal/permission"
	"github.com/ignite/marketing-console/internal/repository/postgres"
	"github.com/ignite/marketing-console/internal/validation"
)

// serverColumns are managed by the repository and stripped from client input.
var serverColumns = map[string]bool{
	"id": true, "created_by": true, "created_at": true, "updated_at": true,
}

// ResourceService runs the uniform CRUD contract for one resource.
type ResourceService struct {
	desc  *domain.Descriptor
	repo  *postgres.ResourceRepo
	audit *audit.Logger
	log   *zap.Logger
}

// NewResourceService wires a service for one descriptor.
func NewResourceService(desc *domain.Descriptor, repo *postgres.ResourceRepo, auditLog *audit.Logger, log *zap.Logger) *ResourceService {
	return &ResourceService{desc: desc, repo: repo, audit: auditLog, log: log}
}

// Descriptor exposes the resource configuration to the API layer.
func (s *ResourceService) Descriptor() *domain.Descriptor { return s.desc }

// List returns matching records plus the unpaginated total.
func (s *ResourceService) List(ctx context.Context, actor *domain.Actor, filters map[string]string, limit, offset int) ([]domain.Record, int, error) {
	if err := s.requireCapability(actor, permission.VerbRead); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, filters, limit, offset)
}

// Get returns one record or domain.ErrNotFound.
func (s *ResourceService) Get(ctx context.Context, actor *domain.Actor, id string) (domain.Record, error) {
	if err := s.requireCapability(actor, permission.VerbRead); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Create validates the candidate and inserts it with a server-generated id.
func (s *ResourceService) Create(ctx context.Context, actor *domain.Actor, candidate domain.Record) (domain.Record, error) {
	if err := s.requireCapability(actor, permission.VerbCreate); err != nil {
		return nil, err
	}

	rec := stripServerColumns(candidate)
	s.normalizeForWrite(rec)

	if res := validation.Validate(s.desc, rec); !res.Valid {
		return nil, &domain.ValidationError{Fields: res.Errors}
	}

	created, err := s.repo.Insert(ctx, rec, actorID(actor))
	if err != nil {
		return nil, err
	}

	s.audit.LogCreate(ctx, actorID(actor), s.desc.Table, created["id"].(string), created)
	return created, nil
}

// Update merges the partial into the stored record, re-validates the merged
// result, recomputes derived state, and persists only the changed fields.
func (s *ResourceService) Update(ctx context.Context, actor *domain.Actor, id string, partial domain.Record) (domain.Record, error) {
	stored, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnership(actor, stored, permission.CanUpdate); err != nil {
		return nil, err
	}

	fields := stripServerColumns(partial)
	merged := stripServerColumns(stored)
	for k, v := range fields {
		merged[k] = v
	}
	s.normalizeForWrite(merged)
	// Carry normalization back into the fields being written, including a
	// recomputed coupon status even when the client did not send one.
	if s.desc.Name == "coupons" {
		fields["coupon_code"] = merged["coupon_code"]
		fields["status"] = merged["status"]
	}

	if res := validation.Validate(s.desc, merged); !res.Valid {
		return nil, &domain.ValidationError{Fields: res.Errors}
	}

	updated, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	s.audit.LogUpdate(ctx, actorID(actor), s.desc.Table, id, stored, updated)
	return updated, nil
}

// Delete removes the record permanently under the same ownership rule as
// Update.
func (s *ResourceService) Delete(ctx context.Context, actor *domain.Actor, id string) error {
	stored, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireOwnership(actor, stored, permission.CanDelete); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.LogDelete(ctx, actorID(actor), s.desc.Table, id, stored)
	return nil
}

// requireCapability gates protected resources on a role capability. Public
// resources (no created_by column) skip the check entirely.
func (s *ResourceService) requireCapability(actor *domain.Actor, verb string) error {
	if !s.desc.Owned {
		return nil
	}
	cap := permission.Capability(s.desc.Capability, verb)
	if actor == nil || !permission.Has(actor.Role, cap) {
		return &domain.PermissionError{Capability: cap}
	}
	return nil
}

// requireOwnership gates update/delete: blanket capability or record owner.
func (s *ResourceService) requireOwnership(actor *domain.Actor, stored domain.Record, gate func(role, prefix, ownerID, actorID string) bool) error {
	if !s.desc.Owned {
		return nil
	}
	owner, _ := stored.String("created_by")
	if actor == nil || !gate(actor.Role, s.desc.Capability, owner, actor.ID) {
		return &domain.PermissionError{Capability: s.desc.Capability + "_OWNERSHIP"}
	}
	return nil
}

// normalizeForWrite applies resource-specific canonicalization before
// validation: coupon codes are uppercased and coupon status is always the
// lifecycle evaluator's output, never the client's.
func (s *ResourceService) normalizeForWrite(rec domain.Record) {
	if s.desc.Name != "coupons" {
		return
	}
	if code, ok := rec.String("coupon_code"); ok {
		rec["coupon_code"] = strings.ToUpper(code)
	}
	if !rec.Has("redemption_count") {
		rec["redemption_count"] = int64(0)
	}
	applyCouponLifecycle(rec, time.Now().UTC())
}

// applyCouponLifecycle overwrites status with the evaluator result when the
// inputs parse. Unparseable inputs are left for the validator to report.
func applyCouponLifecycle(rec domain.Record, now time.Time) {
	expiryStr, ok := rec.String("expiry_date")
	if !ok {
		return
	}
	expiry, err := time.Parse("2006-01-02", expiryStr)
	if err != nil {
		return
	}
	limit, ok := rec.Int("usage_limit")
	if !ok {
		return
	}
	count, _ := rec.Int("redemption_count")
	requested, _ := rec.String("status")

	// Expiry is date-granular: a coupon expires at the end of its expiry day.
	endOfDay := expiry.AddDate(0, 0, 1).Add(-time.Nanosecond)
	rec["status"] = lifecycle.EffectiveStatus(endOfDay, now, limit, count, requested)
}

func stripServerColumns(rec domain.Record) domain.Record {
	out := make(domain.Record, len(rec))
	for k, v := range rec {
		if serverColumns[k] {
			continue
		}
		out[k] = v
	}
	return out
}

func actorID(actor *domain.Actor) string {
	if actor == nil {
		return ""
	}
	return actor.ID
}
