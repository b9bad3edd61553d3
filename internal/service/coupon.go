package service

import (
	"context"
	"errors"
	"time"

	"github.com/ignite/marketing-console/internal/domain"
	"github.com/ignite/marketing-console/internal/lifecycle"
	"github.com/ignite/marketing-console/internal/permission"
)

// Redemption conflicts: the coupon exists but cannot be redeemed.
var (
	ErrCouponExpired  = errors.New("coupon has expired")
	ErrCouponDepleted = errors.New("coupon usage limit reached")
	ErrCouponInactive = errors.New("coupon is inactive")
)

// CouponService adds the redemption workflow on top of the generic CRUD
// service. Redemption funnels through the same lifecycle evaluator as create
// and update, so a stale stored status can never allow an extra redemption.
type CouponService struct {
	*ResourceService
}

// NewCouponService wraps the coupons resource service.
func NewCouponService(rs *ResourceService) *CouponService {
	return &CouponService{ResourceService: rs}
}

// Redeem increments the redemption count of an active coupon and recomputes
// its status. Expired, depleted, and inactive coupons are rejected.
func (s *CouponService) Redeem(ctx context.Context, actor *domain.Actor, id string) (domain.Record, error) {
	cap := permission.Capability(s.desc.Capability, permission.VerbRedeem)
	if actor == nil || !permission.Has(actor.Role, cap) {
		return nil, &domain.PermissionError{Capability: cap}
	}

	stored, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	evaluated := stored.Clone()
	applyCouponLifecycle(evaluated, time.Now().UTC())
	status, _ := evaluated.String("status")
	switch status {
	case lifecycle.StatusExpired:
		return nil, ErrCouponExpired
	case lifecycle.StatusDepleted:
		return nil, ErrCouponDepleted
	case lifecycle.StatusInactive:
		return nil, ErrCouponInactive
	}

	count, _ := stored.Int("redemption_count")
	evaluated["redemption_count"] = count + 1
	applyCouponLifecycle(evaluated, time.Now().UTC())
	newStatus, _ := evaluated.String("status")

	updated, err := s.repo.Update(ctx, id, domain.Record{
		"redemption_count": count + 1,
		"status":           newStatus,
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogUpdate(ctx, actor.ID, s.desc.Table, id, stored, updated)
	return updated, nil
}
