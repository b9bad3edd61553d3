// Package lifecycle derives coupon status from stored attributes and the
// current time. Every create, update, and redeem funnels through
// EffectiveStatus; clients can never write a status that contradicts it.
package lifecycle

import "time"

// Coupon statuses.
const (
	StatusActive   = "active"
	StatusExpired  = "expired"
	StatusDepleted = "depleted"
	StatusInactive = "inactive"
)

// UnlimitedUsage marks a coupon with no redemption cap.
const UnlimitedUsage = -1

// EffectiveStatus computes the status a coupon must carry. Rule order
// matters: expiry wins over depletion, and both override the requested
// status. An empty requested status defaults to active.
func EffectiveStatus(expiry, now time.Time, usageLimit, redemptionCount int64, requested string) string {
	if expiry.Before(now) {
		return StatusExpired
	}
	if usageLimit != UnlimitedUsage && redemptionCount >= usageLimit {
		return StatusDepleted
	}
	if requested == "" {
		return StatusActive
	}
	return requested
}
