package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHas(t *testing.T) {
	tests := []struct {
		role       string
		capability string
		want       bool
	}{
		{RoleAdmin, "COUPON_DELETE", true},
		{RoleAdmin, "ANYTHING_AT_ALL", true},
		{RoleManager, "COUPON_CREATE", true},
		{RoleManager, "COUPON_DELETE", true},
		{RoleManager, "SEO_UPDATE", true},
		{RoleManager, "COUPON_REDEEM", true},
		{RoleEditor, "COUPON_READ", true},
		{RoleEditor, "COUPON_CREATE", true},
		{RoleEditor, "COUPON_REDEEM", true},
		{RoleEditor, "COUPON_UPDATE", false},
		{RoleEditor, "WEBSITE_DELETE", false},
		{RoleViewer, "SEO_READ", true},
		{RoleViewer, "SEO_CREATE", false},
		{RoleViewer, "COUPON_REDEEM", false},
		{"intruder", "COUPON_READ", false},
		{"", "COUPON_READ", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Has(tt.role, tt.capability),
			"role=%s capability=%s", tt.role, tt.capability)
	}
}

func TestCapability(t *testing.T) {
	assert.Equal(t, "COUPON_CREATE", Capability("COUPON", VerbCreate))
	assert.Equal(t, "WEBSITE_READ", Capability("WEBSITE", VerbRead))
}

func TestOwnershipGates(t *testing.T) {
	// Editors lack blanket update/delete; ownership lets them through.
	assert.True(t, CanUpdate(RoleEditor, "COUPON", "user-1", "user-1"))
	assert.False(t, CanUpdate(RoleEditor, "COUPON", "user-1", "user-2"))
	assert.True(t, CanDelete(RoleEditor, "SEO", "user-1", "user-1"))
	assert.False(t, CanDelete(RoleEditor, "SEO", "user-1", "user-2"))

	// Blanket capability bypasses ownership entirely.
	assert.True(t, CanUpdate(RoleManager, "COUPON", "user-1", "user-2"))
	assert.True(t, CanDelete(RoleAdmin, "WEBSITE", "user-1", "user-2"))

	// An empty owner id never matches.
	assert.False(t, CanUpdate(RoleViewer, "COUPON", "", ""))
	assert.False(t, CanDelete(RoleViewer, "COUPON", "", "user-1"))
}
