package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/marketing-console/internal/catalog"
	"github.com/ignite/marketing-console/internal/domain"
)

func desc(t *testing.T, name string) *domain.Descriptor {
	t.Helper()
	d, ok := catalog.Get(name)
	require.True(t, ok, "descriptor %s not registered", name)
	return d
}

func validCoupon() domain.Record {
	return domain.Record{
		"coupon_code":      "SUMMER2026",
		"discount_amount":  15.0,
		"usage_limit":      float64(100),
		"redemption_count": float64(0),
		"issued_date":      "2026-01-01",
		"expiry_date":      "2026-12-31",
		"status":           "active",
	}
}

func TestValidateAcceptsCompleteCoupon(t *testing.T) {
	res := Validate(desc(t, "coupons"), validCoupon())
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestValidateRequiredFields(t *testing.T) {
	rec := validCoupon()
	delete(rec, "coupon_code")
	rec["expiry_date"] = ""

	res := Validate(desc(t, "coupons"), rec)
	assert.False(t, res.Valid)
	assert.Equal(t, "is required", res.Errors["coupon_code"])
	assert.Equal(t, "is required", res.Errors["expiry_date"])
}

func TestValidateFieldChecks(t *testing.T) {
	tests := []struct {
		name     string
		resource string
		mutate   func(domain.Record)
		field    string
		want     string
	}{
		{
			name:     "bad date format",
			resource: "coupons",
			mutate:   func(r domain.Record) { r["issued_date"] = "01/15/2026" },
			field:    "issued_date",
			want:     "must be a date in YYYY-MM-DD format",
		},
		{
			name:     "negative discount",
			resource: "coupons",
			mutate:   func(r domain.Record) { r["discount_amount"] = -5.0 },
			field:    "discount_amount",
			want:     "must be at least 0",
		},
		{
			name:     "non-integer usage limit",
			resource: "coupons",
			mutate:   func(r domain.Record) { r["usage_limit"] = 10.5 },
			field:    "usage_limit",
			want:     "must be an integer",
		},
		{
			name:     "unknown status",
			resource: "coupons",
			mutate:   func(r domain.Record) { r["status"] = "dormant" },
			field:    "status",
			want:     "must be one of",
		},
		{
			name:     "non-boolean stackable",
			resource: "coupons",
			mutate:   func(r domain.Record) { r["stackable"] = "yes" },
			field:    "stackable",
			want:     "must be a boolean",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validCoupon()
			tt.mutate(rec)
			res := Validate(desc(t, tt.resource), rec)
			assert.False(t, res.Valid)
			assert.Contains(t, res.Errors[tt.field], tt.want)
		})
	}
}

func TestValidateSEOBoundsAndLengths(t *testing.T) {
	d := desc(t, "seo")
	rec := domain.Record{
		"seo_campaign_id":  "SEO-001",
		"keyword":          "best crm software",
		"keyword_ranking":  float64(150),
		"domain_authority": float64(101),
		"meta_title":       strings.Repeat("x", 61),
		"meta_description": strings.Repeat("y", 161),
		"target_url":       "not-a-url",
		"crawl_status":     "success",
	}

	res := Validate(d, rec)
	assert.False(t, res.Valid)
	assert.Equal(t, "must be at most 100", res.Errors["keyword_ranking"])
	assert.Equal(t, "must be at most 100", res.Errors["domain_authority"])
	assert.Equal(t, "must be at most 60 characters", res.Errors["meta_title"])
	assert.Equal(t, "must be at most 160 characters", res.Errors["meta_description"])
	assert.Equal(t, "must be a valid absolute URL", res.Errors["target_url"])
}

func TestValidateCrossChecks(t *testing.T) {
	t.Run("coupon code casing", func(t *testing.T) {
		rec := validCoupon()
		rec["coupon_code"] = "summer2026"
		res := Validate(desc(t, "coupons"), rec)
		assert.Equal(t, "must be 4-20 uppercase alphanumeric characters", res.Errors["coupon_code"])
	})

	t.Run("redemption count above limit", func(t *testing.T) {
		rec := validCoupon()
		rec["usage_limit"] = float64(10)
		rec["redemption_count"] = float64(11)
		res := Validate(desc(t, "coupons"), rec)
		assert.Equal(t, "cannot exceed usage_limit", res.Errors["redemption_count"])
	})

	t.Run("unlimited usage skips the cap", func(t *testing.T) {
		rec := validCoupon()
		rec["usage_limit"] = float64(-1)
		rec["redemption_count"] = float64(5000)
		res := Validate(desc(t, "coupons"), rec)
		assert.True(t, res.Valid, "errors: %v", res.Errors)
	})

	t.Run("expiry before issue", func(t *testing.T) {
		rec := validCoupon()
		rec["issued_date"] = "2026-06-01"
		rec["expiry_date"] = "2026-05-01"
		res := Validate(desc(t, "coupons"), rec)
		assert.Equal(t, "must not be before issued_date", res.Errors["expiry_date"])
	})

	t.Run("website date order", func(t *testing.T) {
		rec := domain.Record{
			"website_id":        "WEB-001",
			"domain_name":       "example.com",
			"launch_date":       "2025-03-01",
			"last_updated_date": "2024-12-31",
		}
		res := Validate(desc(t, "websites"), rec)
		assert.Equal(t, "must not be before launch_date", res.Errors["last_updated_date"])
	})

	t.Run("field error wins over cross-check", func(t *testing.T) {
		rec := validCoupon()
		rec["usage_limit"] = 10.5
		res := Validate(desc(t, "coupons"), rec)
		assert.Equal(t, "must be an integer", res.Errors["usage_limit"])
	})
}
