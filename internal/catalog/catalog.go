// Package catalog registers the per-resource descriptors that drive the
// generic CRUD engine: table names, column schemas, validation hooks, and
// capability prefixes. Adding a resource means adding one entry here plus a
// table in the migrations.
package catalog

import (
	"regexp"
	"time"

	"github.com/ignite/marketing-console/internal/domain"
)

var couponCodeRe = regexp.MustCompile(`^[A-Z0-9]{4,20}$`)

func f(v float64) *float64 { return &v }

// parseDate parses the wire format for date columns.
func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", s)
	return t, err == nil
}

// dateOrdered checks start <= end when both fields are present and parseable.
// Unparseable values are left to the field-level validator.
func dateOrdered(rec domain.Record, startKey, endKey, msg string) map[string]string {
	startStr, ok1 := rec.String(startKey)
	endStr, ok2 := rec.String(endKey)
	if !ok1 || !ok2 || startStr == "" || endStr == "" {
		return nil
	}
	start, ok1 := parseDate(startStr)
	end, ok2 := parseDate(endStr)
	if !ok1 || !ok2 {
		return nil
	}
	if end.Before(start) {
		return map[string]string{endKey: msg}
	}
	return nil
}

func couponCrossCheck(rec domain.Record) map[string]string {
	errs := map[string]string{}

	if code, ok := rec.String("coupon_code"); ok && code != "" && !couponCodeRe.MatchString(code) {
		errs["coupon_code"] = "must be 4-20 uppercase alphanumeric characters"
	}
	if limit, ok := rec.Int("usage_limit"); ok && limit != -1 && limit < 1 {
		errs["usage_limit"] = "must be a positive integer or -1 for unlimited"
	}
	limit, hasLimit := rec.Int("usage_limit")
	count, hasCount := rec.Int("redemption_count")
	if hasLimit && hasCount && limit != -1 && count > limit {
		errs["redemption_count"] = "cannot exceed usage_limit"
	}
	for k, v := range dateOrdered(rec, "issued_date", "expiry_date", "must not be before issued_date") {
		errs[k] = v
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func websiteCrossCheck(rec domain.Record) map[string]string {
	return dateOrdered(rec, "launch_date", "last_updated_date", "must not be before launch_date")
}

func adCampaignCrossCheck(rec domain.Record) map[string]string {
	return dateOrdered(rec, "start_date", "end_date", "must not be before start_date")
}

var registry = []*domain.Descriptor{
	{
		Name:         "coupons",
		Table:        "coupons",
		Capability:   "COUPON",
		Owned:        true,
		BusinessID:   "coupon_code",
		StatusColumn: "status",
		CrossCheck:   couponCrossCheck,
		Columns: []domain.Column{
			{Key: "coupon_code", Header: "Coupon Code", Type: domain.TypeString, Required: true, Filterable: true},
			{Key: "discount_amount", Header: "Discount Amount", Type: domain.TypeNumber, Required: true, Min: f(0)},
			{Key: "usage_limit", Header: "Usage Limit", Type: domain.TypeInteger, Required: true},
			{Key: "redemption_count", Header: "Redemption Count", Type: domain.TypeInteger, Min: f(0)},
			{Key: "issued_date", Header: "Issued Date", Type: domain.TypeDate, Required: true},
			{Key: "expiry_date", Header: "Expiry Date", Type: domain.TypeDate, Required: true},
			{Key: "status", Header: "Status", Type: domain.TypeString, Enum: []string{"active", "expired", "depleted", "inactive"}, Filterable: true},
			{Key: "stackable", Header: "Stackable", Type: domain.TypeBoolean},
			{Key: "campaign_source", Header: "Campaign Source", Type: domain.TypeString, Filterable: true},
			{Key: "applicable_items", Header: "Applicable Items", Type: domain.TypeString},
			{Key: "remarks", Header: "Remarks", Type: domain.TypeString},
		},
	},
	{
		Name:         "seo",
		Table:        "seo_campaigns",
		Capability:   "SEO",
		Owned:        true,
		BusinessID:   "seo_campaign_id",
		StatusColumn: "crawl_status",
		Columns: []domain.Column{
			{Key: "seo_campaign_id", Header: "Campaign ID", Type: domain.TypeString, Required: true, Filterable: true},
			{Key: "keyword", Header: "Keyword", Type: domain.TypeString, Required: true, Filterable: true},
			{Key: "search_volume", Header: "Search Volume", Type: domain.TypeInteger, Min: f(0)},
			{Key: "keyword_ranking", Header: "Keyword Ranking", Type: domain.TypeInteger, Min: f(1), Max: f(100)},
			{Key: "domain_authority", Header: "Domain Authority", Type: domain.TypeInteger, Min: f(0), Max: f(100)},
			{Key: "backlink_count", Header: "Backlink Count", Type: domain.TypeInteger, Min: f(0)},
			{Key: "crawl_status", Header: "Crawl Status", Type: domain.TypeString, Enum: []string{"success", "failed", "pending", "blocked"}, Filterable: true},
			{Key: "target_url", Header: "Target URL", Type: domain.TypeString, URL: true},
			{Key: "meta_title", Header: "Meta Title", Type: domain.TypeString, MaxLen: 60},
			{Key: "meta_description", Header: "Meta Description", Type: domain.TypeString, MaxLen: 160},
			{Key: "remarks", Header: "Remarks", Type: domain.TypeString},
		},
	},
	{
		Name:         "websites",
		Table:        "websites",
		Capability:   "WEBSITE",
		Owned:        true,
		BusinessID:   "website_id",
		StatusColumn: "ssl_status",
		CrossCheck:   websiteCrossCheck,
		Columns: []domain.Column{
			{Key: "website_id", Header: "Website ID", Type: domain.TypeString, Required: true, Filterable: true},
			{Key: "domain_name", Header: "Domain Name", Type: domain.TypeString, Required: true, Filterable: true},
			{Key: "page_count", Header: "Page Count", Type: domain.TypeInteger, Min: f(1)},
			{Key: "ssl_status", Header: "SSL Status", Type: domain.TypeString, Enum: []string{"active", "expired", "invalid", "none"}, Filterable: true},
			{Key: "uptime_percentage", Header: "Uptime %", Type: domain.TypeNumber, Min: f(0), Max: f(100)},
			{Key: "launch_date", Header: "Launch Date", Type: domain.TypeDate},
			{Key: "last_updated_date", Header: "Last Updated", Type: domain.TypeDate},
			{Key: "hosting_provider", Header: "Hosting Provider", Type: domain.TypeString, Filterable: true},
			{Key: "remarks", Header: "Remarks", Type: domain.TypeString},
		},
	},
	{
		Name:         "ad-campaigns",
		Table:        "ad_campaigns",
		Capability:   "AD_CAMPAIGN",
		BusinessID:   "ad_campaign_id",
		StatusColumn: "status",
		CrossCheck:   adCampaignCrossCheck,
		Columns: []domain.Column{
			{Key: "ad_campaign_id", Header: "Campaign ID", Type: domain.TypeString, Required: true, Filterable: true},
			{Key: "campaign_name", Header: "Campaign Name", Type: domain.TypeString, Required: true, Filterable: true},
			{Key: "platform", Header: "Platform", Type: domain.TypeString, Filterable: true},
			{Key: "budget", Header: "Budget", Type: domain.TypeNumber, Min: f(0)},
			{Key: "impressions", Header: "Impressions", Type: domain.TypeInteger, Min: f(0)},
			{Key: "clicks", Header: "Clicks", Type: domain.TypeInteger, Min: f(0)},
			{Key: "conversions", Header: "Conversions", Type: domain.TypeInteger, Min: f(0)},
			{Key: "ctr", Header: "CTR %", Type: domain.TypeNumber, Min: f(0), Max: f(100)},
			{Key: "status", Header: "Status", Type: domain.TypeString, Enum: []string{"draft", "active", "paused", "completed"}, Filterable: true},
			{Key: "start_date", Header: "Start Date", Type: domain.TypeDate},
			{Key: "end_date", Header: "End Date", Type: domain.TypeDate},
			{Key: "remarks", Header: "Remarks", Type: domain.TypeString},
		},
	},
	{
		Name:         "social-campaigns",
		Table:        "social_campaigns",
		Capability:   "SOCIAL_CAMPAIGN",
		BusinessID:   "social_campaign_id",
		StatusColumn: "status",
		Columns: []domain.Column{
			{Key: "social_campaign_id", Header: "Campaign ID", Type: domain.TypeString, Required: true, Filterable: true},
			{Key: "campaign_name", Header: "Campaign Name", Type: domain.TypeString, Required: true, Filterable: true},
			{Key: "platform", Header: "Platform", Type: domain.TypeString, Filterable: true},
			{Key: "followers_gained", Header: "Followers Gained", Type: domain.TypeInteger, Min: f(0)},
			{Key: "engagement_rate", Header: "Engagement Rate %", Type: domain.TypeNumber, Min: f(0), Max: f(100)},
			{Key: "posts_count", Header: "Posts", Type: domain.TypeInteger, Min: f(0)},
			{Key: "reach", Header: "Reach", Type: domain.TypeInteger, Min: f(0)},
			{Key: "status", Header: "Status", Type: domain.TypeString, Enum: []string{"draft", "active", "paused", "completed"}, Filterable: true},
			{Key: "remarks", Header: "Remarks", Type: domain.TypeString},
		},
	},
	{
		Name:         "email-campaigns",
		Table:        "email_campaigns",
		Capability:   "EMAIL_CAMPAIGN",
		BusinessID:   "email_campaign_id",
		StatusColumn: "status",
		Columns: []domain.Column{
			{Key: "email_campaign_id", Header: "Campaign ID", Type: domain.TypeString, Required: true, Filterable: true},
			{Key: "campaign_name", Header: "Campaign Name", Type: domain.TypeString, Required: true, Filterable: true},
			{Key: "subject_line", Header: "Subject Line", Type: domain.TypeString, MaxLen: 150},
			{Key: "recipients_count", Header: "Recipients", Type: domain.TypeInteger, Min: f(0)},
			{Key: "open_rate", Header: "Open Rate %", Type: domain.TypeNumber, Min: f(0), Max: f(100)},
			{Key: "click_rate", Header: "Click Rate %", Type: domain.TypeNumber, Min: f(0), Max: f(100)},
			{Key: "bounce_rate", Header: "Bounce Rate %", Type: domain.TypeNumber, Min: f(0), Max: f(100)},
			{Key: "unsubscribe_count", Header: "Unsubscribes", Type: domain.TypeInteger, Min: f(0)},
			{Key: "status", Header: "Status", Type: domain.TypeString, Enum: []string{"draft", "scheduled", "sent"}, Filterable: true},
			{Key: "sent_date", Header: "Sent Date", Type: domain.TypeDate},
			{Key: "remarks", Header: "Remarks", Type: domain.TypeString},
		},
	},
	{
		Name:         "email-analysis",
		Table:        "email_analysis",
		Capability:   "EMAIL_ANALYSIS",
		BusinessID:   "analysis_id",
		StatusColumn: "sentiment",
		Columns: []domain.Column{
			{Key: "analysis_id", Header: "Analysis ID", Type: domain.TypeString, Required: true, Filterable: true},
			{Key: "email_campaign_ref", Header: "Campaign Ref", Type: domain.TypeString, Filterable: true},
			{Key: "spam_score", Header: "Spam Score", Type: domain.TypeNumber, Min: f(0), Max: f(10)},
			{Key: "readability_score", Header: "Readability", Type: domain.TypeNumber, Min: f(0), Max: f(100)},
			{Key: "link_count", Header: "Links", Type: domain.TypeInteger, Min: f(0)},
			{Key: "word_count", Header: "Words", Type: domain.TypeInteger, Min: f(0)},
			{Key: "sentiment", Header: "Sentiment", Type: domain.TypeString, Enum: []string{"positive", "neutral", "negative"}, Filterable: true},
			{Key: "remarks", Header: "Remarks", Type: domain.TypeString},
		},
	},
	{
		Name:         "blogs",
		Table:        "blogs",
		Capability:   "BLOG",
		BusinessID:   "blog_id",
		StatusColumn: "status",
		Columns: []domain.Column{
			{Key: "blog_id", Header: "Blog ID", Type: domain.TypeString, Required: true, Filterable: true},
			{Key: "title", Header: "Title", Type: domain.TypeString, Required: true},
			{Key: "author", Header: "Author", Type: domain.TypeString, Filterable: true},
			{Key: "word_count", Header: "Words", Type: domain.TypeInteger, Min: f(0)},
			{Key: "seo_score", Header: "SEO Score", Type: domain.TypeNumber, Min: f(0), Max: f(100)},
			{Key: "view_count", Header: "Views", Type: domain.TypeInteger, Min: f(0)},
			{Key: "comment_count", Header: "Comments", Type: domain.TypeInteger, Min: f(0)},
			{Key: "canonical_url", Header: "Canonical URL", Type: domain.TypeString, URL: true},
			{Key: "publish_date", Header: "Publish Date", Type: domain.TypeDate},
			{Key: "status", Header: "Status", Type: domain.TypeString, Enum: []string{"draft", "review", "published", "archived"}, Filterable: true},
			{Key: "remarks", Header: "Remarks", Type: domain.TypeString},
		},
	},
	{
		Name:       "ebooks",
		Table:      "ebooks",
		Capability: "EBOOK",
		BusinessID: "ebook_id",
		Columns: []domain.Column{
			{Key: "ebook_id", Header: "Ebook ID", Type: domain.TypeString, Required: true, Filterable: true},
			{Key: "title", Header: "Title", Type: domain.TypeString, Required: true},
			{Key: "author", Header: "Author", Type: domain.TypeString, Filterable: true},
			{Key: "page_count", Header: "Pages", Type: domain.TypeInteger, Min: f(1)},
			{Key: "download_count", Header: "Downloads", Type: domain.TypeInteger, Min: f(0)},
			{Key: "conversion_rate", Header: "Conversion Rate %", Type: domain.TypeNumber, Min: f(0), Max: f(100)},
			{Key: "landing_url", Header: "Landing URL", Type: domain.TypeString, URL: true},
			{Key: "publish_date", Header: "Publish Date", Type: domain.TypeDate},
			{Key: "remarks", Header: "Remarks", Type: domain.TypeString},
		},
	},
	{
		Name:       "white-papers",
		Table:      "white_papers",
		Capability: "WHITE_PAPER",
		BusinessID: "white_paper_id",
		Columns: []domain.Column{
			{Key: "white_paper_id", Header: "White Paper ID", Type: domain.TypeString, Required: true, Filterable: true},
			{Key: "title", Header: "Title", Type: domain.TypeString, Required: true},
			{Key: "author", Header: "Author", Type: domain.TypeString, Filterable: true},
			{Key: "page_count", Header: "Pages", Type: domain.TypeInteger, Min: f(1)},
			{Key: "download_count", Header: "Downloads", Type: domain.TypeInteger, Min: f(0)},
			{Key: "lead_count", Header: "Leads", Type: domain.TypeInteger, Min: f(0)},
			{Key: "industry", Header: "Industry", Type: domain.TypeString, Filterable: true},
			{Key: "publish_date", Header: "Publish Date", Type: domain.TypeDate},
			{Key: "remarks", Header: "Remarks", Type: domain.TypeString},
		},
	},
	{
		Name:         "marketing-content",
		Table:        "marketing_content",
		Capability:   "MARKETING_CONTENT",
		BusinessID:   "content_id",
		StatusColumn: "status",
		Columns: []domain.Column{
			{Key: "content_id", Header: "Content ID", Type: domain.TypeString, Required: true, Filterable: true},
			{Key: "title", Header: "Title", Type: domain.TypeString, Required: true},
			{Key: "content_type", Header: "Content Type", Type: domain.TypeString, Filterable: true},
			{Key: "channel", Header: "Channel", Type: domain.TypeString, Filterable: true},
			{Key: "engagement_score", Header: "Engagement Score", Type: domain.TypeNumber, Min: f(0), Max: f(100)},
			{Key: "impressions", Header: "Impressions", Type: domain.TypeInteger, Min: f(0)},
			{Key: "shares", Header: "Shares", Type: domain.TypeInteger, Min: f(0)},
			{Key: "status", Header: "Status", Type: domain.TypeString, Enum: []string{"draft", "published", "retired"}, Filterable: true},
			{Key: "remarks", Header: "Remarks", Type: domain.TypeString},
		},
	},
	{
		Name:       "videos",
		Table:      "marketing_videos",
		Capability: "VIDEO",
		BusinessID: "video_id",
		Columns: []domain.Column{
			{Key: "video_id", Header: "Video ID", Type: domain.TypeString, Required: true, Filterable: true},
			{Key: "title", Header: "Title", Type: domain.TypeString, Required: true},
			{Key: "platform", Header: "Platform", Type: domain.TypeString, Filterable: true},
			{Key: "duration_seconds", Header: "Duration (s)", Type: domain.TypeInteger, Min: f(0)},
			{Key: "view_count", Header: "Views", Type: domain.TypeInteger, Min: f(0)},
			{Key: "like_count", Header: "Likes", Type: domain.TypeInteger, Min: f(0)},
			{Key: "watch_time_hours", Header: "Watch Time (h)", Type: domain.TypeNumber, Min: f(0)},
			{Key: "video_url", Header: "Video URL", Type: domain.TypeString, URL: true},
			{Key: "publish_date", Header: "Publish Date", Type: domain.TypeDate},
			{Key: "remarks", Header: "Remarks", Type: domain.TypeString},
		},
	},
	{
		Name:       "audios",
		Table:      "marketing_audios",
		Capability: "AUDIO",
		BusinessID: "audio_id",
		Columns: []domain.Column{
			{Key: "audio_id", Header: "Audio ID", Type: domain.TypeString, Required: true, Filterable: true},
			{Key: "title", Header: "Title", Type: domain.TypeString, Required: true},
			{Key: "platform", Header: "Platform", Type: domain.TypeString, Filterable: true},
			{Key: "duration_seconds", Header: "Duration (s)", Type: domain.TypeInteger, Min: f(0)},
			{Key: "play_count", Header: "Plays", Type: domain.TypeInteger, Min: f(0)},
			{Key: "subscriber_count", Header: "Subscribers", Type: domain.TypeInteger, Min: f(0)},
			{Key: "episode_number", Header: "Episode", Type: domain.TypeInteger, Min: f(1)},
			{Key: "audio_url", Header: "Audio URL", Type: domain.TypeString, URL: true},
			{Key: "publish_date", Header: "Publish Date", Type: domain.TypeDate},
			{Key: "remarks", Header: "Remarks", Type: domain.TypeString},
		},
	},
	{
		Name:         "whatsapp-messages",
		Table:        "whatsapp_messages",
		Capability:   "WHATSAPP",
		BusinessID:   "message_id",
		StatusColumn: "status",
		Columns: []domain.Column{
			{Key: "message_id", Header: "Message ID", Type: domain.TypeString, Required: true, Filterable: true},
			{Key: "campaign_name", Header: "Campaign Name", Type: domain.TypeString, Required: true, Filterable: true},
			{Key: "template_name", Header: "Template", Type: domain.TypeString, Filterable: true},
			{Key: "recipients_count", Header: "Recipients", Type: domain.TypeInteger, Min: f(0)},
			{Key: "delivered_count", Header: "Delivered", Type: domain.TypeInteger, Min: f(0)},
			{Key: "read_count", Header: "Read", Type: domain.TypeInteger, Min: f(0)},
			{Key: "reply_count", Header: "Replies", Type: domain.TypeInteger, Min: f(0)},
			{Key: "status", Header: "Status", Type: domain.TypeString, Enum: []string{"draft", "sent", "failed"}, Filterable: true},
			{Key: "sent_date", Header: "Sent Date", Type: domain.TypeDate},
			{Key: "remarks", Header: "Remarks", Type: domain.TypeString},
		},
	},
}

var byName = func() map[string]*domain.Descriptor {
	m := make(map[string]*domain.Descriptor, len(registry))
	for _, d := range registry {
		m[d.Name] = d
	}
	return m
}()

// ImportWorkflows maps CSV import workflow names to resource names.
var ImportWorkflows = map[string]string{
	"seo":      "seo",
	"websites": "websites",
	"coupons":  "coupons",
}

// All returns every registered descriptor in registration order.
func All() []*domain.Descriptor { return registry }

// Get returns the descriptor registered under name.
func Get(name string) (*domain.Descriptor, bool) {
	d, ok := byName[name]
	return d, ok
}
