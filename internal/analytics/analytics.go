// Package analytics computes read-only aggregations per resource (counts,
// numeric averages, status distributions) for the dashboard. Results are
// cached in Redis with a short TTL; without Redis every request hits the
// database directly.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ignite/marketing-console/internal/catalog"
	"github.com/ignite/marketing-console/internal/domain"
)

const cacheTTL = 60 * time.Second

// Service aggregates resource metrics.
type Service struct {
	db    *sqlx.DB
	cache *redis.Client
	log   *zap.Logger
}

// New creates the analytics service. cache may be nil.
func New(db *sqlx.DB, cache *redis.Client, log *zap.Logger) *Service {
	return &Service{db: db, cache: cache, log: log}
}

// ResourceSummary returns count, per-column averages, and the status
// distribution for one resource.
func (s *Service) ResourceSummary(ctx context.Context, name string) (map[string]any, error) {
	desc, ok := catalog.Get(name)
	if !ok {
		return nil, domain.ErrNotFound
	}

	key := "analytics:" + desc.Name
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	out := map[string]any{"resource": desc.Name}

	selects := []string{"COUNT(*)"}
	for _, col := range desc.NumericColumns() {
		selects = append(selects, fmt.Sprintf("COALESCE(AVG(%s), 0)", col.Key))
	}
	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(selects, ", "), desc.Table)

	var total int64
	targets := []any{&total}
	averages := make([]float64, len(desc.NumericColumns()))
	for i := range averages {
		targets = append(targets, &averages[i])
	}
	if err := s.db.QueryRowContext(ctx, q).Scan(targets...); err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", desc.Table, err)
	}
	out["total"] = total

	avgMap := map[string]float64{}
	for i, col := range desc.NumericColumns() {
		avgMap["avg_"+col.Key] = averages[i]
	}
	out["averages"] = avgMap

	if desc.StatusColumn != "" {
		dist, err := s.distribution(ctx, desc)
		if err != nil {
			return nil, err
		}
		out["by_"+desc.StatusColumn] = dist
	}

	s.toCache(ctx, key, out)
	return out, nil
}

func (s *Service) distribution(ctx context.Context, desc *domain.Descriptor) (map[string]int64, error) {
	q := fmt.Sprintf(`
		SELECT COALESCE(%s, ''), COUNT(*)
		FROM %s
		GROUP BY 1
		ORDER BY 2 DESC
	`, desc.StatusColumn, desc.Table)

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("distribution %s: %w", desc.Table, err)
	}
	defer rows.Close()

	dist := map[string]int64{}
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan distribution: %w", err)
		}
		dist[status] = count
	}
	return dist, rows.Err()
}

// Dashboard returns record counts for every registered resource in one call.
func (s *Service) Dashboard(ctx context.Context) (map[string]any, error) {
	if cached, ok := s.fromCache(ctx, "analytics:dashboard"); ok {
		return cached, nil
	}

	counts := map[string]int64{}
	for _, desc := range catalog.All() {
		var n int64
		q := fmt.Sprintf("SELECT COUNT(*) FROM %s", desc.Table)
		if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", desc.Table, err)
		}
		counts[desc.Name] = n
	}

	out := map[string]any{
		"counts":       counts,
		"generated_at": time.Now().UTC().Format(time.RFC3339),
	}
	s.toCache(ctx, "analytics:dashboard", out)
	return out, nil
}

func (s *Service) fromCache(ctx context.Context, key string) (map[string]any, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("analytics cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false
	}
	return out, true
}

func (s *Service) toCache(ctx context.Context, key string, value map[string]any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
		s.log.Warn("analytics cache write failed", zap.String("key", key), zap.Error(err))
	}
}
