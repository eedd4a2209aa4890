package reporting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// StorePort abstracts the aggregation queries for the service.
type StorePort interface {
	DashboardMetrics(ctx context.Context, now time.Time) (DashboardMetrics, error)
	TopProducts(ctx context.Context, since time.Time, limit int) ([]TopProduct, error)
	SalesByDay(ctx context.Context, since time.Time) ([]SalesDataPoint, error)
	LowStock(ctx context.Context) ([]LowStockProduct, error)
}

const cacheTTL = 60 * time.Second

// Service serves reports from a short-lived redis cache. Concurrent misses
// for the same key collapse into one database query via singleflight. With a
// nil redis client every read goes straight to the store.
type Service struct {
	store  StorePort
	cache  *redis.Client
	logger *slog.Logger
	group  singleflight.Group
	now    func() time.Time
}

// NewService builds Service. cache may be nil.
func NewService(store StorePort, cache *redis.Client, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Dashboard returns the headline metrics.
func (s *Service) Dashboard(ctx context.Context) (DashboardMetrics, error) {
	return cached(ctx, s, "reports:dashboard", func(ctx context.Context) (DashboardMetrics, error) {
		return s.store.DashboardMetrics(ctx, s.now())
	})
}

// TopProducts ranks products by revenue across the whole sale history.
// days > 0 narrows the ranking to a trailing window; zero means no window.
func (s *Service) TopProducts(ctx context.Context, days, limit int) ([]TopProduct, error) {
	if days < 0 {
		days = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	key := fmt.Sprintf("reports:top:%d:%d", days, limit)
	return cached(ctx, s, key, func(ctx context.Context) ([]TopProduct, error) {
		var since time.Time
		if days > 0 {
			since = s.now().AddDate(0, 0, -days)
		}
		return s.store.TopProducts(ctx, since, limit)
	})
}

// SalesData returns the per-day sales series for the trailing days window,
// ending today, with zero-valued buckets for days without sales.
func (s *Service) SalesData(ctx context.Context, days int) ([]SalesDataPoint, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	key := fmt.Sprintf("reports:series:%d", days)
	return cached(ctx, s, key, func(ctx context.Context) ([]SalesDataPoint, error) {
		now := s.now()
		start := dayStart(now.AddDate(0, 0, -(days - 1)))
		rows, err := s.store.SalesByDay(ctx, start)
		if err != nil {
			return nil, err
		}
		return fillDays(rows, start, now), nil
	})
}

func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// fillDays expands sparse per-day rows into one point per UTC day from start
// through the day of now, inclusive, zero-valued where nothing sold.
func fillDays(rows []SalesDataPoint, start, now time.Time) []SalesDataPoint {
	byDay := make(map[string]SalesDataPoint, len(rows))
	for _, p := range rows {
		byDay[p.Date] = p
	}
	points := []SalesDataPoint{}
	for day := start; !day.After(now.UTC()); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		if p, ok := byDay[key]; ok {
			points = append(points, p)
			continue
		}
		points = append(points, SalesDataPoint{Date: key, Total: decimal.Zero})
	}
	return points
}

// LowStock lists products at or below their minimum stock level. Never
// cached: restock decisions need the live picture.
func (s *Service) LowStock(ctx context.Context) ([]LowStockProduct, error) {
	return s.store.LowStock(ctx)
}

// Warm recomputes the default dashboard and series caches. Called from the
// background worker after sales commit.
func (s *Service) Warm(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	s.invalidate(ctx, "reports:dashboard", "reports:series:30", "reports:top:0:10")
	if _, err := s.Dashboard(ctx); err != nil {
		return err
	}
	if _, err := s.SalesData(ctx, 30); err != nil {
		return err
	}
	_, err := s.TopProducts(ctx, 0, 10)
	return err
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Del(ctx, keys...).Err(); err != nil && s.logger != nil {
		s.logger.Warn("invalidate report cache", slog.Any("error", err))
	}
}

// cached wraps a loader with the redis read-through and singleflight. A cache
// outage degrades to direct queries, it never fails the request.
func cached[T any](ctx context.Context, s *Service, key string, load func(context.Context) (T, error)) (T, error) {
	var zero T
	if s.cache == nil {
		return load(ctx)
	}
	if raw, err := s.cache.Get(ctx, key).Bytes(); err == nil {
		var out T
		if err := json.Unmarshal(raw, &out); err == nil {
			return out, nil
		}
	} else if !errors.Is(err, redis.Nil) && s.logger != nil {
		s.logger.Warn("report cache read", slog.String("key", key), slog.Any("error", err))
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		out, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(out); err == nil {
			if err := s.cache.Set(ctx, key, raw, cacheTTL).Err(); err != nil && s.logger != nil {
				s.logger.Warn("report cache write", slog.String("key", key), slog.Any("error", err))
			}
		}
		return out, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}
