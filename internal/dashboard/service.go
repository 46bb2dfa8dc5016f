// Package dashboard serves the admin analytics widgets from short-lived caches
// in front of the restaurant API.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/fjod/go_restaurant/internal/domain"
	"github.com/fjod/go_restaurant/internal/restapi"
	"github.com/fjod/go_restaurant/internal/ttlcache"
	"github.com/fjod/go_restaurant/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const (
	revenuePath   = "/admin/dashboard/revenue"
	overviewKey   = "overview"
	DefaultPeriod = "week"
)

var ErrInvalidPeriod = errors.New("invalid reporting period")

var periods = map[string]bool{"day": true, "week": true, "month": true, "year": true}

type Service struct {
	api      *restapi.Client
	stats    *ttlcache.Cache[domain.RevenueStats]
	overview *ttlcache.Cache[domain.Overview]
	now      func() time.Time
	log      *slog.Logger
}

type Options struct {
	// Dedup shares one upstream fetch between concurrent misses.
	Dedup  bool
	Clock  func() time.Time
	Logger *slog.Logger
}

func NewService(api *restapi.Client, opts Options) *Service {
	log := logger.OrDefault(opts.Logger).With("component", "dashboard")
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	cacheOpts := func(name string) []ttlcache.Option {
		o := []ttlcache.Option{ttlcache.WithClock(now), ttlcache.WithLogger(log), ttlcache.WithName(name)}
		if opts.Dedup {
			o = append(o, ttlcache.WithInflightDedup())
		}
		return o
	}

	return &Service{
		api:      api,
		stats:    ttlcache.New[domain.RevenueStats](ttlcache.DashboardTTL, cacheOpts("revenue")...),
		overview: ttlcache.New[domain.Overview](ttlcache.OverviewTTL, cacheOpts("overview")...),
		now:      now,
		log:      log,
	}
}

// Stats returns revenue analytics for period, at most DashboardTTL old.
func (s *Service) Stats(ctx context.Context, period string) (domain.RevenueStats, error) {
	if period == "" {
		period = DefaultPeriod
	}
	if !periods[period] {
		return domain.RevenueStats{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}

	return s.stats.CachedCall(ctx, period, func(ctx context.Context) (domain.RevenueStats, error) {
		var st domain.RevenueStats
		if err := s.api.GetJSON(ctx, revenuePath, url.Values{"period": {period}}, &st); err != nil {
			return domain.RevenueStats{}, fmt.Errorf("fetch revenue stats: %w", err)
		}
		if st.Period == "" {
			st.Period = period
		}
		return st, nil
	})
}

// Overview returns the landing counters, at most OverviewTTL old.
func (s *Service) Overview(ctx context.Context) (domain.Overview, error) {
	return s.overview.CachedCall(ctx, overviewKey, s.fetchOverview)
}

// Invalidate drops every cached value so the next read goes upstream.
func (s *Service) Invalidate() {
	s.stats.Clear()
	s.overview.Clear()
	s.log.Info("dashboard caches cleared")
}

func (s *Service) fetchOverview(ctx context.Context) (domain.Overview, error) {
	now := s.now()
	ov := domain.Overview{GeneratedAt: now.UTC()}

	g, ctx := errgroup.WithContext(ctx)
	count := func(ep restapi.Endpoint, filters url.Values, dst *int) {
		g.Go(func() error {
			res, err := restapi.List[json.RawMessage](ctx, s.api, ep, 1, 1, filters)
			if err != nil {
				return fmt.Errorf("count %s: %w", ep.Name, err)
			}
			*dst = res.Total
			return nil
		})
	}

	count(restapi.Orders, url.Values{"status": {"pending"}}, &ov.PendingOrders)
	count(restapi.Reservations, url.Values{"date": {now.Format(time.DateOnly)}}, &ov.TodayReservations)
	count(restapi.Vouchers, url.Values{"isActive": {"true"}}, &ov.ActiveVouchers)
	count(restapi.MenuItems, nil, &ov.MenuItems)

	if err := g.Wait(); err != nil {
		return domain.Overview{}, err
	}
	return ov, nil
}
