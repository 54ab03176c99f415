package services

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turnosapp/turnos/app/models"
	"github.com/turnosapp/turnos/pkg/cache"
)

const summaryKey = "dashboard:resumen"

// SummaryService builds the dashboard overview and keeps it cached for ttl.
// Writes that change the numbers call Invalidate.
type SummaryService struct {
	users    UserStore
	orders   OrderStore
	payments PaymentStore
	cache    cache.Store
	ttl      time.Duration

	// gen moves on every Invalidate in this process.
	gen atomic.Uint64
}

func NewSummaryService(users UserStore, orders OrderStore, payments PaymentStore, store cache.Store, ttl time.Duration) *SummaryService {
	return &SummaryService{users: users, orders: orders, payments: payments, cache: store, ttl: ttl}
}

func (s *SummaryService) Summary(ctx context.Context) (*models.Summary, error) {
	gen := s.gen.Load()
	sum, err := cache.Remember(ctx, s.cache, summaryKey, s.ttl, s.build)
	if err != nil {
		return nil, err
	}
	// An Invalidate that landed while the counts were being read may have
	// been overwritten by them; drop the entry so the next call rebuilds.
	if s.gen.Load() != gen {
		cache.Forget(ctx, s.cache, summaryKey)
	}
	return &sum, nil
}

func (s *SummaryService) Invalidate(ctx context.Context) {
	s.gen.Add(1)
	cache.Forget(ctx, s.cache, summaryKey)
}

// build runs the counts concurrently; each one is an independent round-trip.
func (s *SummaryService) build(ctx context.Context) (models.Summary, error) {
	var sum models.Summary
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		sum.Users, err = s.users.Count(ctx)
		return
	})
	g.Go(func() (err error) {
		sum.Orders, err = s.orders.Count(ctx)
		return
	})
	g.Go(func() (err error) {
		sum.PendingOrders, err = s.orders.CountByStatus(ctx, models.StatusPending)
		return
	})
	g.Go(func() (err error) {
		sum.FulfilledOrders, err = s.orders.CountByStatus(ctx, models.StatusFulfilled)
		return
	})
	g.Go(func() (err error) {
		sum.CancelledOrders, err = s.orders.CountByStatus(ctx, models.StatusCancelled)
		return
	})
	g.Go(func() (err error) {
		sum.Payments, err = s.payments.Count(ctx)
		return
	})
	g.Go(func() (err error) {
		sum.Revenue, err = s.payments.TotalAmount(ctx)
		return
	})

	if err := g.Wait(); err != nil {
		return models.Summary{}, err
	}
	return sum, nil
}
