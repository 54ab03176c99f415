package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnosapp/turnos/app/models"
	"github.com/turnosapp/turnos/pkg/cache"
)

func TestSummaryCountsAndCaches(t *testing.T) {
	users := NewMockUserStore()
	f := newOrderFixture()
	summary := NewSummaryService(users, f.orders, f.payments, cache.NewMemory(), time.Minute)
	f.svc = NewOrderService(f.orders, f.payments, NewSequenceAllocator(f.counters), summary)
	ctx := context.Background()

	seedUser(t, users, "dash@example.com")
	first, err := f.svc.Create(ctx, validOrderInput())
	require.NoError(t, err)
	in := validOrderInput()
	in.Amount = 5000
	_, err = f.svc.Create(ctx, in)
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, first.ID.Hex(), UpdateOrderInput{
		Kind: first.Kind, Status: models.StatusFulfilled, Customer: validOrderInput().Customer,
	})
	require.NoError(t, err)

	got, err := summary.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Summary{
		Users:           1,
		Orders:          2,
		PendingOrders:   1,
		FulfilledOrders: 1,
		Payments:        2,
		Revenue:         50000,
	}, *got)

	// A store change that bypasses the services is not seen until the
	// entry is invalidated.
	seedUser(t, users, "other@example.com")
	cached, err := summary.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cached.Users)

	summary.Invalidate(ctx)
	fresh, err := summary.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fresh.Users)
}

func TestOrderWritesInvalidateSummary(t *testing.T) {
	users := NewMockUserStore()
	f := newOrderFixture()
	summary := NewSummaryService(users, f.orders, f.payments, cache.NewMemory(), time.Minute)
	f.svc = NewOrderService(f.orders, f.payments, NewSequenceAllocator(f.counters), summary)
	ctx := context.Background()

	before, err := summary.Summary(ctx)
	require.NoError(t, err)
	assert.Zero(t, before.Orders)

	_, err = f.svc.Create(ctx, validOrderInput())
	require.NoError(t, err)

	after, err := summary.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), after.Orders)
}

// racingUsers simulates a write that lands after the user count was read
// but before the summary is cached.
type racingUsers struct {
	*MockUserStore
	t       *testing.T
	summary *SummaryService
	raced   bool
}

func (r *racingUsers) Count(ctx context.Context) (int64, error) {
	n, err := r.MockUserStore.Count(ctx)
	if !r.raced {
		r.raced = true
		seedUser(r.t, r.MockUserStore, "late@example.com")
		r.summary.Invalidate(ctx)
	}
	return n, err
}

func TestInvalidateDuringBuildIsNotLost(t *testing.T) {
	f := newOrderFixture()
	users := &racingUsers{MockUserStore: NewMockUserStore(), t: t}
	summary := NewSummaryService(users, f.orders, f.payments, cache.NewMemory(), time.Minute)
	users.summary = summary
	ctx := context.Background()

	stale, err := summary.Summary(ctx)
	require.NoError(t, err)
	assert.Zero(t, stale.Users)

	fresh, err := summary.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fresh.Users)
}
