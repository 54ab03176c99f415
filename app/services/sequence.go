package services

import (
	"context"
	"fmt"

	"github.com/turnosapp/turnos/app/models"
)

// SequenceAllocator hands out order numbers. Uniqueness comes from the
// store's atomic increment; nothing here locks.
type SequenceAllocator struct {
	counters CounterStore
}

func NewSequenceAllocator(counters CounterStore) *SequenceAllocator {
	return &SequenceAllocator{counters: counters}
}

func (s *SequenceAllocator) NextOrderNumber(ctx context.Context) (int64, error) {
	n, err := s.counters.Next(ctx, models.OrderNumberKey)
	if err != nil {
		return 0, fmt.Errorf("allocate order number: %w", err)
	}
	return n, nil
}

// Reconcile makes sure the next number handed out is above every number
// already in use: the highest stored order and any counter left in the old
// {clave, valor} layout. It returns the floor the counter now sits at.
func (s *SequenceAllocator) Reconcile(ctx context.Context, orders NumberSource) (int64, error) {
	legacy, err := s.counters.Legacy(ctx, models.OrderNumberKey)
	if err != nil {
		return 0, fmt.Errorf("reconcile order counter: %w", err)
	}
	highest, err := orders.MaxNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("reconcile order counter: %w", err)
	}

	floor := max(legacy, highest)
	if err := s.counters.Raise(ctx, models.OrderNumberKey, floor); err != nil {
		return 0, fmt.Errorf("reconcile order counter: %w", err)
	}
	return floor, nil
}
