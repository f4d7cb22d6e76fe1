package query

import (
	"context"
	"sync/atomic"
)

// Mutation is a client-initiated write against the server. On success it
// invalidates its declared target slots so subsequent reads re-fetch; on
// failure it returns the error to the caller and touches no slot. There
// is no optimistic update and no rollback: the design is
// invalidate-and-refetch.
type Mutation[A, R any] struct {
	client  *Client
	fn      func(ctx context.Context, arg A) (R, error)
	targets func(arg A, result R) []Key
	pending atomic.Bool
}

// NewMutation builds a mutation around fn. targets declares which slots
// a successful run invalidates; it may be nil for fire-and-forget writes
// with no cached dependents.
func NewMutation[A, R any](c *Client, fn func(ctx context.Context, arg A) (R, error), targets func(arg A, result R) []Key) *Mutation[A, R] {
	return &Mutation[A, R]{client: c, fn: fn, targets: targets}
}

// Do runs the mutation and waits for the result.
func (m *Mutation[A, R]) Do(ctx context.Context, arg A) (R, error) {
	m.pending.Store(true)
	defer m.pending.Store(false)

	result, err := m.fn(ctx, arg)
	if err != nil {
		var zero R
		return zero, err
	}

	if m.targets != nil {
		m.client.Invalidate(m.targets(arg, result)...)
	}
	return result, nil
}

// Pending reports whether a run is in progress.
func (m *Mutation[A, R]) Pending() bool {
	return m.pending.Load()
}
