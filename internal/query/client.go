package query

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Client is the slot cache. It is constructed explicitly and passed to
// every service that reads through it; there is no package-level
// singleton, so tests can isolate cache state per run.
type Client struct {
	mu    sync.Mutex
	slots map[Key]*slot
	now   func() time.Time
}

// slot is one cache entry. Each issued request takes the next sequence
// number; a completed response is applied only while its sequence is at
// least the last applied one, so a stale in-flight response can never
// overwrite a newer value regardless of arrival order.
type slot struct {
	value     any
	err       error
	hasValue  bool
	stale     bool
	fetchedAt time.Time

	nextSeq    uint64
	appliedSeq uint64

	inflight *call
}

// call is one in-flight request, shared by every caller that joined it.
type call struct {
	seq   uint64
	done  chan struct{}
	value any
	err   error
}

// New creates an empty cache client.
func New() *Client {
	return &Client{
		slots: make(map[Key]*slot),
		now:   time.Now,
	}
}

// State describes a slot as seen by a reader.
type State struct {
	HasValue  bool
	Loading   bool
	Stale     bool
	Err       error
	FetchedAt time.Time
}

// FetchFunc produces a fresh value for a slot.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Fetch returns the slot's cached value when it is fresh, otherwise it
// runs fn and caches the result. Concurrent callers for the same slot
// share one in-flight request. A staleAfter of zero means the value
// never expires on its own and only Invalidate forces a re-fetch.
func Fetch[T any](ctx context.Context, c *Client, key Key, staleAfter time.Duration, fn FetchFunc[T]) (T, error) {
	c.mu.Lock()
	s := c.slot(key)

	if s.fresh(c.now(), staleAfter) {
		v := s.value
		c.mu.Unlock()
		return cast[T](v), nil
	}

	if s.inflight != nil {
		cl := s.inflight
		c.mu.Unlock()
		return await[T](ctx, cl)
	}

	return run[T](ctx, c, key, s, fn)
}

// Refetch always issues a new request for the slot, superseding any
// request already in flight. Later callers join the newest request.
func Refetch[T any](ctx context.Context, c *Client, key Key, fn FetchFunc[T]) (T, error) {
	c.mu.Lock()
	s := c.slot(key)
	return run[T](ctx, c, key, s, fn)
}

// run issues a request for s. Called with c.mu held; releases it.
func run[T any](ctx context.Context, c *Client, key Key, s *slot, fn FetchFunc[T]) (T, error) {
	s.nextSeq++
	cl := &call{seq: s.nextSeq, done: make(chan struct{})}
	s.inflight = cl
	c.mu.Unlock()

	v, err := fn(ctx)

	c.mu.Lock()
	cl.value, cl.err = v, err
	if cl.seq >= s.appliedSeq {
		s.appliedSeq = cl.seq
		s.err = err
		if err == nil {
			s.value = v
			s.hasValue = true
			s.stale = false
			s.fetchedAt = c.now()
		} else {
			// Keep the previous value; the error is surfaced as state
			// and the next read retries.
			s.stale = true
		}
	}
	if s.inflight == cl {
		s.inflight = nil
	}
	c.mu.Unlock()
	close(cl.done)

	return v, err
}

// await blocks until cl settles or ctx is cancelled.
func await[T any](ctx context.Context, cl *call) (T, error) {
	select {
	case <-cl.done:
		if cl.err != nil {
			var zero T
			return zero, cl.err
		}
		return cast[T](cl.value), nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Peek returns the slot's cached value without triggering a fetch.
func Peek[T any](c *Client, key Key) (T, State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	s, ok := c.slots[key]
	if !ok {
		return zero, State{}
	}
	st := State{
		HasValue:  s.hasValue,
		Loading:   s.inflight != nil,
		Stale:     s.stale,
		Err:       s.err,
		FetchedAt: s.fetchedAt,
	}
	if !s.hasValue {
		return zero, st
	}
	return cast[T](s.value), st
}

// StateOf returns the slot's state without its value.
func (c *Client) StateOf(key Key) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots[key]
	if !ok {
		return State{}
	}
	return State{
		HasValue:  s.hasValue,
		Loading:   s.inflight != nil,
		Stale:     s.stale,
		Err:       s.err,
		FetchedAt: s.fetchedAt,
	}
}

// Invalidate marks the given slots stale so their next read re-fetches
// instead of returning the cached value. Unknown keys are ignored.
func (c *Client) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		if s, ok := c.slots[key]; ok {
			s.stale = true
		}
	}
}

// InvalidateOp marks every slot of the given operation stale, regardless
// of parameters.
func (c *Client) InvalidateOp(op string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := op + "/"
	for key, s := range c.slots {
		if string(key) == op || strings.HasPrefix(string(key), prefix) {
			s.stale = true
		}
	}
}

// Reset drops every slot. Used on tenant switches and between tests.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots = make(map[Key]*slot)
}

// slot returns the slot for key, creating it if needed. Caller holds c.mu.
func (c *Client) slot(key Key) *slot {
	s, ok := c.slots[key]
	if !ok {
		s = &slot{}
		c.slots[key] = s
	}
	return s
}

// fresh reports whether the cached value can be returned as-is.
func (s *slot) fresh(now time.Time, staleAfter time.Duration) bool {
	if !s.hasValue || s.stale || s.err != nil {
		return false
	}
	if staleAfter == 0 {
		return true
	}
	return now.Sub(s.fetchedAt) < staleAfter
}

// cast converts a stored any back to T. Slots are only ever written and
// read with one value type per key, so the assertion cannot fail in
// correct callers; a zero value is returned rather than panicking.
func cast[T any](v any) T {
	t, _ := v.(T)
	return t
}
