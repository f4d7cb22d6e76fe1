package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	assert.Equal(t, Key("usage.summary"), NewKey("usage.summary"))
	assert.Equal(t, Key("usage.trends/7"), NewKey("usage.trends", 7))
	assert.Equal(t, Key("anomalies.list/billing/HIGH"), NewKey("anomalies.list", "billing", "HIGH"))
	assert.Equal(t, "usage.trends", NewKey("usage.trends", 7).Op())
}

func TestKeyIsolation(t *testing.T) {
	c := New()
	ctx := context.Background()

	seven, err := Fetch(ctx, c, NewKey("trends", 7), 0, func(context.Context) (string, error) {
		return "seven-days", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "seven-days", seven)

	// A different parameter set must not share the first slot's result.
	var called bool
	thirty, err := Fetch(ctx, c, NewKey("trends", 30), 0, func(context.Context) (string, error) {
		called = true
		return "thirty-days", nil
	})
	require.NoError(t, err)
	assert.True(t, called, "trends/30 must fetch independently of trends/7")
	assert.Equal(t, "thirty-days", thirty)

	// And fetching one must not refresh the other.
	c.Invalidate(NewKey("trends", 7))
	_, err = Fetch(ctx, c, NewKey("trends", 30), 0, func(context.Context) (string, error) {
		t.Fatal("trends/30 is fresh and must not re-fetch")
		return "", nil
	})
	require.NoError(t, err)
	assert.True(t, c.StateOf(NewKey("trends", 7)).Stale)
}

func TestFreshValueServedFromCache(t *testing.T) {
	c := New()
	ctx := context.Background()
	key := NewKey("usage.summary", "day")

	var calls atomic.Int32
	fn := func(context.Context) (int, error) {
		calls.Add(1)
		return 42, nil
	}

	for range 3 {
		v, err := Fetch(ctx, c, key, time.Minute, fn)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, int32(1), calls.Load(), "fresh value must not re-fetch")
}

func TestStaleResponseDiscarded(t *testing.T) {
	c := New()
	ctx := context.Background()
	key := NewKey("usage.realtime")

	releaseA := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)

	// Request A stalls in flight.
	go func() {
		defer wg.Done()
		v, err := Refetch(ctx, c, key, func(context.Context) (string, error) {
			<-releaseA
			return "old", nil
		})
		assert.NoError(t, err)
		assert.Equal(t, "old", v)
	}()

	// Wait until A is registered as in flight.
	require.Eventually(t, func() bool {
		return c.StateOf(key).Loading
	}, time.Second, time.Millisecond)

	// Request B is issued after A and completes first.
	v, err := Refetch(ctx, c, key, func(context.Context) (string, error) {
		return "new", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "new", v)

	// A's late response must not overwrite B's.
	close(releaseA)
	wg.Wait()

	cached, st := Peek[string](c, key)
	assert.Equal(t, "new", cached, "older in-flight response must be discarded")
	assert.True(t, st.HasValue)
	assert.False(t, st.Stale)
}

func TestConcurrentFetchesShareOneRequest(t *testing.T) {
	c := New()
	ctx := context.Background()
	key := NewKey("costs.breakdown", "week")

	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]string, 3)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := Fetch(ctx, c, key, 0, func(context.Context) (string, error) {
				calls.Add(1)
				<-release
				return "shared", nil
			})
			assert.NoError(t, err)
			results[i] = v
		}()
	}

	require.Eventually(t, func() bool {
		return c.StateOf(key).Loading
	}, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "concurrent readers must share one in-flight request")
	for _, v := range results {
		assert.Equal(t, "shared", v)
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	c := New()
	ctx := context.Background()
	key := NewKey("anomalies.list")

	var calls atomic.Int32
	fn := func(context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}

	v, err := Fetch(ctx, c, key, 0, fn)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	c.Invalidate(key)

	v, err = Fetch(ctx, c, key, 0, fn)
	require.NoError(t, err)
	assert.Equal(t, 2, v, "invalidated slot must re-fetch on next read")
}

func TestInvalidateOpCoversAllParameterSets(t *testing.T) {
	c := New()
	ctx := context.Background()

	for _, days := range []int{7, 30, 90} {
		_, err := Fetch(ctx, c, NewKey("usage.trends", days), 0, func(context.Context) (int, error) {
			return days, nil
		})
		require.NoError(t, err)
	}

	c.InvalidateOp("usage.trends")

	for _, days := range []int{7, 30, 90} {
		assert.True(t, c.StateOf(NewKey("usage.trends", days)).Stale)
	}
}

func TestErrorKeptAsStateAndRetried(t *testing.T) {
	c := New()
	ctx := context.Background()
	key := NewKey("monitoring.system")
	boom := errors.New("transport down")

	_, err := Fetch(ctx, c, key, time.Minute, func(context.Context) (string, error) {
		return "", boom
	})
	require.ErrorIs(t, err, boom)

	_, st := Peek[string](c, key)
	assert.ErrorIs(t, st.Err, boom)
	assert.False(t, st.HasValue)

	// The error is not cached as a value; the next read retries.
	v, err := Fetch(ctx, c, key, time.Minute, func(context.Context) (string, error) {
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", v)

	_, st = Peek[string](c, key)
	assert.NoError(t, st.Err)
}

func TestStaleAfterExpiry(t *testing.T) {
	c := New()
	ctx := context.Background()
	key := NewKey("usage.realtime")

	current := time.Now()
	c.now = func() time.Time { return current }

	var calls atomic.Int32
	fn := func(context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}

	v, err := Fetch(ctx, c, key, 10*time.Second, fn)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	current = current.Add(5 * time.Second)
	v, err = Fetch(ctx, c, key, 10*time.Second, fn)
	require.NoError(t, err)
	assert.Equal(t, 1, v, "within the freshness window the cache serves")

	current = current.Add(6 * time.Second)
	v, err = Fetch(ctx, c, key, 10*time.Second, fn)
	require.NoError(t, err)
	assert.Equal(t, 2, v, "past the freshness window the slot re-fetches")
}

func TestReset(t *testing.T) {
	c := New()
	ctx := context.Background()
	key := NewKey("alerts.rules")

	_, err := Fetch(ctx, c, key, 0, func(context.Context) (string, error) { return "rules", nil })
	require.NoError(t, err)

	c.Reset()

	_, st := Peek[string](c, key)
	assert.False(t, st.HasValue, "reset must drop every slot")
}

func TestMutationInvalidatesTargets(t *testing.T) {
	c := New()
	ctx := context.Background()
	listKey := NewKey("anomalies.list")
	statsKey := NewKey("anomalies.stats")

	for _, key := range []Key{listKey, statsKey} {
		_, err := Fetch(ctx, c, key, 0, func(context.Context) (string, error) { return "cached", nil })
		require.NoError(t, err)
	}

	ack := NewMutation(c, func(_ context.Context, id int64) (bool, error) {
		return true, nil
	}, func(int64, bool) []Key {
		return []Key{listKey, statsKey}
	})

	ok, err := ack.Do(ctx, 7)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.True(t, c.StateOf(listKey).Stale, "anomaly list must be stale after the mutation")
	assert.True(t, c.StateOf(statsKey).Stale, "anomaly stats must be stale after the mutation")
}

func TestMutationFailureTouchesNoSlot(t *testing.T) {
	c := New()
	ctx := context.Background()
	listKey := NewKey("alerts.rules")

	_, err := Fetch(ctx, c, listKey, 0, func(context.Context) (string, error) { return "cached", nil })
	require.NoError(t, err)

	boom := errors.New("validation failed")
	create := NewMutation(c, func(_ context.Context, name string) (int64, error) {
		return 0, boom
	}, func(string, int64) []Key {
		return []Key{listKey}
	})

	_, err = create.Do(ctx, "rule")
	require.ErrorIs(t, err, boom)
	assert.False(t, c.StateOf(listKey).Stale, "failed mutation must not invalidate")
}

func TestMutationPending(t *testing.T) {
	c := New()
	release := make(chan struct{})

	m := NewMutation(c, func(context.Context, struct{}) (struct{}, error) {
		<-release
		return struct{}{}, nil
	}, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = m.Do(context.Background(), struct{}{})
	}()

	require.Eventually(t, m.Pending, time.Second, time.Millisecond)
	close(release)
	wg.Wait()
	assert.False(t, m.Pending())
}
