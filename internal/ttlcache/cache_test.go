package ttlcache

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

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestGetSet_ExpiresAfterTTL(t *testing.T) {
	clock := newFakeClock()
	c := New[string](DashboardTTL, WithClock(clock.Now))

	c.Set("k", "v")
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	clock.Advance(DashboardTTL)
	assert.True(t, c.Has("k"), "entry is valid while age <= ttl")

	clock.Advance(time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.False(t, c.Has("k"))
}

func TestHas_EvictsStaleEntry(t *testing.T) {
	clock := newFakeClock()
	c := New[int](OverviewTTL, WithClock(clock.Now))

	c.Set("a", 1)
	c.Set("b", 2)
	clock.Advance(OverviewTTL + time.Second)

	assert.Equal(t, 2, c.Len(), "no background sweep")
	assert.False(t, c.Has("a"))
	assert.Equal(t, 1, c.Len())
}

func TestSet_OverwriteRestampsEntry(t *testing.T) {
	clock := newFakeClock()
	c := New[int](time.Minute, WithClock(clock.Now))

	c.Set("k", 1)
	clock.Advance(50 * time.Second)
	c.Set("k", 2)
	clock.Advance(50 * time.Second)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestClear(t *testing.T) {
	c := New[int](time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	c.Clear("a", "missing")
	assert.False(t, c.Has("a"))
	assert.True(t, c.Has("b"))

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCachedCall_FetchesOnceWithinTTL(t *testing.T) {
	clock := newFakeClock()
	c := New[string](DashboardTTL, WithClock(clock.Now))
	var calls int
	fetch := func(context.Context) (string, error) {
		calls++
		return "stats", nil
	}

	v1, err := c.CachedCall(context.Background(), "dashboard:week", fetch)
	require.NoError(t, err)
	v2, err := c.CachedCall(context.Background(), "dashboard:week", fetch)
	require.NoError(t, err)

	assert.Equal(t, "stats", v1)
	assert.Equal(t, "stats", v2)
	assert.Equal(t, 1, calls)

	clock.Advance(DashboardTTL + time.Second)
	_, err = c.CachedCall(context.Background(), "dashboard:week", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCachedCall_FailureIsNotCached(t *testing.T) {
	c := New[string](time.Minute)
	upstream := errors.New("upstream 502")
	var calls int

	_, err := c.CachedCall(context.Background(), "k", func(context.Context) (string, error) {
		calls++
		return "partial", upstream
	})
	assert.ErrorIs(t, err, upstream)
	assert.False(t, c.Has("k"))

	v, err := c.CachedCall(context.Background(), "k", func(context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, calls)
}

func TestCachedCall_PassesContext(t *testing.T) {
	c := New[string](time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.CachedCall(ctx, "k", func(ctx context.Context) (string, error) {
		return "", ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRefresh_ReplacesEntry(t *testing.T) {
	c := New[int](time.Minute)
	c.Set("k", 1)

	v, err := c.Refresh(context.Background(), "k", func(context.Context) (int, error) { return 2, nil })
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	got, _ := c.Get("k")
	assert.Equal(t, 2, got)

	_, err = c.Refresh(context.Background(), "k", func(context.Context) (int, error) { return 0, errors.New("boom") })
	require.Error(t, err)
	got, _ = c.Get("k")
	assert.Equal(t, 2, got, "failed refresh keeps the previous value")
}

// concurrentMisses starts n CachedCall goroutines that block inside fetch until
// released, and returns how many fetches ran.
func concurrentMisses(t *testing.T, c *Cache[int], n int) int32 {
	t.Helper()
	var calls atomic.Int32
	release := make(chan struct{})
	entered := make(chan struct{}, n)

	fetch := func(context.Context) (int, error) {
		calls.Add(1)
		entered <- struct{}{}
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.CachedCall(context.Background(), "overview", fetch)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	// wait until at least one fetch is in flight, give the others time to pile up
	<-entered
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, v := range results {
		assert.Equal(t, 42, v)
	}
	return calls.Load()
}

func TestCachedCall_ConcurrentMissesEachFetchByDefault(t *testing.T) {
	c := New[int](time.Minute)

	calls := concurrentMisses(t, c, 5)
	assert.Equal(t, int32(5), calls)
}

func TestCachedCall_InflightDedupSharesFetch(t *testing.T) {
	c := New[int](time.Minute, WithInflightDedup())

	calls := concurrentMisses(t, c, 5)
	assert.Equal(t, int32(1), calls)
	assert.True(t, c.Has("overview"))
}

func TestCachedCall_InflightDedupPropagatesError(t *testing.T) {
	c := New[int](time.Minute, WithInflightDedup())
	boom := errors.New("boom")

	_, err := c.CachedCall(context.Background(), "k", func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, c.Has("k"))
}

func TestCachedCall_InterfaceValueNil(t *testing.T) {
	c := New[any](time.Minute, WithInflightDedup())

	v, err := c.CachedCall(context.Background(), "k", func(context.Context) (any, error) { return nil, nil })
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestCachedCall_InflightDedupWaiterSurvivesFirstCallerCancel(t *testing.T) {
	c := New[int](time.Minute, WithInflightDedup())
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	fetch := func(ctx context.Context) (int, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		select {
		case <-release:
			return 42, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.CachedCall(firstCtx, "k", fetch)
		firstErr <- err
	}()
	<-started

	secondVal := make(chan int, 1)
	secondErr := make(chan error, 1)
	go func() {
		v, err := c.CachedCall(context.Background(), "k", fetch)
		secondVal <- v
		secondErr <- err
	}()

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	require.NoError(t, <-secondErr)
	assert.Equal(t, 42, <-secondVal)
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, c.Has("k"))
}
