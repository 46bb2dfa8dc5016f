package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_restaurant/internal/domain"
	"github.com/fjod/go_restaurant/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_SessionRequiresID(t *testing.T) {
	m := NewManager(storage.NewMemoryStorage(), nil)

	_, err := m.Session(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_SameSessionSameStore(t *testing.T) {
	m := NewManager(storage.NewMemoryStorage(), nil)
	ctx := context.Background()

	a, err := m.Session(ctx, "s1")
	require.NoError(t, err)
	b, err := m.Session(ctx, "s1")
	require.NoError(t, err)
	c, err := m.Session(ctx, "s2")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, m.Len())
}

func TestManager_ConcurrentFirstUseLoadsOnce(t *testing.T) {
	st := storage.NewMemoryStorage()
	m := NewManager(st, nil)
	ctx := context.Background()

	stores := make([]*Store, 20)
	var wg sync.WaitGroup
	for i := range stores {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := m.Session(ctx, "busy")
			assert.NoError(t, err)
			stores[i] = s
		}(i)
	}
	wg.Wait()

	for _, s := range stores {
		assert.Same(t, stores[0], s)
	}
}

func TestManager_SessionsAreIsolatedInStorage(t *testing.T) {
	st := storage.NewMemoryStorage()
	m := NewManager(st, nil)
	ctx := context.Background()

	s1, _ := m.Session(ctx, "s1")
	s2, _ := m.Session(ctx, "s2")
	s1.AddItem(ctx, pho)
	s2.AddItem(ctx, tea)

	raw, err := st.Get(ctx, "restaurant_cart:s1")
	require.NoError(t, err)
	lines, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "pho", lines[0].Item.ID)
}

func TestManager_Clear(t *testing.T) {
	st := storage.NewMemoryStorage()
	m := NewManager(st, nil)
	ctx := context.Background()

	s, _ := m.Session(ctx, "s1")
	s.AddItem(ctx, pho)

	cart, err := m.Clear(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
	assert.Empty(t, s.Cart().Lines)

	raw, err := st.Get(ctx, Key("s1"))
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestManager_EvictIdleReloadsFromStorage(t *testing.T) {
	st := storage.NewMemoryStorage()
	m := NewManager(st, nil)
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	s, _ := m.Session(ctx, "s1")
	s.AddItem(ctx, pho)
	s.AddItem(ctx, pho)

	now = now.Add(10 * time.Minute)
	assert.Equal(t, 0, m.EvictIdle(time.Hour))

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, m.EvictIdle(time.Hour))
	assert.Equal(t, 0, m.Len())

	again, err := m.Session(ctx, "s1")
	require.NoError(t, err)
	assert.NotSame(t, s, again)
	assert.Equal(t, map[string]int{"pho": 2}, quantities(again.Cart()))
}

func TestManager_CancelledRequestStillLoadsSnapshot(t *testing.T) {
	st := storage.NewMemoryStorage()
	seed, err := Encode([]domain.CartLine{{Item: pho, Quantity: 3}})
	require.NoError(t, err)
	require.NoError(t, st.Set(context.Background(), Key("s1"), seed))

	m := NewManager(st, nil)
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := m.Session(cancelled, "s1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"pho": 3}, quantities(s.Cart()))

	again, err := m.Session(context.Background(), "s1")
	require.NoError(t, err)
	again.AddItem(context.Background(), tea)

	raw, err := st.Get(context.Background(), Key("s1"))
	require.NoError(t, err)
	lines, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"pho": 3, "tea": 1}, quantities(domain.Cart{Lines: lines}))
}

func TestManager_FailedLoadIsNotCached(t *testing.T) {
	st := newMockStorage()
	seed, err := Encode([]domain.CartLine{{Item: pho, Quantity: 2}})
	require.NoError(t, err)
	st.data[Key("s1")] = seed
	st.getErr = errors.New("storage unavailable")

	m := NewManager(st, nil)
	s, err := m.Session(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, s.Cart().Lines)
	assert.Equal(t, 0, m.Len())

	st.m.Lock()
	st.getErr = nil
	st.m.Unlock()

	again, err := m.Session(context.Background(), "s1")
	require.NoError(t, err)
	assert.NotSame(t, s, again)
	assert.Equal(t, map[string]int{"pho": 2}, quantities(again.Cart()))
	assert.Equal(t, 1, m.Len())
}
