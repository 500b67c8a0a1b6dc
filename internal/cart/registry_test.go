package cart

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRegistry_Key(t *testing.T) {
	r := NewRegistry("", NewMemoryPersister(), zerolog.Nop())

	assert.Equal(t, DefaultNamespace, r.Key(""))
	assert.Equal(t, DefaultNamespace+":abc", r.Key("abc"))
}

func TestRegistry_GetReturnsSameStorePerSession(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry("shop", NewMemoryPersister(), zerolog.Nop())

	a := r.Get(ctx, "a")
	assert.Same(t, a, r.Get(ctx, "a"))
	assert.NotSame(t, a, r.Get(ctx, "b"))
	assert.Equal(t, "shop:a", a.Key())
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_SessionsAreIsolatedAndHydrated(t *testing.T) {
	ctx := context.Background()
	persister := NewMemoryPersister()

	first := NewRegistry(DefaultNamespace, persister, zerolog.Nop())
	first.Get(ctx, "a").Add(ctx, testProduct("A", 5000), 42, 1)

	assert.Empty(t, first.Get(ctx, "b").Items())

	second := NewRegistry(DefaultNamespace, persister, zerolog.Nop())
	assert.Equal(t, 1, second.Get(ctx, "a").ItemCount())
}

func TestRegistry_EvictedStoreRehydrates(t *testing.T) {
	ctx := context.Background()
	r := NewBoundedRegistry(DefaultNamespace, NewMemoryPersister(), 2, 0, zerolog.Nop())

	a := r.Get(ctx, "a")
	a.Add(ctx, testProduct("A", 5000), 42, 2)
	a.Add(ctx, testProduct("B", 3000), 40, 1)

	r.Get(ctx, "b")
	r.Get(ctx, "c")
	assert.Equal(t, 2, r.Len(), "live stores stay within the bound")

	again := r.Get(ctx, "a")
	assert.NotSame(t, a, again)
	assert.Equal(t, a.Items(), again.Items())
}

func TestRegistry_GetKeepsRecentlyUsedStores(t *testing.T) {
	ctx := context.Background()
	r := NewBoundedRegistry(DefaultNamespace, NewMemoryPersister(), 2, 0, zerolog.Nop())

	a := r.Get(ctx, "a")
	r.Get(ctx, "b")
	r.Get(ctx, "a")
	r.Get(ctx, "c")

	assert.Same(t, a, r.Get(ctx, "a"), "b was least recently used")
}

func TestRegistry_IdleStoreRehydrates(t *testing.T) {
	ctx := context.Background()
	r := NewBoundedRegistry(DefaultNamespace, NewMemoryPersister(), 10, 50*time.Millisecond, zerolog.Nop())

	a := r.Get(ctx, "a")
	a.Add(ctx, testProduct("A", 5000), 42, 3)

	time.Sleep(120 * time.Millisecond)

	again := r.Get(ctx, "a")
	assert.NotSame(t, a, again)
	assert.Equal(t, 3, again.ItemCount())
}
