package cart

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"cresshoe/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct(id string, price int64) model.Product {
	return model.Product{
		ID:       id,
		Slug:     "shoe-" + id,
		Name:     "Shoe " + id,
		Brand:    "Cres",
		Category: model.CategoryRunning,
		Price:    decimal.NewFromInt(price),
		Variants: []model.ProductVariant{
			{ID: id + "-40", Size: 40, InStock: true},
			{ID: id + "-42", Size: 42, InStock: true},
		},
		Tags:      []string{"running"},
		CreatedAt: "2024-01-15",
	}
}

// failingPersister fails every call with err.
type failingPersister struct {
	err   error
	saves int
}

func (p *failingPersister) Load(ctx context.Context, key string) ([]byte, error) {
	return nil, p.err
}

func (p *failingPersister) Save(ctx context.Context, key string, data []byte) error {
	p.saves++
	return p.err
}

func newTestStore(t *testing.T, persister Persister) *Store {
	t.Helper()
	return NewStore(context.Background(), DefaultNamespace, persister, zerolog.Nop())
}

func TestStore_AddMergesSameProductAndSize(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, NewMemoryPersister())
	product := testProduct("A", 5000)

	store.Add(ctx, product, 42, 2)
	store.Add(ctx, product, 42, 3)

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 42, items[0].Size)
}

func TestStore_AddKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, NewMemoryPersister())

	store.Add(ctx, testProduct("A", 5000), 42, 1)
	store.Add(ctx, testProduct("B", 3000), 40, 1)
	store.Add(ctx, testProduct("A", 5000), 40, 1)
	store.Add(ctx, testProduct("A", 5000), 42, 1)

	items := store.Items()
	require.Len(t, items, 3)
	assert.True(t, items[0].Matches("A", 42))
	assert.True(t, items[1].Matches("B", 40))
	assert.True(t, items[2].Matches("A", 40))
	assert.Equal(t, 2, items[0].Quantity)
}

func TestStore_AddDefaultsQuantityAndOpens(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, NewMemoryPersister())
	require.False(t, store.IsOpen())

	store.Add(ctx, testProduct("A", 5000), 42, 0)

	assert.True(t, store.IsOpen())
	assert.Equal(t, 1, store.ItemCount())
}

func TestStore_TotalsExampleScenario(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, NewMemoryPersister())

	store.Add(ctx, testProduct("A", 5000), 42, 1)
	store.Add(ctx, testProduct("B", 3000), 40, 2)

	assert.True(t, decimal.NewFromInt(11000).Equal(store.Total()), "total %s", store.Total())
	assert.Equal(t, 3, store.ItemCount())
	assert.Equal(t, 2, store.Len())
}

func TestStore_TotalTracksEveryMutation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, NewMemoryPersister())

	store.Add(ctx, testProduct("A", 5000), 42, 1)
	store.Add(ctx, testProduct("B", 3000), 40, 2)

	store.SetQuantity(ctx, "A", 42, 3)
	assert.True(t, decimal.NewFromInt(21000).Equal(store.Total()))
	assert.Equal(t, 5, store.ItemCount())

	store.Remove(ctx, "B", 40)
	assert.True(t, decimal.NewFromInt(15000).Equal(store.Total()))
	assert.Equal(t, 3, store.ItemCount())

	store.Clear(ctx)
	assert.True(t, decimal.Zero.Equal(store.Total()))
	assert.Equal(t, 0, store.ItemCount())
}

func TestStore_SetQuantityZeroEqualsRemove(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		quantity int
	}{
		{name: "zero", quantity: 0},
		{name: "negative", quantity: -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viaSet := newTestStore(t, NewMemoryPersister())
			viaRemove := newTestStore(t, NewMemoryPersister())
			for _, s := range []*Store{viaSet, viaRemove} {
				s.Add(ctx, testProduct("A", 5000), 42, 1)
				s.Add(ctx, testProduct("B", 3000), 40, 2)
			}

			viaSet.SetQuantity(ctx, "A", 42, tt.quantity)
			viaRemove.Remove(ctx, "A", 42)

			assert.Equal(t, viaRemove.Items(), viaSet.Items())
		})
	}
}

func TestStore_RemoveAndSetQuantityMissingAreNoOps(t *testing.T) {
	ctx := context.Background()
	persister := NewMemoryPersister()
	store := newTestStore(t, persister)
	store.Add(ctx, testProduct("A", 5000), 42, 1)

	before := store.Items()
	saved, err := persister.Load(ctx, DefaultNamespace)
	require.NoError(t, err)

	calls := 0
	unsubscribe := store.Subscribe(func(Snapshot) { calls++ })
	defer unsubscribe()

	store.Remove(ctx, "A", 41)
	store.Remove(ctx, "Z", 42)
	store.SetQuantity(ctx, "Z", 42, 4)

	assert.Equal(t, before, store.Items())
	after, err := persister.Load(ctx, DefaultNamespace)
	require.NoError(t, err)
	assert.Equal(t, saved, after)
	assert.Zero(t, calls)
}

func TestStore_ClearKeepsVisibility(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, NewMemoryPersister())
	store.Add(ctx, testProduct("A", 5000), 42, 1)
	require.True(t, store.IsOpen())

	store.Clear(ctx)

	assert.Empty(t, store.Items())
	assert.True(t, store.IsOpen())
}

func TestStore_RemoveLines(t *testing.T) {
	ctx := context.Background()
	persister := NewMemoryPersister()
	store := newTestStore(t, persister)
	store.Add(ctx, testProduct("A", 5000), 42, 1)
	store.Add(ctx, testProduct("B", 3000), 40, 2)

	submitted := store.Items()

	// Changes made after the lines were taken survive their removal.
	store.Add(ctx, testProduct("B", 3000), 40, 1)
	store.Add(ctx, testProduct("C", 4000), 40, 1)

	store.RemoveLines(ctx, submitted)

	items := store.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "B", items[0].Product.ID)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, "C", items[1].Product.ID)
	assert.Equal(t, 1, items[1].Quantity)
	assert.Equal(t, items, newTestStore(t, persister).Items())
}

func TestStore_RemoveLinesBeyondQuantityRemovesLine(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, NewMemoryPersister())
	store.Add(ctx, testProduct("A", 5000), 42, 3)
	submitted := store.Items()
	store.SetQuantity(ctx, "A", 42, 1)

	calls := 0
	store.Subscribe(func(Snapshot) { calls++ })

	store.RemoveLines(ctx, submitted)
	assert.Empty(t, store.Items())
	assert.Equal(t, 1, calls)

	store.RemoveLines(ctx, submitted)
	assert.Equal(t, 1, calls, "nothing left to remove")
}

func TestStore_AddWithin(t *testing.T) {
	tests := []struct {
		name     string
		existing int
		quantity int
		limit    int
		added    bool
		expected int
	}{
		{name: "new line under limit", quantity: 2, limit: 3, added: true, expected: 2},
		{name: "merge up to limit", existing: 2, quantity: 1, limit: 3, added: true, expected: 3},
		{name: "merge past limit", existing: 2, quantity: 2, limit: 3, added: false, expected: 2},
		{name: "new line past limit", quantity: 4, limit: 3, added: false, expected: 0},
		{name: "no limit", existing: 50, quantity: 50, added: true, expected: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := newTestStore(t, NewMemoryPersister())
			if tt.existing > 0 {
				store.Add(ctx, testProduct("A", 5000), 42, tt.existing)
			}

			added := store.AddWithin(ctx, testProduct("A", 5000), 42, tt.quantity, tt.limit)

			assert.Equal(t, tt.added, added)
			assert.Equal(t, tt.expected, store.ItemCount())
		})
	}
}

func TestStore_AddWithinConcurrent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, NewMemoryPersister())

	const limit = 5
	var wg sync.WaitGroup
	var accepted atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.AddWithin(ctx, testProduct("A", 5000), 42, 1, limit) {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(limit), accepted.Load())
	assert.Equal(t, limit, store.ItemCount())
}

func TestStore_OpenCloseDoNotTouchItems(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, NewMemoryPersister())
	store.Add(ctx, testProduct("A", 5000), 42, 2)

	store.Close()
	assert.False(t, store.IsOpen())
	assert.Equal(t, 2, store.ItemCount())

	store.Open()
	assert.True(t, store.IsOpen())
	assert.Equal(t, 2, store.ItemCount())
}

func TestStore_ItemsReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, NewMemoryPersister())
	store.Add(ctx, testProduct("A", 5000), 42, 1)

	items := store.Items()
	items[0].Quantity = 99

	assert.Equal(t, 1, store.Items()[0].Quantity)
}

func TestStore_PersistAndRestart(t *testing.T) {
	ctx := context.Background()
	persister := NewMemoryPersister()

	original := newTestStore(t, persister)
	discounted := testProduct("C", 4500)
	was := decimal.NewFromInt(6000)
	discounted.OriginalPrice = &was
	discounted.IsNew = true

	original.Add(ctx, testProduct("A", 5000), 42, 1)
	original.Add(ctx, testProduct("B", 3000), 40, 2)
	original.Add(ctx, discounted, 40, 1)
	original.SetQuantity(ctx, "B", 40, 4)

	restarted := newTestStore(t, persister)

	assert.Equal(t, original.Items(), restarted.Items())
	assert.True(t, original.Total().Equal(restarted.Total()))
	assert.False(t, restarted.IsOpen(), "visibility is not persisted")
}

func TestStore_HydrationFallsBackToEmpty(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		persister Persister
	}{
		{
			name: "corrupt JSON",
			persister: func() Persister {
				p := NewMemoryPersister()
				_ = p.Save(ctx, DefaultNamespace, []byte("{not-json"))
				return p
			}(),
		},
		{
			name: "wrong shape",
			persister: func() Persister {
				p := NewMemoryPersister()
				_ = p.Save(ctx, DefaultNamespace, []byte(`{"items": 3}`))
				return p
			}(),
		},
		{
			name: "JSON null",
			persister: func() Persister {
				p := NewMemoryPersister()
				_ = p.Save(ctx, DefaultNamespace, []byte("null"))
				return p
			}(),
		},
		{
			name:      "missing record",
			persister: NewMemoryPersister(),
		},
		{
			name:      "load error",
			persister: &failingPersister{err: errors.New("disk on fire")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var store *Store
			require.NotPanics(t, func() {
				store = newTestStore(t, tt.persister)
			})
			assert.Empty(t, store.Items())
			assert.True(t, decimal.Zero.Equal(store.Total()))
		})
	}
}

func TestStore_HydrationIgnoresUnknownFieldsAndDropsInvalidLines(t *testing.T) {
	ctx := context.Background()
	persister := NewMemoryPersister()
	raw := `[
		{"product":{"id":"A","name":"Shoe A","price":"5000","futureField":true},"size":42,"quantity":2,"addedBy":"web"},
		{"product":{"id":""},"size":40,"quantity":1},
		{"product":{"id":"B","price":"3000"},"size":40,"quantity":0}
	]`
	require.NoError(t, persister.Save(ctx, DefaultNamespace, []byte(raw)))

	store := newTestStore(t, persister)

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "A", items[0].Product.ID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, decimal.NewFromInt(10000).Equal(store.Total()))
}

func TestStore_SaveFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	persister := &failingPersister{err: errors.New("read-only")}
	store := newTestStore(t, persister)

	store.Add(ctx, testProduct("A", 5000), 42, 1)
	store.SetQuantity(ctx, "A", 42, 2)

	assert.Equal(t, 2, store.ItemCount())
	assert.Equal(t, 2, persister.saves)
}

func TestStore_Subscribe(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, NewMemoryPersister())

	var snapshots []Snapshot
	unsubscribe := store.Subscribe(func(s Snapshot) { snapshots = append(snapshots, s) })

	store.Add(ctx, testProduct("A", 5000), 42, 1)
	store.Close()
	store.Close() // unchanged visibility does not notify

	require.Len(t, snapshots, 2)
	assert.True(t, snapshots[0].IsOpen)
	assert.Len(t, snapshots[0].Items, 1)
	assert.False(t, snapshots[1].IsOpen)

	unsubscribe()
	unsubscribe()
	store.Clear(ctx)
	assert.Len(t, snapshots, 2)
}
