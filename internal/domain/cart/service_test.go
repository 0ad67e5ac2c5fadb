package cart

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/infrastructure/storage"
	"github.com/your-org/storefront/internal/pkg/logger"
)

// failingStore rejects every write
type failingStore struct {
	storage.Store
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("disk full")
}

func newTestStore() (*Store, *storage.Memory) {
	mem := storage.NewMemory()
	return NewStore(mem, logger.Discard()), mem
}

var (
	productA = product.Product{ID: "A", Name: "Kettle", Price: 1000, IsActive: true}
	productB = product.Product{ID: "B", Name: "Cup", Price: 500, IsActive: true}
)

func TestStore_WorkedExample(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	require.NoError(t, s.AddItem(ctx, productA, 2))
	require.NoError(t, s.AddItem(ctx, productB, 1))
	assert.Equal(t, Totals{TotalItems: 3, TotalAmount: 2500}, s.Totals())

	require.NoError(t, s.UpdateQuantity(ctx, "A", 5))
	assert.Equal(t, Totals{TotalItems: 6, TotalAmount: 5500}, s.Totals())

	require.NoError(t, s.RemoveItem(ctx, "B"))
	assert.Equal(t, Totals{TotalItems: 5, TotalAmount: 5000}, s.Totals())
}

func TestStore_AddSameProductMergesLines(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	require.NoError(t, s.AddItem(ctx, productA, 2))
	require.NoError(t, s.AddItem(ctx, productA, 3))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestStore_AddKeepsCapturedPrice(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	require.NoError(t, s.AddItem(ctx, productA, 1))
	repriced := productA
	repriced.Price = 9999
	require.NoError(t, s.AddItem(ctx, repriced, 1))

	line, ok := s.Line("A")
	require.True(t, ok)
	assert.Equal(t, int64(1000), line.UnitPrice)
	assert.Equal(t, int64(2000), s.Totals().TotalAmount)
}

func TestStore_AddNonPositiveQuantityCountsAsOne(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	require.NoError(t, s.AddItem(ctx, productA, 0))
	require.NoError(t, s.AddItem(ctx, productB, -4))
	assert.Equal(t, 2, s.Totals().TotalItems)
}

func TestStore_UpdateQuantityNonPositiveRemoves(t *testing.T) {
	for _, q := range []int{0, -3} {
		ctx := context.Background()
		s, _ := newTestStore()
		require.NoError(t, s.AddItem(ctx, productA, 2))
		require.NoError(t, s.AddItem(ctx, productB, 1))

		require.NoError(t, s.UpdateQuantity(ctx, "A", q))
		_, ok := s.Line("A")
		assert.False(t, ok, "quantity %d", q)
		assert.Equal(t, Totals{TotalItems: 1, TotalAmount: 500}, s.Totals())
	}
}

func TestStore_UpdateUnknownProductIsNoop(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	require.NoError(t, s.AddItem(ctx, productA, 1))

	require.NoError(t, s.UpdateQuantity(ctx, "nope", 4))
	assert.Len(t, s.Items(), 1)
	assert.Equal(t, Totals{TotalItems: 1, TotalAmount: 1000}, s.Totals())
}

func TestStore_RemoveMissingLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	require.NoError(t, s.AddItem(ctx, productA, 2))
	before := s.Snapshot()

	require.NoError(t, s.RemoveItem(ctx, "ghost"))
	assert.Equal(t, before, s.Snapshot())
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	require.NoError(t, s.AddItem(ctx, productA, 7))
	require.NoError(t, s.AddItem(ctx, productB, 2))

	require.NoError(t, s.Clear(ctx))
	assert.True(t, s.IsEmpty())
	assert.Empty(t, s.Items())
	assert.Equal(t, Totals{}, s.Totals())

	require.NoError(t, s.Clear(ctx))
	assert.Equal(t, Totals{}, s.Totals())
}

func TestStore_InsertionOrder(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	require.NoError(t, s.AddItem(ctx, productB, 1))
	require.NoError(t, s.AddItem(ctx, productA, 1))
	require.NoError(t, s.AddItem(ctx, productB, 1))

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "B", items[0].ProductID)
	assert.Equal(t, "A", items[1].ProductID)
}

func TestStore_ItemsReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	require.NoError(t, s.AddItem(ctx, productA, 1))

	items := s.Items()
	items[0].Quantity = 99
	line, _ := s.Line("A")
	assert.Equal(t, 1, line.Quantity)
}

func TestStore_TotalsAlwaysDerived(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	rng := rand.New(rand.NewSource(7))
	catalog := []product.Product{
		productA,
		productB,
		{ID: "C", Price: 1250},
		{ID: "D", Price: 0},
	}

	for i := 0; i < 500; i++ {
		p := catalog[rng.Intn(len(catalog))]
		switch rng.Intn(3) {
		case 0:
			_ = s.AddItem(ctx, p, rng.Intn(5)-1)
		case 1:
			_ = s.RemoveItem(ctx, p.ID)
		case 2:
			_ = s.UpdateQuantity(ctx, p.ID, rng.Intn(8)-2)
		}

		var items int
		var amount int64
		for _, l := range s.Items() {
			items += l.Quantity
			amount += int64(l.Quantity) * l.UnitPrice
		}
		require.Equal(t, Totals{TotalItems: items, TotalAmount: amount}, s.Totals(), "step %d", i)
	}
}

func TestStore_OpenClose(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore()
	assert.False(t, s.IsOpen())

	s.Open()
	assert.True(t, s.IsOpen())
	require.NoError(t, s.AddItem(ctx, productA, 1))

	raw, err := mem.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.NotContains(t, raw, "open")

	s.Close()
	assert.False(t, s.IsOpen())
}

func TestStore_PersistsEveryMutation(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore()
	require.NoError(t, s.AddItem(ctx, productA, 2))

	reloaded := NewStore(mem, logger.Discard())
	require.NoError(t, reloaded.Rehydrate(ctx))
	assert.Equal(t, s.Snapshot(), reloaded.Snapshot())
}

func TestStore_RehydrateRecomputesStaleTotals(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	stale := `{"state":{"items":[
		{"productId":"A","product":{"id":"A","price":1000},"quantity":2,"unitPrice":1000},
		{"productId":"B","product":{"id":"B","price":500},"quantity":1,"unitPrice":500}
	],"totalItems":42,"totalAmount":1},"version":0}`
	require.NoError(t, mem.Set(ctx, StorageKey, stale))

	s := NewStore(mem, logger.Discard())
	require.NoError(t, s.Rehydrate(ctx))
	assert.Equal(t, Totals{TotalItems: 3, TotalAmount: 2500}, s.Totals())
}

func TestStore_RehydrateDropsInvalidLines(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	raw := `{"state":{"items":[
		{"productId":"","quantity":2,"unitPrice":1000},
		{"productId":"A","quantity":0,"unitPrice":1000},
		{"productId":"B","quantity":3,"unitPrice":500}
	]},"version":0}`
	require.NoError(t, mem.Set(ctx, StorageKey, raw))

	s := NewStore(mem, logger.Discard())
	require.NoError(t, s.Rehydrate(ctx))
	require.Len(t, s.Items(), 1)
	assert.Equal(t, Totals{TotalItems: 3, TotalAmount: 1500}, s.Totals())
}

func TestStore_RehydrateMergesDuplicateLines(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	raw := `{"state":{"items":[
		{"productId":"A","quantity":1,"unitPrice":100},
		{"productId":"B","quantity":1,"unitPrice":500},
		{"productId":"A","quantity":2,"unitPrice":90}
	]},"version":0}`
	require.NoError(t, mem.Set(ctx, StorageKey, raw))

	s := NewStore(mem, logger.Discard())
	require.NoError(t, s.Rehydrate(ctx))
	require.Len(t, s.Items(), 2)

	line, ok := s.Line("A")
	require.True(t, ok)
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, int64(100), line.UnitPrice)

	require.NoError(t, s.UpdateQuantity(ctx, "A", 5))
	require.NoError(t, s.RemoveItem(ctx, "B"))
	require.Len(t, s.Items(), 1)
	assert.Equal(t, Totals{TotalItems: 5, TotalAmount: 500}, s.Totals())
}

func TestStore_RehydrateMissingOrCorrupt(t *testing.T) {
	ctx := context.Background()

	s, _ := newTestStore()
	require.NoError(t, s.Rehydrate(ctx))
	assert.True(t, s.IsEmpty())

	mem := storage.NewMemory()
	require.NoError(t, mem.Set(ctx, StorageKey, "{{{"))
	corrupt := NewStore(mem, logger.Discard())
	require.NoError(t, corrupt.Rehydrate(ctx))
	assert.True(t, corrupt.IsEmpty())
	assert.Equal(t, Totals{}, corrupt.Totals())
}

func TestStore_PersistFailureStillMutates(t *testing.T) {
	ctx := context.Background()
	s := NewStore(failingStore{Store: storage.NewMemory()}, logger.Discard())

	err := s.AddItem(ctx, productA, 2)
	var perr *PersistError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Error(), "disk full")
	assert.Equal(t, Totals{TotalItems: 2, TotalAmount: 2000}, s.Totals())
}

func TestPriceDrift(t *testing.T) {
	lines := []Line{
		{ProductID: "A", Product: productA, Quantity: 1, UnitPrice: 1000},
		{ProductID: "B", Product: productB, Quantity: 1, UnitPrice: 500},
		{ProductID: "C", Product: product.Product{ID: "C", Name: "Lamp"}, Quantity: 1, UnitPrice: 700},
		{ProductID: "D", Quantity: 1, UnitPrice: 10},
		{ProductID: "E", Quantity: 1, UnitPrice: 10},
	}
	liveA := productA
	liveA.Price = 1200
	liveB := productB
	liveB.IsActive = false
	liveD := product.Product{ID: "D", Price: 10, IsActive: true}

	issues := PriceDrift(lines, map[string]*product.Product{
		"A": &liveA,
		"B": &liveB,
		"C": nil,
		"D": &liveD,
	})

	require.Len(t, issues, 3)
	assert.Equal(t, IssuePriceChanged, issues[0].Kind)
	assert.Equal(t, int64(1200), issues[0].LivePrice)
	assert.Equal(t, IssueUnavailable, issues[1].Kind)
	assert.Equal(t, IssueMissing, issues[2].Kind)
	assert.Contains(t, issues[2].Message, "Lamp")
}
