package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/01moynul/selecta-golang/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func basket(id int64, price string, gift bool) models.CartItem {
	return models.CartItem{
		ID:        id,
		Name:      "Cesta",
		UnitPrice: decimal.RequireFromString(price),
		Category:  "gourmet",
		ImageRef:  "/img/cesta.jpg",
		IsGift:    gift,
	}
}

func newCart(t *testing.T, storage Storage, identity string) *Cart {
	t.Helper()
	c := New(context.Background(), storage, Config{Identity: identity})
	t.Cleanup(c.Close)
	return c
}

func seed(t *testing.T, storage Storage, key string, items []models.CartItem) {
	t.Helper()
	data, err := json.Marshal(items)
	require.NoError(t, err)
	require.NoError(t, storage.Set(context.Background(), key, data))
}

func stored(t *testing.T, storage Storage, key string) ([]models.CartItem, bool) {
	t.Helper()
	data, ok, err := storage.Get(context.Background(), key)
	require.NoError(t, err)
	if !ok {
		return nil, false
	}
	var items []models.CartItem
	require.NoError(t, json.Unmarshal(data, &items))
	return items, true
}

func TestStorageKey(t *testing.T) {
	assert.Equal(t, "shopping-cart", StorageKey(""))
	assert.Equal(t, "shopping-cart-u-42", StorageKey("u-42"))
}

func TestAddToCartAccumulatesQuantity(t *testing.T) {
	c := newCart(t, NewMemoryStorage(), "")

	for i := 0; i < 4; i++ {
		c.AddToCart(basket(7, "25.00", false))
	}

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity)
}

func TestAddToCartKeepsGiftLineSeparate(t *testing.T) {
	c := newCart(t, NewMemoryStorage(), "")

	c.AddToCart(basket(7, "25.00", false))
	c.AddToCart(basket(7, "25.00", true))
	c.AddToCart(basket(7, "25.00", true))

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].Quantity)
	assert.True(t, items[1].IsGift)
	assert.Equal(t, 2, items[1].Quantity)
}

func TestAddToCartIgnoresIncomingQuantity(t *testing.T) {
	c := newCart(t, NewMemoryStorage(), "")

	item := basket(3, "10", false)
	item.Quantity = 9
	c.AddToCart(item)

	assert.Equal(t, 1, c.TotalItems())
}

func TestRemoveThenAddStartsFresh(t *testing.T) {
	c := newCart(t, NewMemoryStorage(), "")

	c.AddToCart(basket(1, "10", false))
	c.AddToCart(basket(1, "10", false))
	c.RemoveFromCart(1, false)
	c.AddToCart(basket(1, "10", false))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestUpdateQuantityZeroEqualsRemove(t *testing.T) {
	a := newCart(t, NewMemoryStorage(), "")
	b := newCart(t, NewMemoryStorage(), "")
	for _, c := range []*Cart{a, b} {
		c.AddToCart(basket(1, "10", false))
		c.AddToCart(basket(1, "10", true))
		c.AddToCart(basket(2, "5", false))
	}

	a.UpdateQuantity(1, 0, true)
	b.RemoveFromCart(1, true)

	assert.Equal(t, b.Items(), a.Items())
}

func TestUpdateQuantitySetsValue(t *testing.T) {
	c := newCart(t, NewMemoryStorage(), "")
	c.AddToCart(basket(1, "10", false))

	c.UpdateQuantity(1, 6, false)
	assert.Equal(t, 6, c.TotalItems())

	c.UpdateQuantity(99, 3, false)
	assert.Equal(t, 6, c.TotalItems(), "unknown line is a no-op")

	c.UpdateQuantity(1, -2, false)
	assert.Empty(t, c.Items())
}

func TestClearCart(t *testing.T) {
	storage := NewMemoryStorage()
	c := newCart(t, storage, "")
	c.AddToCart(basket(1, "10", false))

	c.ClearCart()

	assert.Empty(t, c.Items())
	items, ok := stored(t, storage, "shopping-cart")
	require.True(t, ok)
	assert.Empty(t, items)
}

func TestRemoveMultipleItems(t *testing.T) {
	c := newCart(t, NewMemoryStorage(), "")
	c.AddToCart(basket(1, "10", false))
	c.UpdateQuantity(1, 5, false)
	c.AddToCart(basket(2, "20", false))
	c.UpdateQuantity(2, 2, false)
	c.AddToCart(basket(2, "20", true))
	c.AddToCart(basket(3, "30", false))

	two, ten := 2, 10
	c.RemoveMultipleItems([]RemoveRequest{
		{ID: 1, QuantityToRemove: &two}, // 5 -> 3
		{ID: 2, QuantityToRemove: &ten}, // over quantity, line removed
		{ID: 3},                         // no quantity, line removed
		{ID: 4, QuantityToRemove: &two}, // unknown, ignored
	})

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, int64(2), items[1].ID)
	assert.True(t, items[1].IsGift, "gift line of product 2 is untouched")
}

func TestTotalsTrackEveryMutation(t *testing.T) {
	c := newCart(t, NewMemoryStorage(), "")

	check := func() {
		expected := decimal.Zero
		count := 0
		for _, it := range c.Items() {
			expected = expected.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
			count += it.Quantity
		}
		assert.True(t, expected.Equal(c.TotalAmount()), "amount %s != %s", c.TotalAmount(), expected)
		assert.Equal(t, count, c.TotalItems())
	}

	c.AddToCart(basket(1, "19.99", false))
	check()
	c.AddToCart(basket(1, "19.99", false))
	check()
	c.AddToCart(basket(2, "45.50", true))
	check()
	c.UpdateQuantity(2, 4, true)
	check()
	one := 1
	c.RemoveMultipleItems([]RemoveRequest{{ID: 1, QuantityToRemove: &one}})
	check()
	c.RemoveFromCart(2, true)
	check()
	c.ClearCart()
	check()
}

func TestPersonalAndGiftLinesScenario(t *testing.T) {
	storage := NewMemoryStorage()
	seed(t, storage, "shopping-cart", []models.CartItem{
		{ID: 1, UnitPrice: decimal.NewFromInt(10), Quantity: 2, IsGift: false},
		{ID: 1, UnitPrice: decimal.NewFromInt(10), Quantity: 1, IsGift: true},
	})
	c := newCart(t, storage, "")

	assert.Equal(t, 3, c.TotalItems())
	assert.True(t, decimal.NewFromInt(30).Equal(c.TotalAmount()))

	c.RemoveFromCart(1, false)

	items := c.Items()
	require.Len(t, items, 1)
	assert.True(t, items[0].IsGift)
	assert.Equal(t, 1, c.TotalItems())
	assert.True(t, decimal.NewFromInt(10).Equal(c.TotalAmount()))
}

func TestLoginWithAnonymousCartOverwritesUserCart(t *testing.T) {
	storage := NewMemoryStorage()
	seed(t, storage, "shopping-cart-u1", []models.CartItem{{ID: 9, UnitPrice: decimal.NewFromInt(99), Quantity: 4}})

	c := newCart(t, storage, "")
	c.AddToCart(basket(1, "10", false))
	c.AddToCart(basket(2, "20", true))
	anon := c.Items()

	c.OnIdentityChange(context.Background(), "", "u1")

	assert.Equal(t, "u1", c.Identity())
	assert.Equal(t, anon, c.Items())

	_, ok := stored(t, storage, "shopping-cart")
	assert.False(t, ok, "anonymous key must be removed")

	persisted, ok := stored(t, storage, "shopping-cart-u1")
	require.True(t, ok)
	assert.Equal(t, anon, persisted)
}

func TestLoginWithEmptyAnonymousCartLoadsUserCart(t *testing.T) {
	storage := NewMemoryStorage()
	userItems := []models.CartItem{
		{ID: 4, Name: "Cesta Mediterránea", UnitPrice: decimal.NewFromInt(40), Quantity: 1},
		{ID: 5, Name: "Cesta Ibérica", UnitPrice: decimal.NewFromInt(55), Quantity: 2, IsGift: true},
	}
	seed(t, storage, "shopping-cart-u1", userItems)

	c := newCart(t, storage, "")
	c.OnIdentityChange(context.Background(), "", "u1")

	got := c.Items()
	require.Len(t, got, 2)
	for i := range userItems {
		assert.Equal(t, userItems[i].ID, got[i].ID)
		assert.Equal(t, userItems[i].Quantity, got[i].Quantity)
		assert.True(t, userItems[i].UnitPrice.Equal(got[i].UnitPrice))
	}
}

func TestAccountSwitchReloadsWithoutMerge(t *testing.T) {
	storage := NewMemoryStorage()
	seed(t, storage, "shopping-cart-u2", []models.CartItem{{ID: 8, UnitPrice: decimal.NewFromInt(8), Quantity: 1}})

	c := newCart(t, storage, "u1")
	c.AddToCart(basket(1, "10", false))

	c.OnIdentityChange(context.Background(), "u1", "u2")

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(8), items[0].ID)

	u1, ok := stored(t, storage, "shopping-cart-u1")
	require.True(t, ok)
	require.Len(t, u1, 1)
	assert.Equal(t, int64(1), u1[0].ID)
}

func TestSignOutEmptiesMemoryButKeepsStoredCart(t *testing.T) {
	storage := NewMemoryStorage()
	c := newCart(t, storage, "u1")
	c.AddToCart(basket(1, "10", false))

	c.OnIdentityChange(context.Background(), "u1", "")

	assert.Empty(t, c.Items())
	assert.Equal(t, "", c.Identity())
	items, ok := stored(t, storage, "shopping-cart-u1")
	require.True(t, ok)
	assert.Len(t, items, 1)
}

func TestSameIdentityIsNoop(t *testing.T) {
	c := newCart(t, NewMemoryStorage(), "u1")
	c.AddToCart(basket(1, "10", false))

	c.OnIdentityChange(context.Background(), "u1", "u1")

	assert.Len(t, c.Items(), 1)
}

func TestUnparsableEntryYieldsEmptyCart(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Set(context.Background(), "shopping-cart", []byte("{not json")))

	c := newCart(t, storage, "")
	assert.Empty(t, c.Items())
}

type countingStorage struct {
	*MemoryStorage
	sets atomic.Int32
}

func (s *countingStorage) Set(ctx context.Context, key string, value []byte) error {
	s.sets.Add(1)
	return s.MemoryStorage.Set(ctx, key, value)
}

func TestPersistIsDebounced(t *testing.T) {
	storage := &countingStorage{MemoryStorage: NewMemoryStorage()}
	c := New(context.Background(), storage, Config{PersistDelay: 30 * time.Millisecond})
	defer c.Close()

	for i := 0; i < 5; i++ {
		c.AddToCart(basket(1, "10", false))
	}
	assert.Equal(t, int32(0), storage.sets.Load(), "nothing written inside the window")

	require.Eventually(t, func() bool { return storage.sets.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), storage.sets.Load(), "rapid mutations coalesce into one write")

	items, ok := stored(t, storage.MemoryStorage, "shopping-cart")
	require.True(t, ok)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestFlushWritesPendingChange(t *testing.T) {
	storage := &countingStorage{MemoryStorage: NewMemoryStorage()}
	c := New(context.Background(), storage, Config{PersistDelay: time.Hour})

	c.AddToCart(basket(1, "10", false))
	c.Flush(context.Background())
	c.Close()

	assert.Equal(t, int32(1), storage.sets.Load())
	_, ok := stored(t, storage.MemoryStorage, "shopping-cart")
	assert.True(t, ok)
}

type brokenStorage struct{}

var errBroken = errors.New("quota exceeded")

func (brokenStorage) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errBroken }
func (brokenStorage) Set(context.Context, string, []byte) error { return errBroken }
func (brokenStorage) Delete(context.Context, string) error { return errBroken }

func TestStorageFailuresAreSoft(t *testing.T) {
	c := newCart(t, brokenStorage{}, "")
	assert.Empty(t, c.Items())

	c.AddToCart(basket(1, "10", false))
	c.AddToCart(basket(1, "10", false))
	assert.Equal(t, 2, c.TotalItems(), "in-memory cart survives write failures")

	c.OnIdentityChange(context.Background(), "", "u1")
	assert.Empty(t, c.Items(), "read failure falls back to empty")
}

func TestNamespacedStorage(t *testing.T) {
	inner := NewMemoryStorage()
	a := Namespaced(inner, "device-a")
	b := Namespaced(inner, "device-b")
	ctx := context.Background()

	require.NoError(t, a.Set(ctx, "shopping-cart", []byte("[1]")))

	_, ok, err := b.Get(ctx, "shopping-cart")
	require.NoError(t, err)
	assert.False(t, ok)

	raw, ok, err := inner.Get(ctx, "device-a:shopping-cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[1]", string(raw))

	require.NoError(t, a.Delete(ctx, "shopping-cart"))
	_, ok, _ = inner.Get(ctx, "device-a:shopping-cart")
	assert.False(t, ok)
}
