// Package cart keeps a shopping cart in memory and persists it, debounced,
// under a storage key derived from the signed-in identity.
//
// Anonymous carts live under "shopping-cart"; a signed-in user's cart lives
// under "shopping-cart-{userID}". On login a non-empty anonymous cart replaces
// the user's stored cart and the anonymous entry is removed.
package cart

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/01moynul/selecta-golang/internal/logger"
	"github.com/01moynul/selecta-golang/internal/models"
)

const (
	anonymousKey   = "shopping-cart"
	storageTimeout = 5 * time.Second
)

// StorageKey returns the key a cart is stored under for identity ("" is anonymous).
func StorageKey(identity string) string {
	if identity == "" {
		return anonymousKey
	}
	return anonymousKey + "-" + identity
}

// Config configures a Cart.
type Config struct {
	// Identity is the signed-in user id, or "" for an anonymous visitor.
	Identity string
	// PersistDelay coalesces writes made within the window. Zero writes
	// synchronously on every mutation.
	PersistDelay time.Duration
	Logger       *zap.Logger
}

// RemoveRequest is one entry of a RemoveMultipleItems batch.
// A nil QuantityToRemove removes the whole line.
type RemoveRequest struct {
	ID               int64 `json:"id" binding:"required"`
	IsGift           bool  `json:"isGift"`
	QuantityToRemove *int  `json:"quantityToRemove,omitempty" binding:"omitempty,gt=0"`
}

// Cart is safe for concurrent use. Separate Cart values writing the same
// storage key are last-write-wins.
type Cart struct {
	mu       sync.Mutex
	storage  Storage
	log      *zap.Logger
	delay    time.Duration
	identity string
	items    []models.CartItem
	timer    *time.Timer
	dirty    bool
}

// New loads the cart stored for cfg.Identity. A missing or unreadable entry
// yields an empty cart.
func New(ctx context.Context, storage Storage, cfg Config) *Cart {
	c := &Cart{
		storage:  storage,
		log:      logger.OrNop(cfg.Logger),
		delay:    cfg.PersistDelay,
		identity: cfg.Identity,
	}
	c.items = c.load(ctx, StorageKey(c.identity))
	return c
}

// Identity returns the identity whose key the cart currently persists to.
func (c *Cart) Identity() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

// AddToCart increments the matching (id, isGift) line, or appends the item
// as a new line with quantity 1.
func (c *Cart) AddToCart(item models.CartItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].Matches(item.ID, item.IsGift) {
			c.items[i].Quantity++
			c.schedulePersist()
			return
		}
	}

	item.Quantity = 1
	c.items = append(c.items, item)
	c.schedulePersist()
}

// RemoveFromCart drops every line matching (id, isGift).
func (c *Cart) RemoveFromCart(id int64, isGift bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = without(c.items, id, isGift)
	c.schedulePersist()
}

// UpdateQuantity sets the quantity of the matching line; quantity <= 0
// removes it.
func (c *Cart) UpdateQuantity(id int64, quantity int, isGift bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity <= 0 {
		c.items = without(c.items, id, isGift)
		c.schedulePersist()
		return
	}

	for i := range c.items {
		if c.items[i].Matches(id, isGift) {
			c.items[i].Quantity = quantity
		}
	}
	c.schedulePersist()
}

// ClearCart empties the cart.
func (c *Cart) ClearCart() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	c.schedulePersist()
}

// RemoveMultipleItems applies the batch to a snapshot of the current lines
// and swaps the result in with a single write. Ids are expected to be
// distinct within a batch.
func (c *Cart) RemoveMultipleItems(reqs []RemoveRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := append([]models.CartItem(nil), c.items...)
	for _, req := range reqs {
		for i := 0; i < len(next); i++ {
			if !next[i].Matches(req.ID, req.IsGift) {
				continue
			}
			if req.QuantityToRemove == nil || *req.QuantityToRemove >= next[i].Quantity {
				next = append(next[:i], next[i+1:]...)
				i--
				continue
			}
			next[i].Quantity -= *req.QuantityToRemove
		}
	}

	c.items = next
	c.schedulePersist()
}

// Items returns a copy of the current lines.
func (c *Cart) Items() []models.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// TotalItems is the sum of quantities.
func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, it := range c.items {
		total += it.Quantity
	}
	return total
}

// TotalAmount is the sum of unit price times quantity.
func (c *Cart) TotalAmount() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// OnIdentityChange reconciles the cart with an authentication transition.
//
//   - login ("" -> X): a non-empty anonymous cart becomes X's cart verbatim
//     and the anonymous entry is deleted; otherwise X's stored cart is loaded.
//   - switch (X -> Y): Y's stored cart is loaded, nothing is merged.
//   - sign-out (X -> ""): the in-memory cart is emptied; X's entry stays.
//
// Pending writes are flushed to the old key first.
func (c *Cart) OnIdentityChange(ctx context.Context, previous, next string) {
	if previous == next {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.flushLocked(ctx)

	switch {
	case next == "":
		c.identity = next
		c.items = nil

	case previous == "":
		c.identity = next
		anon := c.load(ctx, anonymousKey)
		if len(anon) == 0 {
			c.items = c.load(ctx, StorageKey(next))
			return
		}

		c.items = anon
		c.persistLocked(ctx)
		if err := c.storage.Delete(ctx, anonymousKey); err != nil {
			c.log.Warn("cart: failed to delete anonymous cart", zap.Error(err))
		}

	default:
		c.identity = next
		c.items = c.load(ctx, StorageKey(next))
	}
}

// Flush writes any pending change now.
func (c *Cart) Flush(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushLocked(ctx)
}

// Close flushes pending changes and releases the debounce timer.
func (c *Cart) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	c.Flush(ctx)
}

func (c *Cart) flushLocked(ctx context.Context) {
	if c.timer != nil {
		c.timer.Stop()
	}
	if c.dirty {
		c.persistLocked(ctx)
	}
}

// schedulePersist must be called with mu held.
func (c *Cart) schedulePersist() {
	if c.delay <= 0 {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()
		c.persistLocked(ctx)
		return
	}

	c.dirty = true
	if c.timer == nil {
		c.timer = time.AfterFunc(c.delay, c.onTimer)
		return
	}
	c.timer.Reset(c.delay)
}

func (c *Cart) onTimer() {
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dirty {
		c.persistLocked(ctx)
	}
}

// persistLocked writes the cart under the current identity's key. Failures
// are logged and leave the in-memory cart untouched.
func (c *Cart) persistLocked(ctx context.Context) {
	c.dirty = false

	items := c.items
	if items == nil {
		items = []models.CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		c.log.Error("cart: failed to encode cart", zap.Error(err))
		return
	}

	key := StorageKey(c.identity)
	if err := c.storage.Set(ctx, key, data); err != nil {
		c.log.Warn("cart: failed to save cart", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cart) load(ctx context.Context, key string) []models.CartItem {
	data, ok, err := c.storage.Get(ctx, key)
	if err != nil {
		c.log.Warn("cart: failed to read cart", zap.String("key", key), zap.Error(err))
		return nil
	}
	if !ok || len(data) == 0 {
		return nil
	}

	var items []models.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		c.log.Warn("cart: discarding unreadable cart", zap.String("key", key), zap.Error(err))
		return nil
	}
	return items
}

func without(items []models.CartItem, id int64, isGift bool) []models.CartItem {
	out := items[:0]
	for _, it := range items {
		if !it.Matches(id, isGift) {
			out = append(out, it)
		}
	}
	return out
}
