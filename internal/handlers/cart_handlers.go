package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/01moynul/selecta-golang/internal/cart"
	"github.com/01moynul/selecta-golang/internal/middleware"
	"github.com/01moynul/selecta-golang/internal/models"
)

//
// --- Cart Handlers ---
//
// Each device's cart keys live in their own namespace of CartStorage. The
// identity the device last used is kept next to them so that a login,
// account switch or sign-out is reconciled on the first request after it.
//

const (
	DeviceHeader      = "X-Device-ID"
	identityMarkerKey = "cart-identity"
)

// openCart loads the calling device's cart and applies any identity change
// since its previous request. It writes a 400 and returns nil when the
// device header is missing.
func (h *Handlers) openCart(c *gin.Context) *cart.Cart {
	device := c.GetHeader(DeviceHeader)
	if len(device) < 8 || len(device) > 128 {
		c.JSON(http.StatusBadRequest, gin.H{"error": DeviceHeader + " header must be 8-128 characters"})
		return nil
	}

	ctx := c.Request.Context()
	store := cart.Namespaced(h.CartStorage, device)
	current := middleware.UserID(c)
	last := h.lastIdentity(ctx, store)

	crt := cart.New(ctx, store, cart.Config{
		Identity:     last,
		PersistDelay: h.CartPersistDelay,
		Logger:       h.Logger,
	})
	if last != current {
		crt.OnIdentityChange(ctx, last, current)
		if err := store.Set(ctx, identityMarkerKey, []byte(current)); err != nil {
			h.log().Warn("cart: failed to save identity marker", zap.Error(err))
		}
	}
	return crt
}

func (h *Handlers) lastIdentity(ctx context.Context, store cart.Storage) string {
	data, ok, err := store.Get(ctx, identityMarkerKey)
	if err != nil {
		h.log().Warn("cart: failed to read identity marker", zap.Error(err))
		return ""
	}
	if !ok {
		return ""
	}
	return string(data)
}

// respondCart flushes pending writes and sends the cart.
func (h *Handlers) respondCart(c *gin.Context, crt *cart.Cart, status int) {
	crt.Flush(c.Request.Context())
	c.JSON(status, gin.H{
		"items":       crt.Items(),
		"totalItems":  crt.TotalItems(),
		"totalAmount": crt.TotalAmount(),
	})
}

// GetCart is the handler for GET /v1/cart
func (h *Handlers) GetCart(c *gin.Context) {
	crt := h.openCart(c)
	if crt == nil {
		return
	}
	defer crt.Close()

	h.respondCart(c, crt, http.StatusOK)
}

// AddToCartInput is one product as the storefront shows it.
type AddToCartInput struct {
	ID       int64           `json:"id" binding:"required,gt=0"`
	Name     string          `json:"name" binding:"required,max=255"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category" binding:"max=128"`
	Image    string          `json:"image" binding:"max=1024"`
	IsGift   bool            `json:"isGift"`
}

// AddToCart is the handler for POST /v1/cart/items
func (h *Handlers) AddToCart(c *gin.Context) {
	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if input.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: price must not be negative"})
		return
	}

	crt := h.openCart(c)
	if crt == nil {
		return
	}
	defer crt.Close()

	crt.AddToCart(models.CartItem{
		ID:        input.ID,
		Name:      input.Name,
		UnitPrice: input.Price,
		Category:  input.Category,
		ImageRef:  input.Image,
		IsGift:    input.IsGift,
	})
	h.respondCart(c, crt, http.StatusCreated)
}

type UpdateCartItemInput struct {
	Quantity *int `json:"quantity" binding:"required"`
	IsGift   bool `json:"isGift"`
}

// UpdateCartItem is the handler for PUT /v1/cart/items/:id
// A quantity of zero or less removes the line.
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	var input UpdateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	crt := h.openCart(c)
	if crt == nil {
		return
	}
	defer crt.Close()

	crt.UpdateQuantity(id, *input.Quantity, input.IsGift)
	h.respondCart(c, crt, http.StatusOK)
}

// DeleteCartItem is the handler for DELETE /v1/cart/items/:id?gift=true|false
func (h *Handlers) DeleteCartItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	isGift := false
	if raw := c.Query("gift"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "gift must be true or false"})
			return
		}
		isGift = v
	}

	crt := h.openCart(c)
	if crt == nil {
		return
	}
	defer crt.Close()

	crt.RemoveFromCart(id, isGift)
	h.respondCart(c, crt, http.StatusOK)
}

type RemoveCartItemsInput struct {
	Items []cart.RemoveRequest `json:"items" binding:"required,dive"`
}

// RemoveCartItems is the handler for POST /v1/cart/items/remove
func (h *Handlers) RemoveCartItems(c *gin.Context) {
	var input RemoveCartItemsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	crt := h.openCart(c)
	if crt == nil {
		return
	}
	defer crt.Close()

	crt.RemoveMultipleItems(input.Items)
	h.respondCart(c, crt, http.StatusOK)
}

// ClearCart is the handler for DELETE /v1/cart
func (h *Handlers) ClearCart(c *gin.Context) {
	crt := h.openCart(c)
	if crt == nil {
		return
	}
	defer crt.Close()

	crt.ClearCart()
	h.respondCart(c, crt, http.StatusOK)
}

func itemID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return 0, false
	}
	return id, true
}
