package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/01moynul/selecta-golang/internal/middleware"
	"github.com/01moynul/selecta-golang/internal/models"
	"github.com/01moynul/selecta-golang/internal/repository"
)

//
// --- Order Handlers ---
//

// OrderLineInput is one line of a new order; a line holds at most 10 units.
type OrderLineInput struct {
	ProductID int64 `json:"productId" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,min=1,max=10"`
	IsGift    bool  `json:"isGift"`
}

type GiftDetailsInput struct {
	RecipientEmail string  `json:"recipientEmail" binding:"required,email"`
	RecipientName  string  `json:"recipientName" binding:"required,max=255"`
	SenderName     string  `json:"senderName" binding:"max=255"`
	PersonalNote   *string `json:"personalNote" binding:"omitempty,max=1000"`
}

type CreateOrderInput struct {
	Items []OrderLineInput  `json:"items" binding:"required,min=1,max=50,dive"`
	Gift  *GiftDetailsInput `json:"gift"`
}

// CreateOrder is the handler for POST /v1/orders
// Prices come from the products table, never from the client. Orders with
// gift lines wait in 'pending' until the recipient supplies an address.
func (h *Handlers) CreateOrder(c *gin.Context) {
	customerID := middleware.UserID(c)
	ctx := c.Request.Context()

	var input CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	hasGiftLine := false
	ids := make([]int64, 0, len(input.Items))
	for _, line := range input.Items {
		ids = append(ids, line.ProductID)
		hasGiftLine = hasGiftLine || line.IsGift
	}
	if hasGiftLine && input.Gift == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Gift details are required for gift items"})
		return
	}
	if !hasGiftLine && input.Gift != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Gift details need at least one gift item"})
		return
	}

	products, err := h.Products.ActiveByIDs(ctx, ids)
	if err != nil {
		h.internalError(c, "Failed to load products", err)
		return
	}

	now := h.now()
	order := &models.Order{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Status:     models.OrderCompleted,
		Total:      decimal.Zero,
		IsGift:     hasGiftLine,
		CreatedAt:  now,
	}

	items := make([]models.OrderItem, 0, len(input.Items))
	giftBasket := ""
	for _, line := range input.Items {
		p, ok := products[line.ProductID]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Product %d is not available", line.ProductID)})
			return
		}
		items = append(items, models.OrderItem{
			OrderID:    order.ID,
			ProductID:  p.ID,
			BasketName: p.Name,
			Quantity:   line.Quantity,
			UnitPrice:  p.Price,
			IsGift:     line.IsGift,
		})
		order.Total = order.Total.Add(p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		if line.IsGift && giftBasket == "" {
			giftBasket = p.Name
		}
	}

	var gift *models.PendingGift
	if hasGiftLine {
		sender := strings.TrimSpace(input.Gift.SenderName)
		if sender == "" {
			user, err := h.Users.GetByID(ctx, customerID)
			if err != nil {
				h.internalError(c, "Failed to load customer", err)
				return
			}
			sender = user.FullName
		}

		order.Status = models.OrderPending
		gift = &models.PendingGift{
			ID:             uuid.NewString(),
			OrderID:        order.ID,
			RecipientEmail: input.Gift.RecipientEmail,
			RecipientName:  input.Gift.RecipientName,
			SenderName:     sender,
			BasketName:     giftBasket,
			PersonalNote:   input.Gift.PersonalNote,
			CreatedAt:      now,
		}
	} else {
		order.CompletedAt = &now
	}

	if err := h.Orders.Create(ctx, order, items, gift); err != nil {
		h.internalError(c, "Failed to create order", err)
		return
	}

	resp := gin.H{"order": order, "items": items}
	if gift != nil {
		resp["giftId"] = gift.ID
	}
	c.JSON(http.StatusCreated, resp)
}

// GetMyOrders is the handler for GET /v1/orders
func (h *Handlers) GetMyOrders(c *gin.Context) {
	orders, err := h.Orders.ListByCustomer(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.internalError(c, "Failed to load orders", err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrderDetails is the handler for GET /v1/orders/:id
func (h *Handlers) GetOrderDetails(c *gin.Context) {
	order, ok := h.ownedOrder(c)
	if !ok {
		return
	}

	items, err := h.Orders.ListItems(c.Request.Context(), order.ID)
	if err != nil {
		h.internalError(c, "Failed to load order items", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "items": items})
}

// ownedOrder loads the :id order if it belongs to the caller. Other users'
// orders are reported as missing.
func (h *Handlers) ownedOrder(c *gin.Context) (*models.Order, bool) {
	order, err := h.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		h.internalError(c, "Failed to load order", err)
		return nil, false
	}
	if order == nil || order.CustomerID != middleware.UserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return nil, false
	}
	return order, true
}
