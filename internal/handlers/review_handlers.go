package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/01moynul/selecta-golang/internal/models"
	"github.com/01moynul/selecta-golang/internal/repository"
)

type CreateReviewInput struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

// CreateReview is the handler for POST /v1/orders/:id/reviews
func (h *Handlers) CreateReview(c *gin.Context) {
	var input CreateReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	order, ok := h.ownedOrder(c)
	if !ok {
		return
	}
	if order.Status != models.OrderCompleted {
		c.JSON(http.StatusConflict, gin.H{"error": "Only completed orders can be reviewed"})
		return
	}

	review := &models.Review{
		ID:         uuid.NewString(),
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Rating:     input.Rating,
		Comment:    strings.TrimSpace(input.Comment),
		CreatedAt:  h.now(),
	}
	if err := h.Reviews.Create(c.Request.Context(), review); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "This order has already been reviewed"})
			return
		}
		h.internalError(c, "Failed to save review", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"review": review})
}
