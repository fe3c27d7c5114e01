package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/selecta-golang/internal/models"
	"github.com/01moynul/selecta-golang/internal/repository"
)

// GetGift is the handler for GET /v1/gifts/:id
// It is public: the gift id in the recipient's link is the credential.
func (h *Handlers) GetGift(c *gin.Context) {
	gift, err := h.Gifts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Gift not found"})
			return
		}
		h.internalError(c, "Failed to load gift", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"gift": gin.H{
		"id":                gift.ID,
		"recipientName":     gift.RecipientName,
		"senderName":        gift.SenderName,
		"basketName":        gift.BasketName,
		"personalNote":      gift.PersonalNote,
		"shippingCompleted": gift.ShippingCompleted,
	}})
}

// CompleteGiftShipping is the handler for POST /v1/gifts/:id/shipping
func (h *Handlers) CompleteGiftShipping(c *gin.Context) {
	var input models.GiftShipping
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	err := h.Gifts.CompleteShipping(c.Request.Context(), c.Param("id"), input, h.now())
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Gift not found"})
		return
	case errors.Is(err, repository.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Shipping details were already provided"})
		return
	case err != nil:
		h.internalError(c, "Failed to save shipping details", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Shipping details saved"})
}
