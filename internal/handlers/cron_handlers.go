package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RunGiftReminders is the handler for POST|GET /v1/cron/gift-reminders
func (h *Handlers) RunGiftReminders(c *gin.Context) {
	res, err := h.GiftReminders.Run(c.Request.Context())
	if err != nil {
		h.log().Error("gift reminder run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	body := gin.H{"success": true, "count": res.Sent}
	if res.Errors > 0 {
		body["errors"] = res.Errors
	}
	c.JSON(http.StatusOK, body)
}

// RunReviewReminders is the handler for POST /v1/cron/review-reminders
func (h *Handlers) RunReviewReminders(c *gin.Context) {
	res, err := h.ReviewReminders.Run(c.Request.Context())
	if err != nil {
		h.log().Error("review reminder run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "sent": res.Sent, "errors": res.Errors})
}
