package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/selecta-golang/internal/auth"
	"github.com/01moynul/selecta-golang/internal/cart"
	"github.com/01moynul/selecta-golang/internal/logger"
	"github.com/01moynul/selecta-golang/internal/reminders"
	"github.com/01moynul/selecta-golang/internal/repository"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Users    *repository.UserRepo
	Products *repository.ProductRepo
	Orders   *repository.OrderRepo
	Gifts    *repository.GiftRepo
	Reviews  *repository.ReviewRepo

	// CartStorage hosts every device's cart keys; each device gets its own namespace.
	CartStorage      cart.Storage
	CartPersistDelay time.Duration

	Signer      *auth.Signer
	LoginTokens *auth.LoginTokens

	GiftReminders   reminders.Job
	ReviewReminders reminders.Job

	Now    func() time.Time
	Logger *zap.Logger
}

func (h *Handlers) now() time.Time {
	if h.Now == nil {
		return time.Now().UTC()
	}
	return h.Now().UTC()
}

func (h *Handlers) log() *zap.Logger {
	return logger.OrNop(h.Logger)
}

// internalError logs err and sends a generic 500.
func (h *Handlers) internalError(c *gin.Context, msg string, err error) {
	h.log().Error(msg, zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
