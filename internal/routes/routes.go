package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/01moynul/selecta-golang/internal/handlers"
	"github.com/01moynul/selecta-golang/internal/middleware"
)

// Options configures the router around the handlers.
type Options struct {
	// AllowedOrigins are the storefront origins allowed to call the API.
	AllowedOrigins []string
	// CronSecret is the shared secret the scheduler sends as a bearer token.
	CronSecret string
	// Now is the clock used for request freshness checks; nil means time.Now.
	Now func() time.Time
}

// freshnessWindow bounds how far X-Request-Timestamp may drift from server time.
const freshnessWindow = 5 * time.Minute

func SetupRouter(h *handlers.Handlers, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(h.Logger), gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.TimestampHeader, handlers.DeviceHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	requireAuth := middleware.AuthMiddleware(h.Signer)
	cronAuth := middleware.CronSecret(opts.CronSecret)

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		v1.POST("/register", h.Register)
		v1.POST("/login", h.Login)
		v1.POST("/auth/magic", h.MagicLogin)
		v1.GET("/me", requireAuth, h.Me)

		// --- Public Product Routes ---
		v1.GET("/products", h.SearchProducts)
		v1.GET("/products/:id", h.GetProduct)

		// --- Cart Routes (anonymous or signed in) ---
		cartGroup := v1.Group("/cart")
		cartGroup.Use(middleware.OptionalAuth(h.Signer))
		{
			cartGroup.GET("", h.GetCart)
			cartGroup.DELETE("", h.ClearCart)
			cartGroup.POST("/items", h.AddToCart)
			cartGroup.POST("/items/remove", h.RemoveCartItems)
			cartGroup.PUT("/items/:id", h.UpdateCartItem)
			cartGroup.DELETE("/items/:id", h.DeleteCartItem)
		}

		// --- Order Routes (Login Required) ---
		orders := v1.Group("/orders")
		orders.Use(requireAuth)
		{
			orders.POST("", h.CreateOrder)
			orders.GET("", h.GetMyOrders)
			orders.GET("/:id", h.GetOrderDetails)
			orders.POST("/:id/reviews", h.CreateReview)
		}

		// --- Gift Routes (Public, the link is the credential) ---
		v1.GET("/gifts/:id", h.GetGift)
		v1.POST("/gifts/:id/shipping", h.CompleteGiftShipping)

		// --- Scheduler Routes (shared secret) ---
		cron := v1.Group("/cron")
		cron.Use(cronAuth)
		{
			cron.POST("/gift-reminders", h.RunGiftReminders)
			cron.GET("/gift-reminders", h.RunGiftReminders)
			cron.POST("/review-reminders", middleware.RequestFreshness(freshnessWindow, opts.Now), h.RunReviewReminders)
		}
	}

	return router
}
