package handler

import (
	"net/http"
	"time"

	"homenest/pkg/logger"
	"homenest/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers собирает все обработчики приложения для маршрутизации
type Handlers struct {
	Auth    *AuthHandler
	Catalog *CatalogHandler
	Order   *OrderHandler
	Review  *ReviewHandler
	Account *AccountHandler
	Support *SupportHandler
}

// SetupRoutes настраивает все маршруты магазина.
// Публичная витрина, авторизованный кабинет и админ-группа
// разделены middleware.
func SetupRoutes(h Handlers, authMiddleware *AuthMiddleware) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware("store"))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "homenest",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	// Публичная витрина
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.GET("/products", h.Catalog.GetProducts)
	api.GET("/products/:id", h.Catalog.GetProduct)
	api.GET("/categories", h.Catalog.GetCategories)
	api.GET("/reviews", h.Review.GetProductReviews)
	api.POST("/reviews", h.Review.CreateReview)
	api.GET("/testimonials", h.Support.GetTestimonials)
	api.POST("/contact", h.Support.SubmitContact)

	// Личный кабинет
	authorized := api.Group("")
	authorized.Use(authMiddleware.Authenticate())
	{
		authorized.GET("/auth/me", h.Auth.Me)
		authorized.PUT("/profile", h.Auth.UpdateProfile)

		authorized.POST("/orders", h.Order.CreateOrder)
		authorized.GET("/orders", h.Order.GetUserOrders)
		authorized.GET("/orders/my", h.Order.GetUserOrders)
		authorized.GET("/orders/:id", h.Order.GetOrder)
		authorized.POST("/orders/:id/cancel", h.Order.CancelOrder)

		authorized.GET("/addresses", h.Account.GetAddresses)
		authorized.POST("/addresses", h.Account.CreateAddress)
		authorized.PUT("/addresses/:id", h.Account.UpdateAddress)
		authorized.DELETE("/addresses/:id", h.Account.DeleteAddress)

		authorized.GET("/wishlist", h.Account.GetWishlist)
		authorized.POST("/wishlist", h.Account.AddToWishlist)
		authorized.DELETE("/wishlist/:productId", h.Account.RemoveFromWishlist)

		authorized.GET("/notifications", h.Account.GetNotifications)
		authorized.PATCH("/notifications/:id/read", h.Account.MarkNotificationRead)
	}

	// Админ-панель
	admin := api.Group("/admin")
	admin.Use(authMiddleware.Authenticate(), authMiddleware.RequireAdmin())
	{
		admin.POST("/products", h.Catalog.CreateProduct)
		admin.PUT("/products/:id", h.Catalog.UpdateProduct)
		admin.DELETE("/products/:id", h.Catalog.DeleteProduct)

		admin.POST("/categories", h.Catalog.CreateCategory)
		admin.PUT("/categories/:id", h.Catalog.UpdateCategory)
		admin.DELETE("/categories/:id", h.Catalog.DeleteCategory)

		admin.GET("/orders", h.Order.GetAllOrders)
		admin.PATCH("/orders/:id/status", h.Order.UpdateOrderStatus)
		admin.DELETE("/orders/:id", h.Order.DeleteOrder)

		admin.GET("/notifications", h.Account.GetAdminNotifications)
		admin.GET("/contacts", h.Support.GetContacts)
		admin.POST("/testimonials", h.Support.CreateTestimonial)
	}

	return router
}
