package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/mcampos87/comercio-api/docs"
	"github.com/mcampos87/comercio-api/internal/category"
	"github.com/mcampos87/comercio-api/internal/config"
	"github.com/mcampos87/comercio-api/internal/dashboard"
	"github.com/mcampos87/comercio-api/internal/httpx"
	"github.com/mcampos87/comercio-api/internal/inventory"
	"github.com/mcampos87/comercio-api/internal/notification"
	"github.com/mcampos87/comercio-api/internal/order"
	"github.com/mcampos87/comercio-api/internal/payment"
	"github.com/mcampos87/comercio-api/internal/product"
	"github.com/mcampos87/comercio-api/internal/settings"
	"github.com/mcampos87/comercio-api/internal/user"
)

type deps struct {
	cfg           config.Config
	rdb           *redis.Client
	users         user.Repository
	categories    category.Repository
	products      product.Repository
	orders        order.Repository
	inventory     inventory.Repository
	payments      payment.Repository
	paymentSvc    *payment.Service
	settings      settings.Repository
	notifications notification.Repository
	dashboard     dashboard.Repository
	notifier      *notification.Notifier
}

func newRouter(d deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	limiter := httpx.RateLimiter(d.rdb, 5, time.Minute)
	r.POST("/auth/register", limiter, registerHandler(d.users, d.cfg))
	r.POST("/auth/login", limiter, loginHandler(d.users, d.cfg))

	r.GET("/categories", listCategoriesHandler(d.categories))
	r.GET("/categories/:id", getCategoryHandler(d.categories))
	r.GET("/products", listProductsHandler(d.products))
	r.GET("/products/:id", getProductHandler(d.products))

	// payment gateway callbacks carry their own verification
	r.POST("/payments/webhook/:provider", paymentWebhookHandler(d.paymentSvc))

	auth := r.Group("/", httpx.RequireAuth(d.cfg.JWTSecret))
	{
		auth.GET("/users/me", meHandler(d.users))
		auth.PATCH("/users/me", updateMeHandler(d.users))

		auth.POST("/orders", createOrderHandler(d.orders, d.settings, d.notifier))
		auth.GET("/orders", listOrdersHandler(d.orders))
		auth.GET("/orders/:id", getOrderHandler(d.orders))
		auth.POST("/orders/:id/cancel", cancelOrderHandler(d.orders, d.notifier))

		auth.POST("/payments/process", processPaymentHandler(d.paymentSvc))
		auth.POST("/payments/initiate", initiatePaymentHandler(d.paymentSvc))
		auth.GET("/orders/:id/payments", listOrderPaymentsHandler(d.payments, d.orders))

		auth.GET("/notifications", listNotificationsHandler(d.notifications))
		auth.PATCH("/notifications/:id/read", markNotificationReadHandler(d.notifications))
	}

	admin := r.Group("/", httpx.RequireAuth(d.cfg.JWTSecret), httpx.RequireRole(user.RoleAdmin))
	{
		admin.GET("/users", listUsersHandler(d.users))

		admin.POST("/categories", createCategoryHandler(d.categories))
		admin.PATCH("/categories/:id", updateCategoryHandler(d.categories))
		admin.DELETE("/categories/:id", deleteCategoryHandler(d.categories))

		admin.POST("/products", createProductHandler(d.products))
		admin.PATCH("/products/:id", updateProductHandler(d.products))
		admin.DELETE("/products/:id", deleteProductHandler(d.products))

		admin.PATCH("/orders/:id/status", updateOrderStatusHandler(d.orders, d.notifier))

		admin.PATCH("/inventory/:productId/stock", adjustStockHandler(d.inventory))
		admin.GET("/inventory/:productId/movements", listMovementsHandler(d.inventory))

		admin.GET("/settings", listSettingsHandler(d.settings))
		admin.PUT("/settings/:key", putSettingHandler(d.settings))

		admin.GET("/dashboard/stats", dashboardStatsHandler(d.dashboard))
	}

	return r
}
